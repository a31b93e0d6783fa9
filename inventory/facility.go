// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"fmt"
	"time"

	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/fault"
)

// Location - geographic coordinate in degrees
type Location struct {
	Latitude  float64 `cbor:"lat"`
	Longitude float64 `cbor:"lng"`
}

// Policies - facility wide stay policy
type Policies struct {
	Timezone     string `cbor:"timezone"`       // IANA name, blank is UTC
	CheckInTime  string `cbor:"check_in_time"`  // HH:MM local, blank is midnight
	CheckOutTime string `cbor:"check_out_time"` // HH:MM local
}

// Facility - a managed property
type Facility struct {
	ID          FacilityID `cbor:"id"`
	Name        string     `cbor:"name"`
	Description string     `cbor:"description"`
	Location    *Location  `cbor:"location"`
	Policies    Policies   `cbor:"policies"`
}

// Stay - the nights occupied by a request
type Stay struct {
	CheckIn time.Time // instant of check-in in the facility zone
	Nights  int
	Dates   []Date // one per night, chronological
}

// PutFacility - create or replace facility metadata
func (inv *Inventory) PutFacility(f *Facility) error {
	packed, err := codec.Marshal(f)
	if nil != err {
		return err
	}
	return inv.store.Pool.Facilities.Put(f.ID[:], packed)
}

// Facility - read facility metadata
func (inv *Inventory) Facility(fid FacilityID) (*Facility, error) {
	packed, err := inv.store.Pool.Facilities.Get(fid[:])
	if fault.ErrNotFound == err {
		return nil, fault.ErrFacilityNotFound
	} else if nil != err {
		return nil, err
	}

	f := &Facility{}
	if err := codec.Unmarshal(packed, f); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return f, nil
}

// Facilities - identifiers of every facility in key order
func (inv *Inventory) Facilities() ([]FacilityID, error) {
	ids := make([]FacilityID, 0, 8)
	err := inv.store.Pool.Facilities.Iterate(nil, func(key []byte, _ []byte) error {
		if IDLength != len(key) {
			return fault.ErrInvalidKey
		}
		var fid FacilityID
		copy(fid[:], key)
		ids = append(ids, fid)
		return nil
	})
	return ids, err
}

// Zone - the facility time zone
func (f *Facility) Zone() (*time.Location, error) {
	if "" == f.Policies.Timezone {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(f.Policies.Timezone)
	if nil != err {
		return nil, fault.ErrInvalidTimezone
	}
	return loc, nil
}

// Stay - the occupied date sequence for a check-in/check-out pair,
// every night from check-in up to the day before check-out
func (f *Facility) Stay(checkIn Date, checkOut Date) (*Stay, error) {
	loc, err := f.Zone()
	if nil != err {
		return nil, err
	}
	hour, minute, err := parseClock(f.Policies.CheckInTime)
	if nil != err {
		return nil, err
	}

	nights := checkIn.DaysUntil(checkOut)
	if nights < 1 {
		return nil, fault.ErrInvalidDateRange
	}

	dates := make([]Date, nights)
	for i := 0; i < nights; i += 1 {
		dates[i] = checkIn.AddDays(i)
	}

	return &Stay{
		CheckIn: time.Date(checkIn.Year, checkIn.Month, checkIn.Day, hour, minute, 0, 0, loc),
		Nights:  nights,
		Dates:   dates,
	}, nil
}

// HH:MM
func parseClock(s string) (int, int, error) {
	if "" == s {
		return 0, 0, nil
	}
	hour, minute := 0, 0
	n, err := fmt.Sscanf(s, "%d:%d", &hour, &minute)
	if nil != err || 2 != n || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fault.ErrInvalidCheckInTime
	}
	return hour, minute, nil
}

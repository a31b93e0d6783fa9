// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/stayd-io/stayd/configuration"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/typeddata"
)

// an inventory description file is a Lua script returning a table
// of facilities in this shape
type inventoryFile struct {
	Facilities []facilityEntry `gluamapper:"facilities"`
}

type facilityEntry struct {
	ID           string              `gluamapper:"id"`
	Name         string              `gluamapper:"name"`
	Description  string              `gluamapper:"description"`
	Location     []float64           `gluamapper:"location"` // { latitude, longitude }
	Timezone     string              `gluamapper:"timezone"`
	CheckInTime  string              `gluamapper:"check_in_time"`
	CheckOutTime string              `gluamapper:"check_out_time"`
	Items        []itemEntry         `gluamapper:"items"`
	Rates        []rateEntry         `gluamapper:"rates"`
	Availability []availabilityEntry `gluamapper:"availability"`
	Notice       []noticeEntry       `gluamapper:"notice"`
	Terms        []termEntry         `gluamapper:"terms"`
}

type itemEntry struct {
	ID           string `gluamapper:"id"`
	Name         string `gluamapper:"name"`
	Type         string `gluamapper:"type"`
	MaxAdults    uint32 `gluamapper:"max_adults"`
	MaxChildren  uint32 `gluamapper:"max_children"`
	MaxOccupancy uint32 `gluamapper:"max_occupancy"`
}

// a blank item is the facility level
type rateEntry struct {
	Item  string `gluamapper:"item"`
	Key   string `gluamapper:"key"`
	Value string `gluamapper:"value"` // decimal
}

type availabilityEntry struct {
	Item   string `gluamapper:"item"`
	Key    string `gluamapper:"key"`
	Spaces uint32 `gluamapper:"spaces"`
}

type noticeEntry struct {
	Item    string `gluamapper:"item"`
	Seconds uint32 `gluamapper:"seconds"`
}

type termEntry struct {
	Term    string `gluamapper:"term"`
	Impl    string `gluamapper:"impl"`
	Payload string `gluamapper:"payload"` // hex
}

// read an inventory description and store every facility in it,
// returns the number of facilities stored
func loadInventory(inv *inventory.Inventory, fileName string, variables map[string]string) (int, error) {
	file := &inventoryFile{}
	if err := configuration.ParseConfigurationFile(fileName, file, variables); nil != err {
		return 0, err
	}

	for i, f := range file.Facilities {
		if err := loadFacility(inv, &f); nil != err {
			return i, fmt.Errorf("facility: %q  error: %s", f.ID, err)
		}
	}
	return len(file.Facilities), nil
}

func itemOrFacility(s string) (inventory.ItemID, error) {
	if "" == s {
		return inventory.FacilityLevel, nil
	}
	return inventory.ParseItemID(s)
}

func loadFacility(inv *inventory.Inventory, f *facilityEntry) error {
	fid, err := inventory.ParseFacilityID(f.ID)
	if nil != err {
		return err
	}

	facility := &inventory.Facility{
		ID:          fid,
		Name:        f.Name,
		Description: f.Description,
		Policies: inventory.Policies{
			Timezone:     f.Timezone,
			CheckInTime:  f.CheckInTime,
			CheckOutTime: f.CheckOutTime,
		},
	}
	switch len(f.Location) {
	case 0:
	case 2:
		facility.Location = &inventory.Location{
			Latitude:  f.Location[0],
			Longitude: f.Location[1],
		}
	default:
		return fmt.Errorf("location needs latitude and longitude, got %d values", len(f.Location))
	}
	if err := inv.PutFacility(facility); nil != err {
		return err
	}

	for _, item := range f.Items {
		iid, err := inventory.ParseItemID(item.ID)
		if nil != err {
			return err
		}
		t := inventory.ItemType(strings.ToLower(item.Type))
		if "" == t {
			t = inventory.ItemTypeSpace
		}
		err = inv.PutItem(fid, &inventory.Item{
			ID:           iid,
			Name:         item.Name,
			Type:         t,
			MaxAdults:    item.MaxAdults,
			MaxChildren:  item.MaxChildren,
			MaxOccupancy: item.MaxOccupancy,
		})
		if nil != err {
			return err
		}
	}

	for _, rate := range f.Rates {
		iid, err := itemOrFacility(rate.Item)
		if nil != err {
			return err
		}
		value, ok := new(big.Int).SetString(rate.Value, 10)
		if !ok {
			return fmt.Errorf("rate: %q is not a decimal integer", rate.Value)
		}
		if err := inv.PutRate(fid, iid, rate.Key, value); nil != err {
			return err
		}
	}

	for _, a := range f.Availability {
		iid, err := itemOrFacility(a.Item)
		if nil != err {
			return err
		}
		if err := inv.PutAvailability(fid, iid, a.Key, a.Spaces); nil != err {
			return err
		}
	}

	for _, n := range f.Notice {
		iid, err := itemOrFacility(n.Item)
		if nil != err {
			return err
		}
		if err := inv.PutRule(fid, iid, &inventory.NoticeRequiredRule{Seconds: n.Seconds}); nil != err {
			return err
		}
	}

	for _, t := range f.Terms {
		term := &inventory.Term{}
		b, err := hex.DecodeString(strings.TrimPrefix(t.Term, "0x"))
		if nil != err || len(b) != len(term.Term) {
			return fmt.Errorf("term: %q is not 32 bytes of hex", t.Term)
		}
		copy(term.Term[:], b)
		impl, err := typeddata.ParseAddress(t.Impl)
		if nil != err {
			return err
		}
		term.Impl = impl
		term.Payload, err = hex.DecodeString(strings.TrimPrefix(t.Payload, "0x"))
		if nil != err {
			return err
		}
		if err := inv.PutTerm(fid, term); nil != err {
			return err
		}
	}
	return nil
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/urfave/cli"

	"github.com/stayd-io/stayd/inventory"
)

type facilityLine struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Location  *inventory.Location `json:"location,omitempty"`
	Timezone  string              `json:"timezone,omitempty"`
	ItemCount int                 `json:"items"`
}

type bidLine struct {
	Hash    string `json:"hash"`
	Space   string `json:"space"`
	CheckIn string `json:"check_in"`
	Nights  int    `json:"nights"`
	Cost    string `json:"cost"`
	Limit   uint32 `json:"limit"`
	Expiry  string `json:"expiry"`
}

type stubLine struct {
	ID      string `json:"id"`
	Payload []byte `json:"payload,omitempty"`
}

type occupancyLine struct {
	Date      string  `json:"date"`
	Booked    uint32  `json:"booked"`
	Available *uint32 `json:"available,omitempty"`
}

func facilityArgument(c *cli.Context) (inventory.FacilityID, error) {
	s := c.String("facility")
	if "" == s {
		return inventory.FacilityID{}, fmt.Errorf("facility id is required")
	}
	return inventory.ParseFacilityID(s)
}

func runFacilities(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	fids, err := m.inv.Facilities()
	if nil != err {
		return err
	}

	lines := make([]facilityLine, 0, len(fids))
	for _, fid := range fids {
		f, err := m.inv.Facility(fid)
		if nil != err {
			return err
		}
		items, err := m.inv.Items(fid)
		if nil != err {
			return err
		}
		lines = append(lines, facilityLine{
			ID:        fid.String(),
			Name:      f.Name,
			Location:  f.Location,
			Timezone:  f.Policies.Timezone,
			ItemCount: len(items),
		})
	}
	return printJson(m.w, lines)
}

func runItems(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	fid, err := facilityArgument(c)
	if nil != err {
		return err
	}
	items, err := m.inv.Items(fid)
	if nil != err {
		return err
	}
	return printJson(m.w, items)
}

func runBids(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	fid, err := facilityArgument(c)
	if nil != err {
		return err
	}
	entries, err := m.ledger.Entries(fid)
	if nil != err {
		return err
	}

	lines := make([]bidLine, 0, len(entries))
	for _, e := range entries {
		checkIn, checkOut, err := e.Ask.Dates()
		if nil != err {
			return err
		}
		cost := "0"
		if nil != e.Bid.Cost {
			cost = new(big.Int).SetBytes(e.Bid.Cost.Wad).String()
		}
		lines = append(lines, bidLine{
			Hash:    e.Hash.String(),
			Space:   e.SpaceID.String(),
			CheckIn: checkIn.String(),
			Nights:  checkIn.DaysUntil(checkOut),
			Cost:    cost,
			Limit:   e.Bid.Limit,
			Expiry:  time.Unix(int64(e.Bid.Expiry), 0).UTC().Format(time.RFC3339),
		})
	}
	if m.verbose {
		fmt.Fprintf(m.e, "facility: %s  bids: %d\n", fid, len(lines))
	}
	return printJson(m.w, lines)
}

func runStubs(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	fid, err := facilityArgument(c)
	if nil != err {
		return err
	}
	date, err := inventory.ParseDate(c.String("date"))
	if nil != err {
		return err
	}

	ids, err := m.booking.Stubs(fid, date)
	if nil != err {
		return err
	}

	lines := make([]stubLine, 0, len(ids))
	for _, id := range ids {
		line := stubLine{ID: id}
		if c.Bool("payload") {
			line.Payload, err = m.booking.Stub(fid, id)
			if nil != err {
				return err
			}
		}
		lines = append(lines, line)
	}
	return printJson(m.w, lines)
}

func runOccupancy(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	fid, err := facilityArgument(c)
	if nil != err {
		return err
	}
	iid, err := inventory.ParseItemID(c.String("item"))
	if nil != err {
		return err
	}

	first := inventory.DateOf(time.Now())
	if s := c.String("date"); "" != s {
		first, err = inventory.ParseDate(s)
		if nil != err {
			return err
		}
	}
	nights := c.Int("nights")
	if nights <= 0 {
		return fmt.Errorf("invalid nights: %d", nights)
	}

	lines := make([]occupancyLine, 0, nights)
	for i := 0; i < nights; i += 1 {
		date := first.AddDays(i)
		booked, err := m.inv.Booked(fid, iid, date)
		if nil != err {
			return err
		}
		line := occupancyLine{
			Date:   date.String(),
			Booked: booked,
		}
		available, found, err := m.inv.EffectiveAvailability(fid, iid, date)
		if nil != err {
			return err
		}
		if found {
			line.Available = &available
		}
		lines = append(lines, line)
	}
	return printJson(m.w, lines)
}

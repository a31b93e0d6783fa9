// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package search - which items of a facility can satisfy an ask
package search

import (
	"time"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
)

const secondsPerDay = 24 * 60 * 60

// Searcher - availability search over one inventory
type Searcher struct {
	inv *inventory.Inventory
	now func() time.Time
}

// New - searcher using now as the clock, nil means time.Now
func New(inv *inventory.Inventory, now func() time.Time) *Searcher {
	if nil == now {
		now = time.Now
	}
	return &Searcher{
		inv: inv,
		now: now,
	}
}

// Search - identifiers of every space of the facility that passes
// notice, length of stay, occupancy and capacity checks
//
// an empty result is not an error
func (s *Searcher) Search(fid inventory.FacilityID, ask *message.Ask) ([]inventory.ItemID, error) {
	facility, err := s.inv.Facility(fid)
	if nil != err {
		return nil, err
	}

	checkIn, checkOut, err := ask.Dates()
	if nil != err {
		return nil, fault.ErrInvalidAsk
	}
	stay, err := facility.Stay(checkIn, checkOut)
	if nil != err {
		return nil, err
	}

	items, err := s.inv.Items(fid)
	if nil != err {
		return nil, err
	}

	now := s.now()
	matched := make([]inventory.ItemID, 0, len(items))
	for _, item := range items {
		if !item.IsSpace() {
			continue
		}
		ok, err := s.admit(fid, item, stay, ask, now)
		if nil != err {
			return nil, err
		}
		if ok {
			matched = append(matched, item.ID)
		}
	}
	return matched, nil
}

func (s *Searcher) admit(fid inventory.FacilityID, item *inventory.Item, stay *inventory.Stay, ask *message.Ask, now time.Time) (bool, error) {
	ok, err := noticeSatisfied(s.inv, fid, item.ID, stay, now)
	if nil != err || !ok {
		return false, err
	}

	ok, err = lengthOfStaySatisfied(s.inv, fid, item.ID, stay)
	if nil != err || !ok {
		return false, err
	}

	if !OccupancySatisfied(item, ask.NumPaxAdult, ask.NumPaxChild) {
		return false, nil
	}

	return CheckAvailability(s.inv, fid, item.ID, stay.Dates, ask.NumSpacesReq)
}

// lead time is counted in whole days
func noticeSatisfied(inv *inventory.Inventory, fid inventory.FacilityID, iid inventory.ItemID, stay *inventory.Stay, now time.Time) (bool, error) {
	rule, found, err := inv.ResolveRule(fid, iid, inventory.RuleNoticeRequired)
	if nil != err || !found {
		return nil == err, err
	}
	notice, ok := rule.(*inventory.NoticeRequiredRule)
	if !ok {
		return false, fault.ErrInvalidRule
	}

	days := int64(stay.CheckIn.Sub(now) / (secondsPerDay * time.Second))
	return days*secondsPerDay >= int64(notice.Seconds), nil
}

// bounds are exclusive: min < nights < max
func lengthOfStaySatisfied(inv *inventory.Inventory, fid inventory.FacilityID, iid inventory.ItemID, stay *inventory.Stay) (bool, error) {
	rule, found, err := inv.ResolveRule(fid, iid, inventory.RuleLengthOfStay)
	if nil != err || !found {
		return nil == err, err
	}
	los, ok := rule.(*inventory.LengthOfStayRule)
	if !ok {
		return false, fault.ErrInvalidRule
	}

	bounds, ok := los.Days[stay.Dates[0].Weekday()]
	if !ok {
		return true, nil
	}
	nights := uint32(stay.Nights)
	return bounds.Min < nights && nights < bounds.Max, nil
}

// OccupancySatisfied - adults fit, children fit in their own places
// plus any unused adult places, and a non-zero MaxOccupancy caps the
// party
func OccupancySatisfied(item *inventory.Item, adults uint32, children uint32) bool {
	if item.MaxAdults < adults {
		return false
	}
	if uint64(item.MaxChildren)+uint64(item.MaxAdults-adults) < uint64(children) {
		return false
	}
	if 0 != item.MaxOccupancy && uint64(item.MaxOccupancy) < uint64(adults)+uint64(children) {
		return false
	}
	return true
}

// CheckAvailability - every date has numSpacesReq unbooked spaces;
// a date with no availability configured is unconstrained
func CheckAvailability(inv *inventory.Inventory, fid inventory.FacilityID, iid inventory.ItemID, dates []inventory.Date, numSpacesReq uint32) (bool, error) {
	for _, date := range dates {
		available, found, err := inv.EffectiveAvailability(fid, iid, date)
		if nil != err {
			return false, err
		}
		if !found {
			continue
		}
		booked, err := inv.Booked(fid, iid, date)
		if nil != err {
			return false, err
		}
		if booked > available || available-booked < numSpacesReq {
			return false, nil
		}
	}
	return true, nil
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package quote - price of a stay in minor currency units
//
// each night starts from its resolved rate, the day of week modifier
// transforms it, the nights are summed and the length of stay modifier
// transforms the total. All arithmetic is integer.
package quote

import (
	"math/big"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
)

// OccupancyHook - receives the resolved occupancy modifier and the
// running total, returns the new total
type OccupancyHook func(m *inventory.OccupancyModifier, ask *message.Ask, total *big.Int) *big.Int

// Engine - quote engine over one inventory
type Engine struct {
	inv       *inventory.Inventory
	occupancy OccupancyHook
}

// New - engine whose occupancy modifiers leave the price unchanged
func New(inv *inventory.Inventory) *Engine {
	return &Engine{
		inv:       inv,
		occupancy: unchanged,
	}
}

// SetOccupancyHook - replace the occupancy modifier hook
func (e *Engine) SetOccupancyHook(hook OccupancyHook) {
	e.occupancy = hook
}

func unchanged(_ *inventory.OccupancyModifier, _ *message.Ask, total *big.Int) *big.Int {
	return total
}

// Quote - total price of an item for the nights of an ask
func (e *Engine) Quote(fid inventory.FacilityID, iid inventory.ItemID, ask *message.Ask) (*big.Int, error) {
	checkIn, checkOut, err := ask.Dates()
	if nil != err {
		return nil, fault.ErrInvalidAsk
	}
	nights := checkIn.DaysUntil(checkOut)
	if nights < 1 {
		return nil, fault.ErrInvalidDateRange
	}

	dow, err := e.dayOfWeek(fid, iid)
	if nil != err {
		return nil, err
	}

	total := new(big.Int)
	for i := 0; i < nights; i += 1 {
		date := checkIn.AddDays(i)
		base, found, err := e.inv.ResolveRate(fid, iid, date)
		if nil != err {
			return nil, err
		}
		if !found {
			return nil, fault.ErrMissingDefaultRate
		}
		if nil != dow {
			if adjustment, ok := dow.Days[date.Weekday()]; ok {
				base = Apply(adjustment, base)
			}
		}
		total.Add(total, base)
	}

	m, found, err := e.inv.ResolveModifier(fid, iid, inventory.ModifierLengthOfStay)
	if nil != err {
		return nil, err
	}
	if found {
		los, ok := m.(*inventory.LengthOfStayModifier)
		if !ok {
			return nil, fault.ErrInvalidModifier
		}
		if los.Condition.Holds(uint32(nights), los.Nights) {
			total = Apply(los.Adjustment, total)
		}
	}

	m, found, err = e.inv.ResolveModifier(fid, iid, inventory.ModifierOccupancy)
	if nil != err {
		return nil, err
	}
	if found {
		occupancy, ok := m.(*inventory.OccupancyModifier)
		if !ok {
			return nil, fault.ErrInvalidModifier
		}
		total = e.occupancy(occupancy, ask, total)
	}

	return total, nil
}

func (e *Engine) dayOfWeek(fid inventory.FacilityID, iid inventory.ItemID) (*inventory.DayOfWeekModifier, error) {
	m, found, err := e.inv.ResolveModifier(fid, iid, inventory.ModifierDayOfWeek)
	if nil != err || !found {
		return nil, err
	}
	dow, ok := m.(*inventory.DayOfWeekModifier)
	if !ok {
		return nil, fault.ErrInvalidModifier
	}
	return dow, nil
}

// Apply - a new value from price and an adjustment, price is not modified
func Apply(adjustment inventory.Adjustment, price *big.Int) *big.Int {
	switch a := adjustment.(type) {
	case inventory.Fixed:
		return new(big.Int).Set(a.Value)
	case inventory.Ratio:
		v := new(big.Int).Mul(price, a.P)
		return v.Div(v, a.Q)
	default:
		return new(big.Int).Set(price)
	}
}

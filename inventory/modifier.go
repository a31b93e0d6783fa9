// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"math/big"
	"time"

	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/fault"
)

// Adjustment - a price transformation, either Fixed or Ratio
type Adjustment interface {
	isAdjustment()
}

// Fixed - replace the running price
type Fixed struct {
	Value *big.Int
}

// Ratio - running price * P / Q, floor division
type Ratio struct {
	P *big.Int
	Q *big.Int
}

func (Fixed) isAdjustment() {}
func (Ratio) isAdjustment() {}

// ModifierKind - which modifier; at most one of each kind resolves
type ModifierKind string

// modifier kinds
const (
	ModifierDayOfWeek    ModifierKind = "day_of_week"
	ModifierLengthOfStay ModifierKind = "length_of_stay"
	ModifierOccupancy    ModifierKind = "occupancy"
)

// Modifier - one of DayOfWeekModifier, LengthOfStayModifier or
// OccupancyModifier
type Modifier interface {
	Kind() ModifierKind
}

// DayOfWeekModifier - adjustment per weekday, weekdays without an
// entry are left unchanged
type DayOfWeekModifier struct {
	Days map[time.Weekday]Adjustment
}

// LengthOfStayModifier - adjustment of the stay total when the number
// of nights satisfies Condition against Nights
type LengthOfStayModifier struct {
	Condition  Condition
	Nights     uint32
	Adjustment Adjustment
}

// OccupancyModifier - stored and resolved but not part of pricing
type OccupancyModifier struct {
	Adjustment Adjustment
}

// Kind - modifier kind
func (*DayOfWeekModifier) Kind() ModifierKind    { return ModifierDayOfWeek }
func (*LengthOfStayModifier) Kind() ModifierKind { return ModifierLengthOfStay }
func (*OccupancyModifier) Kind() ModifierKind    { return ModifierOccupancy }

// Condition - comparison of nights against a length of stay
type Condition string

// conditions
const (
	LessThan       Condition = "lt"
	LessOrEqual    Condition = "lte"
	Equal          Condition = "eq"
	GreaterOrEqual Condition = "gte"
	GreaterThan    Condition = "gt"
)

// Holds - nights <condition> los
func (c Condition) Holds(nights uint32, los uint32) bool {
	switch c {
	case LessThan:
		return nights < los
	case LessOrEqual:
		return nights <= los
	case Equal:
		return nights == los
	case GreaterOrEqual:
		return nights >= los
	case GreaterThan:
		return nights > los
	}
	return false
}

func (c Condition) valid() bool {
	switch c {
	case LessThan, LessOrEqual, Equal, GreaterOrEqual, GreaterThan:
		return true
	}
	return false
}

// stored form
type adjustmentRecord struct {
	Fixed string `cbor:"fixed,omitempty"`
	P     string `cbor:"p,omitempty"`
	Q     string `cbor:"q,omitempty"`
}

type modifierRecord struct {
	Kind       ModifierKind             `cbor:"kind"`
	Days       map[int]adjustmentRecord `cbor:"days,omitempty"`
	Condition  Condition                `cbor:"condition,omitempty"`
	Nights     uint32                   `cbor:"nights,omitempty"`
	Adjustment *adjustmentRecord        `cbor:"adjustment,omitempty"`
}

// PutModifier - set the modifier of its kind for an item (or FacilityLevel)
func (inv *Inventory) PutModifier(fid FacilityID, iid ItemID, m Modifier) error {
	record := modifierRecord{
		Kind: m.Kind(),
	}
	var err error

	switch tm := m.(type) {
	case *DayOfWeekModifier:
		record.Days = make(map[int]adjustmentRecord, len(tm.Days))
		for day, a := range tm.Days {
			if day < time.Sunday || day > time.Saturday {
				return fault.ErrInvalidModifier
			}
			r, err := packAdjustment(a)
			if nil != err {
				return err
			}
			record.Days[int(day)] = *r
		}
	case *LengthOfStayModifier:
		if !tm.Condition.valid() {
			return fault.ErrInvalidModifier
		}
		record.Condition = tm.Condition
		record.Nights = tm.Nights
		record.Adjustment, err = packAdjustment(tm.Adjustment)
	case *OccupancyModifier:
		record.Adjustment, err = packAdjustment(tm.Adjustment)
	default:
		return fault.ErrInvalidModifier
	}
	if nil != err {
		return err
	}

	packed, err := codec.Marshal(record)
	if nil != err {
		return err
	}
	return inv.store.Pool.Modifiers.Put(itemKey(fid, iid, []byte(m.Kind())), packed)
}

// Modifier - the modifier of a kind stored at exactly this level
func (inv *Inventory) Modifier(fid FacilityID, iid ItemID, kind ModifierKind) (Modifier, bool, error) {
	packed, err := inv.store.Pool.Modifiers.Get(itemKey(fid, iid, []byte(kind)))
	if fault.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}

	var record modifierRecord
	if err := codec.Unmarshal(packed, &record); nil != err || record.Kind != kind {
		return nil, false, fault.ErrInvalidRecord
	}

	switch kind {
	case ModifierDayOfWeek:
		m := &DayOfWeekModifier{
			Days: make(map[time.Weekday]Adjustment, len(record.Days)),
		}
		for day, r := range record.Days {
			a, err := unpackAdjustment(&r)
			if nil != err {
				return nil, false, err
			}
			m.Days[time.Weekday(day)] = a
		}
		return m, true, nil
	case ModifierLengthOfStay:
		a, err := unpackAdjustment(record.Adjustment)
		if nil != err {
			return nil, false, err
		}
		return &LengthOfStayModifier{Condition: record.Condition, Nights: record.Nights, Adjustment: a}, true, nil
	case ModifierOccupancy:
		a, err := unpackAdjustment(record.Adjustment)
		if nil != err {
			return nil, false, err
		}
		return &OccupancyModifier{Adjustment: a}, true, nil
	}
	return nil, false, fault.ErrInvalidModifier
}

func packAdjustment(a Adjustment) (*adjustmentRecord, error) {
	switch ta := a.(type) {
	case Fixed:
		if nil == ta.Value || ta.Value.Sign() < 0 {
			return nil, fault.ErrInvalidModifier
		}
		return &adjustmentRecord{Fixed: ta.Value.String()}, nil
	case Ratio:
		if nil == ta.P || nil == ta.Q || ta.P.Sign() < 0 || ta.Q.Sign() <= 0 {
			return nil, fault.ErrInvalidRatio
		}
		return &adjustmentRecord{P: ta.P.String(), Q: ta.Q.String()}, nil
	}
	return nil, fault.ErrInvalidModifier
}

func unpackAdjustment(r *adjustmentRecord) (Adjustment, error) {
	if nil == r {
		return nil, fault.ErrInvalidRecord
	}
	if "" != r.Fixed {
		v, ok := new(big.Int).SetString(r.Fixed, 10)
		if !ok {
			return nil, fault.ErrInvalidRecord
		}
		return Fixed{Value: v}, nil
	}
	p, okP := new(big.Int).SetString(r.P, 10)
	q, okQ := new(big.Int).SetString(r.Q, 10)
	if !okP || !okQ || 0 == q.Sign() {
		return nil, fault.ErrInvalidRecord
	}
	return Ratio{P: p, Q: q}, nil
}

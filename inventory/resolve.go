// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"math/big"
)

// a lookup stores its value through a closure and reports whether it
// found one
type lookup func() (bool, error)

// try each lookup in turn, the first hit wins
func cascade(lookups ...lookup) (bool, error) {
	for _, l := range lookups {
		found, err := l()
		if nil != err {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// ResolveRate - base price of an item for one night
//
// order: item(date), facility(date), item(default), facility(default)
func (inv *Inventory) ResolveRate(fid FacilityID, iid ItemID, date Date) (*big.Int, bool, error) {
	var rate *big.Int
	from := func(level ItemID, key string) lookup {
		return func() (bool, error) {
			r, found, err := inv.Rate(fid, level, key)
			rate = r
			return found, err
		}
	}

	day := date.String()
	found, err := cascade(
		from(iid, day),
		from(FacilityLevel, day),
		from(iid, DefaultKey),
		from(FacilityLevel, DefaultKey),
	)
	return rate, found, err
}

// ResolveModifier - item modifier of a kind, else the facility one
func (inv *Inventory) ResolveModifier(fid FacilityID, iid ItemID, kind ModifierKind) (Modifier, bool, error) {
	var modifier Modifier
	from := func(level ItemID) lookup {
		return func() (bool, error) {
			m, found, err := inv.Modifier(fid, level, kind)
			modifier = m
			return found, err
		}
	}
	found, err := cascade(from(iid), from(FacilityLevel))
	return modifier, found, err
}

// ResolveRule - item rule of a kind, else the facility one
func (inv *Inventory) ResolveRule(fid FacilityID, iid ItemID, kind RuleKind) (Rule, bool, error) {
	var rule Rule
	from := func(level ItemID) lookup {
		return func() (bool, error) {
			r, found, err := inv.Rule(fid, level, kind)
			rule = r
			return found, err
		}
	}
	found, err := cascade(from(iid), from(FacilityLevel))
	return rule, found, err
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"encoding/binary"
	"math/big"

	"github.com/stayd-io/stayd/fault"
)

// validate a rate or availability key: "default" or YYYY-MM-DD
func checkDateKey(key string) error {
	if DefaultKey == key {
		return nil
	}
	_, err := ParseDate(key)
	return err
}

// PutRate - set the base price for an item (or FacilityLevel) under
// "default" or a date key
func (inv *Inventory) PutRate(fid FacilityID, iid ItemID, key string, value *big.Int) error {
	if err := checkDateKey(key); nil != err {
		return err
	}
	if nil == value || value.Sign() < 0 {
		return fault.ErrInvalidRecord
	}
	return inv.store.Pool.Rates.Put(itemKey(fid, iid, []byte(key)), []byte(value.String()))
}

// Rate - the price stored exactly under key
func (inv *Inventory) Rate(fid FacilityID, iid ItemID, key string) (*big.Int, bool, error) {
	packed, err := inv.store.Pool.Rates.Get(itemKey(fid, iid, []byte(key)))
	if fault.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}
	value, ok := new(big.Int).SetString(string(packed), 10)
	if !ok {
		return nil, false, fault.ErrInvalidRecord
	}
	return value, true, nil
}

// PutAvailability - set the number of spaces of an item under
// "default" or a date key
func (inv *Inventory) PutAvailability(fid FacilityID, iid ItemID, key string, numSpaces uint32) error {
	if err := checkDateKey(key); nil != err {
		return err
	}
	return inv.store.Pool.Availability.Put(itemKey(fid, iid, []byte(key)), packUint32(numSpaces))
}

// Availability - the number of spaces stored exactly under key
func (inv *Inventory) Availability(fid FacilityID, iid ItemID, key string) (uint32, bool, error) {
	return getUint32(inv.store.Pool.Availability.Get(itemKey(fid, iid, []byte(key))))
}

// EffectiveAvailability - date specific availability, else default;
// found is false when neither exists
func (inv *Inventory) EffectiveAvailability(fid FacilityID, iid ItemID, date Date) (uint32, bool, error) {
	n, found, err := inv.Availability(fid, iid, date.String())
	if nil != err || found {
		return n, found, err
	}
	return inv.Availability(fid, iid, DefaultKey)
}

// Booked - number of spaces of an item committed on a date
func (inv *Inventory) Booked(fid FacilityID, iid ItemID, date Date) (uint32, error) {
	n, _, err := getUint32(inv.store.Pool.Booked.Get(itemKey(fid, iid, []byte(date.String()))))
	return n, err
}

func packUint32(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}

func getUint32(packed []byte, err error) (uint32, bool, error) {
	if fault.ErrNotFound == err {
		return 0, false, nil
	} else if nil != err {
		return 0, false, err
	}
	if 4 != len(packed) {
		return 0, false, fault.ErrInvalidRecord
	}
	return binary.BigEndian.Uint32(packed), true, nil
}

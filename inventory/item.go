// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/fault"
)

// ItemType - discriminator for items
type ItemType string

// item types
const (
	ItemTypeSpace ItemType = "space"
	ItemTypeOther ItemType = "other"
)

// Item - a bookable unit of a facility
type Item struct {
	ID           ItemID   `cbor:"id"`
	Name         string   `cbor:"name"`
	Type         ItemType `cbor:"type"`
	MaxAdults    uint32   `cbor:"max_adults"`
	MaxChildren  uint32   `cbor:"max_children"`
	MaxOccupancy uint32   `cbor:"max_occupancy"`
}

// IsSpace - blank type counts as a space
func (item *Item) IsSpace() bool {
	return ItemTypeOther != item.Type
}

// PutItem - create or replace item metadata
func (inv *Inventory) PutItem(fid FacilityID, item *Item) error {
	packed, err := codec.Marshal(item)
	if nil != err {
		return err
	}
	return inv.store.Pool.Items.Put(itemKey(fid, item.ID), packed)
}

// Item - read item metadata
func (inv *Inventory) Item(fid FacilityID, iid ItemID) (*Item, error) {
	packed, err := inv.store.Pool.Items.Get(itemKey(fid, iid))
	if fault.ErrNotFound == err {
		return nil, fault.ErrItemNotFound
	} else if nil != err {
		return nil, err
	}
	item := &Item{}
	if err := codec.Unmarshal(packed, item); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return item, nil
}

// Items - every item of a facility in id order
func (inv *Inventory) Items(fid FacilityID) ([]*Item, error) {
	items := make([]*Item, 0, 8)
	err := inv.store.Pool.Items.Iterate(fid[:], func(key []byte, value []byte) error {
		item := &Item{}
		if err := codec.Unmarshal(value, item); nil != err {
			return fault.ErrInvalidRecord
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

// Term - a mandatory term attached to every bid of a facility
type Term struct {
	Term    [IDLength]byte `cbor:"term"`
	Impl    [20]byte       `cbor:"impl"` // contract address implementing the term
	Payload []byte         `cbor:"payload"`
}

// PutTerm - add or replace a facility term
func (inv *Inventory) PutTerm(fid FacilityID, term *Term) error {
	packed, err := codec.Marshal(term)
	if nil != err {
		return err
	}
	return inv.store.Pool.Terms.Put(facilityKey(fid, term.Term[:]), packed)
}

// Terms - all facility terms in term order
func (inv *Inventory) Terms(fid FacilityID) ([]*Term, error) {
	terms := make([]*Term, 0, 4)
	err := inv.store.Pool.Terms.Iterate(facilityKey(fid), func(key []byte, value []byte) error {
		term := &Term{}
		if err := codec.Unmarshal(value, term); nil != err {
			return fault.ErrInvalidRecord
		}
		terms = append(terms, term)
		return nil
	})
	return terms, err
}

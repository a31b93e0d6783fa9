// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package inventory - typed access to the facilities, items and the
// pricing, policy and occupancy data held in the inventory store
//
// Values that exist at both item and facility level are read through
// resolvers that try the item first and fall back to the facility.
// A miss is reported as found == false, never as an error.
package inventory

import (
	"encoding/hex"
	"strings"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/storage"
)

// IDLength - bytes in a facility, item or term identifier
const IDLength = 32

// FacilityID - globally unique facility identifier
type FacilityID [IDLength]byte

// ItemID - item identifier, unique within its facility
type ItemID [IDLength]byte

// FacilityLevel - the item id under which facility wide values are kept
var FacilityLevel ItemID

// Inventory - accessors over one store
type Inventory struct {
	store *storage.Store
}

// New - wrap a store
func New(store *storage.Store) *Inventory {
	return &Inventory{
		store: store,
	}
}

// Store - the underlying store
func (inv *Inventory) Store() *storage.Store {
	return inv.store
}

// String - 0x prefixed hex
func (id FacilityID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// String - 0x prefixed hex
func (id ItemID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// ParseFacilityID - from hex with or without 0x prefix
func ParseFacilityID(s string) (FacilityID, error) {
	var id FacilityID
	err := parseID(s, id[:])
	return id, err
}

// ParseItemID - from hex with or without 0x prefix
func ParseItemID(s string) (ItemID, error) {
	var id ItemID
	err := parseID(s, id[:])
	return id, err
}

func parseID(s string, id []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if nil != err || IDLength != len(b) {
		return fault.ErrInvalidIdentifier
	}
	copy(id, b)
	return nil
}

// keys for the per facility and per item namespaces
func facilityKey(fid FacilityID, sub ...[]byte) []byte {
	return storage.Key(append([][]byte{fid[:], FacilityLevel[:]}, sub...)...)
}

func itemKey(fid FacilityID, iid ItemID, sub ...[]byte) []byte {
	return storage.Key(append([][]byte{fid[:], iid[:]}, sub...)...)
}

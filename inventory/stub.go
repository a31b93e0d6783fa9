// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"sort"

	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/storage"
)

// Stub - payload of a committed booking
func (inv *Inventory) Stub(fid FacilityID, bookingID string) ([]byte, bool, error) {
	payload, err := inv.store.Pool.Stubs.Get(facilityKey(fid, []byte(bookingID)))
	if fault.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}
	return payload, true, nil
}

// HasStub - booking id already used
func (inv *Inventory) HasStub(fid FacilityID, bookingID string) (bool, error) {
	return inv.store.Pool.Stubs.Has(facilityKey(fid, []byte(bookingID)))
}

// StubIDs - bookings of the facility that occupy a date
func (inv *Inventory) StubIDs(fid FacilityID, date Date) ([]string, error) {
	return getIDs(inv.store.Pool.StubDates.Get(facilityKey(fid, []byte(date.String()))))
}

// ItemStubIDs - bookings of one item that occupy a date
func (inv *Inventory) ItemStubIDs(fid FacilityID, iid ItemID, date Date) ([]string, error) {
	return getIDs(inv.store.Pool.ItemStubDates.Get(itemKey(fid, iid, []byte(date.String()))))
}

// StubWriter - stages booking writes in a batch so they land together
type StubWriter struct {
	inv   *Inventory
	batch *storage.Batch
}

// NewStubWriter - start staging
func (inv *Inventory) NewStubWriter() *StubWriter {
	return &StubWriter{
		inv:   inv,
		batch: inv.store.NewBatch(),
	}
}

// PutStub - stage the booking payload
func (w *StubWriter) PutStub(fid FacilityID, bookingID string, payload []byte) {
	w.batch.Put(w.inv.store.Pool.Stubs, facilityKey(fid, []byte(bookingID)), payload)
}

// PutStubIDs - stage the facility wide index for a date
func (w *StubWriter) PutStubIDs(fid FacilityID, date Date, ids []string) error {
	packed, err := packIDs(ids)
	if nil != err {
		return err
	}
	w.batch.Put(w.inv.store.Pool.StubDates, facilityKey(fid, []byte(date.String())), packed)
	return nil
}

// PutItemStubIDs - stage the item index for a date
func (w *StubWriter) PutItemStubIDs(fid FacilityID, iid ItemID, date Date, ids []string) error {
	packed, err := packIDs(ids)
	if nil != err {
		return err
	}
	w.batch.Put(w.inv.store.Pool.ItemStubDates, itemKey(fid, iid, []byte(date.String())), packed)
	return nil
}

// PutBooked - stage the booked counter of an item for a date
func (w *StubWriter) PutBooked(fid FacilityID, iid ItemID, date Date, n uint32) {
	w.batch.Put(w.inv.store.Pool.Booked, itemKey(fid, iid, []byte(date.String())), packUint32(n))
}

// Commit - write everything staged or nothing
func (w *StubWriter) Commit() error {
	return w.batch.Commit()
}

// AddID - insert into a sorted id set
func AddID(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func packIDs(ids []string) ([]byte, error) {
	return codec.Marshal(ids)
}

func getIDs(packed []byte, err error) ([]string, error) {
	if fault.ErrNotFound == err {
		return []string{}, nil
	} else if nil != err {
		return nil, err
	}
	ids := []string{}
	if err := codec.Unmarshal(packed, &ids); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return ids, nil
}

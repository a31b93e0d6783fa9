// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package booking - commit an accepted bid as a stub
//
// a commit re-checks capacity for every night of the stay and then
// writes the stub, its date indices and the booked counters in a
// single batch. The check and the write for an item are serialised by
// an item lock; the facility wide date index is serialised by an index
// lock which is only ever taken while holding an item lock.
package booking

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/counter"
	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/search"
	"github.com/stayd-io/stayd/typeddata"
)

// number of lock shards must be a power of 2
// and mask is the corresponding bit mask
const (
	shards = 16         // maximum value: 256
	mask   = shards - 1 // bit mask
)

// Service - booking commit
type Service struct {
	inv    *inventory.Inventory
	ledger *ledger.Ledger
	now    func() time.Time
	log    *logger.L

	items   [shards]sync.Mutex
	indices [shards]sync.Mutex

	committed counter.Counter
	lost      counter.Counter
}

// New - booking service, nil now means time.Now
func New(inv *inventory.Inventory, l *ledger.Ledger, now func() time.Time) *Service {
	if nil == now {
		now = time.Now
	}
	return &Service{
		inv:    inv,
		ledger: l,
		now:    now,
		log:    logger.New("booking"),
	}
}

func (s *Service) itemLock(fid inventory.FacilityID, iid inventory.ItemID) *sync.Mutex {
	h := typeddata.Keccak256(fid[:], iid[:])
	return &s.items[h[0]&mask]
}

func (s *Service) indexLock(fid inventory.FacilityID) *sync.Mutex {
	h := typeddata.Keccak256(fid[:])
	return &s.indices[h[0]&mask]
}

// Commit - book the space of a ledger bid under bookingID
//
// errors: ErrDuplicateBooking when bookingID exists, ErrBidNotFound for
// an unknown or expired bid, ErrLostRace when capacity is gone
func (s *Service) Commit(fid inventory.FacilityID, bookingID string, bidHash typeddata.Hash, payload []byte) error {
	if "" == bookingID {
		return fault.ErrInvalidIdentifier
	}

	exists, err := s.inv.HasStub(fid, bookingID)
	if nil != err {
		return err
	}
	if exists {
		return fault.ErrDuplicateBooking
	}

	entry, err := s.ledger.Get(fid, bidHash)
	if nil != err {
		return err
	}
	if entry.Bid.Expiry < uint64(s.now().Unix()) {
		return fault.ErrBidNotFound
	}

	facility, err := s.inv.Facility(fid)
	if nil != err {
		return err
	}
	checkIn, checkOut, err := entry.Ask.Dates()
	if nil != err {
		return fault.ErrInvalidRecord
	}
	stay, err := facility.Stay(checkIn, checkOut)
	if nil != err {
		return err
	}

	space := entry.SpaceID
	spaces := entry.Ask.NumSpacesReq

	itemLock := s.itemLock(fid, space)
	itemLock.Lock()
	defer itemLock.Unlock()

	ok, err := search.CheckAvailability(s.inv, fid, space, stay.Dates, spaces)
	if nil != err {
		return err
	}
	if !ok {
		s.lost.Increment()
		s.log.Infof("facility: %s  item: %s  booking: %q  lost race", fid, space, bookingID)
		return fault.ErrLostRace
	}

	indexLock := s.indexLock(fid)
	indexLock.Lock()
	defer indexLock.Unlock()

	exists, err = s.inv.HasStub(fid, bookingID)
	if nil != err {
		return err
	}
	if exists {
		return fault.ErrDuplicateBooking
	}

	w := s.inv.NewStubWriter()
	w.PutStub(fid, bookingID, payload)
	for _, date := range stay.Dates {
		ids, err := s.inv.StubIDs(fid, date)
		if nil != err {
			return err
		}
		if err := w.PutStubIDs(fid, date, inventory.AddID(ids, bookingID)); nil != err {
			return err
		}

		ids, err = s.inv.ItemStubIDs(fid, space, date)
		if nil != err {
			return err
		}
		if err := w.PutItemStubIDs(fid, space, date, inventory.AddID(ids, bookingID)); nil != err {
			return err
		}

		booked, err := s.inv.Booked(fid, space, date)
		if nil != err {
			return err
		}
		w.PutBooked(fid, space, date, booked+spaces)
	}
	if err := w.Commit(); nil != err {
		return err
	}

	s.committed.Increment()
	s.log.Infof("facility: %s  item: %s  booking: %q  nights: %d", fid, space, bookingID, stay.Nights)
	return nil
}

// Stub - payload of a booking
func (s *Service) Stub(fid inventory.FacilityID, bookingID string) ([]byte, error) {
	payload, found, err := s.inv.Stub(fid, bookingID)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrNotFound
	}
	return payload, nil
}

// Stubs - booking ids of a facility staying on a date
func (s *Service) Stubs(fid inventory.FacilityID, date inventory.Date) ([]string, error) {
	return s.inv.StubIDs(fid, date)
}

// ItemStubs - booking ids of one item on a date
func (s *Service) ItemStubs(fid inventory.FacilityID, iid inventory.ItemID, date inventory.Date) ([]string, error) {
	return s.inv.ItemStubIDs(fid, iid, date)
}

// Statistics - commits and lost races since start
func (s *Service) Statistics() (committed uint64, lost uint64) {
	return s.committed.Uint64(), s.lost.Uint64()
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package booking_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stayd-io/stayd/booking"
	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/typeddata"
)

var (
	fid   = inventory.FacilityID{0x0f}
	space inventory.ItemID
	now   = time.Unix(1580000000, 0)
)

func init() {
	for i := range space {
		space[i] = 0x03
	}
}

func clock() time.Time {
	return now
}

func date(s string) inventory.Date {
	d, err := inventory.ParseDate(s)
	if nil != err {
		panic(err)
	}
	return d
}

// facility with one space of the given capacity and one recorded bid
// for it covering 2020-03-02 and 2020-03-03
func prepare(t *testing.T, capacity uint32) (*inventory.Inventory, *booking.Service, typeddata.Hash, func()) {
	inv, done := setup(t)

	assert.Nil(t, inv.PutFacility(&inventory.Facility{ID: fid}), "facility")
	assert.Nil(t, inv.PutItem(fid, &inventory.Item{ID: space, MaxAdults: 2}), "item")
	assert.Nil(t, inv.PutAvailability(fid, space, inventory.DefaultKey, capacity), "availability")

	l := ledger.New(inv)
	hash, err := l.Record(fid, testAsk(), testBid(fid, 0x03, uint64(now.Unix()+1200)))
	assert.Nil(t, err, "record bid")

	return inv, booking.New(inv, l, clock), hash, done
}

func TestCommit(t *testing.T) {
	inv, s, hash, done := prepare(t, 2)
	defer done()

	err := s.Commit(fid, "booking-1", hash, []byte("stub data"))
	assert.Nil(t, err, "commit")

	payload, err := s.Stub(fid, "booking-1")
	assert.Nil(t, err, "stub")
	assert.Equal(t, []byte("stub data"), payload, "payload")

	for _, d := range []string{"2020-03-02", "2020-03-03"} {
		ids, err := s.Stubs(fid, date(d))
		assert.Nil(t, err, "stubs %s", d)
		assert.Equal(t, []string{"booking-1"}, ids, "facility index %s", d)

		ids, err = s.ItemStubs(fid, space, date(d))
		assert.Nil(t, err, "item stubs %s", d)
		assert.Equal(t, []string{"booking-1"}, ids, "item index %s", d)

		booked, err := inv.Booked(fid, space, date(d))
		assert.Nil(t, err, "booked %s", d)
		assert.Equal(t, uint32(1), booked, "counter %s", d)
	}

	ids, err := s.Stubs(fid, date("2020-03-04"))
	assert.Nil(t, err, "check out day")
	assert.Equal(t, 0, len(ids), "check out night not occupied")

	assert.Nil(t, s.Commit(fid, "booking-0", hash, nil), "second commit")
	ids, _ = s.Stubs(fid, date("2020-03-02"))
	assert.Equal(t, []string{"booking-0", "booking-1"}, ids, "sorted index")

	committed, lost := s.Statistics()
	assert.Equal(t, uint64(2), committed, "committed")
	assert.Equal(t, uint64(0), lost, "lost")
}

func TestCommitDuplicate(t *testing.T) {
	inv, s, hash, done := prepare(t, 5)
	defer done()

	assert.Nil(t, s.Commit(fid, "booking-1", hash, []byte("first")), "commit")
	err := s.Commit(fid, "booking-1", hash, []byte("second"))
	assert.Equal(t, fault.ErrDuplicateBooking, err, "duplicate")
	assert.True(t, fault.IsErrExists(err), "exists class")

	payload, _ := s.Stub(fid, "booking-1")
	assert.Equal(t, []byte("first"), payload, "first payload kept")

	booked, _ := inv.Booked(fid, space, date("2020-03-02"))
	assert.Equal(t, uint32(1), booked, "counted once")
}

func TestCommitUnknownBid(t *testing.T) {
	_, s, _, done := prepare(t, 1)
	defer done()

	err := s.Commit(fid, "booking-1", typeddata.Hash{0xaa}, nil)
	assert.Equal(t, fault.ErrBidNotFound, err, "unknown bid")

	err = s.Commit(fid, "", typeddata.Hash{0xaa}, nil)
	assert.Equal(t, fault.ErrInvalidIdentifier, err, "blank booking id")

	_, err = s.Stub(fid, "booking-1")
	assert.Equal(t, fault.ErrNotFound, err, "no stub")
}

func TestCommitExpiredBid(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutFacility(&inventory.Facility{ID: fid}), "facility")
	l := ledger.New(inv)
	hash, err := l.Record(fid, testAsk(), testBid(fid, 0x03, uint64(now.Unix()-1)))
	assert.Nil(t, err, "record")

	err = booking.New(inv, l, clock).Commit(fid, "booking-1", hash, nil)
	assert.Equal(t, fault.ErrBidNotFound, err, "expired bid")
}

func TestCommitLostRace(t *testing.T) {
	inv, s, hash, done := prepare(t, 1)
	defer done()

	const racers = 8
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Commit(fid, fmt.Sprintf("booking-%d", i), hash, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		if nil == err {
			succeeded += 1
			continue
		}
		assert.Equal(t, fault.ErrLostRace, err, "racer %d", i)
		assert.True(t, fault.IsErrConflict(err), "conflict class")
	}
	assert.Equal(t, 1, succeeded, "exactly one winner")

	booked, err := inv.Booked(fid, space, date("2020-03-02"))
	assert.Nil(t, err, "booked")
	assert.Equal(t, uint32(1), booked, "booked equals availability")

	_, lost := s.Statistics()
	assert.Equal(t, uint64(racers-1), lost, "lost races counted")
}

func TestCommitNeverExceedsCapacity(t *testing.T) {
	inv, s, hash, done := prepare(t, 3)
	defer done()

	// one night is tighter than the default
	assert.Nil(t, inv.PutAvailability(fid, space, "2020-03-03", 2), "date availability")

	var wg sync.WaitGroup
	for i := 0; i < 10; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Commit(fid, fmt.Sprintf("booking-%02d", i), hash, nil)
		}(i)
	}
	wg.Wait()

	for _, d := range []string{"2020-03-02", "2020-03-03"} {
		available, _, _ := inv.EffectiveAvailability(fid, space, date(d))
		booked, _ := inv.Booked(fid, space, date(d))
		assert.True(t, booked <= available, "%s: booked %d of %d", d, booked, available)
	}

	booked, _ := inv.Booked(fid, space, date("2020-03-02"))
	assert.Equal(t, uint32(2), booked, "limited by the tightest night")

	ids, _ := s.Stubs(fid, date("2020-03-03"))
	assert.Equal(t, 2, len(ids), "index matches counter")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quote_test

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/quote"
	"github.com/stayd-io/stayd/storage"
)

var (
	fid = inventory.FacilityID{0x0f}
	iid = inventory.ItemID{0x01}
)

func setup(t *testing.T) (*inventory.Inventory, func()) {
	s, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return inventory.New(s), s.Close
}

// 2020-03-02 is a Monday
func ask(checkIn uint32, checkOut uint32) *message.Ask {
	return &message.Ask{
		Salt:         bytes.Repeat([]byte{1}, message.SaltLength),
		CheckIn:      &message.Date{Yyyy: 2020, Mm: 3, Dd: checkIn},
		CheckOut:     &message.Date{Yyyy: 2020, Mm: 3, Dd: checkOut},
		NumPaxAdult:  2,
		NumSpacesReq: 1,
	}
}

func TestQuoteStacking(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutRate(fid, iid, inventory.DefaultKey, big.NewInt(100)), "rate")
	assert.Nil(t, inv.PutModifier(fid, iid, &inventory.DayOfWeekModifier{
		Days: map[time.Weekday]inventory.Adjustment{
			time.Monday:  inventory.Ratio{P: big.NewInt(10), Q: big.NewInt(100)},
			time.Tuesday: inventory.Fixed{Value: big.NewInt(20)},
		},
	}), "day of week")
	assert.Nil(t, inv.PutModifier(fid, iid, &inventory.LengthOfStayModifier{
		Condition:  inventory.GreaterOrEqual,
		Nights:     4,
		Adjustment: inventory.Ratio{P: big.NewInt(90), Q: big.NewInt(100)},
	}), "length of stay")

	e := quote.New(inv)
	price, err := e.Quote(fid, iid, ask(2, 6))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "207", price.String(), "stacked price")

	again, err := e.Quote(fid, iid, ask(2, 6))
	assert.Nil(t, err, "quote again")
	assert.Equal(t, 0, price.Cmp(again), "deterministic")

	// three nights: 10 + 20 + 100, length of stay does not hold
	short, err := e.Quote(fid, iid, ask(2, 5))
	assert.Nil(t, err, "short quote")
	assert.Equal(t, "130", short.String(), "no length of stay discount")
}

func TestQuoteRatePriority(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutRate(fid, inventory.FacilityLevel, inventory.DefaultKey, big.NewInt(50)), "facility default")
	assert.Nil(t, inv.PutRate(fid, inventory.FacilityLevel, "2020-03-03", big.NewInt(70)), "facility date")
	assert.Nil(t, inv.PutRate(fid, iid, "2020-03-04", big.NewInt(90)), "item date")

	price, err := quote.New(inv).Quote(fid, iid, ask(2, 5))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "210", price.String(), "50 + 70 + 90")

	assert.Nil(t, inv.PutRate(fid, iid, inventory.DefaultKey, big.NewInt(60)), "item default")
	price, err = quote.New(inv).Quote(fid, iid, ask(2, 5))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "220", price.String(), "item default beats facility default, facility date beats item default")
}

func TestQuoteMissingRate(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutRate(fid, iid, "2020-03-02", big.NewInt(100)), "one date")

	_, err := quote.New(inv).Quote(fid, iid, ask(2, 4))
	assert.Equal(t, fault.ErrMissingDefaultRate, err, "second night has no rate")
	assert.True(t, fault.IsErrConfiguration(err), "configuration class")
}

func TestQuoteFacilityModifier(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutRate(fid, iid, inventory.DefaultKey, big.NewInt(100)), "rate")
	assert.Nil(t, inv.PutModifier(fid, inventory.FacilityLevel, &inventory.LengthOfStayModifier{
		Condition:  inventory.GreaterThan,
		Nights:     1,
		Adjustment: inventory.Fixed{Value: big.NewInt(150)},
	}), "facility length of stay")

	price, err := quote.New(inv).Quote(fid, iid, ask(2, 4))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "150", price.String(), "facility modifier applies")

	assert.Nil(t, inv.PutModifier(fid, iid, &inventory.LengthOfStayModifier{
		Condition:  inventory.LessThan,
		Nights:     2,
		Adjustment: inventory.Fixed{Value: big.NewInt(1)},
	}), "item length of stay")

	price, err = quote.New(inv).Quote(fid, iid, ask(2, 4))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "200", price.String(), "item modifier shadows facility one and does not hold")
}

func TestQuoteOccupancyHook(t *testing.T) {
	inv, done := setup(t)
	defer done()

	assert.Nil(t, inv.PutRate(fid, iid, inventory.DefaultKey, big.NewInt(100)), "rate")
	assert.Nil(t, inv.PutModifier(fid, iid, &inventory.OccupancyModifier{
		Adjustment: inventory.Fixed{Value: big.NewInt(1)},
	}), "occupancy")

	e := quote.New(inv)
	price, err := e.Quote(fid, iid, ask(2, 3))
	assert.Nil(t, err, "quote")
	assert.Equal(t, "100", price.String(), "occupancy modifier is inert")

	called := false
	e.SetOccupancyHook(func(m *inventory.OccupancyModifier, _ *message.Ask, total *big.Int) *big.Int {
		called = true
		return quote.Apply(m.Adjustment, total)
	})
	price, err = e.Quote(fid, iid, ask(2, 3))
	assert.Nil(t, err, "quote")
	assert.True(t, called, "hook called")
	assert.Equal(t, "1", price.String(), "hook result used")
}

func TestApply(t *testing.T) {
	price := big.NewInt(99)

	fixed := quote.Apply(inventory.Fixed{Value: big.NewInt(7)}, price)
	assert.Equal(t, "7", fixed.String(), "fixed")

	ratio := quote.Apply(inventory.Ratio{P: big.NewInt(1), Q: big.NewInt(2)}, price)
	assert.Equal(t, "49", ratio.String(), "floor division")

	assert.Equal(t, "99", price.String(), "input unchanged")
}

func TestConditions(t *testing.T) {
	items := []struct {
		c      inventory.Condition
		nights uint32
		holds  bool
	}{
		{inventory.LessThan, 3, true},
		{inventory.LessThan, 4, false},
		{inventory.LessOrEqual, 4, true},
		{inventory.LessOrEqual, 5, false},
		{inventory.Equal, 4, true},
		{inventory.Equal, 3, false},
		{inventory.GreaterOrEqual, 4, true},
		{inventory.GreaterOrEqual, 3, false},
		{inventory.GreaterThan, 5, true},
		{inventory.GreaterThan, 4, false},
	}
	for i, item := range items {
		assert.Equal(t, item.holds, item.c.Holds(item.nights, 4), "%d: %s %d", i, item.c, item.nights)
	}
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/storage"
)

const (
	dir = "testing"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(dir)
}

func TestMain(m *testing.M) {
	setupTestLogger()
	rc := m.Run()
	teardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T) (*inventory.Inventory, func()) {
	s, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return inventory.New(s), s.Close
}

func testAsk() *message.Ask {
	return &message.Ask{
		Salt:         bytes.Repeat([]byte{0x5a}, message.SaltLength),
		CheckIn:      &message.Date{Yyyy: 2020, Mm: 3, Dd: 2},
		CheckOut:     &message.Date{Yyyy: 2020, Mm: 3, Dd: 4},
		NumPaxAdult:  1,
		NumSpacesReq: 1,
	}
}

func testBid(fid inventory.FacilityID, item byte, expiry uint64) *message.Bid {
	return &message.Bid{
		Which:  fid[:],
		Params: bytes.Repeat([]byte{0x02}, 32),
		Items:  [][]byte{bytes.Repeat([]byte{item}, 32)},
		Cost: &message.ERC20Native{
			Gem: bytes.Repeat([]byte{0x06}, 20),
			Wad: []byte{0x64},
		},
		Limit:     1,
		Expiry:    expiry,
		Signature: []byte("signature"),
	}
}

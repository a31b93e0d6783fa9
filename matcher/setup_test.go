// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package matcher_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/protobuf/proto"
	"github.com/libp2p/go-libp2p-core/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/matcher"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/p2p"
	"github.com/stayd-io/stayd/storage"
	"github.com/stayd-io/stayd/typeddata"
)

const (
	dir       = "testing"
	namespace = "test"
	latitude  = -33.8568
	longitude = 151.2153
)

var (
	fid       = inventory.FacilityID{0x0f}
	unlocated = inventory.FacilityID{0x1f}
	room      = inventory.ItemID{0x01}

	// 2020-03-02 is a Monday
	now = time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

	domain = &typeddata.Domain{
		Name:    "stayd",
		Version: "1",
		ChainID: big.NewInt(100),
	}
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

func clock() time.Time {
	return now
}

type fixture struct {
	inv       *inventory.Inventory
	ledger    *ledger.Ledger
	transport *p2p.Loopback
	cell      string
	done      func()
}

func setup(t *testing.T) *fixture {
	s, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	inv := inventory.New(s)

	assert.Nil(t, inv.PutFacility(&inventory.Facility{
		ID:       fid,
		Name:     "harbour view",
		Location: &inventory.Location{Latitude: latitude, Longitude: longitude},
	}), "facility")
	assert.Nil(t, inv.PutFacility(&inventory.Facility{ID: unlocated, Name: "no address"}), "facility without location")
	assert.Nil(t, inv.PutItem(fid, &inventory.Item{ID: room, Type: inventory.ItemTypeSpace, MaxAdults: 2}), "room")
	assert.Nil(t, inv.PutRate(fid, room, inventory.DefaultKey, big.NewInt(100)), "rate")
	assert.Nil(t, inv.PutTerm(fid, &inventory.Term{Term: [32]byte{0x07}, Impl: [20]byte{0x08}, Payload: []byte{0x09}}), "term")

	cell, err := geo.CellOf(latitude, longitude, geo.DefaultResolution)
	if nil != err {
		t.Fatalf("cell error: %s", err)
	}

	lb := p2p.NewLoopback("test")
	return &fixture{
		inv:       inv,
		ledger:    ledger.New(inv),
		transport: lb,
		cell:      cell,
		done: func() {
			_ = lb.Close()
			s.Close()
		},
	}
}

func settings() *matcher.Settings {
	return &matcher.Settings{
		Namespace: namespace,
		Domain:    domain,
		Currency:  typeddata.Address{0xee},
	}
}

func keySigner(t *testing.T) *typeddata.KeySigner {
	key, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if nil != err {
		t.Fatalf("generate key error: %s", err)
	}
	signer, err := typeddata.NewKeySigner(key)
	if nil != err {
		t.Fatalf("signer error: %s", err)
	}
	return signer
}

func testAsk(salt byte, adults uint32) *message.Ask {
	return &message.Ask{
		Salt:         bytes.Repeat([]byte{salt}, message.SaltLength),
		CheckIn:      &message.Date{Yyyy: 2020, Mm: 3, Dd: 2},
		CheckOut:     &message.Date{Yyyy: 2020, Mm: 3, Dd: 4},
		NumPaxAdult:  adults,
		NumSpacesReq: 1,
	}
}

func (f *fixture) topic(kind geo.Kind) string {
	return geo.Topic(namespace, f.cell, kind)
}

func (f *fixture) publish(t *testing.T, kind geo.Kind, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Nil(t, f.transport.Publish(ctx, f.topic(kind), data), "publish")
}

func (f *fixture) publishMessage(t *testing.T, kind geo.Kind, m proto.Message) {
	data, err := message.Encode(m)
	if nil != err {
		t.Fatalf("encode error: %s", err)
	}
	f.publish(t, kind, data)
}

func next(t *testing.T, sub p2p.Subscription) *p2p.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := sub.Next(ctx)
	if nil != err {
		t.Fatalf("receive error: %s", err)
	}
	return m
}

// poll a condition that handler goroutines will eventually satisfy
func waitFor(t *testing.T, what string, condition func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for: %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package matcher_test

import (
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/matcher"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/typeddata"
	"github.com/stayd-io/stayd/typeddata/mocks"
)

func TestNewMissingParameters(t *testing.T) {
	f := setup(t)
	defer f.done()

	_, err := matcher.New(settings(), f.transport, f.inv, f.ledger, nil, clock)
	assert.Equal(t, fault.ErrNoSigningKey, err, "no signer")

	_, err = matcher.New(&matcher.Settings{}, f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Equal(t, fault.ErrMissingParameters, err, "no domain")
}

func TestAskAnsweredWithSignedBid(t *testing.T) {
	f := setup(t)
	defer f.done()

	signer := keySigner(t)
	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, signer, clock)
	assert.Nil(t, err, "new")

	bids, err := f.transport.Subscribe(f.topic(geo.KindBid))
	assert.Nil(t, err, "subscribe bids")
	defer bids.Cancel()

	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()
	assert.Equal(t, matcher.Listening, m.State(fid), "state")

	ask := testAsk(0x5a, 1)
	f.publishMessage(t, geo.KindAsk, ask)

	line, err := message.DecodeBidLine(next(t, bids).Data)
	assert.Nil(t, err, "decode bid line")
	assert.Equal(t, ask.Salt, line.Salt, "salt")
	assert.Equal(t, 1, len(line.Bids), "bid count")

	bid := line.Bids[0]
	params, err := message.AskHash(ask)
	assert.Nil(t, err, "ask hash")
	assert.Equal(t, fid[:], bid.Which, "which")
	assert.Equal(t, params[:], bid.Params, "params")
	assert.Equal(t, [][]byte{room[:]}, bid.Items, "items")
	assert.Equal(t, 1, len(bid.Terms), "terms")
	assert.Equal(t, []byte{0x09}, bid.Terms[0].TxPayload, "term payload")
	assert.Equal(t, 0, big.NewInt(200).Cmp(new(big.Int).SetBytes(bid.Cost.Wad)), "two nights at 100")
	assert.Equal(t, uint32(matcher.DefaultLimit), bid.Limit, "limit")
	assert.Equal(t, uint64(now.Add(matcher.DefaultHorizon).Unix()), bid.Expiry, "expiry")

	h, err := message.BidSignatureHash(ask.Salt, bid)
	assert.Nil(t, err, "signature hash")
	ok, err := typeddata.Verify(signer.PublicKey(), domain, h, bid.Signature)
	assert.Nil(t, err, "verify")
	assert.True(t, ok, "signature verifies")

	hash, err := message.BidHash(bid)
	assert.Nil(t, err, "bid hash")
	e, err := f.ledger.Get(fid, hash)
	assert.Nil(t, err, "recorded in ledger")
	assert.Equal(t, room[:], e.SpaceID[:], "space")

	m.Wait()
	stats := m.Statistics()
	assert.Equal(t, uint64(1), stats.Asks, "asks")
	assert.Equal(t, uint64(1), stats.Bids, "bids")
}

func TestAskWithoutMatchPublishesNothing(t *testing.T) {
	f := setup(t)
	defer f.done()

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")
	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	f.publishMessage(t, geo.KindAsk, testAsk(0x01, 5))
	waitFor(t, "ask handled", func() bool { return 1 == m.Statistics().Asks })
	m.Wait()

	entries, err := f.ledger.Entries(fid)
	assert.Nil(t, err, "entries")
	assert.Equal(t, 0, len(entries), "nothing recorded")
	assert.Equal(t, uint64(0), m.Statistics().Bids, "no bids")
}

func TestMalformedAskDropped(t *testing.T) {
	f := setup(t)
	defer f.done()

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")

	bids, err := f.transport.Subscribe(f.topic(geo.KindBid))
	assert.Nil(t, err, "subscribe bids")
	defer bids.Cancel()

	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	f.publish(t, geo.KindAsk, []byte{0xff, 0xff, 0xff})
	invalid := testAsk(0x02, 1)
	invalid.Salt = []byte{0x01}
	f.publishMessage(t, geo.KindAsk, invalid)
	waitFor(t, "malformed asks counted", func() bool { return 2 == m.Statistics().Malformed })

	// the handler survives and answers the next ask
	f.publishMessage(t, geo.KindAsk, testAsk(0x03, 1))
	line, err := message.DecodeBidLine(next(t, bids).Data)
	assert.Nil(t, err, "decode bid line")
	assert.Equal(t, testAsk(0x03, 1).Salt, line.Salt, "salt")
}

func TestRepeatedAskAnsweredOnce(t *testing.T) {
	f := setup(t)
	defer f.done()

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")
	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	ask := testAsk(0x04, 1)
	f.publishMessage(t, geo.KindAsk, ask)
	f.publishMessage(t, geo.KindAsk, ask)
	waitFor(t, "both asks received", func() bool { return 2 == m.Statistics().Asks })
	m.Wait()

	stats := m.Statistics()
	assert.Equal(t, uint64(1), stats.Duplicates, "duplicates")
	assert.Equal(t, uint64(1), stats.Bids, "bids")
}

func TestAskFloodThrottled(t *testing.T) {
	f := setup(t)
	defer f.done()

	s := settings()
	s.AskRate = 0.001
	s.AskBurst = 1
	m, err := matcher.New(s, f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")
	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	for i := byte(1); i <= 3; i += 1 {
		f.publishMessage(t, geo.KindAsk, testAsk(0x10+i, 1))
	}
	waitFor(t, "asks received", func() bool { return 3 == m.Statistics().Asks })
	m.Wait()

	stats := m.Statistics()
	assert.Equal(t, uint64(2), stats.Throttled, "throttled")
	assert.Equal(t, uint64(1), stats.Bids, "bids")
}

func TestSigningFailureDropsAsk(t *testing.T) {
	f := setup(t)
	defer f.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	signer := mocks.NewMockSigner(ctl)
	signer.EXPECT().Sign(domain, gomock.Any()).Return(nil, fault.ErrSigningFailed).Times(1)

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, signer, clock)
	assert.Nil(t, err, "new")
	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	f.publishMessage(t, geo.KindAsk, testAsk(0x20, 1))
	waitFor(t, "failure counted", func() bool { return 1 == m.Statistics().Failures })
	m.Wait()

	entries, err := f.ledger.Entries(fid)
	assert.Nil(t, err, "entries")
	assert.Equal(t, 0, len(entries), "unsigned bid not recorded")
	assert.Equal(t, uint64(0), m.Statistics().Bids, "no bids")
}

func TestPingAnsweredWithPong(t *testing.T) {
	f := setup(t)
	defer f.done()

	signer := keySigner(t)
	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, signer, clock)
	assert.Nil(t, err, "new")

	pongs, err := f.transport.Subscribe(f.topic(geo.KindPong))
	assert.Nil(t, err, "subscribe pongs")
	defer pongs.Cancel()

	assert.Nil(t, m.StartFacility(fid), "start")
	defer m.StopAll()

	f.publishMessage(t, geo.KindPing, &message.Ping{Timestamp: 1234})
	pong, err := message.DecodePong(next(t, pongs).Data)
	assert.Nil(t, err, "decode pong")
	assert.Equal(t, fid[:], pong.Which, "which")
	assert.Equal(t, message.MicroDegrees(latitude), pong.Latitude, "latitude")
	assert.Equal(t, message.MicroDegrees(longitude), pong.Longitude, "longitude")
	assert.Equal(t, uint64(1234), pong.Timestamp, "timestamp from ping")

	h, err := message.PongHash(pong)
	assert.Nil(t, err, "pong hash")
	ok, err := typeddata.Verify(signer.PublicKey(), domain, h, pong.Signature)
	assert.Nil(t, err, "verify")
	assert.True(t, ok, "signature verifies")

	f.publishMessage(t, geo.KindPing, &message.Ping{})
	pong, err = message.DecodePong(next(t, pongs).Data)
	assert.Nil(t, err, "decode pong")
	assert.Equal(t, uint64(now.Unix()), pong.Timestamp, "timestamp from clock")
}

func TestPingWithoutLocationDropped(t *testing.T) {
	f := setup(t)
	defer f.done()

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")

	assert.Equal(t, fault.ErrMissingLocation, m.StartFacility(unlocated), "no location to derive a cell")
	assert.Nil(t, m.Start(unlocated, f.cell), "explicit cell")
	defer m.StopAll()

	f.publishMessage(t, geo.KindPing, &message.Ping{Timestamp: 1})
	waitFor(t, "failure counted", func() bool { return 1 == m.Statistics().Failures })
	assert.Equal(t, uint64(0), m.Statistics().Pongs, "no pong")
}

func TestStartStop(t *testing.T) {
	f := setup(t)
	defer f.done()

	m, err := matcher.New(settings(), f.transport, f.inv, f.ledger, keySigner(t), clock)
	assert.Nil(t, err, "new")

	assert.Equal(t, matcher.Stopped, m.State(fid), "initial state")
	assert.Equal(t, fault.ErrInvalidLocation, m.Start(fid, ""), "blank cell")

	n, err := m.StartAll()
	assert.Nil(t, err, "start all")
	assert.Equal(t, 1, n, "facility without location skipped")
	assert.Equal(t, fault.ErrAlreadyListening, m.StartFacility(fid), "second start")

	assert.Nil(t, m.Start(unlocated, f.cell), "same bucket")
	assert.ElementsMatch(t, []inventory.FacilityID{fid, unlocated}, m.Bucket(f.cell), "bucket")
	assert.Equal(t, 2, f.transport.Subscribers(f.topic(geo.KindAsk)), "ask subscribers")

	assert.Nil(t, m.Stop(fid), "stop")
	assert.Equal(t, matcher.Stopped, m.State(fid), "stopped")
	assert.Equal(t, []inventory.FacilityID{unlocated}, m.Bucket(f.cell), "bucket kept")
	assert.Equal(t, 1, f.transport.Subscribers(f.topic(geo.KindAsk)), "ask subscribers")
	assert.Equal(t, fault.ErrFacilityNotListening, m.Stop(fid), "second stop")

	m.StopAll()
	assert.Equal(t, 0, len(m.Bucket(f.cell)), "bucket removed")
	assert.Equal(t, 0, f.transport.Subscribers(f.topic(geo.KindAsk)), "no ask subscribers")
	assert.Equal(t, 0, f.transport.Subscribers(f.topic(geo.KindPing)), "no ping subscribers")

	assert.Nil(t, m.StartFacility(fid), "restart")
	assert.Equal(t, matcher.Listening, m.State(fid), "listening again")
	m.StopAll()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", matcher.Stopped.String(), "stopped")
	assert.Equal(t, "starting", matcher.Starting.String(), "starting")
	assert.Equal(t, "listening", matcher.Listening.String(), "listening")
}

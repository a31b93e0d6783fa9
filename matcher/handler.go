// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package matcher

import (
	"context"
	"encoding/hex"

	"github.com/patrickmn/go-cache"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/p2p"
	"github.com/stayd-io/stayd/quote"
)

// Quoter - the quote engine, for installing an occupancy hook
func (m *Matcher) Quoter() *quote.Engine {
	return m.quoter
}

// a handler that has dequeued a message completes even if its
// listener is stopped meanwhile
func (m *Matcher) publish(topic string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return m.transport.Publish(ctx, topic, data)
}

func seenKey(fid inventory.FacilityID, salt []byte, params []byte) string {
	return fid.String() + hex.EncodeToString(salt) + hex.EncodeToString(params)
}

func (m *Matcher) handleAsk(fid inventory.FacilityID, l *listener, msg *p2p.Message) {
	m.stats.asks.Increment()

	ask, err := message.DecodeAsk(msg.Data)
	if nil != err {
		m.stats.malformed.Increment()
		m.log.Debugf("facility: %s  ask from: %s  error: %s", fid, msg.From, err)
		return
	}

	params, err := message.AskHash(ask)
	if nil != err {
		m.stats.malformed.Increment()
		m.log.Debugf("facility: %s  ask from: %s  hash error: %s", fid, msg.From, err)
		return
	}

	if !l.limiter.Allow() {
		m.stats.throttled.Increment()
		m.log.Debugf("facility: %s  ask from: %s  throttled", fid, msg.From)
		return
	}

	// gossip redelivers, answer each ask once; the key is released
	// again unless the ask was answered or had no match
	key := seenKey(fid, ask.Salt, params[:])
	if err := m.seen.Add(key, struct{}{}, cache.DefaultExpiration); nil != err {
		m.stats.duplicates.Increment()
		return
	}
	answered := false
	defer func() {
		if !answered {
			m.seen.Delete(key)
		}
	}()

	items, err := m.searcher.Search(fid, ask)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Warnf("facility: %s  search error: %s", fid, err)
		return
	}
	if 0 == len(items) {
		answered = true
		return
	}

	stored, err := m.inv.Terms(fid)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  terms error: %s", fid, err)
		return
	}
	terms := make([]*message.BidTerm, 0, len(stored))
	for _, t := range stored {
		terms = append(terms, &message.BidTerm{
			Term:      append([]byte{}, t.Term[:]...),
			Impl:      append([]byte{}, t.Impl[:]...),
			TxPayload: t.Payload,
		})
	}

	expiry := uint64(m.now().Add(m.settings.Horizon).Unix())

	bids := make([]*message.Bid, 0, len(items))
	for _, iid := range items {
		cost, err := m.quoter.Quote(fid, iid, ask)
		if nil != err {
			m.log.Errorf("facility: %s  item: %s  quote error: %s", fid, iid, err)
			continue
		}

		bid := &message.Bid{
			Which:  append([]byte{}, fid[:]...),
			Params: params.Bytes(),
			Items:  [][]byte{append([]byte{}, iid[:]...)},
			Terms:  terms,
			Cost: &message.ERC20Native{
				Gem: append([]byte{}, m.settings.Currency[:]...),
				Wad: cost.Bytes(),
			},
			Limit:  m.settings.Limit,
			Expiry: expiry,
		}

		h, err := message.BidSignatureHash(ask.Salt, bid)
		if nil != err {
			m.stats.failures.Increment()
			m.log.Errorf("facility: %s  item: %s  bid hash error: %s", fid, iid, err)
			return
		}
		signature, err := m.signer.Sign(m.settings.Domain, h)
		if nil != err {
			m.stats.failures.Increment()
			m.log.Errorf("facility: %s  sign error: %s", fid, err)
			return
		}
		bid.Signature = signature
		bids = append(bids, bid)
	}
	if 0 == len(bids) {
		return
	}

	for _, bid := range bids {
		if _, err := m.ledger.Record(fid, ask, bid); nil != err {
			m.stats.failures.Increment()
			m.log.Errorf("facility: %s  record bid error: %s", fid, err)
			return
		}
	}

	data, err := message.Encode(&message.BidLine{
		Salt: ask.Salt,
		Bids: bids,
	})
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  encode bid line error: %s", fid, err)
		return
	}

	topic := geo.Topic(m.settings.Namespace, l.cell, geo.KindBid)
	if err := m.publish(topic, data); nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  publish: %q  error: %s", fid, topic, err)
		return
	}
	answered = true
	m.stats.bids.Add(uint64(len(bids)))
	m.log.Debugf("facility: %s  bids: %d  salt: %x", fid, len(bids), ask.Salt)
}

func (m *Matcher) handlePing(fid inventory.FacilityID, l *listener, msg *p2p.Message) {
	m.stats.pings.Increment()

	ping, err := message.DecodePing(msg.Data)
	if nil != err {
		m.stats.malformed.Increment()
		m.log.Debugf("facility: %s  ping from: %s  error: %s", fid, msg.From, err)
		return
	}

	f, err := m.inv.Facility(fid)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  read error: %s", fid, err)
		return
	}
	if nil == f.Location {
		m.stats.failures.Increment()
		m.log.Warnf("facility: %s  pong error: %s", fid, fault.ErrMissingLocation)
		return
	}

	timestamp := ping.Timestamp
	if 0 == timestamp {
		timestamp = uint64(m.now().Unix())
	}

	pong := &message.Pong{
		Which:     append([]byte{}, fid[:]...),
		Latitude:  message.MicroDegrees(f.Location.Latitude),
		Longitude: message.MicroDegrees(f.Location.Longitude),
		Timestamp: timestamp,
	}
	h, err := message.PongHash(pong)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  pong hash error: %s", fid, err)
		return
	}
	pong.Signature, err = m.signer.Sign(m.settings.Domain, h)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  sign error: %s", fid, err)
		return
	}

	data, err := message.Encode(pong)
	if nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  encode pong error: %s", fid, err)
		return
	}

	topic := geo.Topic(m.settings.Namespace, l.cell, geo.KindPong)
	if err := m.publish(topic, data); nil != err {
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  publish: %q  error: %s", fid, topic, err)
		return
	}
	m.stats.pongs.Increment()
}

func (m *Matcher) handleAccept(fid inventory.FacilityID, _ *listener, msg *p2p.Message) {
	accept, err := message.DecodeAccept(msg.Data)
	if nil != err {
		m.stats.malformed.Increment()
		m.log.Debugf("facility: %s  accept from: %s  error: %s", fid, msg.From, err)
		return
	}

	// the bucket is shared by every facility in the cell
	if accept.Facility() != fid {
		return
	}
	m.stats.accepts.Increment()

	err = m.booking.Commit(fid, accept.BookingId, accept.Hash(), accept.Payload)
	switch {
	case nil == err:
		m.stats.committed.Increment()
		m.log.Infof("facility: %s  booking: %q  accepted from: %s", fid, accept.BookingId, msg.From)
	case fault.IsErrExists(err), fault.IsErrNotFound(err), fault.IsErrConflict(err), fault.IsErrInvalid(err):
		m.stats.rejected.Increment()
		m.log.Infof("facility: %s  booking: %q  from: %s  rejected: %s", fid, accept.BookingId, msg.From, err)
	default:
		m.stats.failures.Increment()
		m.log.Errorf("facility: %s  booking: %q  commit error: %s", fid, accept.BookingId, err)
	}
}

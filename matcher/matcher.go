// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package matcher - answer asks with signed bids and pings with pongs
//
// each started facility subscribes to the ask, ping and accept topics
// of its geospatial bucket. An accept commits a booking against a bid
// the facility recorded earlier. Every received message is handled on its own
// goroutine so a slow facility never holds up another.
package matcher

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/stayd-io/stayd/booking"
	"github.com/stayd-io/stayd/counter"
	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/p2p"
	"github.com/stayd-io/stayd/quote"
	"github.com/stayd-io/stayd/search"
	"github.com/stayd-io/stayd/typeddata"
)

// defaults
const (
	DefaultNamespace = "stayd"
	DefaultHorizon   = 20 * time.Minute
	DefaultLimit     = 1
)

// bids and pongs outlive the listener that produced them
const publishTimeout = 30 * time.Second

// Settings - matcher parameters
type Settings struct {
	Namespace  string            // topic prefix
	Resolution int               // bucket resolution
	Domain     *typeddata.Domain // signing domain
	Currency   typeddata.Address // token every cost is quoted in
	Horizon    time.Duration     // bid lifetime
	Limit      uint32            // acceptances allowed per bid
	AskRate    float64           // asks per second per facility, zero is unlimited
	AskBurst   int
}

// Statistics - message counts since start
type Statistics struct {
	Asks       uint64
	Malformed  uint64
	Throttled  uint64
	Duplicates uint64
	Bids       uint64
	Pings      uint64
	Pongs      uint64
	Accepts    uint64
	Committed  uint64
	Rejected   uint64
	Failures   uint64
}

type counters struct {
	asks       counter.Counter
	malformed  counter.Counter
	throttled  counter.Counter
	duplicates counter.Counter
	bids       counter.Counter
	pings      counter.Counter
	pongs      counter.Counter
	accepts    counter.Counter
	committed  counter.Counter
	rejected   counter.Counter
	failures   counter.Counter
}

// Matcher - the messaging service of one node
type Matcher struct {
	log       *logger.L
	settings  Settings
	transport p2p.Transport
	inv       *inventory.Inventory
	searcher  *search.Searcher
	quoter    *quote.Engine
	ledger    *ledger.Ledger
	booking   *booking.Service
	signer    typeddata.Signer
	now       func() time.Time

	registry *registry
	seen     *cache.Cache
	handlers sync.WaitGroup
	stats    counters
}

// New - matcher over a transport, nil now means time.Now
func New(settings *Settings, transport p2p.Transport, inv *inventory.Inventory, l *ledger.Ledger, signer typeddata.Signer, now func() time.Time) (*Matcher, error) {
	if nil == settings || nil == settings.Domain || nil == transport || nil == inv || nil == l {
		return nil, fault.ErrMissingParameters
	}
	if nil == signer {
		return nil, fault.ErrNoSigningKey
	}
	if nil == now {
		now = time.Now
	}

	s := *settings
	if "" == s.Namespace {
		s.Namespace = DefaultNamespace
	}
	if 0 == s.Resolution {
		s.Resolution = geo.DefaultResolution
	}
	if s.Horizon <= 0 {
		s.Horizon = DefaultHorizon
	}
	if 0 == s.Limit {
		s.Limit = DefaultLimit
	}
	if s.AskBurst <= 0 {
		s.AskBurst = 1
	}

	return &Matcher{
		log:       logger.New("matcher"),
		settings:  s,
		transport: transport,
		inv:       inv,
		searcher:  search.New(inv, now),
		quoter:    quote.New(inv),
		ledger:    l,
		booking:   booking.New(inv, l, now),
		signer:    signer,
		now:       now,
		registry:  newRegistry(),
		seen:      cache.New(s.Horizon, s.Horizon),
	}, nil
}

func (m *Matcher) limiter() *rate.Limiter {
	if m.settings.AskRate <= 0 {
		return rate.NewLimiter(rate.Inf, m.settings.AskBurst)
	}
	return rate.NewLimiter(rate.Limit(m.settings.AskRate), m.settings.AskBurst)
}

// Booking - the commit service behind accept messages
func (m *Matcher) Booking() *booking.Service {
	return m.booking
}

// Wait - block until every in flight message handler has returned
func (m *Matcher) Wait() {
	m.handlers.Wait()
}

// Statistics - snapshot of the counters
func (m *Matcher) Statistics() Statistics {
	return Statistics{
		Asks:       m.stats.asks.Uint64(),
		Malformed:  m.stats.malformed.Uint64(),
		Throttled:  m.stats.throttled.Uint64(),
		Duplicates: m.stats.duplicates.Uint64(),
		Bids:       m.stats.bids.Uint64(),
		Pings:      m.stats.pings.Uint64(),
		Pongs:      m.stats.pongs.Uint64(),
		Accepts:    m.stats.accepts.Uint64(),
		Committed:  m.stats.committed.Uint64(),
		Rejected:   m.stats.rejected.Uint64(),
		Failures:   m.stats.failures.Uint64(),
	}
}

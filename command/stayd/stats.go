// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/matcher"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

func memstats() {

	log := logger.New("memory")

	for {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		text, err := json.Marshal(m)
		if nil != err {
			log.Errorf("marshal error: %s", err)
		} else {
			log.Infof("stats: %s", text)
		}
		a := m.Alloc / mega
		t := m.TotalAlloc / mega
		s := m.Sys / mega
		log.Warnf("allocated: %d M  cumulative: %d M  OS virtual: %d M", a, t, s)

		time.Sleep(statsDelay)
	}
}

// periodic log of the message counters
type statistics struct {
	matcher *matcher.Matcher
	ledger  *ledger.Ledger
}

func (state *statistics) Run(args interface{}, shutdown <-chan struct{}) {
	log := logger.New("stats")

	delay := time.After(statsDelay)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-delay:
			s := state.matcher.Statistics()
			_, lost := state.matcher.Booking().Statistics()
			log.Infof("asks: %d  malformed: %d  throttled: %d  duplicates: %d  bids: %d  pings: %d  pongs: %d  failures: %d  expired: %d",
				s.Asks, s.Malformed, s.Throttled, s.Duplicates, s.Bids, s.Pings, s.Pongs, s.Failures, state.ledger.Removed())
			log.Infof("accepts: %d  committed: %d  rejected: %d  lost races: %d",
				s.Accepts, s.Committed, s.Rejected, lost)
			delay = time.After(statsDelay)
		}
	}
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// DefaultSweepInterval - time between expiry sweeps
const DefaultSweepInterval = time.Minute

// Expiry - background process sweeping a ledger at a fixed interval
type Expiry struct {
	ledger   *Ledger
	interval time.Duration
	now      func() time.Time
	log      *logger.L
}

// NewExpiry - sweep process, a zero interval uses the default
func NewExpiry(l *Ledger, interval time.Duration, now func() time.Time) *Expiry {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if nil == now {
		now = time.Now
	}
	return &Expiry{
		ledger:   l,
		interval: interval,
		now:      now,
		log:      logger.New("expiry"),
	}
}

// Run - expiry loop
func (state *Expiry) Run(args interface{}, shutdown <-chan struct{}) {
	log := state.log
	log.Infof("starting…  interval: %s", state.interval)

	delay := time.After(state.interval)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-delay:
			n, err := state.ledger.Sweep(state.now())
			if nil != err {
				log.Errorf("sweep error: %s", err)
			} else if n > 0 {
				log.Infof("expired: %d bids", n)
			}
			delay = time.After(state.interval)
		}
	}
	log.Info("stopped")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package matcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/p2p"
)

// State - listening state of a facility
type State int

// listening states
const (
	Stopped State = iota
	Starting
	Listening
)

// String - printable state
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Listening:
		return "listening"
	default:
		return "unknown"
	}
}

type listener struct {
	state   State
	cell    string
	ctx     context.Context
	cancel  context.CancelFunc
	subs    []p2p.Subscription
	limiter *rate.Limiter
	loops   sync.WaitGroup
}

// facility to listener and bucket to facility set, both guarded by one lock
type registry struct {
	sync.Mutex
	facilities map[inventory.FacilityID]*listener
	buckets    map[string]map[inventory.FacilityID]struct{}
}

func newRegistry() *registry {
	return &registry{
		facilities: make(map[inventory.FacilityID]*listener),
		buckets:    make(map[string]map[inventory.FacilityID]struct{}),
	}
}

// must hold lock
func (r *registry) add(fid inventory.FacilityID, l *listener) {
	r.facilities[fid] = l
	b, ok := r.buckets[l.cell]
	if !ok {
		b = make(map[inventory.FacilityID]struct{})
		r.buckets[l.cell] = b
	}
	b[fid] = struct{}{}
}

// must hold lock
func (r *registry) remove(fid inventory.FacilityID) *listener {
	l, ok := r.facilities[fid]
	if !ok {
		return nil
	}
	delete(r.facilities, fid)
	if b, ok := r.buckets[l.cell]; ok {
		delete(b, fid)
		if 0 == len(b) {
			delete(r.buckets, l.cell)
		}
	}
	return l
}

// Start - begin answering asks, pings and accepts for a facility in a bucket
func (m *Matcher) Start(fid inventory.FacilityID, cell string) error {
	if "" == cell {
		return fault.ErrInvalidLocation
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &listener{
		state:   Starting,
		cell:    cell,
		ctx:     ctx,
		cancel:  cancel,
		limiter: m.limiter(),
	}

	r := m.registry
	r.Lock()
	if _, ok := r.facilities[fid]; ok {
		r.Unlock()
		cancel()
		return fault.ErrAlreadyListening
	}
	r.add(fid, l)
	r.Unlock()

	handlers := []struct {
		kind   geo.Kind
		handle func(inventory.FacilityID, *listener, *p2p.Message)
	}{
		{geo.KindAsk, m.handleAsk},
		{geo.KindPing, m.handlePing},
		{geo.KindAccept, m.handleAccept},
	}

	// l.subs is only assigned under the registry lock
	subs := make([]p2p.Subscription, 0, len(handlers))
	for _, h := range handlers {
		topic := geo.Topic(m.settings.Namespace, cell, h.kind)
		sub, err := m.transport.Subscribe(topic)
		if nil != err {
			m.log.Errorf("facility: %s  subscribe: %q  error: %s", fid, topic, err)
			r.Lock()
			if r.facilities[fid] == l {
				r.remove(fid)
			}
			r.Unlock()
			cancel()
			cancelAll(subs)
			return err
		}
		subs = append(subs, sub)
	}

	r.Lock()
	if r.facilities[fid] != l {
		// stopped while subscribing
		r.Unlock()
		cancel()
		cancelAll(subs)
		return fault.ErrFacilityNotListening
	}
	l.subs = subs
	for i, sub := range subs {
		l.loops.Add(1)
		go m.receive(fid, l, sub, handlers[i].handle)
	}
	l.state = Listening
	r.Unlock()

	m.log.Infof("facility: %s  listening in bucket: %s", fid, cell)
	return nil
}

// StartFacility - start a facility in the bucket of its stored location
func (m *Matcher) StartFacility(fid inventory.FacilityID) error {
	f, err := m.inv.Facility(fid)
	if nil != err {
		return err
	}
	if nil == f.Location {
		return fault.ErrMissingLocation
	}
	cell, err := geo.CellOf(f.Location.Latitude, f.Location.Longitude, m.settings.Resolution)
	if nil != err {
		return err
	}
	return m.Start(fid, cell)
}

// StartAll - start every stored facility, returning the number started
//
// a facility that cannot start is logged and skipped
func (m *Matcher) StartAll() (int, error) {
	fids, err := m.inv.Facilities()
	if nil != err {
		return 0, err
	}
	n := 0
	for _, fid := range fids {
		err := m.StartFacility(fid)
		if nil != err {
			m.log.Warnf("facility: %s  not started: %s", fid, err)
			continue
		}
		n += 1
	}
	return n, nil
}

// Stop - cancel the subscriptions of a facility and leave its bucket
func (m *Matcher) Stop(fid inventory.FacilityID) error {
	r := m.registry
	r.Lock()
	l := r.remove(fid)
	if nil != l {
		l.state = Stopped
	}
	r.Unlock()

	if nil == l {
		return fault.ErrFacilityNotListening
	}

	m.shutdown(l)
	m.log.Infof("facility: %s  stopped", fid)
	return nil
}

// StopAll - stop every listening facility
func (m *Matcher) StopAll() {
	r := m.registry
	r.Lock()
	fids := make([]inventory.FacilityID, 0, len(r.facilities))
	for fid := range r.facilities {
		fids = append(fids, fid)
	}
	r.Unlock()

	for _, fid := range fids {
		_ = m.Stop(fid)
	}
}

// State - current state of a facility
func (m *Matcher) State(fid inventory.FacilityID) State {
	r := m.registry
	r.Lock()
	defer r.Unlock()
	l, ok := r.facilities[fid]
	if !ok {
		return Stopped
	}
	return l.state
}

// Bucket - facilities listening in a cell
func (m *Matcher) Bucket(cell string) []inventory.FacilityID {
	r := m.registry
	r.Lock()
	defer r.Unlock()
	b := r.buckets[cell]
	fids := make([]inventory.FacilityID, 0, len(b))
	for fid := range b {
		fids = append(fids, fid)
	}
	return fids
}

func (m *Matcher) shutdown(l *listener) {
	l.cancel()

	m.registry.Lock()
	subs := l.subs
	l.subs = nil
	m.registry.Unlock()

	cancelAll(subs)
	l.loops.Wait()
}

func cancelAll(subs []p2p.Subscription) {
	for _, sub := range subs {
		sub.Cancel()
	}
}

// one goroutine per subscription, one more per message
func (m *Matcher) receive(fid inventory.FacilityID, l *listener, sub p2p.Subscription, handle func(inventory.FacilityID, *listener, *p2p.Message)) {
	defer l.loops.Done()
	for {
		msg, err := sub.Next(l.ctx)
		if nil != err {
			if nil == l.ctx.Err() && err != fault.ErrSubscriptionCancelled {
				m.log.Warnf("facility: %s  receive error: %s", fid, err)
			}
			return
		}
		m.handlers.Add(1)
		go func() {
			defer m.handlers.Done()
			handle(fid, l, msg)
		}()
	}
}

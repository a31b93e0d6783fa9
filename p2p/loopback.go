// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"sync"

	"github.com/stayd-io/stayd/fault"
)

// queue depth of each loopback subscription
const loopbackQueueSize = 256

// Loopback - in process transport, every subscriber of a topic sees
// every message published to it
type Loopback struct {
	sync.Mutex
	name   string
	topics map[string]map[*loopbackSubscription]struct{}
	closed bool
}

// NewLoopback - transport whose messages are sent from name
func NewLoopback(name string) *Loopback {
	return &Loopback{
		name:   name,
		topics: make(map[string]map[*loopbackSubscription]struct{}),
	}
}

// Publish - deliver to every current subscriber of topic, waits for
// room in a subscriber's queue until ctx is done
func (l *Loopback) Publish(ctx context.Context, topic string, data []byte) error {
	l.Lock()
	if l.closed {
		l.Unlock()
		return fault.ErrTransportClosed
	}
	subs := make([]*loopbackSubscription, 0, len(l.topics[topic]))
	for s := range l.topics[topic] {
		subs = append(subs, s)
	}
	l.Unlock()

	for _, s := range subs {
		m := &Message{
			From:  l.name,
			Topic: topic,
			Data:  append([]byte(nil), data...),
		}
		select {
		case s.queue <- m:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe - join a topic
func (l *Loopback) Subscribe(topic string) (Subscription, error) {
	l.Lock()
	defer l.Unlock()

	if l.closed {
		return nil, fault.ErrTransportClosed
	}
	s := &loopbackSubscription{
		owner: l,
		topic: topic,
		queue: make(chan *Message, loopbackQueueSize),
		done:  make(chan struct{}),
	}
	subs, ok := l.topics[topic]
	if !ok {
		subs = make(map[*loopbackSubscription]struct{})
		l.topics[topic] = subs
	}
	subs[s] = struct{}{}
	return s, nil
}

// Subscribers - number of live subscriptions to topic
func (l *Loopback) Subscribers(topic string) int {
	l.Lock()
	defer l.Unlock()
	return len(l.topics[topic])
}

// Close - cancel every subscription
func (l *Loopback) Close() error {
	l.Lock()
	if l.closed {
		l.Unlock()
		return nil
	}
	l.closed = true
	all := make([]*loopbackSubscription, 0, 8)
	for _, subs := range l.topics {
		for s := range subs {
			all = append(all, s)
		}
	}
	l.Unlock()

	for _, s := range all {
		s.Cancel()
	}
	return nil
}

func (l *Loopback) remove(s *loopbackSubscription) {
	l.Lock()
	defer l.Unlock()

	subs, ok := l.topics[s.topic]
	if !ok {
		return
	}
	delete(subs, s)
	if 0 == len(subs) {
		delete(l.topics, s.topic)
	}
}

type loopbackSubscription struct {
	owner *Loopback
	topic string
	queue chan *Message
	done  chan struct{}
	once  sync.Once
}

// Next - block for the next message, nothing is returned once cancelled
func (s *loopbackSubscription) Next(ctx context.Context) (*Message, error) {
	select {
	case <-s.done:
		return nil, fault.ErrSubscriptionCancelled
	default:
	}

	select {
	case m := <-s.queue:
		return m, nil
	case <-s.done:
		return nil, fault.ErrSubscriptionCancelled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel - leave the topic
func (s *loopbackSubscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.owner.remove(s)
	})
}

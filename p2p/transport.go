// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p - topic based publish/subscribe transport
//
// payloads are opaque; topics are plain strings. Node carries them
// over libp2p gossipsub, Loopback keeps them in process.
package p2p

import (
	"context"
)

// Message - one received payload
type Message struct {
	From  string
	Topic string
	Data  []byte
}

// Transport - publish to and subscribe to topics
type Transport interface {
	Publish(ctx context.Context, topic string, data []byte) error
	Subscribe(topic string) (Subscription, error)
}

// Subscription - stream of messages for one topic
type Subscription interface {
	Next(ctx context.Context) (*Message, error)
	Cancel()
}

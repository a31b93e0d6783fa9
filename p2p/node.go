// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	libp2p "github.com/libp2p/go-libp2p"
	connmgr "github.com/libp2p/go-libp2p-connmgr"
	crypto "github.com/libp2p/go-libp2p-core/crypto"
	p2pcore "github.com/libp2p/go-libp2p-core/host"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	tls "github.com/libp2p/go-libp2p-tls"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/stayd-io/stayd/background"
	"github.com/stayd-io/stayd/fault"
)

// defaults
const (
	defaultLowWater    = 32
	defaultHighWater   = 128
	defaultGracePeriod = time.Minute
	connectInterval    = time.Minute
	connectCancelTime  = 30 * time.Second
)

// Configuration - a block of configuration data
// this is read from the configuration file
type Configuration struct {
	Listen     []string `gluamapper:"listen" json:"listen"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	Connect    []string `gluamapper:"connect" json:"connect,omitempty"`
	LowWater   int      `gluamapper:"low_water" json:"low_water"`
	HighWater  int      `gluamapper:"high_water" json:"high_water"`
}

// Node - gossipsub transport over a libp2p host
type Node struct {
	sync.Mutex
	log        *logger.L
	host       p2pcore.Host
	pubsub     *pubsub.PubSub
	static     []peerlib.AddrInfo
	background *background.T
	closed     bool
}

// NewNode - start a host listening on the configured addresses and
// keep it connected to the static peers
func NewNode(configuration *Configuration, key crypto.PrivKey) (*Node, error) {
	log := logger.New("p2p")

	listen := make([]ma.Multiaddr, 0, len(configuration.Listen))
	for _, s := range configuration.Listen {
		a, err := ma.NewMultiaddr(s)
		if nil != err {
			log.Errorf("listen: %q  error: %s", s, err)
			return nil, fault.ErrInvalidAddress
		}
		listen = append(listen, a)
	}

	static := make([]peerlib.AddrInfo, 0, len(configuration.Connect))
	for _, s := range configuration.Connect {
		a, err := ma.NewMultiaddr(s)
		if nil != err {
			log.Errorf("connect: %q  error: %s", s, err)
			return nil, fault.ErrInvalidAddress
		}
		info, err := peerlib.AddrInfoFromP2pAddr(a)
		if nil != err {
			log.Errorf("connect: %q  error: %s", s, err)
			return nil, fault.ErrInvalidAddress
		}
		static = append(static, *info)
	}

	low := configuration.LowWater
	if low <= 0 {
		low = defaultLowWater
	}
	high := configuration.HighWater
	if high < low {
		high = defaultHighWater
		if high < low {
			high = low
		}
	}

	options := []libp2p.Option{
		libp2p.Identity(key),
		libp2p.Security(tls.ID, tls.New),
		libp2p.ListenAddrs(listen...),
		libp2p.ConnectionManager(connmgr.NewConnManager(low, high, defaultGracePeriod)),
	}
	host, err := libp2p.New(context.Background(), options...)
	if nil != err {
		return nil, err
	}
	for _, a := range host.Addrs() {
		log.Infof("host address: %s/p2p/%s", a, host.ID())
	}

	ps, err := pubsub.NewGossipSub(context.Background(), host)
	if nil != err {
		host.Close()
		return nil, err
	}

	n := &Node{
		log:    log,
		host:   host,
		pubsub: ps,
		static: static,
	}
	n.background = background.Start(background.Processes{&connector{node: n}}, nil)
	return n, nil
}

// ID - peer id of this node
func (n *Node) ID() string {
	return n.host.ID().Pretty()
}

// Addrs - full addresses of this node, suitable for a peer's connect list
func (n *Node) Addrs() []string {
	id, err := ma.NewMultiaddr("/p2p/" + n.host.ID().Pretty())
	if nil != err {
		return nil
	}
	addrs := make([]string, 0, 4)
	for _, a := range n.host.Addrs() {
		addrs = append(addrs, a.Encapsulate(id).String())
	}
	return addrs
}

// Publish - gossip data on a topic
func (n *Node) Publish(_ context.Context, topic string, data []byte) error {
	n.Lock()
	closed := n.closed
	n.Unlock()
	if closed {
		return fault.ErrTransportClosed
	}
	if err := n.pubsub.Publish(topic, data); nil != err {
		n.log.Warnf("publish: %s  error: %s", topic, err)
		return fault.ErrPublishFailed
	}
	return nil
}

// Subscribe - join a topic
func (n *Node) Subscribe(topic string) (Subscription, error) {
	n.Lock()
	closed := n.closed
	n.Unlock()
	if closed {
		return nil, fault.ErrTransportClosed
	}
	sub, err := n.pubsub.Subscribe(topic)
	if nil != err {
		return nil, err
	}
	return &nodeSubscription{sub: sub}, nil
}

// Close - stop reconnecting and shut the host down
func (n *Node) Close() error {
	n.Lock()
	if n.closed {
		n.Unlock()
		return nil
	}
	n.closed = true
	n.Unlock()

	n.background.Stop()
	return n.host.Close()
}

// connect to every static peer not currently connected
func (n *Node) connectStatic() {
	for _, info := range n.static {
		if info.ID == n.host.ID() {
			continue
		}
		if len(n.host.Network().ConnsToPeer(info.ID)) > 0 {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectCancelTime)
		err := n.host.Connect(ctx, info)
		cancel()
		if nil != err {
			n.log.Warnf("connect: %s  error: %s", info.ID.Pretty(), err)
			continue
		}
		n.host.ConnManager().Protect(info.ID, "static")
		n.log.Infof("connected: %s", info.ID.Pretty())
	}
}

type connector struct {
	node *Node
}

// Run - keep static connections up
func (c *connector) Run(args interface{}, shutdown <-chan struct{}) {
	c.node.connectStatic()
	delay := time.After(connectInterval)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-delay:
			c.node.connectStatic()
			delay = time.After(connectInterval)
		}
	}
}

type nodeSubscription struct {
	sync.Mutex
	sub       *pubsub.Subscription
	cancelled bool
}

// Next - block for the next message
func (s *nodeSubscription) Next(ctx context.Context) (*Message, error) {
	msg, err := s.sub.Next(ctx)
	if nil != err {
		if nil != ctx.Err() {
			return nil, ctx.Err()
		}
		s.Lock()
		cancelled := s.cancelled
		s.Unlock()
		if cancelled {
			return nil, fault.ErrSubscriptionCancelled
		}
		return nil, err
	}

	from := ""
	if id, err := peerlib.IDFromBytes(msg.Message.GetFrom()); nil == err {
		from = id.Pretty()
	}
	return &Message{
		From:  from,
		Topic: s.sub.Topic(),
		Data:  msg.GetData(),
	}, nil
}

// Cancel - leave the topic
func (s *nodeSubscription) Cancel() {
	s.Lock()
	if s.cancelled {
		s.Unlock()
		return
	}
	s.cancelled = true
	s.Unlock()
	s.sub.Cancel()
}

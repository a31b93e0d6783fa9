// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	proto "github.com/golang/protobuf/proto"
)

// message types matching wire.proto

// Date - calendar date on the wire
type Date struct {
	Yyyy uint32 `protobuf:"varint,1,opt,name=yyyy,proto3" json:"yyyy,omitempty"`
	Mm   uint32 `protobuf:"varint,2,opt,name=mm,proto3" json:"mm,omitempty"`
	Dd   uint32 `protobuf:"varint,3,opt,name=dd,proto3" json:"dd,omitempty"`
}

func (m *Date) Reset()         { *m = Date{} }
func (m *Date) String() string { return proto.CompactTextString(m) }
func (*Date) ProtoMessage()    {}

// Ask - a broadcast stay request
type Ask struct {
	Salt         []byte `protobuf:"bytes,1,opt,name=salt,proto3" json:"salt,omitempty"`
	CheckIn      *Date  `protobuf:"bytes,2,opt,name=check_in,json=checkIn,proto3" json:"check_in,omitempty"`
	CheckOut     *Date  `protobuf:"bytes,3,opt,name=check_out,json=checkOut,proto3" json:"check_out,omitempty"`
	NumPaxAdult  uint32 `protobuf:"varint,4,opt,name=num_pax_adult,json=numPaxAdult,proto3" json:"num_pax_adult,omitempty"`
	NumPaxChild  uint32 `protobuf:"varint,5,opt,name=num_pax_child,json=numPaxChild,proto3" json:"num_pax_child,omitempty"`
	NumSpacesReq uint32 `protobuf:"varint,6,opt,name=num_spaces_req,json=numSpacesReq,proto3" json:"num_spaces_req,omitempty"`
}

func (m *Ask) Reset()         { *m = Ask{} }
func (m *Ask) String() string { return proto.CompactTextString(m) }
func (*Ask) ProtoMessage()    {}

// ERC20Native - an amount of one currency
type ERC20Native struct {
	Gem []byte `protobuf:"bytes,1,opt,name=gem,proto3" json:"gem,omitempty"`
	Wad []byte `protobuf:"bytes,2,opt,name=wad,proto3" json:"wad,omitempty"`
}

func (m *ERC20Native) Reset()         { *m = ERC20Native{} }
func (m *ERC20Native) String() string { return proto.CompactTextString(m) }
func (*ERC20Native) ProtoMessage()    {}

// BidTerm - a mandatory term attached to a bid
type BidTerm struct {
	Term      []byte `protobuf:"bytes,1,opt,name=term,proto3" json:"term,omitempty"`
	Impl      []byte `protobuf:"bytes,2,opt,name=impl,proto3" json:"impl,omitempty"`
	TxPayload []byte `protobuf:"bytes,3,opt,name=tx_payload,json=txPayload,proto3" json:"tx_payload,omitempty"`
}

func (m *BidTerm) Reset()         { *m = BidTerm{} }
func (m *BidTerm) String() string { return proto.CompactTextString(m) }
func (*BidTerm) ProtoMessage()    {}

// Bid - a signed offer for one item
type Bid struct {
	Which     []byte       `protobuf:"bytes,1,opt,name=which,proto3" json:"which,omitempty"`
	Params    []byte       `protobuf:"bytes,2,opt,name=params,proto3" json:"params,omitempty"`
	Items     [][]byte     `protobuf:"bytes,3,rep,name=items,proto3" json:"items,omitempty"`
	Terms     []*BidTerm   `protobuf:"bytes,4,rep,name=terms,proto3" json:"terms,omitempty"`
	Cost      *ERC20Native `protobuf:"bytes,5,opt,name=cost,proto3" json:"cost,omitempty"`
	Limit     uint32       `protobuf:"varint,6,opt,name=limit,proto3" json:"limit,omitempty"`
	Expiry    uint64       `protobuf:"varint,7,opt,name=expiry,proto3" json:"expiry,omitempty"`
	Signature []byte       `protobuf:"bytes,8,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *Bid) Reset()         { *m = Bid{} }
func (m *Bid) String() string { return proto.CompactTextString(m) }
func (*Bid) ProtoMessage()    {}

// BidLine - every bid answering one ask
type BidLine struct {
	Salt []byte `protobuf:"bytes,1,opt,name=salt,proto3" json:"salt,omitempty"`
	Bids []*Bid `protobuf:"bytes,2,rep,name=bids,proto3" json:"bids,omitempty"`
}

func (m *BidLine) Reset()         { *m = BidLine{} }
func (m *BidLine) String() string { return proto.CompactTextString(m) }
func (*BidLine) ProtoMessage()    {}

// Ping - liveness probe
type Ping struct {
	Timestamp uint64 `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *Ping) Reset()         { *m = Ping{} }
func (m *Ping) String() string { return proto.CompactTextString(m) }
func (*Ping) ProtoMessage()    {}

// Pong - signed location advertisement; coordinates in micro-degrees
type Pong struct {
	Which     []byte `protobuf:"bytes,1,opt,name=which,proto3" json:"which,omitempty"`
	Latitude  int64  `protobuf:"zigzag64,2,opt,name=latitude,proto3" json:"latitude,omitempty"`
	Longitude int64  `protobuf:"zigzag64,3,opt,name=longitude,proto3" json:"longitude,omitempty"`
	Timestamp uint64 `protobuf:"varint,4,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Signature []byte `protobuf:"bytes,5,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *Pong) Reset()         { *m = Pong{} }
func (m *Pong) String() string { return proto.CompactTextString(m) }
func (*Pong) ProtoMessage()    {}

// Accept - a request to commit a booking against a recorded bid
type Accept struct {
	Which     []byte `protobuf:"bytes,1,opt,name=which,proto3" json:"which,omitempty"`
	BookingId string `protobuf:"bytes,2,opt,name=booking_id,json=bookingId,proto3" json:"booking_id,omitempty"`
	BidHash   []byte `protobuf:"bytes,3,opt,name=bid_hash,json=bidHash,proto3" json:"bid_hash,omitempty"`
	Payload   []byte `protobuf:"bytes,4,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Accept) Reset()         { *m = Accept{} }
func (m *Accept) String() string { return proto.CompactTextString(m) }
func (*Accept) ProtoMessage()    {}

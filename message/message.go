// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package message - gossip payloads and their canonical hashes
package message

import (
	"time"

	proto "github.com/golang/protobuf/proto"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/typeddata"
)

// SaltLength - bytes of ask salt
const SaltLength = typeddata.HashLength

// Encode - protobuf encoding of any wire message
func Encode(m proto.Message) ([]byte, error) {
	return proto.Marshal(m)
}

// NewDate - wire form of a date
func NewDate(d inventory.Date) *Date {
	return &Date{
		Yyyy: uint32(d.Year),
		Mm:   uint32(d.Month),
		Dd:   uint32(d.Day),
	}
}

// Date - convert to a calendar date
func (m *Date) Date() (inventory.Date, error) {
	if nil == m {
		return inventory.Date{}, fault.ErrInvalidDate
	}
	return inventory.NewDate(int(m.Yyyy), time.Month(m.Mm), int(m.Dd))
}

// DecodeAsk - decode and validate an ask payload
func DecodeAsk(data []byte) (*Ask, error) {
	ask := &Ask{}
	if err := proto.Unmarshal(data, ask); nil != err {
		return nil, fault.ErrInvalidAsk
	}
	if err := ask.Validate(); nil != err {
		return nil, err
	}
	return ask, nil
}

// Validate - structural checks of an ask
func (m *Ask) Validate() error {
	if SaltLength != len(m.Salt) {
		return fault.ErrInvalidAsk
	}
	if 0 == m.NumPaxAdult || 0 == m.NumSpacesReq {
		return fault.ErrInvalidAsk
	}
	checkIn, checkOut, err := m.Dates()
	if nil != err {
		return fault.ErrInvalidAsk
	}
	if checkIn.DaysUntil(checkOut) < 1 {
		return fault.ErrInvalidAsk
	}
	return nil
}

// Dates - check-in and check-out as calendar dates
func (m *Ask) Dates() (inventory.Date, inventory.Date, error) {
	checkIn, err := m.CheckIn.Date()
	if nil != err {
		return inventory.Date{}, inventory.Date{}, err
	}
	checkOut, err := m.CheckOut.Date()
	if nil != err {
		return inventory.Date{}, inventory.Date{}, err
	}
	return checkIn, checkOut, nil
}

// DecodeBidLine - decode a bid bundle
func DecodeBidLine(data []byte) (*BidLine, error) {
	line := &BidLine{}
	if err := proto.Unmarshal(data, line); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return line, nil
}

// DecodeBid - decode a single bid
func DecodeBid(data []byte) (*Bid, error) {
	bid := &Bid{}
	if err := proto.Unmarshal(data, bid); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return bid, nil
}

// DecodePing - decode a ping, an empty payload is a ping without timestamp
func DecodePing(data []byte) (*Ping, error) {
	ping := &Ping{}
	if err := proto.Unmarshal(data, ping); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return ping, nil
}

// DecodePong - decode a pong
func DecodePong(data []byte) (*Pong, error) {
	pong := &Pong{}
	if err := proto.Unmarshal(data, pong); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return pong, nil
}

// MicroDegrees - fixed point coordinate used in pongs
func MicroDegrees(degrees float64) int64 {
	if degrees < 0 {
		return int64(degrees*1e6 - 0.5)
	}
	return int64(degrees*1e6 + 0.5)
}

// DecodeAccept - decode and validate a booking acceptance
func DecodeAccept(data []byte) (*Accept, error) {
	accept := &Accept{}
	if err := proto.Unmarshal(data, accept); nil != err {
		return nil, fault.ErrInvalidAccept
	}
	if inventory.IDLength != len(accept.Which) || typeddata.HashLength != len(accept.BidHash) {
		return nil, fault.ErrInvalidAccept
	}
	if "" == accept.BookingId {
		return nil, fault.ErrInvalidAccept
	}
	return accept, nil
}

// Facility - the facility an acceptance is addressed to
func (m *Accept) Facility() inventory.FacilityID {
	var fid inventory.FacilityID
	copy(fid[:], m.Which)
	return fid
}

// Hash - the ledger hash of the accepted bid
func (m *Accept) Hash() typeddata.Hash {
	var h typeddata.Hash
	copy(h[:], m.BidHash)
	return h
}

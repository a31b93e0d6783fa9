// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"math/big"

	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/typeddata"
)

// encoded types, referenced structs appended in name order
const (
	dateType    = "Date(uint16 yyyy,uint8 mm,uint8 dd)"
	askType     = "Ask(Date checkIn,Date checkOut,uint32 numPaxAdult,uint32 numPaxChild,uint32 numSpacesReq)" + dateType
	costType    = "ERC20Native(address gem,uint256 wad)"
	termType    = "BidTerm(bytes32 term,address impl,bytes txPayload)"
	bidType     = "Bid(bytes32 which,bytes32 params,bytes32[] items,BidTerm[] terms,ERC20Native cost)" + termType + costType
	bidSignType = "BidSignature(bytes32 salt,uint32 limit,uint64 expiry,bytes32 which,bytes32 params,bytes32[] items,BidTerm[] terms,ERC20Native cost)" + termType + costType
	pongType    = "Pong(bytes32 which,int64 latitude,int64 longitude,uint64 timestamp)"
)

var (
	dateTypeHash    = typeddata.TypeHash(dateType)
	askTypeHash     = typeddata.TypeHash(askType)
	costTypeHash    = typeddata.TypeHash(costType)
	termTypeHash    = typeddata.TypeHash(termType)
	bidTypeHash     = typeddata.TypeHash(bidType)
	bidSignTypeHash = typeddata.TypeHash(bidSignType)
	pongTypeHash    = typeddata.TypeHash(pongType)
)

func bytes32(b []byte) (typeddata.Hash, error) {
	var h typeddata.Hash
	if typeddata.HashLength != len(b) {
		return h, fault.ErrInvalidIdentifier
	}
	copy(h[:], b)
	return h, nil
}

func address(b []byte) (typeddata.Address, error) {
	var a typeddata.Address
	if typeddata.AddressLength != len(b) {
		return a, fault.ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

// DateHash - struct hash of a date
func DateHash(d *Date) (typeddata.Hash, error) {
	if nil == d {
		return typeddata.Hash{}, fault.ErrInvalidDate
	}
	return typeddata.Keccak256(
		dateTypeHash[:],
		typeddata.Uint(uint64(d.Yyyy)),
		typeddata.Uint(uint64(d.Mm)),
		typeddata.Uint(uint64(d.Dd)),
	), nil
}

// AskHash - hash of the ask parameters, the salt is not included
func AskHash(ask *Ask) (typeddata.Hash, error) {
	checkIn, err := DateHash(ask.CheckIn)
	if nil != err {
		return typeddata.Hash{}, err
	}
	checkOut, err := DateHash(ask.CheckOut)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return typeddata.Keccak256(
		askTypeHash[:],
		checkIn[:],
		checkOut[:],
		typeddata.Uint(uint64(ask.NumPaxAdult)),
		typeddata.Uint(uint64(ask.NumPaxChild)),
		typeddata.Uint(uint64(ask.NumSpacesReq)),
	), nil
}

// ItemsHash - hash of the offered item ids
func ItemsHash(items [][]byte) (typeddata.Hash, error) {
	elements := make([]typeddata.Hash, 0, len(items))
	for _, item := range items {
		h, err := bytes32(item)
		if nil != err {
			return typeddata.Hash{}, err
		}
		elements = append(elements, h)
	}
	return typeddata.HashArray(elements), nil
}

// TermHash - struct hash of one term
func TermHash(term *BidTerm) (typeddata.Hash, error) {
	t, err := bytes32(term.Term)
	if nil != err {
		return typeddata.Hash{}, err
	}
	impl, err := address(term.Impl)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return typeddata.Keccak256(
		termTypeHash[:],
		t[:],
		typeddata.AddressWord(impl),
		typeddata.Keccak256(term.TxPayload).Bytes(),
	), nil
}

// TermsHash - hash of all terms in order
func TermsHash(terms []*BidTerm) (typeddata.Hash, error) {
	elements := make([]typeddata.Hash, 0, len(terms))
	for _, term := range terms {
		h, err := TermHash(term)
		if nil != err {
			return typeddata.Hash{}, err
		}
		elements = append(elements, h)
	}
	return typeddata.HashArray(elements), nil
}

// CostHash - struct hash of the cost
func CostHash(cost *ERC20Native) (typeddata.Hash, error) {
	if nil == cost {
		return typeddata.Hash{}, fault.ErrMissingParameters
	}
	gem, err := address(cost.Gem)
	if nil != err {
		return typeddata.Hash{}, err
	}
	if len(cost.Wad) > typeddata.HashLength {
		return typeddata.Hash{}, fault.ErrInvalidCount
	}
	return typeddata.Keccak256(
		costTypeHash[:],
		typeddata.AddressWord(gem),
		typeddata.BigUint(new(big.Int).SetBytes(cost.Wad)),
	), nil
}

// component hashes shared by the bid and its signature
type bidParts struct {
	which  typeddata.Hash
	params typeddata.Hash
	items  typeddata.Hash
	terms  typeddata.Hash
	cost   typeddata.Hash
}

func partsOf(bid *Bid) (*bidParts, error) {
	which, err := bytes32(bid.Which)
	if nil != err {
		return nil, err
	}
	params, err := bytes32(bid.Params)
	if nil != err {
		return nil, err
	}
	items, err := ItemsHash(bid.Items)
	if nil != err {
		return nil, err
	}
	terms, err := TermsHash(bid.Terms)
	if nil != err {
		return nil, err
	}
	cost, err := CostHash(bid.Cost)
	if nil != err {
		return nil, err
	}
	return &bidParts{
		which:  which,
		params: params,
		items:  items,
		terms:  terms,
		cost:   cost,
	}, nil
}

// BidHash - key of a bid in the ledger
//
// limit, expiry and signature are not part of the hash
func BidHash(bid *Bid) (typeddata.Hash, error) {
	p, err := partsOf(bid)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return typeddata.Keccak256(
		bidTypeHash[:],
		p.which[:],
		p.params[:],
		p.items[:],
		p.terms[:],
		p.cost[:],
	), nil
}

// BidSignatureHash - the struct signed by the bidder
func BidSignatureHash(salt []byte, bid *Bid) (typeddata.Hash, error) {
	s, err := bytes32(salt)
	if nil != err {
		return typeddata.Hash{}, err
	}
	p, err := partsOf(bid)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return typeddata.Keccak256(
		bidSignTypeHash[:],
		s[:],
		typeddata.Uint(uint64(bid.Limit)),
		typeddata.Uint(bid.Expiry),
		p.which[:],
		p.params[:],
		p.items[:],
		p.terms[:],
		p.cost[:],
	), nil
}

// PongHash - the struct signed for a pong
func PongHash(pong *Pong) (typeddata.Hash, error) {
	which, err := bytes32(pong.Which)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return typeddata.Keccak256(
		pongTypeHash[:],
		which[:],
		typeddata.Int(pong.Latitude),
		typeddata.Int(pong.Longitude),
		typeddata.Uint(pong.Timestamp),
	), nil
}

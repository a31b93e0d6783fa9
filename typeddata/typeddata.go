// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package typeddata - hashing of typed structured data
//
// Structs are encoded the EIP-712 way: a type hash followed by one
// 32 byte word per member, nested structs and arrays contributing
// their own hash. A message is signed over
//
//   keccak256(0x19 ++ 0x01 ++ domainSeparator ++ structHash)
//
// so a signature cannot be replayed against another facility line,
// version, chain or verifying contract.
package typeddata

import (
	"encoding/hex"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/stayd-io/stayd/fault"
)

// HashLength - bytes in a hash
const HashLength = 32

// AddressLength - bytes in an address
const AddressLength = 20

// Hash - Keccak-256 digest, also used for every bytes32 value
type Hash [HashLength]byte

// Address - 20 byte account or contract address
type Address [AddressLength]byte

// Keccak256 - legacy Keccak-256 of the concatenated data
func Keccak256(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h Hash
	copy(h[:], d.Sum(nil))
	return h
}

// TypeHash - hash of an encoded type string
func TypeHash(encodedType string) Hash {
	return Keccak256([]byte(encodedType))
}

// Bytes - as a slice
func (h Hash) Bytes() []byte {
	return h[:]
}

// String - 0x prefixed hex
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// String - 0x prefixed hex
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAddress - from hex with or without 0x prefix
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if nil != err || AddressLength != len(b) {
		return a, fault.ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

// Uint - unsigned integer member
func Uint(n uint64) []byte {
	return BigUint(new(big.Int).SetUint64(n))
}

// BigUint - uint256 member, values wider than 256 bits are truncated
// to their low 256 bits
func BigUint(n *big.Int) []byte {
	word := make([]byte, HashLength)
	b := n.Bytes()
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(word[HashLength-len(b):], b)
	return word
}

// Int - signed integer member, two's complement
func Int(n int64) []byte {
	word := Uint(uint64(n))
	if n < 0 {
		for i := 0; i < HashLength-8; i += 1 {
			word[i] = 0xff
		}
	}
	return word
}

// AddressWord - address member, left padded
func AddressWord(a Address) []byte {
	word := make([]byte, HashLength)
	copy(word[HashLength-AddressLength:], a[:])
	return word
}

// HashArray - member hash of a bytes32[] or struct[] value: the hash
// of the concatenated element words
func HashArray(elements []Hash) Hash {
	packed := make([]byte, 0, len(elements)*HashLength)
	for _, e := range elements {
		packed = append(packed, e[:]...)
	}
	return Keccak256(packed)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package typeddata

import (
	"math/big"
)

var domainTypeHash = TypeHash("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")

// Domain - signing domain
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract Address
}

// Separator - hash of the domain
func (d *Domain) Separator() Hash {
	chainID := d.ChainID
	if nil == chainID {
		chainID = new(big.Int)
	}
	return Keccak256(
		domainTypeHash[:],
		Keccak256([]byte(d.Name)).Bytes(),
		Keccak256([]byte(d.Version)).Bytes(),
		BigUint(chainID),
		AddressWord(d.VerifyingContract),
	)
}

// Digest - what is actually signed for a struct hash in this domain
func (d *Domain) Digest(structHash Hash) Hash {
	separator := d.Separator()
	return Keccak256([]byte{0x19, 0x01}, separator[:], structHash[:])
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package typeddata

import (
	"encoding/hex"
	"strings"

	"github.com/libp2p/go-libp2p-core/crypto"

	"github.com/stayd-io/stayd/fault"
)

// Signer - produces a signature over a struct hash in a domain
//
// key management lives behind this interface
type Signer interface {
	Sign(domain *Domain, structHash Hash) ([]byte, error)
}

// KeySigner - a Signer holding one libp2p private key
type KeySigner struct {
	key crypto.PrivKey
}

// NewKeySigner - signer for a key
func NewKeySigner(key crypto.PrivKey) (*KeySigner, error) {
	if nil == key {
		return nil, fault.ErrNoSigningKey
	}
	return &KeySigner{key: key}, nil
}

// Sign - sign the domain digest of a struct hash
func (s *KeySigner) Sign(domain *Domain, structHash Hash) ([]byte, error) {
	digest := domain.Digest(structHash)
	signature, err := s.key.Sign(digest[:])
	if nil != err {
		return nil, fault.ErrSigningFailed
	}
	return signature, nil
}

// PublicKey - the key that verifies this signer
func (s *KeySigner) PublicKey() crypto.PubKey {
	return s.key.GetPublic()
}

// Verify - check a signature made by Sign
func Verify(key crypto.PubKey, domain *Domain, structHash Hash, signature []byte) (bool, error) {
	digest := domain.Digest(structHash)
	return key.Verify(digest[:], signature)
}

// DecodePrivateKey - libp2p marshalled private key in hex
func DecodePrivateKey(s string) (crypto.PrivKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if nil != err || 0 == len(b) {
		return nil, fault.ErrInvalidPrivateKey
	}
	key, err := crypto.UnmarshalPrivateKey(b)
	if nil != err {
		return nil, fault.ErrInvalidPrivateKey
	}
	return key, nil
}

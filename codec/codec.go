// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec - encoding of records kept in the inventory store
//
// Records are CBOR using Core Deterministic Encoding (RFC 8949 §4.2)
// so the same record always produces the same bytes.
package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if nil != err {
		panic("codec: CBOR encoder initialisation failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if nil != err {
		panic("codec: CBOR decoder initialisation failed: " + err.Error())
	}
}

// Marshal - encode a record
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal - decode a record
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}

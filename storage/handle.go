// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/stayd-io/stayd/fault"
)

// PoolHandle - the access to one pool
type PoolHandle struct {
	prefix byte
	limit  []byte
	store  *Store
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Get - read a value for a given key
//
// a missing key is fault.ErrNotFound
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	p.store.RLock()
	defer p.store.RUnlock()

	db, err := p.store.database()
	if nil != err {
		return nil, err
	}
	value, err := db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrNotFound
	}
	return value, err
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) (bool, error) {
	p.store.RLock()
	defer p.store.RUnlock()

	db, err := p.store.database()
	if nil != err {
		return false, err
	}
	return db.Has(p.prefixKey(key), nil)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	p.store.RLock()
	defer p.store.RUnlock()

	db, err := p.store.database()
	if nil != err {
		return err
	}
	return db.Put(p.prefixKey(key), value, nil)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	p.store.RLock()
	defer p.store.RUnlock()

	db, err := p.store.database()
	if nil != err {
		return err
	}
	return db.Delete(p.prefixKey(key), nil)
}

// Iterate - call f for each element whose key starts with namespace,
// in key order
//
// the key passed to f has the namespace removed; key and value are
// copies and may be retained. Iteration stops at the first error
// returned by f.
func (p *PoolHandle) Iterate(namespace []byte, f func(key []byte, value []byte) error) error {
	p.store.RLock()
	defer p.store.RUnlock()

	db, err := p.store.database()
	if nil != err {
		return err
	}

	searchRange := ldb_util.BytesPrefix(p.prefixKey(namespace))
	iter := db.NewIterator(searchRange, nil)
	defer iter.Release()

	skip := 1 + len(namespace)
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-skip) // strip the prefix
		copy(dataKey, key[skip:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		if err := f(dataKey, dataValue); nil != err {
			return err
		}
	}
	return iter.Error()
}

// List - all elements of a namespace in key order
func (p *PoolHandle) List(namespace []byte) ([]Element, error) {
	elements := make([]Element, 0, 16)
	err := p.Iterate(namespace, func(key []byte, value []byte) error {
		elements = append(elements, Element{Key: key, Value: value})
		return nil
	})
	return elements, err
}

// Key - build a composite key
//
// facility and item identifiers are fixed length so plain
// concatenation cannot be ambiguous
func Key(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

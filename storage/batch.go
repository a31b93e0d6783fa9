// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// Batch - a set of writes across any pools applied atomically
type Batch struct {
	store *Store
	batch *leveldb.Batch
}

// NewBatch - start an empty batch
func (s *Store) NewBatch() *Batch {
	return &Batch{
		store: s,
		batch: new(leveldb.Batch),
	}
}

// Put - queue a key/value write to pool p
func (b *Batch) Put(p *PoolHandle, key []byte, value []byte) {
	b.batch.Put(p.prefixKey(key), value)
}

// Delete - queue a key removal from pool p
func (b *Batch) Delete(p *PoolHandle, key []byte) {
	b.batch.Delete(p.prefixKey(key))
}

// Len - number of queued operations
func (b *Batch) Len() int {
	return b.batch.Len()
}

// Commit - write every queued operation or none
func (b *Batch) Commit() error {
	b.store.RLock()
	defer b.store.RUnlock()

	db, err := b.store.database()
	if nil != err {
		return err
	}
	return db.Write(b.batch, nil)
}

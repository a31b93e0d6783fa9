// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the bids a facility has issued and not yet expired
//
// entries are keyed by facility id followed by the bid hash, so one
// facility's bids are contiguous and a sweep can walk them in turn
package ledger

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/counter"
	"github.com/stayd-io/stayd/fault"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/message"
	"github.com/stayd-io/stayd/storage"
	"github.com/stayd-io/stayd/typeddata"
)

// stored form
type record struct {
	Ask     []byte             `cbor:"ask"`
	Bid     []byte             `cbor:"bid"`
	SpaceID inventory.ItemID   `cbor:"space_id"`
	Items   []inventory.ItemID `cbor:"items"`
	Expiry  uint64             `cbor:"expiry"`
}

// Entry - one issued bid
type Entry struct {
	Hash    typeddata.Hash
	Ask     *message.Ask
	Bid     *message.Bid
	SpaceID inventory.ItemID
	Items   []inventory.ItemID
}

// Ledger - bid ledger over an inventory store
type Ledger struct {
	inv     *inventory.Inventory
	pool    *storage.PoolHandle
	log     *logger.L
	removed counter.Counter
}

// New - ledger sharing the inventory store
func New(inv *inventory.Inventory) *Ledger {
	return &Ledger{
		inv:  inv,
		pool: inv.Store().Pool.Bids,
		log:  logger.New("ledger"),
	}
}

func key(fid inventory.FacilityID, hash typeddata.Hash) []byte {
	return storage.Key(fid[:], hash[:])
}

// Record - store a bid under its hash, items are the offered space
// followed by any other items of the bid
func (l *Ledger) Record(fid inventory.FacilityID, ask *message.Ask, bid *message.Bid) (typeddata.Hash, error) {
	hash, err := message.BidHash(bid)
	if nil != err {
		return typeddata.Hash{}, err
	}
	if 0 == len(bid.Items) {
		return typeddata.Hash{}, fault.ErrMissingParameters
	}

	items := make([]inventory.ItemID, len(bid.Items))
	for i, item := range bid.Items {
		copy(items[i][:], item)
	}

	packedAsk, err := message.Encode(ask)
	if nil != err {
		return typeddata.Hash{}, err
	}
	packedBid, err := message.Encode(bid)
	if nil != err {
		return typeddata.Hash{}, err
	}

	packed, err := codec.Marshal(&record{
		Ask:     packedAsk,
		Bid:     packedBid,
		SpaceID: items[0],
		Items:   items,
		Expiry:  bid.Expiry,
	})
	if nil != err {
		return typeddata.Hash{}, err
	}

	err = l.pool.Put(key(fid, hash), packed)
	if nil != err {
		return typeddata.Hash{}, err
	}
	return hash, nil
}

// Get - the entry for a bid hash
func (l *Ledger) Get(fid inventory.FacilityID, hash typeddata.Hash) (*Entry, error) {
	packed, err := l.pool.Get(key(fid, hash))
	if fault.ErrNotFound == err {
		return nil, fault.ErrBidNotFound
	} else if nil != err {
		return nil, err
	}
	return unpack(hash, packed)
}

// Delete - remove a bid, absent bids are ignored
func (l *Ledger) Delete(fid inventory.FacilityID, hash typeddata.Hash) error {
	return l.pool.Delete(key(fid, hash))
}

// Entries - every bid of a facility in hash order
func (l *Ledger) Entries(fid inventory.FacilityID) ([]*Entry, error) {
	entries := make([]*Entry, 0, 8)
	err := l.pool.Iterate(fid[:], func(k []byte, value []byte) error {
		var hash typeddata.Hash
		if typeddata.HashLength != len(k) {
			return fault.ErrInvalidKey
		}
		copy(hash[:], k)
		e, err := unpack(hash, value)
		if nil != err {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

func unpack(hash typeddata.Hash, packed []byte) (*Entry, error) {
	var r record
	if err := codec.Unmarshal(packed, &r); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	ask, err := message.DecodeAsk(r.Ask)
	if nil != err {
		return nil, fault.ErrInvalidRecord
	}
	bid, err := message.DecodeBid(r.Bid)
	if nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return &Entry{
		Hash:    hash,
		Ask:     ask,
		Bid:     bid,
		SpaceID: r.SpaceID,
		Items:   r.Items,
	}, nil
}

// SweepFacility - delete the bids of one facility that expired before now
func (l *Ledger) SweepFacility(fid inventory.FacilityID, now time.Time) (int, error) {
	cutoff := uint64(now.Unix())
	expired := make([][]byte, 0, 8)

	err := l.pool.Iterate(fid[:], func(k []byte, value []byte) error {
		var r record
		if err := codec.Unmarshal(value, &r); nil != err {
			l.log.Warnf("facility: %s  bid: %x  undecodable, removing", fid, k)
		} else if r.Expiry >= cutoff {
			return nil
		}
		expired = append(expired, storage.Key(fid[:], k))
		return nil
	})
	if nil != err {
		return 0, err
	}
	if 0 == len(expired) {
		return 0, nil
	}

	batch := l.inv.Store().NewBatch()
	for _, k := range expired {
		batch.Delete(l.pool, k)
	}
	if err := batch.Commit(); nil != err {
		return 0, err
	}
	l.removed.Add(uint64(len(expired)))
	return len(expired), nil
}

// Sweep - SweepFacility for every known facility, a failing facility
// is logged and skipped
func (l *Ledger) Sweep(now time.Time) (int, error) {
	facilities, err := l.inv.Facilities()
	if nil != err {
		return 0, err
	}

	total := 0
	for _, fid := range facilities {
		n, err := l.SweepFacility(fid, now)
		if nil != err {
			l.log.Errorf("facility: %s  sweep error: %s", fid, err)
			continue
		}
		if n > 0 {
			l.log.Debugf("facility: %s  expired bids: %d", fid, n)
		}
		total += n
	}
	return total, nil
}

// Removed - number of bids removed by sweeps since start
func (l *Ledger) Removed() uint64 {
	return l.removed.Uint64()
}

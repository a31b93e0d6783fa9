// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"time"

	"github.com/stayd-io/stayd/codec"
	"github.com/stayd-io/stayd/fault"
)

// RuleKind - which rule; at most one of each kind resolves
type RuleKind string

// rule kinds
const (
	RuleNoticeRequired RuleKind = "notice_required"
	RuleLengthOfStay   RuleKind = "length_of_stay"
)

// Rule - one of NoticeRequiredRule or LengthOfStayRule
type Rule interface {
	Kind() RuleKind
}

// NoticeRequiredRule - minimum lead time before check-in
type NoticeRequiredRule struct {
	Seconds uint32
}

// StayBounds - nights allowed for a check-in weekday
type StayBounds struct {
	Min uint32 `cbor:"min"`
	Max uint32 `cbor:"max"`
}

// LengthOfStayRule - bounds by weekday of check-in, weekdays without
// an entry are unconstrained
type LengthOfStayRule struct {
	Days map[time.Weekday]StayBounds
}

// Kind - rule kind
func (*NoticeRequiredRule) Kind() RuleKind { return RuleNoticeRequired }
func (*LengthOfStayRule) Kind() RuleKind   { return RuleLengthOfStay }

type ruleRecord struct {
	Kind    RuleKind           `cbor:"kind"`
	Seconds uint32             `cbor:"seconds,omitempty"`
	Days    map[int]StayBounds `cbor:"days,omitempty"`
}

// PutRule - set the rule of its kind for an item (or FacilityLevel)
func (inv *Inventory) PutRule(fid FacilityID, iid ItemID, rule Rule) error {
	record := ruleRecord{
		Kind: rule.Kind(),
	}
	switch tr := rule.(type) {
	case *NoticeRequiredRule:
		record.Seconds = tr.Seconds
	case *LengthOfStayRule:
		record.Days = make(map[int]StayBounds, len(tr.Days))
		for day, bounds := range tr.Days {
			if day < time.Sunday || day > time.Saturday {
				return fault.ErrInvalidRule
			}
			record.Days[int(day)] = bounds
		}
	default:
		return fault.ErrInvalidRule
	}

	packed, err := codec.Marshal(record)
	if nil != err {
		return err
	}
	return inv.store.Pool.Rules.Put(itemKey(fid, iid, []byte(rule.Kind())), packed)
}

// Rule - the rule of a kind stored at exactly this level
func (inv *Inventory) Rule(fid FacilityID, iid ItemID, kind RuleKind) (Rule, bool, error) {
	packed, err := inv.store.Pool.Rules.Get(itemKey(fid, iid, []byte(kind)))
	if fault.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}

	var record ruleRecord
	if err := codec.Unmarshal(packed, &record); nil != err || record.Kind != kind {
		return nil, false, fault.ErrInvalidRecord
	}

	switch kind {
	case RuleNoticeRequired:
		return &NoticeRequiredRule{Seconds: record.Seconds}, true, nil
	case RuleLengthOfStay:
		r := &LengthOfStayRule{
			Days: make(map[time.Weekday]StayBounds, len(record.Days)),
		}
		for day, bounds := range record.Days {
			r.Days[time.Weekday(day)] = bounds
		}
		return r, true, nil
	}
	return nil, false, fault.ErrInvalidRule
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/stayd-io/stayd/fault"
)

var (
	ErrConfigurationOne = fault.ConfigurationError("configuration one")
	ErrConflictOne      = fault.ConflictError("conflict one")
	ErrExistsOne        = fault.ExistsError("exists one")
	ErrInvalidOne       = fault.InvalidError("invalid one")
	ErrNotFoundOne      = fault.NotFoundError("not found one")
	ErrProcessOne       = fault.ProcessError("process one")
)

// test that the error classes do not overlap
func TestClasses(t *testing.T) {
	errorList := []struct {
		err           error
		configuration bool
		conflict      bool
		exists        bool
		invalid       bool
		notFound      bool
		process       bool
	}{
		{ErrConfigurationOne, true, false, false, false, false, false},
		{fault.ErrMissingDefaultRate, true, false, false, false, false, false},
		{ErrConflictOne, false, true, false, false, false, false},
		{fault.ErrLostRace, false, true, false, false, false, false},
		{ErrExistsOne, false, false, true, false, false, false},
		{fault.ErrDuplicateBooking, false, false, true, false, false, false},
		{ErrInvalidOne, false, false, false, true, false, false},
		{fault.ErrInvalidAsk, false, false, false, true, false, false},
		{ErrNotFoundOne, false, false, false, false, true, false},
		{fault.ErrBidNotFound, false, false, false, false, true, false},
		{ErrProcessOne, false, false, false, false, false, true},
		{fault.ErrSigningFailed, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrConfiguration(err) != e.configuration {
			t.Errorf("%d: expected 'configuration' == %v for err = %v", i, e.configuration, err)
		}
		if fault.IsErrConflict(err) != e.conflict {
			t.Errorf("%d: expected 'conflict' == %v for err = %v", i, e.conflict, err)
		}
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
	}
}

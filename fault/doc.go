// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// The classes follow the way a handler reacts to them:
//
//   NotFound      - a lookup missed; usually recovered by falling back
//   Invalid       - malformed input (gossip payload, stored record)
//   Exists        - a duplicate (booking id already committed)
//   Conflict      - inventory changed underneath a commit
//   Configuration - the inventory is set up in a way that cannot be priced
//   Process       - signing or transport failure
package fault

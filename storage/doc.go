// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk inventory store
//
// A single LevelDB database split into a series of pools. Each pool
// is defined by a prefix byte that is obtained from the prefix tag in
// the struct defining the available pools, so a pool stands for one
// concern (rates, rules, bookings...).
//
// Notes:
// 1. ++        = concatenation of byte data
// 2. facility  = 32 byte facility identifier
// 3. item      = 32 byte item identifier, all zero for facility level values
// 4. date      = ISO calendar date "YYYY-MM-DD" (sorts chronologically)
// 5. default   = the literal "default" (sorts after every date)
//
// Inventory:
//
//   F ++ facility                   - facility metadata
//   I ++ facility ++ item           - item metadata
//   T ++ facility ++ zero ++ term   - facility terms
//
// Pricing and policy:
//
//   R ++ facility ++ item ++ date|default   - rate
//   M ++ facility ++ item ++ kind           - modifier
//   U ++ facility ++ item ++ kind           - rule
//
// Occupancy:
//
//   A ++ facility ++ item ++ date|default   - number of spaces
//   N ++ facility ++ item ++ date           - number booked
//
// Bookings:
//
//   S ++ facility ++ zero ++ booking id     - stub payload
//   D ++ facility ++ zero ++ date           - booking ids (facility wide)
//   E ++ facility ++ item ++ date           - booking ids (per item)
//
// Bids:
//
//   B ++ facility ++ zero ++ bid hash       - ledger entry
//
// Testing:
//   Z ++ key                                - testing data
package storage

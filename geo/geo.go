// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package geo - geospatial buckets and the gossip topics scoped by them
package geo

import (
	"strings"

	"github.com/uber/h3-go/v4"

	"github.com/stayd-io/stayd/fault"
)

// DefaultResolution - hex grid resolution for buckets
const DefaultResolution = 6

const maxResolution = 15

// Kind - message kind within a bucket
type Kind string

// message kinds
const (
	KindAsk    Kind = "ask"
	KindBid    Kind = "bid"
	KindPing   Kind = "ping"
	KindPong   Kind = "pong"
	KindAccept Kind = "accept"
)

// Kinds - every message kind
var Kinds = []Kind{KindAsk, KindBid, KindPing, KindPong, KindAccept}

// CellOf - hex cell index of a coordinate
func CellOf(latitude float64, longitude float64, resolution int) (string, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return "", fault.ErrInvalidLocation
	}
	if resolution < 0 || resolution > maxResolution {
		return "", fault.ErrInvalidLocation
	}
	cell := h3.LatLngToCell(h3.NewLatLng(latitude, longitude), resolution)
	if !cell.IsValid() {
		return "", fault.ErrInvalidLocation
	}
	return cell.String(), nil
}

// Topic - namespace/cell/kind
func Topic(namespace string, cell string, kind Kind) string {
	return strings.Join([]string{namespace, cell, string(kind)}, "/")
}

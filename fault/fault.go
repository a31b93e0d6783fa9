// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ConfigurationError GenericError
type ConflictError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyListening         = ExistsError("facility is already listening")
	ErrBidNotFound              = NotFoundError("bid not found")
	ErrDatabaseIsNotSet         = ProcessError("database is not set")
	ErrDuplicateBooking         = ExistsError("booking already exists")
	ErrFacilityNotFound         = NotFoundError("facility not found")
	ErrFacilityNotListening     = NotFoundError("facility is not listening")
	ErrInvalidAccept            = InvalidError("invalid acceptance")
	ErrInvalidAddress           = InvalidError("invalid address")
	ErrInvalidAsk               = InvalidError("invalid ask")
	ErrInvalidCheckInTime       = InvalidError("invalid check-in time")
	ErrInvalidCount             = InvalidError("invalid count")
	ErrInvalidDate              = InvalidError("invalid date")
	ErrInvalidDateRange         = InvalidError("check-out is not after check-in")
	ErrInvalidIdentifier        = InvalidError("invalid identifier")
	ErrInvalidKey               = InvalidError("invalid key")
	ErrInvalidLocation          = InvalidError("invalid location")
	ErrInvalidModifier          = InvalidError("invalid modifier")
	ErrInvalidPrivateKey        = InvalidError("invalid private key")
	ErrInvalidRatio             = InvalidError("ratio denominator is zero")
	ErrInvalidRecord            = InvalidError("invalid record")
	ErrInvalidRule              = InvalidError("invalid rule")
	ErrInvalidStructPointer     = InvalidError("invalid struct pointer")
	ErrInvalidTimezone          = InvalidError("invalid timezone")
	ErrItemNotFound             = NotFoundError("item not found")
	ErrLostRace                 = ConflictError("availability changed before commit")
	ErrMissingDefaultRate       = ConfigurationError("no rate for date and no default rate")
	ErrMissingLocation          = NotFoundError("facility has no location")
	ErrMissingParameters        = InvalidError("missing parameters")
	ErrNotFound                 = NotFoundError("not found")
	ErrNoSigningKey             = ConfigurationError("no signing key")
	ErrPublishFailed            = ProcessError("publish failed")
	ErrSigningFailed            = ProcessError("signing failed")
	ErrSubscriptionCancelled    = ProcessError("subscription cancelled")
	ErrTransportClosed          = ProcessError("transport closed")
	ErrUnsupportedConfiguration = ConfigurationError("unsupported configuration value")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ConfigurationError) Error() string { return string(e) }
func (e ConflictError) Error() string      { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }

// determine the class of an error
func IsErrConfiguration(e error) bool { _, ok := e.(ConfigurationError); return ok }
func IsErrConflict(e error) bool      { _, ok := e.(ConflictError); return ok }
func IsErrExists(e error) bool        { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool       { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool      { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool       { _, ok := e.(ProcessError); return ok }

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type PermanentError GenericError
type ProcessError GenericError
type TransientError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccountExists          = ExistsError("account already exists")
	ErrAccountNotFound        = NotFoundError("account not found")
	ErrAlreadyInitialised     = ProcessError("already initialised")
	ErrCertificateFileExists  = ExistsError("certificate file already exists")
	ErrInsufficientFunds      = TransientError("funding account balance too low to pay")
	ErrInvalidAddress         = InvalidError("invalid wallet address")
	ErrInvalidAmount          = InvalidError("invalid amount")
	ErrInvalidCallback        = InvalidError("invalid callback url")
	ErrInvalidChannelCount    = InvalidError("invalid channel count")
	ErrInvalidCount           = InvalidError("invalid count")
	ErrInvalidCursor          = InvalidError("invalid cursor")
	ErrInvalidJob             = InvalidError("invalid job")
	ErrInvalidLoggerChannel   = InvalidError("invalid logger channel")
	ErrInvalidIPAddress       = InvalidError("invalid IP address")
	ErrInvalidMemo            = InvalidError("invalid memo")
	ErrInvalidPortNumber      = InvalidError("invalid port number")
	ErrInvalidPrivateKeyFile  = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile   = InvalidError("invalid public key file")
	ErrInvalidRequestBody     = InvalidError("invalid request body")
	ErrInvalidSeed            = InvalidError("invalid seed")
	ErrInvalidStructPointer   = InvalidError("invalid struct pointer")
	ErrKeyFileExists          = ExistsError("key file already exists")
	ErrKeyNotFound            = NotFoundError("key not found")
	ErrLedgerUnavailable      = TransientError("ledger unavailable")
	ErrLockTimeout            = TransientError("lock timeout")
	ErrLowBalance             = PermanentError("funding account balance too low")
	ErrMemoTooLong            = InvalidError("memo too long")
	ErrMissingAppId           = InvalidError("app id is required")
	ErrMissingId              = InvalidError("id is required")
	ErrMissingServiceId       = InvalidError("service id is required")
	ErrNoAvailableChannel     = TransientError("no available channel")
	ErrNoPaymentOperation     = InvalidError("transaction has no payment operation")
	ErrNoTrustline            = PermanentError("account has no trustline")
	ErrNotInitialised         = ProcessError("not initialised")
	ErrNotLockHolder          = ProcessError("lock not held")
	ErrPaymentExists          = ExistsError("payment already exists")
	ErrPaymentNotFound        = NotFoundError("payment not found")
	ErrRateLimiting           = TransientError("rate limiting")
	ErrServiceNotFound        = NotFoundError("service not found")
	ErrSourceNotReady         = TransientError("source account not ready")
	ErrTooManyConnections     = TransientError("too many connections")
	ErrTransactionNotFound    = NotFoundError("transaction not found")
	ErrUnknownJobKind         = PermanentError("unknown job kind")
	ErrWalletNotFound         = NotFoundError("wallet not found")
	ErrWebhookRejected        = TransientError("webhook rejected")
	ErrWrongNetworkPassphrase = InvalidError("network passphrase is required")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string    { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e PermanentError) Error() string { return string(e) }
func (e ProcessError) Error() string   { return string(e) }
func (e TransientError) Error() string { return string(e) }

// determine the class of an error, wrapped errors are unwrapped
func IsErrExists(e error) bool    { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool   { var x InvalidError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool  { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool   { var x ProcessError; return errors.As(e, &x) }
func IsErrTransient(e error) bool { var x TransientError; return errors.As(e, &x) }

// IsErrPermanent - true for a permanent class or anything marked by Permanent()
func IsErrPermanent(e error) bool {
	var x PermanentError
	if errors.As(e, &x) {
		return true
	}
	var m *permanent
	return errors.As(e, &m)
}

// a permanent marker around an error of another class
type permanent struct {
	err error
}

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent - mark an error so that the job queue will not retry it
func Permanent(err error) error {
	if nil == err || IsErrPermanent(err) {
		return err
	}
	return &permanent{err: err}
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memo - correlation data carried in a ledger transaction memo
//
// format: version ++ "-" ++ appId ++ "-" ++ paymentId
package memo

import (
	"strings"

	"github.com/bitmark-inc/paymentd/fault"
)

const (
	// Version - the only memo version produced
	Version = "1"

	separator = "-"

	// MaximumLength - longest memo text a transaction can carry
	MaximumLength = 28
)

// Memo - the decoded fields
type Memo struct {
	Version   string
	AppId     string
	PaymentId string
}

// Create - memo text for a payment
func Create(appId string, paymentId string) string {
	return Version + separator + appId + separator + paymentId
}

// CreateWallet - memo text for an account creation, there is no payment id
func CreateWallet(appId string) string {
	return Version + separator + appId
}

// Parse - split memo text into its fields
//
// anything other than exactly three fields is fault.ErrInvalidMemo
func Parse(text string) (Memo, error) {
	fields := strings.Split(text, separator)
	if 3 != len(fields) {
		return Memo{}, fault.ErrInvalidMemo
	}
	return Memo{
		Version:   fields[0],
		AppId:     fields[1],
		PaymentId: fields[2],
	}, nil
}

// String - memo text
func (m Memo) String() string {
	return m.Version + separator + m.AppId + separator + m.PaymentId
}

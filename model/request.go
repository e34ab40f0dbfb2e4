// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package model

import (
	"net/url"
	"strings"

	"github.com/stellar/go/strkey"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/memo"
)

// PaymentRequest - send asset to a recipient once
type PaymentRequest struct {
	Id               string `json:"id"`
	AppId            string `json:"app_id"`
	RecipientAddress string `json:"recipient_address"`
	Amount           int64  `json:"amount"`
	Callback         string `json:"callback"`
}

// Validate - check required fields
func (r *PaymentRequest) Validate() error {
	if err := validIdentifier(r.Id, fault.ErrMissingId); nil != err {
		return err
	}
	if err := validIdentifier(r.AppId, fault.ErrMissingAppId); nil != err {
		return err
	}
	if len(memo.Create(r.AppId, r.Id)) > memo.MaximumLength {
		return fault.ErrMemoTooLong
	}
	if !ValidAddress(r.RecipientAddress) {
		return fault.ErrInvalidAddress
	}
	if r.Amount <= 0 {
		return fault.ErrInvalidAmount
	}
	return validCallback(r.Callback)
}

// WalletRequest - create an account once
type WalletRequest struct {
	Id            string `json:"id"`
	AppId         string `json:"app_id"`
	WalletAddress string `json:"wallet_address"`
	Callback      string `json:"callback"`
}

// Validate - check required fields
func (r *WalletRequest) Validate() error {
	if err := validIdentifier(r.Id, fault.ErrMissingId); nil != err {
		return err
	}
	if err := validIdentifier(r.AppId, fault.ErrMissingAppId); nil != err {
		return err
	}
	if len(memo.CreateWallet(r.AppId)) > memo.MaximumLength {
		return fault.ErrMemoTooLong
	}
	if !ValidAddress(r.WalletAddress) {
		return fault.ErrInvalidAddress
	}
	return validCallback(r.Callback)
}

// ValidAddress - true for a well formed account address
func ValidAddress(address string) bool {
	return strkey.IsValidEd25519PublicKey(address)
}

// identifiers end up in a memo so must not contain the separator
func validIdentifier(id string, missing error) error {
	if "" == strings.TrimSpace(id) {
		return missing
	}
	if strings.Contains(id, "-") {
		return fault.ErrInvalidMemo
	}
	return nil
}

func validCallback(callback string) error {
	u, err := url.Parse(callback)
	if nil != err || "" == u.Host {
		return fault.ErrInvalidCallback
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return fault.ErrInvalidCallback
	}
}

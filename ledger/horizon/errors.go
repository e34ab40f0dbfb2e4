// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package horizon

import (
	"fmt"

	"github.com/stellar/go/clients/horizonclient"

	"github.com/bitmark-inc/paymentd/fault"
)

// result codes with a fixed meaning, operation codes are checked
// before the transaction code
var resultCodes = map[string]error{
	"op_no_destination":       fault.ErrAccountNotFound,
	"op_no_trust":             fault.ErrNoTrustline,
	"op_not_authorized":       fault.ErrNoTrustline,
	"op_src_no_trust":         fault.ErrSourceNotReady,
	"tx_no_account":           fault.ErrSourceNotReady,
	"op_already_exists":       fault.ErrAccountExists,
	"op_underfunded":          fault.ErrLowBalance,
	"op_low_reserve":          fault.ErrLowBalance,
	"tx_insufficient_balance": fault.ErrLowBalance,
}

// classify a submission error
func classify(err error) error {
	hError := horizonclient.GetError(err)
	if nil == hError {
		return transient(err)
	}

	codes, e := hError.ResultCodes()
	if nil != e || nil == codes {
		return transient(err)
	}

	for _, code := range codes.OperationCodes {
		if mapped, ok := resultCodes[code]; ok {
			return mapped
		}
	}
	for _, code := range []string{codes.TransactionCode, codes.InnerTransactionCode} {
		if mapped, ok := resultCodes[code]; ok {
			return mapped
		}
	}
	return transient(err)
}

// wrap anything unrecognised so that the job queue retries it
func transient(err error) error {
	return fmt.Errorf("%w: %v", fault.ErrLedgerUnavailable, err)
}

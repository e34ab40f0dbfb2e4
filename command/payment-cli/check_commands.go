// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/paymentd/fault"
)

var (
	ErrRequiredAddress   = fault.InvalidError("wallet address is required")
	ErrRequiredAmount    = fault.InvalidError("amount is required")
	ErrRequiredAppId     = fault.InvalidError("app id is required")
	ErrRequiredCallback  = fault.InvalidError("callback is required")
	ErrRequiredId        = fault.InvalidError("id is required")
	ErrRequiredPaymentId = fault.InvalidError("payment id is required")
	ErrRequiredServiceId = fault.InvalidError("service id is required")
)

// non-blank string flag
func checkString(c *cli.Context, name string, missing error) (string, error) {
	value := c.String(name)
	if "" == value {
		return "", missing
	}
	return value, nil
}

// non-blank positional argument
func checkArgument(c *cli.Context, n int, missing error) (string, error) {
	value := c.Args().Get(n)
	if "" == value {
		return "", missing
	}
	return value, nil
}

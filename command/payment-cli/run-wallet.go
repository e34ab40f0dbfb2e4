// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/model"
)

func runCreateWallet(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := checkString(c, "id", ErrRequiredId)
	if nil != err {
		return err
	}
	appId, err := checkString(c, "app-id", ErrRequiredAppId)
	if nil != err {
		return err
	}
	address, err := checkString(c, "address", ErrRequiredAddress)
	if nil != err {
		return err
	}
	callback, err := checkString(c, "callback", ErrRequiredCallback)
	if nil != err {
		return err
	}

	request := &model.WalletRequest{
		Id:            id,
		AppId:         appId,
		WalletAddress: address,
		Callback:      callback,
	}
	return m.call(http.MethodPost, request, nil, "wallets")
}

func runWallet(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	address, err := checkArgument(c, 0, ErrRequiredAddress)
	if nil != err {
		return err
	}
	return m.call(http.MethodGet, nil, nil, "wallets", address)
}

func runWalletPayments(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	address, err := checkArgument(c, 0, ErrRequiredAddress)
	if nil != err {
		return err
	}
	count := c.Int("count")
	if count <= 0 {
		return fault.ErrInvalidCount
	}

	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	return m.call(http.MethodGet, nil, query, "wallets", address, "payments")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/http"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/paymentd/model"
)

func runPay(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := checkString(c, "id", ErrRequiredId)
	if nil != err {
		return err
	}
	appId, err := checkString(c, "app-id", ErrRequiredAppId)
	if nil != err {
		return err
	}
	recipient, err := checkString(c, "recipient", ErrRequiredAddress)
	if nil != err {
		return err
	}
	callback, err := checkString(c, "callback", ErrRequiredCallback)
	if nil != err {
		return err
	}
	amount := c.Int64("amount")
	if amount <= 0 {
		return ErrRequiredAmount
	}

	request := &model.PaymentRequest{
		Id:               id,
		AppId:            appId,
		RecipientAddress: recipient,
		Amount:           amount,
		Callback:         callback,
	}
	return m.call(http.MethodPost, request, nil, "payments")
}

func runPayment(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := checkArgument(c, 0, ErrRequiredId)
	if nil != err {
		return err
	}
	return m.call(http.MethodGet, nil, nil, "payments", id)
}

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

func runWatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	serviceId, err := checkString(c, "service", ErrRequiredServiceId)
	if nil != err {
		return err
	}

	service := &model.Service{
		Callback:        c.String("callback"),
		WalletAddresses: c.StringSlice("address"),
	}
	if nil == service.WalletAddresses {
		service.WalletAddresses = []string{}
	}

	if c.Bool("add") {
		return m.call(http.MethodPost, service, nil, "watchers", serviceId)
	}

	if "" == service.Callback {
		return ErrRequiredCallback
	}
	return m.call(http.MethodPut, service, nil, "services", serviceId)
}

func runUnwatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	serviceId, err := checkArgument(c, 0, ErrRequiredServiceId)
	if nil != err {
		return err
	}
	return m.call(http.MethodDelete, nil, nil, "services", serviceId)
}

// SERVICE ADDRESS PAYMENT
func paymentWatchArguments(c *cli.Context) ([]string, error) {
	serviceId, err := checkArgument(c, 0, ErrRequiredServiceId)
	if nil != err {
		return nil, err
	}
	address, err := checkArgument(c, 1, ErrRequiredAddress)
	if nil != err {
		return nil, err
	}
	paymentId, err := checkArgument(c, 2, ErrRequiredPaymentId)
	if nil != err {
		return nil, err
	}
	return []string{"services", serviceId, "watchers", address, "payments", paymentId}, nil
}

func runWatchPayment(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	elements, err := paymentWatchArguments(c)
	if nil != err {
		return err
	}
	return m.call(http.MethodPut, nil, nil, elements...)
}

func runUnwatchPayment(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	elements, err := paymentWatchArguments(c)
	if nil != err {
		return err
	}
	return m.call(http.MethodDelete, nil, nil, elements...)
}

func runWatchers(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return m.call(http.MethodGet, nil, nil, "watchers")
}

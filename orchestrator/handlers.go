// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/model"
)

// queue handlers: undecodable payloads can never succeed

func (o *Orchestrator) payHandler(ctx context.Context, payload json.RawMessage) error {
	request := &model.PaymentRequest{}
	if err := json.Unmarshal(payload, request); nil != err {
		return fault.Permanent(err)
	}
	if err := request.Validate(); nil != err {
		return fault.Permanent(err)
	}
	_, err := o.Pay(ctx, request)
	return err
}

func (o *Orchestrator) walletHandler(ctx context.Context, payload json.RawMessage) error {
	request := &model.WalletRequest{}
	if err := json.Unmarshal(payload, request); nil != err {
		return fault.Permanent(err)
	}
	if err := request.Validate(); nil != err {
		return fault.Permanent(err)
	}
	return o.CreateWallet(ctx, request)
}

func (o *Orchestrator) callbackHandler(ctx context.Context, payload json.RawMessage) error {
	job := &model.CallbackJob{}
	if err := json.Unmarshal(payload, job); nil != err {
		return fault.Permanent(err)
	}
	return o.DeliverCallback(ctx, job)
}

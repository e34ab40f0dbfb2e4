// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"

	"github.com/bitmark-inc/paymentd/channel"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/memo"
	"github.com/bitmark-inc/paymentd/model"
)

// EnqueueWallet - validate and queue a wallet creation
func (o *Orchestrator) EnqueueWallet(request *model.WalletRequest) error {
	if err := request.Validate(); nil != err {
		return err
	}

	_, err := o.queue.Enqueue(KindCreateWallet, request, o.walletAttempts)
	if nil == err {
		o.log.Infof("queued wallet: %s  app: %s  address: %s", request.Id, request.AppId, request.WalletAddress)
	}
	return err
}

// GetWallet - current balances of an account
func (o *Orchestrator) GetWallet(ctx context.Context, address string) (*model.Wallet, error) {
	if !model.ValidAddress(address) {
		return nil, fault.ErrInvalidAddress
	}

	account, err := o.ledger.GetAccount(ctx, address)
	if fault.ErrAccountNotFound == err {
		return nil, fault.ErrWalletNotFound
	}
	if nil != err {
		return nil, err
	}
	return model.WalletFromAccount(account), nil
}

// CreateWallet - create and fund an account unless it exists
//
// an existing account is reported by a failure callback and is not an
// error; other failures are reported and returned so the job retries,
// except a low funding balance which is permanent
func (o *Orchestrator) CreateWallet(ctx context.Context, request *model.WalletRequest) error {

	log := o.log

	exists, err := o.ledger.AccountExists(ctx, request.WalletAddress)
	if nil != err {
		return err
	}
	if exists {
		o.walletFailed(request, fault.ErrAccountExists)
		return nil
	}

	lock, err := o.store.Lock(ctx, walletLockPrefix+request.WalletAddress, o.lockTTL, o.lockWait)
	if nil != err {
		return err
	}
	defer func() {
		if err := lock.Release(); nil != err {
			log.Warnf("wallet: %s  lock release error: %s", request.WalletAddress, err)
		}
	}()

	exists, err = o.ledger.AccountExists(ctx, request.WalletAddress)
	if nil != err {
		return err
	}
	if exists {
		o.walletFailed(request, fault.ErrAccountExists)
		return nil
	}

	text := memo.CreateWallet(request.AppId)
	err = o.channels.With(ctx, func(ch *channel.Channel) error {
		_, err := o.ledger.CreateAccount(ctx, ch.Seed(), request.WalletAddress, o.walletAmount, text)
		return err
	})

	switch {
	case nil == err:
		log.Infof("wallet: %s  created  app: %s", request.WalletAddress, request.AppId)
		o.notify(request.Callback, request.AppId, model.ObjectWallet, model.StateSuccess, model.ActionCreate, request)
		return nil

	case fault.ErrAccountExists == err:
		o.walletFailed(request, err)
		return nil

	case fault.ErrLowBalance == err:
		log.Criticalf("wallet: %s  funding error: %s", request.WalletAddress, err)
		o.walletFailed(request, err)
		return fault.Permanent(err)

	default:
		log.Errorf("wallet: %s  error: %s", request.WalletAddress, err)
		o.walletFailed(request, err)
		return err
	}
}

func (o *Orchestrator) walletFailed(request *model.WalletRequest, err error) {
	o.log.Warnf("wallet: %s  failed: %s", request.WalletAddress, err)
	failure := model.Failure{
		Id:            request.Id,
		AppId:         request.AppId,
		WalletAddress: request.WalletAddress,
		Reason:        err.Error(),
	}
	o.notify(request.Callback, request.AppId, model.ObjectWallet, model.StateFail, model.ActionCreate, failure)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/paymentd/channel"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/memo"
	"github.com/bitmark-inc/paymentd/model"
)

// GetPayment - a completed payment still inside the idempotence window
func (o *Orchestrator) GetPayment(id string) (*model.Payment, error) {
	data, err := o.store.Get(paymentPrefix + id)
	if fault.IsErrNotFound(err) {
		return nil, fault.ErrPaymentNotFound
	}
	if nil != err {
		return nil, err
	}

	payment := &model.Payment{}
	if err := json.Unmarshal(data, payment); nil != err {
		return nil, err
	}
	return payment, nil
}

// EnqueuePayment - validate and queue a payment request
//
// a payment already completed under the same id is fault.ErrPaymentExists
func (o *Orchestrator) EnqueuePayment(request *model.PaymentRequest) error {
	if err := request.Validate(); nil != err {
		return err
	}

	_, err := o.GetPayment(request.Id)
	if nil == err {
		return fault.ErrPaymentExists
	}
	if fault.ErrPaymentNotFound != err {
		return err
	}

	_, err = o.queue.Enqueue(KindPay, request, o.paymentJobAttempts)
	if nil == err {
		o.log.Infof("queued payment: %s  app: %s  amount: %d", request.Id, request.AppId, request.Amount)
	}
	return err
}

// Pay - send the payment unless it was already sent
//
// recipient errors, and any other error that no retry can fix, are
// returned wrapped by fault.Permanent after a failure callback has been
// queued; a low funding balance and every other error is transient
func (o *Orchestrator) Pay(ctx context.Context, request *model.PaymentRequest) (*model.Payment, error) {

	log := o.log

	payment, err := o.GetPayment(request.Id)
	if nil == err {
		log.Infof("payment: %s  already sent: %s", request.Id, payment.TransactionId)
		return payment, nil
	}
	if fault.ErrPaymentNotFound != err {
		return nil, err
	}

	lock, err := o.store.Lock(ctx, payLockPrefix+request.Id, o.lockTTL, o.lockWait)
	if nil != err {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); nil != err {
			log.Warnf("payment: %s  lock release error: %s", request.Id, err)
		}
	}()

	// another worker may have finished while this one waited
	payment, err = o.GetPayment(request.Id)
	if nil == err {
		log.Infof("payment: %s  sent concurrently: %s", request.Id, payment.TransactionId)
		return payment, nil
	}
	if fault.ErrPaymentNotFound != err {
		return nil, err
	}

	text := memo.Create(request.AppId, request.Id)

	var transactionId string
	err = o.channels.With(ctx, func(ch *channel.Channel) error {
		var err error
		transactionId, err = o.ledger.SendPayment(ctx, ch.Seed(), request.RecipientAddress, request.Amount, text)
		return err
	})

	if nil != err {
		if fault.ErrLowBalance == err {
			log.Criticalf("payment: %s  funding error: %s", request.Id, err)
			return nil, fault.ErrInsufficientFunds
		}
		if !recipientError(err) && !fault.IsErrPermanent(err) {
			log.Errorf("payment: %s  error: %s", request.Id, err)
			return nil, err
		}

		log.Warnf("payment: %s  recipient: %s  error: %s", request.Id, request.RecipientAddress, err)
		failure := model.Failure{
			Id:            request.Id,
			AppId:         request.AppId,
			WalletAddress: request.RecipientAddress,
			Reason:        err.Error(),
		}
		o.notify(request.Callback, request.AppId, model.ObjectPayment, model.StateFail, model.ActionSend, failure)
		return nil, fault.Permanent(err)
	}

	payment = &model.Payment{
		Id:               request.Id,
		AppId:            request.AppId,
		TransactionId:    transactionId,
		SenderAddress:    o.ledger.RootAddress(),
		RecipientAddress: request.RecipientAddress,
		Amount:           request.Amount,
		Timestamp:        time.Now().UTC(),
	}

	// the payment is on the ledger: failing here would let a retry pay twice
	if err := o.savePayment(payment); nil != err {
		log.Criticalf("payment: %s  tx: %s  save error: %s", payment.Id, transactionId, err)
	}

	log.Infof("payment: %s  sent: %s  amount: %d", payment.Id, transactionId, payment.Amount)
	o.notify(request.Callback, request.AppId, model.ObjectPayment, model.StateSuccess, model.ActionSend, payment)

	return payment, nil
}

func (o *Orchestrator) savePayment(payment *model.Payment) error {
	data, err := json.Marshal(payment)
	if nil != err {
		return err
	}
	return o.store.Set(paymentPrefix+payment.Id, data, o.paymentTTL)
}

// the recipient cannot receive the asset
func recipientError(err error) bool {
	return fault.ErrAccountNotFound == err || fault.ErrNoTrustline == err
}

// WalletPayments - the most recent limit parsed payments touching an
// address, newest last; transactions that are not ours are skipped
func (o *Orchestrator) WalletPayments(ctx context.Context, address string, limit int) ([]*model.Payment, error) {
	if !model.ValidAddress(address) {
		return nil, fault.ErrInvalidAddress
	}
	if limit < 1 {
		return nil, fault.ErrInvalidCount
	}

	asset := o.ledger.Asset()
	seen := make(map[string]struct{})
	payments := make([]*model.Payment, 0, limit)

	// walk back from the newest record until enough payments are found
	cursor := ""
scan:
	for {
		records, next, err := o.ledger.AccountPayments(ctx, address, cursor, historyPageSize, ledger.Descending)
		if fault.ErrAccountNotFound == err {
			return nil, fault.ErrWalletNotFound
		}
		if nil != err {
			return nil, err
		}

		for _, record := range records {
			if ledger.OperationPayment != record.Type || !asset.Matches(record.AssetCode, record.AssetIssuer) {
				continue
			}
			if _, ok := seen[record.TransactionHash]; ok {
				continue
			}
			seen[record.TransactionHash] = struct{}{}

			tx, err := o.ledger.GetTransaction(ctx, record.TransactionHash)
			if nil != err {
				return nil, err
			}
			payment, err := model.PaymentFromTransaction(tx, record)
			if nil != err {
				o.log.Debugf("skip tx: %s  error: %s", record.TransactionHash, err)
				continue
			}
			payments = append(payments, payment)
			if len(payments) >= limit {
				break scan
			}
		}

		if len(records) < historyPageSize || next == cursor {
			break
		}
		cursor = next
	}

	for i, j := 0, len(payments)-1; i < j; i, j = i+1, j-1 {
		payments[i], payments[j] = payments[j], payments[i]
	}
	return payments, nil
}

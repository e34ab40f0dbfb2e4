// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package model

import (
	"time"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/memo"
)

// Payment - a completed payment
type Payment struct {
	Id               string    `json:"id"`
	AppId            string    `json:"app_id"`
	TransactionId    string    `json:"transaction_id"`
	SenderAddress    string    `json:"sender_address"`
	RecipientAddress string    `json:"recipient_address"`
	Amount           int64     `json:"amount"`
	Timestamp        time.Time `json:"timestamp"`
}

// PaymentFromTransaction - reconstruct a payment from a ledger
// transaction and the payment record that led to it
//
// the memo supplies the ids; the operation of the record supplies the
// parties and amount
func PaymentFromTransaction(tx *ledger.Transaction, record ledger.PaymentRecord) (*Payment, error) {
	if nil == tx {
		return nil, fault.ErrTransactionNotFound
	}

	m, err := memo.Parse(tx.Memo)
	if nil != err {
		return nil, err
	}

	for _, op := range tx.Operations {
		if ledger.OperationPayment != op.Type || !sameOperation(op, record) {
			continue
		}
		return &Payment{
			Id:               m.PaymentId,
			AppId:            m.AppId,
			TransactionId:    tx.Hash,
			SenderAddress:    op.From,
			RecipientAddress: op.To,
			Amount:           op.Amount,
			Timestamp:        tx.CreatedAt.UTC(),
		}, nil
	}
	return nil, fault.ErrNoPaymentOperation
}

// operation ids are paging tokens; compare the contents when either is absent
func sameOperation(op ledger.Operation, record ledger.PaymentRecord) bool {
	if "" != op.Id && "" != record.PagingToken {
		return op.Id == record.PagingToken
	}
	return op.From == record.From &&
		op.To == record.To &&
		op.Amount == record.Amount &&
		op.AssetCode == record.AssetCode &&
		op.AssetIssuer == record.AssetIssuer
}

// Wallet - balances of an account
type Wallet struct {
	WalletAddress string `json:"wallet_address"`
	KinBalance    int64  `json:"kin_balance"`
	NativeBalance int64  `json:"native_balance"`
}

// WalletFromAccount - convert ledger balances
func WalletFromAccount(account *ledger.Account) *Wallet {
	return &Wallet{
		WalletAddress: account.Address,
		KinBalance:    account.AssetBalance,
		NativeBalance: account.NativeBalance,
	}
}

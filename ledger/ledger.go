// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the contract required from a ledger client
//
// all amounts are whole units of the asset concerned.  Errors are
// classified by the fault package:
//
//   fault.ErrAccountNotFound  - destination or queried account absent
//   fault.ErrNoTrustline      - destination cannot hold the asset
//   fault.ErrAccountExists    - account creation for an existing account
//   fault.ErrLowBalance       - funding account cannot cover the operation
//   fault.ErrSourceNotReady   - signing or funding account absent or unable to send
//   fault.ErrTransactionNotFound
//   TransientError            - anything else, safe to retry
package ledger

import (
	"context"
	"time"
)

// Network - identity of the ledger network, passed to the client
// constructor rather than registered globally
type Network struct {
	ID         string `gluamapper:"id" json:"id"`
	Passphrase string `gluamapper:"passphrase" json:"passphrase"`
}

// Asset - the token this service transfers
type Asset struct {
	Code   string `gluamapper:"code" json:"code"`
	Issuer string `gluamapper:"issuer" json:"issuer"`
}

// Matches - true if code and issuer both match
func (a Asset) Matches(code string, issuer string) bool {
	return a.Code == code && a.Issuer == issuer
}

// Account - balances of an on-ledger account
type Account struct {
	Address       string
	Sequence      int64
	NativeBalance int64
	AssetBalance  int64
	HasTrustline  bool
}

// Order - direction of a paged listing
type Order int

// listing orders
const (
	Ascending Order = iota
	Descending
)

// operation types that matter here
const (
	OperationPayment       = "payment"
	OperationCreateAccount = "create_account"
)

// Operation - one operation of a transaction
type Operation struct {
	Id          string
	Type        string
	From        string
	To          string
	Amount      int64
	AssetCode   string
	AssetIssuer string
}

// Transaction - a confirmed transaction
type Transaction struct {
	Hash       string
	Memo       string
	CreatedAt  time.Time
	Operations []Operation
}

// PaymentRecord - one entry of the ordered payment stream
type PaymentRecord struct {
	PagingToken     string
	TransactionHash string
	Type            string
	From            string
	To              string
	Amount          int64
	AssetCode       string
	AssetIssuer     string
}

//go:generate mockgen -destination=mocks/client.go -package=mocks github.com/bitmark-inc/paymentd/ledger Client

// Client - operations required from a ledger
//
// signer is the secret seed of the channel that supplies the
// transaction sequence number and fee; the root account remains the
// source of funds and also signs.  An empty signer means the root
// account alone.
type Client interface {
	RootAddress() string
	Asset() Asset

	AccountExists(ctx context.Context, address string) (bool, error)
	GetAccount(ctx context.Context, address string) (*Account, error)

	CreateAccount(ctx context.Context, signer string, address string, nativeAmount int64, memo string) (string, error)
	SendPayment(ctx context.Context, signer string, destination string, amount int64, memo string) (string, error)
	SendNative(ctx context.Context, signer string, destination string, amount int64, memo string) (string, error)

	GetTransaction(ctx context.Context, hash string) (*Transaction, error)

	// Payments - next batch of the global stream strictly after cursor,
	// ascending, with the cursor to resume from
	Payments(ctx context.Context, cursor string, limit int) ([]PaymentRecord, string, error)

	// AccountPayments - operations touching one account strictly after
	// cursor in the given order, an empty cursor starts at the oldest
	// or the newest
	AccountPayments(ctx context.Context, address string, cursor string, limit int, order Order) ([]PaymentRecord, string, error)

	// LatestCursor - position of the current tip of the payment stream
	LatestCursor(ctx context.Context) (string, error)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package horizon - ledger client backed by a Horizon server
package horizon

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
)

const (
	transactionTimeout    = 300 // seconds
	defaultRequestTimeout = 30 * time.Second
	operationsPerTx       = 200
)

// Configuration - the ledger section of the configuration file
type Configuration struct {
	HorizonURL          string         `gluamapper:"horizon_url" json:"horizon_url"`
	Network             ledger.Network `gluamapper:"network" json:"network"`
	RootSeed            string         `gluamapper:"root_seed" json:"-"`
	Asset               ledger.Asset   `gluamapper:"asset" json:"asset"`
	InitialNativeAmount int64          `gluamapper:"initial_native_amount" json:"initial_native_amount"`
	WalletNativeAmount  int64          `gluamapper:"wallet_native_amount" json:"wallet_native_amount"`
	RequestTimeout      int            `gluamapper:"request_timeout" json:"request_timeout"`
}

// Client - ledger.Client over horizonclient
type Client struct {
	log     *logger.L
	horizon horizonclient.ClientInterface
	network ledger.Network
	asset   ledger.Asset
	root    *keypair.Full
}

// ensure the interface is satisfied
var _ ledger.Client = (*Client)(nil)

// New - client for a configured Horizon server
func New(configuration *Configuration) (*Client, error) {
	timeout := defaultRequestTimeout
	if configuration.RequestTimeout > 0 {
		timeout = time.Duration(configuration.RequestTimeout) * time.Second
	}

	h := &horizonclient.Client{
		HorizonURL: configuration.HorizonURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
	return NewWithHorizon(h, configuration.Network, configuration.Asset, configuration.RootSeed)
}

// NewWithHorizon - client over an existing horizon connection
func NewWithHorizon(h horizonclient.ClientInterface, network ledger.Network, asset ledger.Asset, rootSeed string) (*Client, error) {
	if "" == network.Passphrase {
		return nil, fault.ErrWrongNetworkPassphrase
	}

	root, err := keypair.ParseFull(rootSeed)
	if nil != err {
		return nil, fault.ErrInvalidSeed
	}

	return &Client{
		log:     logger.New("ledger"),
		horizon: h,
		network: network,
		asset:   asset,
		root:    root,
	}, nil
}

// RootAddress - the funding account
func (c *Client) RootAddress() string {
	return c.root.Address()
}

// Asset - the transferred asset
func (c *Client) Asset() ledger.Asset {
	return c.asset
}

// AccountExists - check for an on-ledger account
func (c *Client) AccountExists(ctx context.Context, address string) (bool, error) {
	_, err := c.GetAccount(ctx, address)
	if nil == err {
		return true, nil
	}
	if fault.ErrAccountNotFound == err {
		return false, nil
	}
	return false, err
}

// GetAccount - balances of an account
func (c *Client) GetAccount(ctx context.Context, address string) (*ledger.Account, error) {
	if err := ctx.Err(); nil != err {
		return nil, transient(err)
	}

	account, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if nil != err {
		if horizonclient.IsNotFoundError(err) {
			return nil, fault.ErrAccountNotFound
		}
		return nil, transient(err)
	}

	result := &ledger.Account{
		Address: account.AccountID,
	}
	if sequence, err := account.GetSequenceNumber(); nil == err {
		result.Sequence = sequence
	}

	for _, balance := range account.Balances {
		switch {
		case "native" == balance.Asset.Type:
			result.NativeBalance = units(balance.Balance)
		case c.asset.Matches(balance.Asset.Code, balance.Asset.Issuer):
			result.HasTrustline = true
			result.AssetBalance = units(balance.Balance)
		}
	}
	return result, nil
}

// CreateAccount - fund a new account with native currency
func (c *Client) CreateAccount(ctx context.Context, signer string, address string, nativeAmount int64, memo string) (string, error) {
	op := &txnbuild.CreateAccount{
		Destination:   address,
		Amount:        amount(nativeAmount),
		SourceAccount: c.root.Address(),
	}
	return c.submit(ctx, signer, op, memo)
}

// SendPayment - transfer the configured asset from the root account
func (c *Client) SendPayment(ctx context.Context, signer string, destination string, value int64, memo string) (string, error) {
	op := &txnbuild.Payment{
		Destination: destination,
		Amount:      amount(value),
		Asset: txnbuild.CreditAsset{
			Code:   c.asset.Code,
			Issuer: c.asset.Issuer,
		},
		SourceAccount: c.root.Address(),
	}
	return c.submit(ctx, signer, op, memo)
}

// SendNative - transfer native currency from the root account
func (c *Client) SendNative(ctx context.Context, signer string, destination string, value int64, memo string) (string, error) {
	op := &txnbuild.Payment{
		Destination:   destination,
		Amount:        amount(value),
		Asset:         txnbuild.NativeAsset{},
		SourceAccount: c.root.Address(),
	}
	return c.submit(ctx, signer, op, memo)
}

// build, sign and submit a single operation transaction
//
// the signer account supplies the sequence number
func (c *Client) submit(ctx context.Context, signer string, op txnbuild.Operation, memo string) (string, error) {
	if err := ctx.Err(); nil != err {
		return "", transient(err)
	}

	signers := []*keypair.Full{c.root}
	source := c.root
	if "" != signer {
		channel, err := keypair.ParseFull(signer)
		if nil != err {
			return "", fault.Permanent(fault.ErrInvalidSeed)
		}
		source = channel
		signers = append(signers, channel)
	}

	account, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: source.Address()})
	if nil != err {
		return "", transient(err)
	}

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount:        &account,
			IncrementSequenceNum: true,
			Operations:           []txnbuild.Operation{op},
			BaseFee:              txnbuild.MinBaseFee,
			Memo:                 txnbuild.MemoText(memo),
			Preconditions: txnbuild.Preconditions{
				TimeBounds: txnbuild.NewTimeout(transactionTimeout),
			},
		},
	)
	if nil != err {
		return "", fault.Permanent(err)
	}

	tx, err = tx.Sign(c.network.Passphrase, signers...)
	if nil != err {
		return "", fault.Permanent(err)
	}

	result, err := c.horizon.SubmitTransaction(tx)
	if nil != err {
		c.log.Warnf("submit from: %s  memo: %q  error: %s", source.Address(), memo, err)
		return "", classify(err)
	}

	c.log.Debugf("submitted: %s  memo: %q", result.Hash, memo)
	return result.Hash, nil
}

// GetTransaction - transaction with its operations
func (c *Client) GetTransaction(ctx context.Context, hash string) (*ledger.Transaction, error) {
	if err := ctx.Err(); nil != err {
		return nil, transient(err)
	}

	tx, err := c.horizon.TransactionDetail(hash)
	if nil != err {
		if horizonclient.IsNotFoundError(err) {
			return nil, fault.ErrTransactionNotFound
		}
		return nil, transient(err)
	}

	page, err := c.horizon.Operations(horizonclient.OperationRequest{
		ForTransaction: hash,
		Limit:          operationsPerTx,
	})
	if nil != err {
		return nil, transient(err)
	}

	result := &ledger.Transaction{
		Hash:       tx.Hash,
		CreatedAt:  tx.LedgerCloseTime,
		Operations: make([]ledger.Operation, 0, len(page.Embedded.Records)),
	}
	if "text" == tx.MemoType {
		result.Memo = tx.Memo
	}

	for _, op := range page.Embedded.Records {
		record := toRecord(op)
		result.Operations = append(result.Operations, ledger.Operation{
			Id:          op.GetID(),
			Type:        record.Type,
			From:        record.From,
			To:          record.To,
			Amount:      record.Amount,
			AssetCode:   record.AssetCode,
			AssetIssuer: record.AssetIssuer,
		})
	}
	return result, nil
}

// Payments - the global payment stream after cursor
func (c *Client) Payments(ctx context.Context, cursor string, limit int) ([]ledger.PaymentRecord, string, error) {
	return c.payments(ctx, horizonclient.OperationRequest{
		Cursor: cursor,
		Order:  horizonclient.OrderAsc,
		Limit:  uint(limit),
	})
}

// AccountPayments - payments touching one account after cursor
func (c *Client) AccountPayments(ctx context.Context, address string, cursor string, limit int, order ledger.Order) ([]ledger.PaymentRecord, string, error) {
	direction := horizonclient.OrderAsc
	if ledger.Descending == order {
		direction = horizonclient.OrderDesc
	}
	return c.payments(ctx, horizonclient.OperationRequest{
		ForAccount: address,
		Cursor:     cursor,
		Order:      direction,
		Limit:      uint(limit),
	})
}

func (c *Client) payments(ctx context.Context, request horizonclient.OperationRequest) ([]ledger.PaymentRecord, string, error) {
	if err := ctx.Err(); nil != err {
		return nil, request.Cursor, transient(err)
	}

	page, err := c.horizon.Payments(request)
	if nil != err {
		if horizonclient.IsNotFoundError(err) {
			return nil, request.Cursor, fault.ErrAccountNotFound
		}
		return nil, request.Cursor, transient(err)
	}

	next := request.Cursor
	records := make([]ledger.PaymentRecord, 0, len(page.Embedded.Records))
	for _, op := range page.Embedded.Records {
		record := toRecord(op)
		records = append(records, record)
		next = record.PagingToken
	}
	return records, next, nil
}

// LatestCursor - paging token of the newest payment record
func (c *Client) LatestCursor(ctx context.Context) (string, error) {
	if err := ctx.Err(); nil != err {
		return "", transient(err)
	}

	page, err := c.horizon.Payments(horizonclient.OperationRequest{
		Order: horizonclient.OrderDesc,
		Limit: 1,
	})
	if nil != err {
		return "", transient(err)
	}
	if 0 == len(page.Embedded.Records) {
		return "0", nil
	}
	return page.Embedded.Records[0].PagingToken(), nil
}

// convert a horizon operation to a stream record
func toRecord(op operations.Operation) ledger.PaymentRecord {
	record := ledger.PaymentRecord{
		PagingToken:     op.PagingToken(),
		TransactionHash: op.GetTransactionHash(),
		Type:            op.GetType(),
	}

	switch o := op.(type) {
	case operations.Payment:
		fillPayment(&record, &o)
	case *operations.Payment:
		fillPayment(&record, o)
	case operations.CreateAccount:
		fillCreate(&record, &o)
	case *operations.CreateAccount:
		fillCreate(&record, o)
	}
	return record
}

func fillPayment(record *ledger.PaymentRecord, o *operations.Payment) {
	record.Type = ledger.OperationPayment
	record.From = o.From
	record.To = o.To
	record.Amount = units(o.Amount)
	record.AssetCode = o.Asset.Code
	record.AssetIssuer = o.Asset.Issuer
}

func fillCreate(record *ledger.PaymentRecord, o *operations.CreateAccount) {
	record.Type = ledger.OperationCreateAccount
	record.From = o.Funder
	record.To = o.Account
	record.Amount = units(o.StartingBalance)
}

// ledger decimal string to whole units, truncating any fraction
func units(s string) int64 {
	d, err := decimal.NewFromString(s)
	if nil != err {
		return 0
	}
	return d.IntPart()
}

// whole units to a ledger decimal string
func amount(n int64) string {
	return decimal.NewFromInt(n).String()
}

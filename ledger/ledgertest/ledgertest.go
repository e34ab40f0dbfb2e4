// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgertest - an in-memory ledger for tests
//
// accounts, balances and an ordered payment stream; submissions are
// counted and failures can be injected per method
package ledgertest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
)

// method names for FailNext
const (
	MethodAccountExists  = "AccountExists"
	MethodGetAccount     = "GetAccount"
	MethodCreateAccount  = "CreateAccount"
	MethodSendPayment    = "SendPayment"
	MethodSendNative     = "SendNative"
	MethodGetTransaction = "GetTransaction"
	MethodPayments       = "Payments"
	MethodLatestCursor   = "LatestCursor"
)

const rootBalance = 1000000000

// Ledger - the fake
type Ledger struct {
	sync.Mutex

	// Delay - time each submission takes, widens race windows
	Delay time.Duration

	root         string
	asset        ledger.Asset
	accounts     map[string]*ledger.Account
	transactions map[string]*ledger.Transaction
	records      []ledger.PaymentRecord
	failures     map[string][]error
	signers      map[string]struct{}
	nextToken    uint64

	submissions int
	creations   int
	conflicts   int
	calls       map[string]int
}

// ensure the interface is satisfied
var _ ledger.Client = (*Ledger)(nil)

// New - a ledger with a funded root account
func New(rootAddress string, asset ledger.Asset) *Ledger {
	l := &Ledger{
		root:         rootAddress,
		asset:        asset,
		accounts:     make(map[string]*ledger.Account),
		transactions: make(map[string]*ledger.Transaction),
		failures:     make(map[string][]error),
		signers:      make(map[string]struct{}),
		calls:        make(map[string]int),
		nextToken:    1000,
	}
	l.accounts[rootAddress] = &ledger.Account{
		Address:       rootAddress,
		NativeBalance: rootBalance,
		AssetBalance:  rootBalance,
		HasTrustline:  true,
	}
	return l
}

// AddAccount - create an account directly
func (l *Ledger) AddAccount(address string, native int64, asset int64, trustline bool) {
	l.Lock()
	defer l.Unlock()
	l.accounts[address] = &ledger.Account{
		Address:       address,
		NativeBalance: native,
		AssetBalance:  asset,
		HasTrustline:  trustline,
	}
}

// FailNext - the next call of method returns err, calls queue up
func (l *Ledger) FailNext(method string, err error) {
	l.Lock()
	defer l.Unlock()
	l.failures[method] = append(l.failures[method], err)
}

// Submissions - number of successful asset payments
func (l *Ledger) Submissions() int {
	l.Lock()
	defer l.Unlock()
	return l.submissions
}

// Creations - number of successful account creations
func (l *Ledger) Creations() int {
	l.Lock()
	defer l.Unlock()
	return l.creations
}

// Conflicts - number of times one signer submitted concurrently
func (l *Ledger) Conflicts() int {
	l.Lock()
	defer l.Unlock()
	return l.conflicts
}

// Calls - number of calls of a method, including failures
func (l *Ledger) Calls(method string) int {
	l.Lock()
	defer l.Unlock()
	return l.calls[method]
}

// Account - copy of an account, nil if absent
func (l *Ledger) Account(address string) *ledger.Account {
	l.Lock()
	defer l.Unlock()
	a, ok := l.accounts[address]
	if !ok {
		return nil
	}
	result := *a
	return &result
}

// AddPayment - append an asset payment to the stream without
// touching balances, returns its record
func (l *Ledger) AddPayment(from string, to string, amount int64, memo string) ledger.PaymentRecord {
	l.Lock()
	defer l.Unlock()
	return l.appendPayment(from, to, amount, memo, l.asset)
}

// AddForeignPayment - a payment of some other asset
func (l *Ledger) AddForeignPayment(from string, to string, amount int64, memo string, asset ledger.Asset) ledger.PaymentRecord {
	l.Lock()
	defer l.Unlock()
	return l.appendPayment(from, to, amount, memo, asset)
}

// AddOther - a stream record that is not a payment
func (l *Ledger) AddOther(kind string) ledger.PaymentRecord {
	l.Lock()
	defer l.Unlock()

	hash := l.hash()
	record := ledger.PaymentRecord{
		PagingToken:     l.token(),
		TransactionHash: hash,
		Type:            kind,
	}
	l.transactions[hash] = &ledger.Transaction{
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
		Operations: []ledger.Operation{
			{Id: record.PagingToken, Type: kind},
		},
	}
	l.records = append(l.records, record)
	return record
}

// Records - copy of the whole stream
func (l *Ledger) Records() []ledger.PaymentRecord {
	l.Lock()
	defer l.Unlock()
	return append([]ledger.PaymentRecord(nil), l.records...)
}

// RootAddress - funding account
func (l *Ledger) RootAddress() string {
	return l.root
}

// Asset - transferred asset
func (l *Ledger) Asset() ledger.Asset {
	return l.asset
}

// AccountExists - ledger.Client
func (l *Ledger) AccountExists(ctx context.Context, address string) (bool, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.failure(MethodAccountExists); nil != err {
		return false, err
	}
	_, ok := l.accounts[address]
	return ok, nil
}

// GetAccount - ledger.Client
func (l *Ledger) GetAccount(ctx context.Context, address string) (*ledger.Account, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.failure(MethodGetAccount); nil != err {
		return nil, err
	}
	a, ok := l.accounts[address]
	if !ok {
		return nil, fault.ErrAccountNotFound
	}
	result := *a
	return &result, nil
}

// CreateAccount - ledger.Client
func (l *Ledger) CreateAccount(ctx context.Context, signer string, address string, nativeAmount int64, memo string) (string, error) {
	return l.submit(MethodCreateAccount, signer, func() (string, error) {
		if _, ok := l.accounts[address]; ok {
			return "", fault.ErrAccountExists
		}
		root := l.accounts[l.root]
		if root.NativeBalance < nativeAmount {
			return "", fault.ErrLowBalance
		}
		root.NativeBalance -= nativeAmount
		l.accounts[address] = &ledger.Account{
			Address:       address,
			NativeBalance: nativeAmount,
		}
		l.creations += 1

		hash := l.hash()
		record := ledger.PaymentRecord{
			PagingToken:     l.token(),
			TransactionHash: hash,
			Type:            ledger.OperationCreateAccount,
			From:            l.root,
			To:              address,
			Amount:          nativeAmount,
		}
		l.records = append(l.records, record)
		l.transactions[hash] = &ledger.Transaction{
			Hash:      hash,
			Memo:      memo,
			CreatedAt: time.Now().UTC(),
			Operations: []ledger.Operation{
				{Id: record.PagingToken, Type: record.Type, From: record.From, To: record.To, Amount: record.Amount},
			},
		}
		return hash, nil
	})
}

// SendPayment - ledger.Client
func (l *Ledger) SendPayment(ctx context.Context, signer string, destination string, amount int64, memo string) (string, error) {
	return l.submit(MethodSendPayment, signer, func() (string, error) {
		account, ok := l.accounts[destination]
		if !ok {
			return "", fault.ErrAccountNotFound
		}
		if !account.HasTrustline {
			return "", fault.ErrNoTrustline
		}
		root := l.accounts[l.root]
		if root.AssetBalance < amount {
			return "", fault.ErrLowBalance
		}
		root.AssetBalance -= amount
		account.AssetBalance += amount
		l.submissions += 1

		record := l.appendPayment(l.root, destination, amount, memo, l.asset)
		return record.TransactionHash, nil
	})
}

// SendNative - ledger.Client
func (l *Ledger) SendNative(ctx context.Context, signer string, destination string, amount int64, memo string) (string, error) {
	return l.submit(MethodSendNative, signer, func() (string, error) {
		account, ok := l.accounts[destination]
		if !ok {
			return "", fault.ErrAccountNotFound
		}
		root := l.accounts[l.root]
		if root.NativeBalance < amount {
			return "", fault.ErrLowBalance
		}
		root.NativeBalance -= amount
		account.NativeBalance += amount

		record := l.appendPayment(l.root, destination, amount, memo, ledger.Asset{})
		return record.TransactionHash, nil
	})
}

// GetTransaction - ledger.Client
func (l *Ledger) GetTransaction(ctx context.Context, hash string) (*ledger.Transaction, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.failure(MethodGetTransaction); nil != err {
		return nil, err
	}
	tx, ok := l.transactions[hash]
	if !ok {
		return nil, fault.ErrTransactionNotFound
	}
	result := *tx
	result.Operations = append([]ledger.Operation(nil), tx.Operations...)
	return &result, nil
}

// Payments - ledger.Client
func (l *Ledger) Payments(ctx context.Context, cursor string, limit int) ([]ledger.PaymentRecord, string, error) {
	return l.page(cursor, limit, ledger.Ascending, func(ledger.PaymentRecord) bool { return true })
}

// AccountPayments - ledger.Client
func (l *Ledger) AccountPayments(ctx context.Context, address string, cursor string, limit int, order ledger.Order) ([]ledger.PaymentRecord, string, error) {
	l.Lock()
	_, ok := l.accounts[address]
	l.Unlock()
	if !ok {
		return nil, cursor, fault.ErrAccountNotFound
	}
	return l.page(cursor, limit, order, func(r ledger.PaymentRecord) bool {
		return address == r.From || address == r.To
	})
}

// LatestCursor - ledger.Client
func (l *Ledger) LatestCursor(ctx context.Context) (string, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.failure(MethodLatestCursor); nil != err {
		return "", err
	}
	if 0 == len(l.records) {
		return "0", nil
	}
	return l.records[len(l.records)-1].PagingToken, nil
}

func (l *Ledger) page(cursor string, limit int, order ledger.Order, include func(ledger.PaymentRecord) bool) ([]ledger.PaymentRecord, string, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.failure(MethodPayments); nil != err {
		return nil, cursor, err
	}

	// records strictly beyond the cursor in the direction of travel
	beyond := 1
	if ledger.Descending == order {
		beyond = -1
	}

	next := cursor
	result := make([]ledger.PaymentRecord, 0, limit)
	for i := range l.records {
		if len(result) >= limit {
			break
		}
		r := l.records[i]
		if ledger.Descending == order {
			r = l.records[len(l.records)-1-i]
		}
		if "" != cursor && ledger.CompareCursor(r.PagingToken, cursor) != beyond {
			continue
		}
		if !include(r) {
			continue
		}
		result = append(result, r)
		next = r.PagingToken
	}
	return result, next, nil
}

// run a submission, detecting concurrent use of one signer
func (l *Ledger) submit(method string, signer string, f func() (string, error)) (string, error) {
	l.Lock()
	if err := l.failure(method); nil != err {
		l.Unlock()
		return "", err
	}
	if "" != signer {
		if _, busy := l.signers[signer]; busy {
			l.conflicts += 1
		}
		l.signers[signer] = struct{}{}
	}
	delay := l.Delay
	l.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	l.Lock()
	defer l.Unlock()
	if "" != signer {
		delete(l.signers, signer)
	}
	return f()
}

// must hold lock
func (l *Ledger) appendPayment(from string, to string, amount int64, memo string, asset ledger.Asset) ledger.PaymentRecord {
	hash := l.hash()
	record := ledger.PaymentRecord{
		PagingToken:     l.token(),
		TransactionHash: hash,
		Type:            ledger.OperationPayment,
		From:            from,
		To:              to,
		Amount:          amount,
		AssetCode:       asset.Code,
		AssetIssuer:     asset.Issuer,
	}
	l.records = append(l.records, record)
	l.transactions[hash] = &ledger.Transaction{
		Hash:      hash,
		Memo:      memo,
		CreatedAt: time.Now().UTC(),
		Operations: []ledger.Operation{
			{
				Id:          record.PagingToken,
				Type:        ledger.OperationPayment,
				From:        from,
				To:          to,
				Amount:      amount,
				AssetCode:   asset.Code,
				AssetIssuer: asset.Issuer,
			},
		},
	}
	return record
}

// must hold lock
func (l *Ledger) failure(method string) error {
	l.calls[method] += 1
	queue := l.failures[method]
	if 0 == len(queue) {
		return nil
	}
	err := queue[0]
	l.failures[method] = queue[1:]
	return err
}

// must hold lock
func (l *Ledger) token() string {
	l.nextToken += 1
	return strconv.FormatUint(l.nextToken, 10)
}

// must hold lock
func (l *Ledger) hash() string {
	digest := sha256.Sum256([]byte(strconv.FormatUint(l.nextToken+1, 10) + l.root))
	return hex.EncodeToString(digest[:])
}

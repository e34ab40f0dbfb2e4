// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package orchestrator - exactly once payments and wallet creation
//
// requests arrive as queued jobs; each handler is idempotent on the
// request id so re-execution after a crash or a duplicate enqueue
// never writes to the ledger twice while the completed record lives
package orchestrator

import (
	"context"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/channel"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/queue"
	"github.com/bitmark-inc/paymentd/storage"
)

// job kinds
const (
	KindPay          = "pay"
	KindCreateWallet = "create_wallet"
	KindCallback     = "callback"
)

// defaults
const (
	defaultPaymentTTL       = 3600 * time.Second
	defaultLockTTL          = 180 * time.Second
	defaultLockWait         = 120 * time.Second
	defaultCallbackAttempts = 5
	defaultCallbackDelay    = 200 * time.Millisecond
	defaultCallbackTimeout  = 10 * time.Second
	defaultWalletAttempts   = 3
	defaultWalletAmount     = 5

	historyPageSize = 50

	paymentPrefix    = "payment:"
	payLockPrefix    = "pay:"
	walletLockPrefix = "wallet:"
)

// Configuration - the orchestrator section of the configuration file
type Configuration struct {
	PaymentTTLSeconds         int `gluamapper:"payment_ttl_seconds" json:"payment_ttl_seconds"`
	LockSeconds               int `gluamapper:"lock_seconds" json:"lock_seconds"`
	LockWaitSeconds           int `gluamapper:"lock_wait_seconds" json:"lock_wait_seconds"`
	CallbackAttempts          int `gluamapper:"callback_attempts" json:"callback_attempts"`
	CallbackDelayMilliseconds int `gluamapper:"callback_delay_milliseconds" json:"callback_delay_milliseconds"`
	CallbackTimeoutSeconds    int `gluamapper:"callback_timeout_seconds" json:"callback_timeout_seconds"`
	WalletAttempts            int `gluamapper:"wallet_attempts" json:"wallet_attempts"`
	PaymentJobAttempts        int `gluamapper:"payment_job_attempts" json:"payment_job_attempts"`
	CallbackJobAttempts       int `gluamapper:"callback_job_attempts" json:"callback_job_attempts"`
}

// Channels - signing channel allocation
type Channels interface {
	With(ctx context.Context, f func(ch *channel.Channel) error) error
}

// Queue - durable job execution
type Queue interface {
	Register(kind string, handler queue.Handler)
	Enqueue(kind string, payload interface{}, maxAttempts int) (string, error)
}

// Resources - collaborators shared by all operations
type Resources struct {
	Store    storage.Store
	Ledger   ledger.Client
	Channels Channels
	Queue    Queue

	// starting balance of created wallets
	WalletNativeAmount int64

	// optional, built from the configuration when nil
	HTTPClient *http.Client
}

// Orchestrator - request execution
type Orchestrator struct {
	log      *logger.L
	store    storage.Store
	ledger   ledger.Client
	channels Channels
	queue    Queue
	client   *http.Client

	walletAmount        int64
	paymentTTL          time.Duration
	lockTTL             time.Duration
	lockWait            time.Duration
	callbackAttempts    int
	callbackDelay       time.Duration
	walletAttempts      int
	paymentJobAttempts  int
	callbackJobAttempts int
}

// New - create an orchestrator and register its job handlers
func New(configuration *Configuration, resources Resources) *Orchestrator {

	o := &Orchestrator{
		log:                 logger.New("orchestrator"),
		store:               resources.Store,
		ledger:              resources.Ledger,
		channels:            resources.Channels,
		queue:               resources.Queue,
		client:              resources.HTTPClient,
		walletAmount:        resources.WalletNativeAmount,
		paymentTTL:          time.Duration(configuration.PaymentTTLSeconds) * time.Second,
		lockTTL:             time.Duration(configuration.LockSeconds) * time.Second,
		lockWait:            time.Duration(configuration.LockWaitSeconds) * time.Second,
		callbackAttempts:    configuration.CallbackAttempts,
		callbackDelay:       time.Duration(configuration.CallbackDelayMilliseconds) * time.Millisecond,
		walletAttempts:      configuration.WalletAttempts,
		paymentJobAttempts:  configuration.PaymentJobAttempts,
		callbackJobAttempts: configuration.CallbackJobAttempts,
	}

	if o.paymentTTL <= 0 {
		o.paymentTTL = defaultPaymentTTL
	}
	if o.lockTTL <= 0 {
		o.lockTTL = defaultLockTTL
	}
	if o.lockWait <= 0 {
		o.lockWait = defaultLockWait
	}
	if o.callbackAttempts <= 0 {
		o.callbackAttempts = defaultCallbackAttempts
	}
	if o.callbackDelay <= 0 {
		o.callbackDelay = defaultCallbackDelay
	}
	if o.walletAttempts <= 0 {
		o.walletAttempts = defaultWalletAttempts
	}
	if o.walletAmount <= 0 {
		o.walletAmount = defaultWalletAmount
	}
	if nil == o.client {
		timeout := time.Duration(configuration.CallbackTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = defaultCallbackTimeout
		}
		o.client = &http.Client{Timeout: timeout}
	}

	o.queue.Register(KindPay, o.payHandler)
	o.queue.Register(KindCreateWallet, o.walletHandler)
	o.queue.Register(KindCallback, o.callbackHandler)

	return o
}

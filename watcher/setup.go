// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package watcher - follow the ledger payment stream and notify the
// services watching the addresses involved
//
// the cursor is persisted after every matched record and at the end of
// each batch, so a restart resumes without skipping records and
// repeats at most the record in flight
package watcher

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/model"
)

// defaults
const (
	defaultInterval      = 5 * time.Second
	defaultBatchSize     = 100
	defaultFetchAttempts = 5
	defaultFetchDelay    = 200 * time.Millisecond

	cursorKey = "cursor"
)

// Configuration - the watcher section of the configuration file
type Configuration struct {
	IntervalSeconds        int `gluamapper:"interval_seconds" json:"interval_seconds"`
	BatchSize              int `gluamapper:"batch_size" json:"batch_size"`
	FetchAttempts          int `gluamapper:"fetch_attempts" json:"fetch_attempts"`
	FetchDelayMilliseconds int `gluamapper:"fetch_delay_milliseconds" json:"fetch_delay_milliseconds"`
	WatchTTLSeconds        int `gluamapper:"watch_ttl_seconds" json:"watch_ttl_seconds"`
}

// Store - persistence of the cursor
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// Registry - source of the watched addresses
type Registry interface {
	Watchers() (map[string][]model.Subscriber, error)
}

// Dispatcher - queues callback deliveries
type Dispatcher interface {
	EnqueueCallback(job *model.CallbackJob) error
}

// Publisher - optional feed of matched payments
type Publisher interface {
	Publish(payment *model.Payment)
}

// Watcher - the ledger scanner
type Watcher struct {
	log        *logger.L
	store      Store
	client     ledger.Client
	registry   Registry
	dispatcher Dispatcher
	publisher  Publisher

	interval      time.Duration
	batchSize     int
	fetchAttempts int
	fetchDelay    time.Duration
}

// New - create a watcher, publisher may be nil
func New(configuration *Configuration, store Store, client ledger.Client, registry Registry, dispatcher Dispatcher, publisher Publisher) *Watcher {

	w := &Watcher{
		log:           logger.New("watcher"),
		store:         store,
		client:        client,
		registry:      registry,
		dispatcher:    dispatcher,
		publisher:     publisher,
		interval:      time.Duration(configuration.IntervalSeconds) * time.Second,
		batchSize:     configuration.BatchSize,
		fetchAttempts: configuration.FetchAttempts,
		fetchDelay:    time.Duration(configuration.FetchDelayMilliseconds) * time.Millisecond,
	}

	if w.interval <= 0 {
		w.interval = defaultInterval
	}
	if w.batchSize <= 0 {
		w.batchSize = defaultBatchSize
	}
	if w.fetchAttempts <= 0 {
		w.fetchAttempts = defaultFetchAttempts
	}
	if w.fetchDelay <= 0 {
		w.fetchDelay = defaultFetchDelay
	}
	return w
}

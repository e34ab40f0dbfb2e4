// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"time"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/util"
)

// Run - background.Process interface
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {

	log := w.log
	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-shutdown
		cancel()
	}()

	// first pass without waiting
	delay := time.Duration(0)

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case <-time.After(delay):
		}
		delay = w.interval

		if err := w.Iterate(ctx); nil != err {
			if nil != ctx.Err() {
				break loop
			}
			counter.Named(counter.WatcherError).Increment()
			log.Errorf("iteration error: %s", err)
		}
	}

	cancel()
	log.Info("stopped")
}

// Iterate - scan from the persisted cursor to the end of the stream
//
// an error leaves the cursor at the last fully handled record
func (w *Watcher) Iterate(ctx context.Context) error {

	log := w.log

	cursor, err := w.loadCursor(ctx)
	if nil != err {
		return err
	}

	// subscriptions change at any time
	watchers, err := w.registry.Watchers()
	if nil != err {
		return err
	}

	asset := w.client.Asset()

	for {
		records, next, err := w.client.Payments(ctx, cursor, w.batchSize)
		if nil != err {
			return err
		}

		for _, record := range records {
			if ledger.OperationPayment != record.Type || !asset.Matches(record.AssetCode, record.AssetIssuer) {
				continue
			}

			matched := matches(watchers, record)
			if 0 == len(matched) {
				continue
			}

			if err := w.handle(ctx, record, matched); nil != err {
				return err
			}
			if err := w.saveCursor(record.PagingToken); nil != err {
				return err
			}
		}

		// also covers records that were not of interest
		if err := w.saveCursor(next); nil != err {
			return err
		}

		if len(records) < w.batchSize || next == cursor {
			log.Debugf("scanned to: %s", next)
			return nil
		}
		cursor = next

		if nil != ctx.Err() {
			return ctx.Err()
		}
	}
}

type match struct {
	address     string
	subscribers []model.Subscriber
}

// watched parties of a record, recipient first
func matches(watchers map[string][]model.Subscriber, record ledger.PaymentRecord) []match {
	result := make([]match, 0, 2)
	if s, ok := watchers[record.To]; ok {
		result = append(result, match{address: record.To, subscribers: s})
	}
	if record.From != record.To {
		if s, ok := watchers[record.From]; ok {
			result = append(result, match{address: record.From, subscribers: s})
		}
	}
	return result
}

// fetch, parse and dispatch one matched record
func (w *Watcher) handle(ctx context.Context, record ledger.PaymentRecord, matched []match) error {

	log := w.log

	var tx *ledger.Transaction
	err := util.Retry(ctx, w.fetchAttempts, w.fetchDelay, func() error {
		var err error
		tx, err = w.client.GetTransaction(ctx, record.TransactionHash)
		return err
	})
	if nil != err {
		return err
	}

	payment, err := model.PaymentFromTransaction(tx, record)
	if nil != err {
		log.Warnf("skip tx: %s  token: %s  error: %s", record.TransactionHash, record.PagingToken, err)
		return nil
	}

	for _, m := range matched {
		action := model.ActionReceive
		if m.address == payment.SenderAddress {
			action = model.ActionSend
		}
		for _, s := range m.subscribers {
			job, err := model.NewCallbackJob(s.Callback, payment.AppId, model.ObjectPayment, model.StateSuccess, action, payment)
			if nil != err {
				return err
			}
			if err := w.dispatcher.EnqueueCallback(job); nil != err {
				return err
			}
			log.Infof("payment: %s  tx: %s  service: %s  action: %s", payment.Id, payment.TransactionId, s.ServiceId, action)
		}
	}

	counter.Named(counter.WatcherMatch).Increment()

	if nil != w.publisher {
		w.publisher.Publish(payment)
	}
	return nil
}

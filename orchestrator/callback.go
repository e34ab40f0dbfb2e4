// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"fmt"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/util"
)

// EnqueueCallback - queue a webhook delivery
func (o *Orchestrator) EnqueueCallback(job *model.CallbackJob) error {
	if "" == job.URL {
		return fault.ErrInvalidCallback
	}
	_, err := o.queue.Enqueue(KindCallback, job, o.callbackJobAttempts)
	return err
}

// build and queue a callback, failures are only logged
func (o *Orchestrator) notify(url string, appId string, object string, state string, action string, value interface{}) {
	job, err := model.NewCallbackJob(url, appId, object, state, action, value)
	if nil == err {
		err = o.EnqueueCallback(job)
	}
	if nil != err {
		o.log.Errorf("callback: %s %s %s  url: %q  enqueue error: %s", object, action, state, url, err)
	}
}

// DeliverCallback - POST the callback body with a bounded retry
func (o *Orchestrator) DeliverCallback(ctx context.Context, job *model.CallbackJob) error {

	err := util.Retry(ctx, o.callbackAttempts, o.callbackDelay, func() error {
		return util.PostJSON(ctx, o.client, job.URL, job.Callback, nil)
	})
	if nil != err {
		counter.Named(counter.CallbackFailed).Increment()
		o.log.Errorf("callback: %s %s %s  url: %q  error: %s", job.Callback.Object, job.Callback.Action, job.Callback.State, job.URL, err)
		if fault.IsErrPermanent(err) {
			return fault.Permanent(fmt.Errorf("%w: %v", fault.ErrWebhookRejected, err))
		}
		return fmt.Errorf("%w: %v", fault.ErrWebhookRejected, err)
	}

	o.log.Debugf("callback: %s %s %s  url: %q  delivered", job.Callback.Object, job.Callback.Action, job.Callback.State, job.URL)
	return nil
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
)

// Run - background.Process interface, runs the worker pool
func (q *Queue) Run(args interface{}, shutdown <-chan struct{}) {

	log := q.log
	log.Infof("starting… workers: %d", q.workers)

	ctx, cancel := context.WithCancel(context.Background())

	wg := sync.WaitGroup{}
	for i := 0; i < q.workers; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.worker(ctx, n)
		}(i)
	}

	<-shutdown
	cancel()
	wg.Wait()

	log.Info("stopped")
}

func (q *Queue) worker(ctx context.Context, n int) {

loop:
	for {
		job := q.pop()
		if nil != job {
			q.process(ctx, job)
			continue loop
		}

		q.log.Debugf("worker: %d  waiting…", n)
		select {
		case <-ctx.Done():
			break loop
		case <-q.wake:
		}
	}
}

// run one job and decide its fate
func (q *Queue) process(ctx context.Context, job *Job) {

	log := q.log

	q.Lock()
	handler, ok := q.handlers[job.Kind]
	q.Unlock()

	if !ok {
		log.Criticalf("job: %s  kind: %q  error: %s", job.Id, job.Kind, fault.ErrUnknownJobKind)
		counter.Named(counter.WorkerPersistentError).Increment()
		q.remove(job)
		return
	}

	// count the attempt before running so a crash mid-job still counts
	job.Attempts += 1
	if err := q.save(job); nil != err {
		log.Errorf("job: %s  save error: %s", job.Id, err)
	}

	err := handler(ctx, job.Payload)
	if nil == err {
		log.Debugf("job: %s  kind: %s  done", job.Id, job.Kind)
		q.remove(job)
		return
	}

	if fault.IsErrPermanent(err) {
		log.Warnf("job: %s  kind: %s  permanent error: %s", job.Id, job.Kind, err)
		counter.Named(counter.WorkerPersistentError).Increment()
		q.remove(job)
		return
	}

	counter.Named(counter.WorkerError).Increment()

	if job.MaxAttempts > 0 && job.Attempts >= job.MaxAttempts {
		log.Criticalf("job: %s  kind: %s  dropped after: %d attempts  error: %s", job.Id, job.Kind, job.Attempts, err)
		counter.Named(counter.WorkerDropped).Increment()
		q.remove(job)
		return
	}

	delay := q.backoff(job.Attempts)
	log.Errorf("job: %s  kind: %s  attempt: %d  retry in: %s  error: %s", job.Id, job.Kind, job.Attempts, delay, err)

	// the job stays persisted, a restart picks it up if the timer is lost
	time.AfterFunc(delay, func() {
		q.push(job)
	})
}

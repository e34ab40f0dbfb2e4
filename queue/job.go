// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bitmark-inc/paymentd/fault"
)

// Handler - executes one job; return an error wrapped by
// fault.Permanent to stop further attempts
type Handler func(ctx context.Context, payload json.RawMessage) error

// Job - a persisted unit of work
type Job struct {
	Id          string          `json:"id"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Created     time.Time       `json:"created"`
}

// Enqueue - persist a job and queue it for execution
//
// maxAttempts of zero retries transient failures without limit
func (q *Queue) Enqueue(kind string, payload interface{}, maxAttempts int) (string, error) {

	if maxAttempts < 0 {
		return "", fault.ErrInvalidCount
	}

	q.Lock()
	_, ok := q.handlers[kind]
	q.Unlock()
	if !ok {
		return "", fault.ErrUnknownJobKind
	}

	data, err := json.Marshal(payload)
	if nil != err {
		return "", err
	}

	job := &Job{
		Id:          uuid.New().String(),
		Kind:        kind,
		Payload:     data,
		MaxAttempts: maxAttempts,
		Created:     time.Now().UTC(),
	}

	if err := q.save(job); nil != err {
		return "", err
	}

	q.log.Debugf("enqueue: %s  kind: %s", job.Id, kind)
	q.push(job)
	return job.Id, nil
}

func (q *Queue) save(job *Job) error {
	data, err := json.Marshal(job)
	if nil != err {
		return err
	}
	return q.store.Set(jobPrefix+job.Id, data, 0)
}

func (q *Queue) remove(job *Job) {
	if err := q.store.Delete(jobPrefix + job.Id); nil != err && !fault.IsErrNotFound(err) {
		q.log.Errorf("remove job: %s  error: %s", job.Id, err)
	}
}

func (q *Queue) push(job *Job) {
	q.Lock()
	q.pending = append(q.pending, job)
	q.Unlock()
	q.signal()
}

// coalesced wake up
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) pop() *Job {
	q.Lock()
	defer q.Unlock()
	if 0 == len(q.pending) {
		return nil
	}
	job := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	// more work remains for other workers
	if len(q.pending) > 0 {
		q.signal()
	}
	return job
}

// linear backoff with a ceiling
func (q *Queue) backoff(attempts int) time.Duration {
	delay := q.retryDelay * time.Duration(attempts)
	if delay > q.maximumDelay {
		delay = q.maximumDelay
	}
	return delay
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package queue - durable at-least-once job queue
//
// every job is written to storage before it is queued and removed only
// after its handler succeeds or the job is abandoned, so a crash
// causes re-execution rather than loss
package queue

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/fault"
)

// defaults
const (
	defaultWorkers      = 4
	defaultRetryDelay   = 5 * time.Second
	defaultMaximumDelay = 5 * time.Minute

	jobPrefix = "job:"
)

// Configuration - the queue section of the configuration file
type Configuration struct {
	Workers             int `gluamapper:"workers" json:"workers"`
	RetryDelaySeconds   int `gluamapper:"retry_delay_seconds" json:"retry_delay_seconds"`
	MaximumDelaySeconds int `gluamapper:"maximum_delay_seconds" json:"maximum_delay_seconds"`
}

// Store - the part of storage holding jobs
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Queue - the job queue
type Queue struct {
	sync.Mutex

	log   *logger.L
	store Store

	handlers map[string]Handler
	pending  []*Job
	wake     chan struct{}

	workers      int
	retryDelay   time.Duration
	maximumDelay time.Duration
}

// New - create a queue and reload any jobs left from a previous run
func New(configuration *Configuration, store Store) (*Queue, error) {

	q := &Queue{
		log:          logger.New("queue"),
		store:        store,
		handlers:     make(map[string]Handler),
		wake:         make(chan struct{}, 1),
		workers:      configuration.Workers,
		retryDelay:   time.Duration(configuration.RetryDelaySeconds) * time.Second,
		maximumDelay: time.Duration(configuration.MaximumDelaySeconds) * time.Second,
	}

	if q.workers <= 0 {
		q.workers = defaultWorkers
	}
	if q.retryDelay <= 0 {
		q.retryDelay = defaultRetryDelay
	}
	if q.maximumDelay <= 0 {
		q.maximumDelay = defaultMaximumDelay
	}
	if q.maximumDelay < q.retryDelay {
		q.maximumDelay = q.retryDelay
	}

	if err := q.reload(); nil != err {
		return nil, err
	}
	return q, nil
}

// restore persisted jobs oldest first
func (q *Queue) reload() error {
	keys, err := q.store.Keys(jobPrefix)
	if nil != err {
		return err
	}

	jobs := make([]*Job, 0, len(keys))
	for _, key := range keys {
		data, err := q.store.Get(key)
		if fault.IsErrNotFound(err) {
			continue
		}
		if nil != err {
			return err
		}

		job := &Job{}
		if err := json.Unmarshal(data, job); nil != err || "" == job.Id {
			q.log.Errorf("discard unreadable job: %q", strings.TrimPrefix(key, jobPrefix))
			_ = q.store.Delete(key)
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Created.Equal(jobs[j].Created) {
			return jobs[i].Id < jobs[j].Id
		}
		return jobs[i].Created.Before(jobs[j].Created)
	})

	if len(jobs) > 0 {
		q.log.Infof("reloaded: %d jobs", len(jobs))
	}

	q.Lock()
	q.pending = append(q.pending, jobs...)
	q.Unlock()
	q.signal()
	return nil
}

// Register - set the handler for a job kind, call before Run
func (q *Queue) Register(kind string, handler Handler) {
	q.Lock()
	defer q.Unlock()
	q.handlers[kind] = handler
}

// Pending - number of jobs waiting for a worker
func (q *Queue) Pending() int {
	q.Lock()
	defer q.Unlock()
	return len(q.pending)
}

// Stored - number of jobs not yet finished, including those waiting
// for a retry or currently running
func (q *Queue) Stored() int {
	keys, err := q.store.Keys(jobPrefix)
	if nil != err {
		return 0
	}
	return len(keys)
}

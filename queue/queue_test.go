// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package queue_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/paymentd/background"
	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/fixtures"
	"github.com/bitmark-inc/paymentd/queue"
	"github.com/bitmark-inc/paymentd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

type item struct {
	Name string `json:"name"`
}

type recorder struct {
	sync.Mutex
	calls []string
	errs  []error
}

func (r *recorder) handler(ctx context.Context, payload json.RawMessage) error {
	var it item
	if err := json.Unmarshal(payload, &it); nil != err {
		return fault.Permanent(err)
	}

	r.Lock()
	defer r.Unlock()
	r.calls = append(r.calls, it.Name)
	if 0 == len(r.errs) {
		return nil
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return err
}

func (r *recorder) count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.calls)
}

func setup(t *testing.T) *storage.DB {
	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open error")
	return db
}

func newQueue(t *testing.T, db *storage.DB) *queue.Queue {
	q, err := queue.New(&queue.Configuration{Workers: 2, RetryDelaySeconds: 1}, db)
	require.Nil(t, err, "queue error")
	return q
}

func TestEnqueueRun(t *testing.T) {
	db := setup(t)
	defer db.Close()

	q := newQueue(t, db)
	r := &recorder{}
	q.Register("test", r.handler)

	processes := background.Start(background.Processes{q}, nil)
	defer processes.Stop()

	id, err := q.Enqueue("test", item{Name: "one"}, 3)
	assert.Nil(t, err, "enqueue error")
	assert.NotEqual(t, "", id, "missing id")

	assert.Eventually(t, func() bool { return 1 == r.count() && 0 == q.Stored() }, 2*time.Second, 10*time.Millisecond, "job not completed")
	assert.Equal(t, []string{"one"}, r.calls, "wrong calls")
}

func TestEnqueueUnknownKind(t *testing.T) {
	db := setup(t)
	defer db.Close()

	q := newQueue(t, db)

	_, err := q.Enqueue("missing", item{}, 1)
	assert.Equal(t, fault.ErrUnknownJobKind, err, "wrong error")

	q.Register("test", (&recorder{}).handler)
	_, err = q.Enqueue("test", item{}, -1)
	assert.Equal(t, fault.ErrInvalidCount, err, "wrong error")
	assert.Equal(t, 0, q.Stored(), "job stored")
}

func TestPermanentError(t *testing.T) {
	db := setup(t)
	defer db.Close()

	before := counter.Named(counter.WorkerPersistentError).Uint64()

	q := newQueue(t, db)
	r := &recorder{errs: []error{fault.Permanent(fault.ErrNoTrustline)}}
	q.Register("test", r.handler)

	processes := background.Start(background.Processes{q}, nil)
	defer processes.Stop()

	_, err := q.Enqueue("test", item{Name: "p"}, 0)
	assert.Nil(t, err, "enqueue error")

	assert.Eventually(t, func() bool { return 0 == q.Stored() }, 2*time.Second, 10*time.Millisecond, "job not dropped")
	assert.Equal(t, 1, r.count(), "permanent error retried")
	assert.Equal(t, before+1, counter.Named(counter.WorkerPersistentError).Uint64(), "not metered")
}

func TestTransientErrorRetried(t *testing.T) {
	db := setup(t)
	defer db.Close()

	before := counter.Named(counter.WorkerError).Uint64()

	q := newQueue(t, db)
	r := &recorder{errs: []error{fault.ErrLedgerUnavailable}}
	q.Register("test", r.handler)

	processes := background.Start(background.Processes{q}, nil)
	defer processes.Stop()

	_, err := q.Enqueue("test", item{Name: "t"}, 0)
	assert.Nil(t, err, "enqueue error")

	assert.Eventually(t, func() bool { return 2 == r.count() && 0 == q.Stored() }, 5*time.Second, 20*time.Millisecond, "job not retried")
	assert.Equal(t, before+1, counter.Named(counter.WorkerError).Uint64(), "not metered")
}

func TestMaximumAttempts(t *testing.T) {
	db := setup(t)
	defer db.Close()

	before := counter.Named(counter.WorkerDropped).Uint64()

	q := newQueue(t, db)
	r := &recorder{errs: []error{fault.ErrLedgerUnavailable, fault.ErrLedgerUnavailable}}
	q.Register("test", r.handler)

	processes := background.Start(background.Processes{q}, nil)
	defer processes.Stop()

	_, err := q.Enqueue("test", item{Name: "m"}, 1)
	assert.Nil(t, err, "enqueue error")

	assert.Eventually(t, func() bool { return 0 == q.Stored() }, 2*time.Second, 10*time.Millisecond, "job not dropped")
	assert.Equal(t, 1, r.count(), "retried past maximum")
	assert.Equal(t, before+1, counter.Named(counter.WorkerDropped).Uint64(), "not metered")
}

// a job left in storage by a stopped process runs after restart
func TestReload(t *testing.T) {
	db := setup(t)
	defer db.Close()

	first := newQueue(t, db)
	first.Register("test", (&recorder{}).handler)

	_, err := first.Enqueue("test", item{Name: "a"}, 0)
	assert.Nil(t, err, "enqueue error")
	_, err = first.Enqueue("test", item{Name: "b"}, 0)
	assert.Nil(t, err, "enqueue error")
	assert.Equal(t, 2, first.Stored(), "jobs not stored")

	// never run: simulates a crash before any worker started
	second := newQueue(t, db)
	assert.Equal(t, 2, second.Pending(), "jobs not reloaded")

	r := &recorder{}
	second.Register("test", r.handler)

	processes := background.Start(background.Processes{second}, nil)
	defer processes.Stop()

	assert.Eventually(t, func() bool { return 2 == r.count() && 0 == second.Stored() }, 2*time.Second, 10*time.Millisecond, "reloaded jobs not run")
	assert.ElementsMatch(t, []string{"a", "b"}, r.calls, "wrong jobs")
}

func TestReloadUnknownKind(t *testing.T) {
	db := setup(t)
	defer db.Close()

	first := newQueue(t, db)
	first.Register("old", (&recorder{}).handler)
	_, err := first.Enqueue("old", item{Name: "x"}, 0)
	assert.Nil(t, err, "enqueue error")

	second := newQueue(t, db)
	processes := background.Start(background.Processes{second}, nil)
	defer processes.Stop()

	assert.Eventually(t, func() bool { return 0 == second.Stored() }, 2*time.Second, 10*time.Millisecond, "unknown job not dropped")
}

func TestReloadDiscardsUnreadable(t *testing.T) {
	db := setup(t)
	defer db.Close()

	err := db.Set("job:broken", []byte("{not json"), 0)
	assert.Nil(t, err, "set error")

	q := newQueue(t, db)
	assert.Equal(t, 0, q.Pending(), "unreadable job queued")
	assert.Equal(t, 0, q.Stored(), "unreadable job kept")
}

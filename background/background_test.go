// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/paymentd/background"
)

type ticker struct {
	count    int64
	finished int32
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	step := args.(int64)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
			atomic.AddInt64(&state.count, step)
		}
	}
	atomic.StoreInt32(&state.finished, 1)
}

func TestBackground(t *testing.T) {
	proc1 := &ticker{}
	proc2 := &ticker{}

	p := background.Start(background.Processes{proc1, proc2}, int64(3))
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&proc1.finished), "first process did not finish")
	assert.Equal(t, int32(1), atomic.LoadInt32(&proc2.finished), "second process did not finish")
	assert.NotZero(t, atomic.LoadInt64(&proc1.count), "first process never ran")
	assert.Zero(t, atomic.LoadInt64(&proc2.count)%3, "wrong step")
}

func TestStopTwice(t *testing.T) {
	p := background.Start(background.Processes{&ticker{}}, int64(1))
	p.Stop()
	p.Stop()

	var nilHandle *background.T
	nilHandle.Stop()
}

type recorder struct {
	name  string
	lock  *sync.Mutex
	order *[]string
}

func (r recorder) Run(args interface{}, shutdown <-chan struct{}) {
	<-shutdown
	r.lock.Lock()
	*r.order = append(*r.order, r.name)
	r.lock.Unlock()
}

func TestStopReverseOrder(t *testing.T) {
	lock := &sync.Mutex{}
	order := []string{}

	p := background.Start(background.Processes{
		recorder{name: "storage", lock: lock, order: &order},
		recorder{name: "watcher", lock: lock, order: &order},
		recorder{name: "api", lock: lock, order: &order},
	}, nil)
	p.Stop()

	assert.Equal(t, []string{"api", "watcher", "storage"}, order, "wrong stop order")
}

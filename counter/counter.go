// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counter - type to denote a counter that can be synchronously increments or decremented
// just a 64 bit unsigned integer
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Decrement - subtract 1 from a counter, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == ic.Uint64()
}

// names of the service meters
const (
	APIRequests           = "api_requests"
	CallbackFailed        = "callback_failed"
	ChannelExhausted      = "channel_exhausted"
	ChannelReleaseError   = "channel_release_error"
	WatcherError          = "watcher_error"
	WatcherMatch          = "watcher_match"
	WorkerDropped         = "worker_dropped"
	WorkerError           = "worker_error"
	WorkerPersistentError = "worker_persistent_error"
)

var registry struct {
	sync.RWMutex
	counters map[string]*Counter
}

// Named - fetch or create the counter for a name
func Named(name string) *Counter {
	registry.RLock()
	c, ok := registry.counters[name]
	registry.RUnlock()
	if ok {
		return c
	}

	registry.Lock()
	defer registry.Unlock()

	if nil == registry.counters {
		registry.counters = make(map[string]*Counter)
	}
	if c, ok = registry.counters[name]; !ok {
		c = new(Counter)
		registry.counters[name] = c
	}
	return c
}

// Snapshot - current value of every named counter
func Snapshot() map[string]uint64 {
	registry.RLock()
	defer registry.RUnlock()

	result := make(map[string]uint64, len(registry.counters))
	for name, c := range registry.counters {
		result[name] = c.Uint64()
	}
	return result
}

// Names - sorted list of registered counter names
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.counters))
	for name := range registry.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

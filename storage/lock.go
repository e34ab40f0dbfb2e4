// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bitmark-inc/paymentd/fault"
)

const (
	lockPollInterval = 20 * time.Millisecond
)

// Lock - a named lock with an expiry
type Lock struct {
	db    *DB
	name  string
	token string
}

// Name - the locked name
func (l *Lock) Name() string {
	return l.name
}

// Lock - acquire a named lock held for at most ttl
//
// a wait of zero makes a single attempt; otherwise retry until wait
// has elapsed, returning fault.ErrLockTimeout on failure
func (db *DB) Lock(ctx context.Context, name string, ttl time.Duration, wait time.Duration) (*Lock, error) {

	token := uuid.New().String()
	deadline := time.Now().Add(wait)

	for {
		// go-cache Add fails while an unexpired item is present
		db.lockMutex.Lock()
		err := db.locks.Add(name, token, ttl)
		db.lockMutex.Unlock()

		if nil == err {
			return &Lock{
				db:    db,
				name:  name,
				token: token,
			}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fault.ErrLockTimeout
		}

		delay := lockPollInterval
		if remaining < delay {
			delay = remaining
		}

		select {
		case <-ctx.Done():
			return nil, fault.ErrLockTimeout
		case <-time.After(delay):
		}
	}
}

// Release - give up the lock; fails if it expired and was taken by
// someone else
func (l *Lock) Release() error {
	if nil == l {
		return fault.ErrNotLockHolder
	}

	l.db.lockMutex.Lock()
	defer l.db.lockMutex.Unlock()

	token, found := l.db.locks.Get(l.name)
	if !found || token.(string) != l.token {
		return fault.ErrNotLockHolder
	}
	l.db.locks.Delete(l.name)
	return nil
}

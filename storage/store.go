// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"time"
)

// Store - operations used by the rest of the service
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)

	HSet(key string, field string, value []byte) error
	HGet(key string, field string) ([]byte, error)
	HGetAll(key string) (map[string][]byte, error)
	HDel(key string, field string) error
	HDelAll(key string) error

	SAdd(key string, member string) error
	SRem(key string, member string) error
	SMembers(key string) ([]string, error)

	Lock(ctx context.Context, name string, ttl time.Duration, wait time.Duration) (*Lock, error)
}

// ensure the database satisfies the interface
var _ Store = (*DB)(nil)

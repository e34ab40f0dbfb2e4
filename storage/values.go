// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"time"

	"github.com/bitmark-inc/paymentd/fault"
)

const expirySize = 8

// split a stored record into expiry and data
func decodeValue(record []byte) (time.Time, []byte, bool) {
	if len(record) < expirySize {
		return time.Time{}, nil, false
	}
	n := binary.BigEndian.Uint64(record[:expirySize])
	if 0 == n {
		return time.Time{}, record[expirySize:], true
	}
	return time.Unix(0, int64(n)), record[expirySize:], true
}

func encodeValue(value []byte, ttl time.Duration) []byte {
	record := make([]byte, expirySize, expirySize+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(record, uint64(time.Now().Add(ttl).UnixNano()))
	}
	return append(record, value...)
}

func expired(expiry time.Time, now time.Time) bool {
	return !expiry.IsZero() && !now.Before(expiry)
}

// Get - fetch a value, expired values are not visible
func (db *DB) Get(key string) ([]byte, error) {
	record, err := db.pool.Values.get([]byte(key))
	if nil != err {
		return nil, err
	}
	expiry, value, ok := decodeValue(record)
	if !ok {
		db.log.Errorf("truncated record for key: %q", key)
		return nil, fault.ErrKeyNotFound
	}
	if expired(expiry, time.Now()) {
		return nil, fault.ErrKeyNotFound
	}
	return value, nil
}

// Set - store a value, a ttl of zero never expires
func (db *DB) Set(key string, value []byte, ttl time.Duration) error {
	return db.pool.Values.put([]byte(key), encodeValue(value, ttl))
}

// Delete - remove a value, missing keys are not an error
func (db *DB) Delete(key string) error {
	return db.pool.Values.remove([]byte(key))
}

// Keys - all live value keys beginning with prefix, in key order
func (db *DB) Keys(prefix string) ([]string, error) {
	elements, err := db.pool.Values.scan([]byte(prefix))
	if nil != err {
		return nil, err
	}

	now := time.Now()
	keys := make([]string, 0, len(elements))
	for _, e := range elements {
		expiry, _, ok := decodeValue(e.Value)
		if !ok || expired(expiry, now) {
			continue
		}
		keys = append(keys, string(e.Key))
	}
	return keys, nil
}

// Purge - physically remove expired values, returns count removed
func (db *DB) Purge() (int, error) {
	elements, err := db.pool.Values.scan(nil)
	if nil != err {
		return 0, err
	}

	now := time.Now()
	remove := make([][]byte, 0, 16)
	for _, e := range elements {
		expiry, _, ok := decodeValue(e.Value)
		if !ok || expired(expiry, now) {
			remove = append(remove, e.Key)
		}
	}
	return len(remove), db.pool.Values.removeAll(remove)
}

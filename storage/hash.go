// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
)

const separator = 0x00

// key ++ 0x00, so that "a" does not match fields of "ab"
func compositePrefix(key string) []byte {
	prefix := make([]byte, 0, len(key)+1)
	prefix = append(prefix, key...)
	return append(prefix, separator)
}

func compositeKey(key string, item string) []byte {
	return append(compositePrefix(key), item...)
}

// strip key ++ 0x00 to give the field or member
func compositeItem(composite []byte) string {
	n := bytes.IndexByte(composite, separator)
	if n < 0 {
		return string(composite)
	}
	return string(composite[n+1:])
}

// HSet - set one field of a hash
func (db *DB) HSet(key string, field string, value []byte) error {
	return db.pool.Hashes.put(compositeKey(key, field), value)
}

// HGet - fetch one field of a hash
func (db *DB) HGet(key string, field string) ([]byte, error) {
	return db.pool.Hashes.get(compositeKey(key, field))
}

// HGetAll - all fields of a hash, empty map if none
func (db *DB) HGetAll(key string) (map[string][]byte, error) {
	elements, err := db.pool.Hashes.scan(compositePrefix(key))
	if nil != err {
		return nil, err
	}
	result := make(map[string][]byte, len(elements))
	for _, e := range elements {
		result[compositeItem(e.Key)] = e.Value
	}
	return result, nil
}

// HDel - remove one field of a hash
func (db *DB) HDel(key string, field string) error {
	return db.pool.Hashes.remove(compositeKey(key, field))
}

// HDelAll - remove the whole hash
func (db *DB) HDelAll(key string) error {
	elements, err := db.pool.Hashes.scan(compositePrefix(key))
	if nil != err {
		return err
	}
	keys := make([][]byte, len(elements))
	for i, e := range elements {
		keys[i] = e.Key
	}
	return db.pool.Hashes.removeAll(keys)
}

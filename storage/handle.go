// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/paymentd/fault"
)

// PoolHandle - one prefixed table in the database
type PoolHandle struct {
	prefix byte
	limit  []byte
	db     *DB
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// store a key/value bytes pair to the database
func (p *PoolHandle) put(key []byte, value []byte) error {
	p.db.access.RLock()
	defer p.db.access.RUnlock()
	if nil == p.db.database {
		return fault.ErrNotInitialised
	}
	return p.db.database.Put(p.prefixKey(key), value, nil)
}

// remove a key from the database
func (p *PoolHandle) remove(key []byte) error {
	p.db.access.RLock()
	defer p.db.access.RUnlock()
	if nil == p.db.database {
		return fault.ErrNotInitialised
	}
	return p.db.database.Delete(p.prefixKey(key), nil)
}

// read a value for a given key
//
// returns fault.ErrKeyNotFound for a missing key
func (p *PoolHandle) get(key []byte) ([]byte, error) {
	p.db.access.RLock()
	defer p.db.access.RUnlock()
	if nil == p.db.database {
		return nil, fault.ErrNotInitialised
	}
	value, err := p.db.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrKeyNotFound
	}
	return value, err
}

// fetch every element whose key begins with the prefix
//
// keys in the result have the pool prefix stripped
func (p *PoolHandle) scan(keyPrefix []byte) ([]Element, error) {
	p.db.access.RLock()
	defer p.db.access.RUnlock()
	if nil == p.db.database {
		return nil, fault.ErrNotInitialised
	}

	var maxRange *ldb_util.Range
	if 0 == len(keyPrefix) {
		maxRange = &ldb_util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		}
	} else {
		maxRange = ldb_util.BytesPrefix(p.prefixKey(keyPrefix))
	}

	iter := p.db.database.NewIterator(maxRange, nil)

	results := make([]Element, 0, 16)
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		results = append(results, Element{
			Key:   dataKey,
			Value: dataValue,
		})
	}
	iter.Release()
	return results, iter.Error()
}

// delete a set of keys in one batch
func (p *PoolHandle) removeAll(keys [][]byte) error {
	if 0 == len(keys) {
		return nil
	}

	p.db.access.RLock()
	defer p.db.access.RUnlock()
	if nil == p.db.database {
		return fault.ErrNotInitialised
	}

	batch := new(leveldb.Batch)
	for _, key := range keys {
		batch.Delete(p.prefixKey(key))
	}
	return p.db.database.Write(batch, nil)
}

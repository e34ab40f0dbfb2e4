// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/logger"
)

// the set of pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Values *PoolHandle `prefix:"V"`
	Hashes *PoolHandle `prefix:"H"`
	Sets   *PoolHandle `prefix:"S"`
}

// DB - an open database with its pools and lock table
type DB struct {
	access   sync.RWMutex
	log      *logger.L
	database *leveldb.DB
	pool     pools

	lockMutex sync.Mutex
	locks     *cache.Cache
}

const (
	lockCleanupInterval = time.Minute
)

// Open - open, or create, the database in the named directory
func Open(name string) (*DB, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, err
	}
	return setup(db)
}

// OpenMemory - a database that is discarded on close
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return setup(db)
}

func setup(database *leveldb.DB) (*DB, error) {
	db := &DB{
		log:      logger.New("storage"),
		database: database,
		locks:    cache.New(cache.NoExpiration, lockCleanupInterval),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(db.pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&db.pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			database.Close()
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			db:     db,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return db, nil
}

// Close - close the database connection
func (db *DB) Close() error {
	db.access.Lock()
	defer db.access.Unlock()

	if nil == db.database {
		return nil
	}
	err := db.database.Close()
	db.database = nil
	db.locks.Flush()
	return err
}

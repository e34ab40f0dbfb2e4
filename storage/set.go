// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// SAdd - add a member to a set, adding twice is harmless
func (db *DB) SAdd(key string, member string) error {
	return db.pool.Sets.put(compositeKey(key, member), []byte{})
}

// SRem - remove a member from a set
func (db *DB) SRem(key string, member string) error {
	return db.pool.Sets.remove(compositeKey(key, member))
}

// SMembers - members of a set in sorted order
func (db *DB) SMembers(key string) ([]string, error) {
	elements, err := db.pool.Sets.scan(compositePrefix(key))
	if nil != err {
		return nil, err
	}
	members := make([]string, len(elements))
	for i, e := range elements {
		members[i] = compositeItem(e.Key)
	}
	return members, nil
}

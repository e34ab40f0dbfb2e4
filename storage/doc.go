// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the avaiable tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. expiry       = unix nanoseconds as big endian uint64 (8 bytes), zero for never
// 4. key, field and member strings must not contain a NUL byte
//
// Values:
//
//   V ++ key                   - plain values
//                                data: expiry ++ value
//
// Hashes:
//
//   H ++ key ++ 0x00 ++ field  - hash field
//                                data: value
//
// Sets:
//
//   S ++ key ++ 0x00 ++ member - set member
//                                data: empty
//
// Locks are process local, held in memory with an expiry so a crashed
// holder cannot block others beyond the lock time.
package storage

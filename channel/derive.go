// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"

	"github.com/bitmark-inc/paymentd/fault"
)

// DeriveKey - channel keypair for an index
//
// raw seed = SHA-256(raw root seed ++ big endian uint16 index ++ salt)
func DeriveKey(rootSeed string, index int, salt string) (*keypair.Full, error) {
	if index < 0 || index >= maximumChannels {
		return nil, fault.ErrInvalidChannelCount
	}

	raw, err := strkey.Decode(strkey.VersionByteSeed, rootSeed)
	if nil != err || 32 != len(raw) {
		return nil, fault.ErrInvalidSeed
	}

	indexBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(indexBytes, uint16(index))

	data := make([]byte, 0, len(raw)+len(indexBytes)+len(salt))
	data = append(data, raw...)
	data = append(data, indexBytes...)
	data = append(data, salt...)

	return keypair.FromRawSeed(sha256.Sum256(data))
}

// DeriveAddresses - addresses of the first count channels, zero count
// gives the default pool size
func DeriveAddresses(rootSeed string, count int, salt string) ([]string, error) {
	if 0 == count {
		count = defaultMaximum
	}
	if count < 0 || count > maximumChannels {
		return nil, fault.ErrInvalidChannelCount
	}

	addresses := make([]string, count)
	for i := 0; i < count; i += 1 {
		kp, err := DeriveKey(rootSeed, i, salt)
		if nil != err {
			return nil, err
		}
		addresses[i] = kp.Address()
	}
	return addresses, nil
}

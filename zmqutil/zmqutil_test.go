// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/zmqutil"
)

func TestKeyPairFiles(t *testing.T) {
	dir := t.TempDir()
	public := filepath.Join(dir, "publish.public")
	private := filepath.Join(dir, "publish.private")

	err := zmqutil.MakeKeyPair(public, private)
	assert.Nil(t, err, "make key pair error")

	publicKey, err := zmqutil.ReadPublicKeyFile(public)
	assert.Nil(t, err, "read public error")
	assert.Equal(t, 32, len(publicKey), "wrong public key length")

	privateKey, err := zmqutil.ReadPrivateKeyFile(private)
	assert.Nil(t, err, "read private error")
	assert.Equal(t, 32, len(privateKey), "wrong private key length")

	// swapped files are rejected
	_, err = zmqutil.ReadPublicKeyFile(private)
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "wrong error")
	_, err = zmqutil.ReadPrivateKeyFile(public)
	assert.Equal(t, fault.ErrInvalidPrivateKeyFile, err, "wrong error")

	// never overwrite
	err = zmqutil.MakeKeyPair(public, private)
	assert.Equal(t, fault.ErrKeyFileExists, err, "wrong error")
}

func TestParseKey(t *testing.T) {
	_, _, err := zmqutil.ParseKey("PUBLIC:0102")
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "short key accepted")

	_, _, err = zmqutil.ParseKey("nothing")
	assert.Equal(t, fault.ErrInvalidPublicKeyFile, err, "untagged key accepted")

	_, _, err = zmqutil.ParseKey("PRIVATE:zz")
	assert.NotNil(t, err, "bad hex accepted")

	_, err = zmqutil.ReadPublicKeyFile(filepath.Join(os.TempDir(), "does-not-exist.public"))
	assert.NotNil(t, err, "missing file accepted")
}

func TestEndpoint(t *testing.T) {
	items := []struct {
		in       string
		endpoint string
		v6       bool
	}{
		{"127.0.0.1:2135", "tcp://127.0.0.1:2135", false},
		{"*:2135", "tcp://*:2135", false},
		{"[::1]:2135", "tcp://[::1]:2135", true},
	}

	for i, item := range items {
		endpoint, v6, err := zmqutil.Endpoint(item.in)
		assert.Nil(t, err, "%d: endpoint error", i)
		assert.Equal(t, item.endpoint, endpoint, "%d: wrong endpoint", i)
		assert.Equal(t, item.v6, v6, "%d: wrong IPv6 flag", i)
	}

	_, _, err := zmqutil.Endpoint("localhost")
	assert.Equal(t, fault.ErrInvalidIPAddress, err, "wrong error")
}

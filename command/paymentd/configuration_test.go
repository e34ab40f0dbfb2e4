// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/paymentd/api"
	"github.com/bitmark-inc/paymentd/fixtures"
)

const testConfiguration = `
local M = {}
M.data_directory = "."
M.pidfile = "paymentd.pid"
M.database = { name = "test.leveldb" }
M.ledger = {
    horizon_url = "http://127.0.0.1:8000",
    network = { id = "test", passphrase = "Test Network" },
    root_seed = arg.seed,
    asset = { code = "KIN", issuer = "` + fixtures.AddressFour + `" },
    wallet_native_amount = 7,
}
M.channels = { maximum = 3, salt = "pepper" }
M.orchestrator = { payment_ttl_seconds = 60 }
M.watcher = { watch_ttl_seconds = 600 }
M.https_rpc = {
    listen = { "127.0.0.1:3000" },
    allow = { status = { "127.0.0.0/8" } },
}
return M
`

func writeConfiguration(t *testing.T, text string) string {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "paymentd.conf")
	require.Nil(t, os.WriteFile(fileName, []byte(text), 0o600), "write error")
	return fileName
}

func TestGetConfiguration(t *testing.T) {
	fileName := writeConfiguration(t, testConfiguration)
	dir := filepath.Dir(fileName)

	options, err := getConfiguration(fileName, map[string]string{"seed": fixtures.RootSeed})
	require.Nil(t, err, "configuration error")

	assert.Equal(t, dir, options.DataDirectory, "wrong data directory")
	assert.Equal(t, filepath.Join(dir, "paymentd.pid"), options.PidFile, "pid file not absolute")
	assert.Equal(t, filepath.Join(dir, "data", "test.leveldb"), options.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(dir, "log"), options.Logging.Directory, "wrong log directory")
	assert.Equal(t, "Test Network", options.Ledger.Network.Passphrase, "wrong passphrase")
	assert.Equal(t, fixtures.RootSeed, options.Ledger.RootSeed, "variable not passed")
	assert.Equal(t, int64(7), options.Ledger.WalletNativeAmount, "wrong wallet amount")
	assert.Equal(t, 3, options.Channels.Maximum, "wrong channel count")
	assert.Equal(t, "pepper", options.Channels.Salt, "wrong salt")
	assert.Equal(t, 60, options.Orchestrator.PaymentTTLSeconds, "wrong ttl")
	assert.Equal(t, []string{"127.0.0.1:3000"}, options.HttpsRPC.Listen, "wrong listen")
	assert.Equal(t, []string{"127.0.0.0/8"}, options.HttpsRPC.Allow["status"], "wrong allow")
	assert.Equal(t, uint64(defaultAPIClients), options.HttpsRPC.MaximumConnections, "default lost")
	assert.Equal(t, filepath.Join(dir, defaultPrivateKeyFile), options.Publish.PrivateKey, "key not absolute")

	info, err := os.Stat(filepath.Join(dir, "data"))
	require.Nil(t, err, "database directory missing")
	assert.True(t, info.IsDir(), "database path not a directory")
}

func TestGetConfigurationBadDirectory(t *testing.T) {
	fileName := writeConfiguration(t, `return { data_directory = "" }`)

	_, err := getConfiguration(fileName, nil)
	assert.NotNil(t, err, "blank data directory accepted")
}

func TestGetConfigurationNotPlainName(t *testing.T) {
	fileName := writeConfiguration(t, `return { data_directory = ".", database = { name = "sub/x.leveldb" } }`)

	_, err := getConfiguration(fileName, nil)
	assert.NotNil(t, err, "database path accepted")
}

func TestLoadCertificate(t *testing.T) {
	dir := t.TempDir()
	certificate := filepath.Join(dir, defaultCertificateFile)
	key := filepath.Join(dir, defaultKeyFile)

	require.Nil(t, makeSelfSignedCertificate("test", certificate, key, false, nil), "certificate error")
	assert.NotNil(t, makeSelfSignedCertificate("test", certificate, key, false, nil), "overwrote certificate")

	options := &api.Configuration{
		Certificate: certificate,
		PrivateKey:  key,
	}
	require.Nil(t, loadCertificate(options), "load error")
	assert.Contains(t, options.Certificate, "BEGIN CERTIFICATE", "not PEM")
	assert.Contains(t, options.PrivateKey, "PRIVATE KEY", "not PEM")

	plain := &api.Configuration{}
	assert.Nil(t, loadCertificate(plain), "plain HTTP error")
	assert.Equal(t, "", plain.Certificate, "certificate invented")
}

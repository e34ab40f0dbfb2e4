// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
package fixtures

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// well known ledger values for tests
const (
	// a valid secret seed, only ever used in tests
	RootSeed = "SA2HPVMZLGMNB2T5RYX22KAQODRKY6BPVDBMZKYGB5DVP5L3INNCNKIF"

	// distinct valid account addresses
	AddressOne   = "GB3JFQ5NGVALXAB4AIFTV3TGZWEIOERSGTVAY3TRIPAK3VZ76QY62IDV"
	AddressTwo   = "GA74JTH6ORMHBYWA3GPXD4YP6BSWZDPN2QOMDV6T2N3LBW7GQXRPGMYW"
	AddressThree = "GCFVXHNQYE63EQSWZAU2UNSKVEGG2LV2GGFZEMVEVOJRHOKU2NKV63KI"
	AddressFour  = "GACO7LYIB5ND45HBYKORZJVEQVUTQLF3ZUZE5DKZ2K4D54Q4AOPQAK3P"

	AppId = "test"
)

// SetupTestLogger - log to a local directory at critical level only
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the log files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"
)

const (
	defaultPurgeInterval = 5 * time.Minute
)

// Expiry - background process that removes expired values
type Expiry struct {
	db       *DB
	interval time.Duration
}

// NewExpiry - purge process for a database, zero interval gives the default
func NewExpiry(db *DB, interval time.Duration) *Expiry {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &Expiry{
		db:       db,
		interval: interval,
	}
}

// Run - background.Process interface
func (e *Expiry) Run(args interface{}, shutdown <-chan struct{}) {

	log := e.db.log
	log.Info("expiry: starting…")

loop:
	for {
		log.Debug("expiry: waiting…")
		select {
		case <-shutdown:
			break loop
		case <-time.After(e.interval):
			n, err := e.db.Purge()
			if nil != err {
				log.Errorf("expiry: purge error: %s", err)
			} else if n > 0 {
				log.Debugf("expiry: purged: %d", n)
			}
		}
	}

	log.Info("expiry: stopped")
}

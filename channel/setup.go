// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel - pool of signing channels derived from the root seed
//
// a channel is an account that supplies sequence numbers and fees for
// one ledger write at a time; the root account stays the source of
// funds.  Channel keys are derived, never stored.
package channel

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/storage"
)

// defaults
const (
	defaultMaximum     = 5
	defaultAttempts    = 100
	defaultSleep       = 100 * time.Millisecond
	defaultLockSeconds = 120
	defaultFloor       = 4
	defaultTopUp       = 5

	maximumChannels = 1 << 16

	memoInit  = "kin-init_channel"
	memoTopUp = "kin-topup-channel"
)

// Configuration - the channels section of the configuration file
type Configuration struct {
	Maximum           int    `gluamapper:"maximum" json:"maximum"`
	Salt              string `gluamapper:"salt" json:"-"`
	Attempts          int    `gluamapper:"attempts" json:"attempts"`
	SleepMilliseconds int    `gluamapper:"sleep_milliseconds" json:"sleep_milliseconds"`
	LockSeconds       int    `gluamapper:"lock_seconds" json:"lock_seconds"`
	Floor             int64  `gluamapper:"floor" json:"floor"`
	TopUp             int64  `gluamapper:"top_up" json:"top_up"`
}

// Locker - the part of the store used for channel locks
type Locker interface {
	Lock(ctx context.Context, name string, ttl time.Duration, wait time.Duration) (*storage.Lock, error)
}

// Pool - channel allocator
type Pool struct {
	log      *logger.L
	client   ledger.Client
	locker   Locker
	rootSeed string
	salt     string

	maximum  int
	attempts int
	sleep    time.Duration
	lockTime time.Duration
	floor    int64
	topUp    int64

	randomLock sync.Mutex
	random     *rand.Rand
}

// New - create a pool, zero configuration values take defaults
func New(configuration *Configuration, rootSeed string, client ledger.Client, locker Locker) (*Pool, error) {

	p := &Pool{
		log:      logger.New("channel"),
		client:   client,
		locker:   locker,
		rootSeed: rootSeed,
		salt:     configuration.Salt,
		maximum:  configuration.Maximum,
		attempts: configuration.Attempts,
		sleep:    time.Duration(configuration.SleepMilliseconds) * time.Millisecond,
		lockTime: time.Duration(configuration.LockSeconds) * time.Second,
		floor:    configuration.Floor,
		topUp:    configuration.TopUp,
		random:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if 0 == p.maximum {
		p.maximum = defaultMaximum
	}
	if p.maximum < 0 || p.maximum > maximumChannels {
		return nil, fault.ErrInvalidChannelCount
	}
	if p.attempts <= 0 {
		p.attempts = defaultAttempts
	}
	if p.sleep <= 0 {
		p.sleep = defaultSleep
	}
	if p.lockTime <= 0 {
		p.lockTime = defaultLockSeconds * time.Second
	}
	if 0 == p.topUp {
		p.topUp = defaultTopUp
	}
	if 0 == p.floor {
		p.floor = defaultFloor
	}

	// fail early on a bad seed
	if _, err := DeriveKey(rootSeed, 0, p.salt); nil != err {
		return nil, err
	}

	p.log.Infof("channels: %d  attempts: %d  sleep: %s", p.maximum, p.attempts, p.sleep)
	return p, nil
}

// Maximum - number of channels in the pool
func (p *Pool) Maximum() int {
	return p.maximum
}

// Addresses - all channel addresses in index order
func (p *Pool) Addresses() ([]string, error) {
	return DeriveAddresses(p.rootSeed, p.maximum, p.salt)
}

func (p *Pool) randomIndex() int {
	p.randomLock.Lock()
	defer p.randomLock.Unlock()
	return p.random.Intn(p.maximum)
}

func meterExhausted() {
	counter.Named(counter.ChannelExhausted).Increment()
}

func meterReleaseError() {
	counter.Named(counter.ChannelReleaseError).Increment()
}

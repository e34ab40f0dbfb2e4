// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"context"
	"strconv"
	"time"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/storage"
)

// Channel - an acquired channel, valid until released
type Channel struct {
	Index   int
	Address string
	seed    string
	lock    *storage.Lock
}

// Seed - secret seed used to sign with this channel
func (ch *Channel) Seed() string {
	return ch.seed
}

func lockName(index int) string {
	return "channel:" + strconv.Itoa(index)
}

// Acquire - lock a random free channel and make sure its account is usable
//
// returns fault.ErrNoAvailableChannel when every attempt found the
// chosen channel busy
func (p *Pool) Acquire(ctx context.Context) (*Channel, error) {

	for attempt := 0; attempt < p.attempts; attempt += 1 {

		index := p.randomIndex()

		lock, err := p.locker.Lock(ctx, lockName(index), p.lockTime, 0)
		if nil == err {
			ch, err := p.prepare(ctx, index, lock)
			if nil != err {
				p.release(index, lock)
				return nil, err
			}
			p.log.Debugf("acquired: %d  address: %s  attempt: %d", index, ch.Address, attempt)
			return ch, nil
		}

		if !fault.IsErrTransient(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fault.ErrNoAvailableChannel
		case <-time.After(p.sleep):
		}
	}

	p.log.Warnf("no channel available after: %d attempts", p.attempts)
	meterExhausted()
	return nil, fault.ErrNoAvailableChannel
}

// derive the key and ensure the account exists with enough native balance
func (p *Pool) prepare(ctx context.Context, index int, lock *storage.Lock) (*Channel, error) {
	kp, err := DeriveKey(p.rootSeed, index, p.salt)
	if nil != err {
		return nil, err
	}

	ch := &Channel{
		Index:   index,
		Address: kp.Address(),
		seed:    kp.Seed(),
		lock:    lock,
	}

	account, err := p.client.GetAccount(ctx, ch.Address)
	if fault.ErrAccountNotFound == err {
		p.log.Infof("create channel: %d  address: %s", index, ch.Address)
		_, err = p.client.CreateAccount(ctx, "", ch.Address, p.topUp, memoInit)
		if fault.ErrAccountExists == err {
			return ch, nil
		}
		return ch, err
	}
	if nil != err {
		return nil, err
	}

	if account.NativeBalance < p.floor {
		amount := p.topUp - account.NativeBalance
		p.log.Infof("top up channel: %d  address: %s  amount: %d", index, ch.Address, amount)
		if _, err := p.client.SendNative(ctx, "", ch.Address, amount, memoTopUp); nil != err {
			return nil, err
		}
	}
	return ch, nil
}

// Release - return a channel to the pool, the lock expires anyway if
// this fails
func (p *Pool) Release(ch *Channel) {
	if nil == ch {
		return
	}
	p.release(ch.Index, ch.lock)
}

func (p *Pool) release(index int, lock *storage.Lock) {
	if err := lock.Release(); nil != err {
		p.log.Warnf("release channel: %d  error: %s", index, err)
		meterReleaseError()
	}
}

// With - run f holding a channel, the channel is released however f exits
func (p *Pool) With(ctx context.Context, f func(ch *Channel) error) error {
	ch, err := p.Acquire(ctx)
	if nil != err {
		return err
	}
	defer p.Release(ch)

	return f(ch)
}

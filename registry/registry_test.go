// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/fixtures"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/registry"
	"github.com/bitmark-inc/paymentd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T, ttl time.Duration) (*registry.Registry, *storage.DB) {
	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open error")
	return registry.New(db, ttl), db
}

func TestPutGetDelete(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	_, err := r.Get("svc")
	assert.Equal(t, fault.ErrServiceNotFound, err, "wrong error")

	s := &model.Service{
		ServiceId:       "svc",
		Callback:        "http://example.com/cb",
		WalletAddresses: []string{fixtures.AddressTwo, fixtures.AddressOne, fixtures.AddressTwo},
	}
	err = r.Put(s)
	assert.Nil(t, err, "put error")

	actual, err := r.Get("svc")
	assert.Nil(t, err, "get error")
	assert.Equal(t, "http://example.com/cb", actual.Callback, "wrong callback")
	assert.Equal(t, 2, len(actual.WalletAddresses), "addresses not deduplicated")

	err = r.Delete("svc")
	assert.Nil(t, err, "delete error")

	_, err = r.Get("svc")
	assert.Equal(t, fault.ErrServiceNotFound, err, "service not deleted")

	err = r.Delete("svc")
	assert.Equal(t, fault.ErrServiceNotFound, err, "wrong error")
}

func TestPutInvalid(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	err := r.Put(&model.Service{Callback: "http://example.com"})
	assert.Equal(t, fault.ErrMissingServiceId, err, "wrong error")

	err = r.Put(&model.Service{ServiceId: "svc", Callback: "http://example.com", WalletAddresses: []string{"GBAD"}})
	assert.Equal(t, fault.ErrInvalidAddress, err, "wrong error")
}

func TestAddAddresses(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	// creates when absent
	s, err := r.AddAddresses("svc", "http://example.com/cb", []string{fixtures.AddressOne})
	assert.Nil(t, err, "add error")
	assert.Equal(t, []string{fixtures.AddressOne}, s.WalletAddresses, "wrong addresses")

	// merges when present, callback kept
	s, err = r.AddAddresses("svc", "", []string{fixtures.AddressTwo, fixtures.AddressOne})
	assert.Nil(t, err, "add error")
	assert.Equal(t, 2, len(s.WalletAddresses), "wrong merge")
	assert.Equal(t, "http://example.com/cb", s.Callback, "callback lost")

	// absent service needs a callback
	_, err = r.AddAddresses("other", "", []string{fixtures.AddressOne})
	assert.Equal(t, fault.ErrInvalidCallback, err, "wrong error")
}

func TestWatchers(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	err := r.Put(&model.Service{ServiceId: "b", Callback: "http://b.example.com", WalletAddresses: []string{fixtures.AddressOne}})
	require.Nil(t, err, "put error")
	err = r.Put(&model.Service{ServiceId: "a", Callback: "http://a.example.com", WalletAddresses: []string{fixtures.AddressOne, fixtures.AddressTwo}})
	require.Nil(t, err, "put error")

	// temporary watch on a new address and a duplicate on a permanent one
	_, err = r.AddWatch("b", fixtures.AddressThree, "p1")
	assert.Nil(t, err, "watch error")
	_, err = r.AddWatch("a", fixtures.AddressOne, "p2")
	assert.Nil(t, err, "watch error")

	watchers, err := r.Watchers()
	assert.Nil(t, err, "watchers error")

	expected := map[string][]model.Subscriber{
		fixtures.AddressOne: {
			{ServiceId: "a", Callback: "http://a.example.com"},
			{ServiceId: "b", Callback: "http://b.example.com"},
		},
		fixtures.AddressTwo: {
			{ServiceId: "a", Callback: "http://a.example.com"},
		},
		fixtures.AddressThree: {
			{ServiceId: "b", Callback: "http://b.example.com"},
		},
	}
	assert.Equal(t, expected, watchers, "wrong watchers")

	err = r.RemoveWatch("b", fixtures.AddressThree, "p1")
	assert.Nil(t, err, "remove error")

	watchers, err = r.Watchers()
	assert.Nil(t, err, "watchers error")
	_, ok := watchers[fixtures.AddressThree]
	assert.False(t, ok, "watch not removed")
}

func TestWatchRequiresService(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	_, err := r.AddWatch("none", fixtures.AddressOne, "p1")
	assert.Equal(t, fault.ErrServiceNotFound, err, "wrong error")

	_, err = r.AddWatch("none", "bad", "p1")
	assert.Equal(t, fault.ErrInvalidAddress, err, "wrong error")

	_, err = r.AddWatch("none", fixtures.AddressOne, "")
	assert.Equal(t, fault.ErrMissingId, err, "wrong error")
}

func TestWatchExpires(t *testing.T) {
	r, db := setup(t, 50*time.Millisecond)
	defer db.Close()

	err := r.Put(&model.Service{ServiceId: "svc", Callback: "http://example.com"})
	require.Nil(t, err, "put error")

	entry, err := r.AddWatch("svc", fixtures.AddressFour, "p1")
	assert.Nil(t, err, "watch error")
	assert.Equal(t, "p1", entry.PaymentId, "wrong entry")

	watchers, _ := r.Watchers()
	assert.Equal(t, 1, len(watchers[fixtures.AddressFour]), "watch missing")

	time.Sleep(100 * time.Millisecond)

	watchers, _ = r.Watchers()
	assert.Equal(t, 0, len(watchers[fixtures.AddressFour]), "watch not expired")
}

func TestDeleteRemovesWatches(t *testing.T) {
	r, db := setup(t, 0)
	defer db.Close()

	err := r.Put(&model.Service{ServiceId: "svc", Callback: "http://example.com"})
	require.Nil(t, err, "put error")
	_, err = r.AddWatch("svc", fixtures.AddressFour, "p1")
	require.Nil(t, err, "watch error")

	err = r.Delete("svc")
	assert.Nil(t, err, "delete error")

	keys, err := db.Keys("watch:")
	assert.Nil(t, err, "keys error")
	assert.Equal(t, 0, len(keys), "watch left behind")

	members, err := db.SMembers("watches:svc")
	assert.Nil(t, err, "members error")
	assert.Equal(t, 0, len(members), "index left behind")
}

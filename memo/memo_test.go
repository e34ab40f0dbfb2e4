// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/memo"
)

func TestRoundTrip(t *testing.T) {
	items := []struct {
		appId     string
		paymentId string
	}{
		{"app1", "p1"},
		{"kik", "3c1b5f6a"},
		{"A_B.C", "order_0001"},
		{"", ""},
	}

	for i, item := range items {
		text := memo.Create(item.appId, item.paymentId)
		m, err := memo.Parse(text)
		assert.Nil(t, err, "%d: parse error", i)
		assert.Equal(t, memo.Version, m.Version, "%d: wrong version", i)
		assert.Equal(t, item.appId, m.AppId, "%d: wrong app id", i)
		assert.Equal(t, item.paymentId, m.PaymentId, "%d: wrong payment id", i)
		assert.Equal(t, text, m.String(), "%d: wrong text", i)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1-app1-p1", memo.Create("app1", "p1"), "wrong payment memo")
	assert.Equal(t, "1-app1", memo.CreateWallet("app1"), "wrong wallet memo")
}

func TestInvalid(t *testing.T) {
	items := []string{
		"",
		"1",
		"1-app1",
		"1-app1-p1-extra",
		"kin-init_channel",
		"kin-topup-channel-x",
		"no separators at all",
	}

	for i, text := range items {
		_, err := memo.Parse(text)
		assert.Equal(t, fault.ErrInvalidMemo, err, "%d: %q accepted", i, text)
	}
}

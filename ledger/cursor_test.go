// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/paymentd/ledger"
)

func TestCompareCursor(t *testing.T) {
	items := []struct {
		a        string
		b        string
		expected int
	}{
		{"1", "2", -1},
		{"2", "1", 1},
		{"42", "42", 0},
		{"9", "10", -1},
		{"0009", "10", -1},
		{"121212-1", "121212-2", -1},
		{"99-9", "100-1", -1},
		{"", "1", -1},
		{"now", "now", 0},
	}

	for i, item := range items {
		assert.Equal(t, item.expected, ledger.CompareCursor(item.a, item.b), "%d: %q <=> %q", i, item.a, item.b)
	}
}

func TestAssetMatches(t *testing.T) {
	a := ledger.Asset{Code: "KIN", Issuer: "GISSUER"}
	assert.True(t, a.Matches("KIN", "GISSUER"), "same asset rejected")
	assert.False(t, a.Matches("KIN", "GOTHER"), "wrong issuer accepted")
	assert.False(t, a.Matches("XLM", "GISSUER"), "wrong code accepted")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"context"
	"time"

	"github.com/bitmark-inc/paymentd/fault"
)

// Retry - call f up to attempts times with a fixed delay in between,
// returning the last error
//
// attempts below one are treated as one; a permanent error is
// returned at once
func Retry(ctx context.Context, attempts int, delay time.Duration, f func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i += 1 {
		if err = f(); nil == err {
			return nil
		}
		if fault.IsErrPermanent(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
	return err
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"context"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
)

// Cursor - the persisted stream position, empty if never started
func (w *Watcher) Cursor() (string, error) {
	data, err := w.store.Get(cursorKey)
	if fault.IsErrNotFound(err) {
		return "", nil
	}
	if nil != err {
		return "", err
	}
	return string(data), nil
}

// load the cursor; the first run starts from the current tip rather
// than replaying history
func (w *Watcher) loadCursor(ctx context.Context) (string, error) {
	cursor, err := w.Cursor()
	if nil != err || "" != cursor {
		return cursor, err
	}

	cursor, err = w.client.LatestCursor(ctx)
	if nil != err {
		return "", err
	}
	if err := w.store.Set(cursorKey, []byte(cursor), 0); nil != err {
		return "", err
	}
	w.log.Infof("cursor initialised at: %s", cursor)
	return cursor, nil
}

// persist a cursor, never moving backwards
func (w *Watcher) saveCursor(cursor string) error {
	if "" == cursor {
		return nil
	}

	current, err := w.Cursor()
	if nil != err {
		return err
	}
	if "" != current && ledger.CompareCursor(cursor, current) <= 0 {
		return nil
	}
	return w.store.Set(cursorKey, []byte(cursor), 0)
}

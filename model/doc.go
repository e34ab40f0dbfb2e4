// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package model - requests, records and callback payloads
//
// request structures are validated at the API boundary; everything
// after that point may assume a valid request
package model

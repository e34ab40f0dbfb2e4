// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua configuration file
//
// most of base Lua is available such as reading files to set key data
// and getenv to extract environment supplied items.
//
// the file must end with a return of a single table, e.g.
//
//   local M = {}
//   M.data_directory = "."
//   M.ledger = { horizon_url = os.getenv("HORIZON_URL") }
//   return M
//
// command-line supplied variables appear as string entries in the
// global "arg" table, arg[0] is the configuration file itself
package configuration

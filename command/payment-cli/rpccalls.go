// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bitmark-inc/paymentd/util"
)

// remote error body
type remoteError struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// call the API and print the JSON reply
func (m *metadata) call(method string, body interface{}, query url.Values, elements ...string) error {

	escaped := make([]string, len(elements))
	for i, e := range elements {
		escaped[i] = url.PathEscape(e)
	}
	u := m.url + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if m.verbose {
		fmt.Fprintf(m.e, "%s %s\n", method, u)
	}

	var reply json.RawMessage
	err := util.DoJSON(context.Background(), m.client, method, u, body, &reply)

	var statusError *util.StatusError
	if errors.As(err, &statusError) {
		remote := remoteError{}
		if nil == json.Unmarshal([]byte(statusError.Body), &remote) && "" != remote.Error {
			return fmt.Errorf("status: %d  code: %d  error: %s", statusError.StatusCode, remote.Code, remote.Error)
		}
		return err
	}
	if nil != err {
		return err
	}

	return printJson(m.w, reply)
}

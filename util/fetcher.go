// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bitmark-inc/paymentd/fault"
)

// StatusError - non-2xx reply from a remote endpoint
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: %d on: %q body: %q", e.StatusCode, e.URL, e.Body)
}

// FetchJSON - fetch a JSON response from an HTTP request and decode
// it
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	return DoJSON(ctx, client, http.MethodGet, url, nil, reply)
}

// PostJSON - send a JSON body and decode an optional JSON reply
func PostJSON(ctx context.Context, client *http.Client, url string, body interface{}, reply interface{}) error {
	return DoJSON(ctx, client, http.MethodPost, url, body, reply)
}

// DoJSON - generic JSON request; any status outside 2xx is a *StatusError
//
// a body that cannot be encoded or a malformed url is permanent
func DoJSON(ctx context.Context, client *http.Client, method string, url string, body interface{}, reply interface{}) error {

	var content io.Reader
	if nil != body {
		buffer, err := json.Marshal(body)
		if nil != err {
			return fault.Permanent(err)
		}
		content = bytes.NewReader(buffer)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, content)
	if nil != err {
		return fault.Permanent(err)
	}
	if nil != body {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if nil != err {
		return err
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if nil != err {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &StatusError{
			URL:        url,
			StatusCode: response.StatusCode,
			Body:       string(data),
		}
	}

	if nil == reply || 0 == len(data) {
		return nil
	}
	return json.Unmarshal(data, reply)
}

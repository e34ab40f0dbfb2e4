// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/bitmark-inc/paymentd/fault"
)

// error codes returned in the JSON body
const (
	codeInvalid      = 4000
	codeForbidden    = 4030
	codeNotFound     = 4041
	codeNotAllowed   = 4050
	codeExists       = 4091
	codeRateLimiting = 4290
	codeInternal     = 5000
	codeUnavailable  = 5030
)

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output a JSON reply
func sendReply(w http.ResponseWriter, status int, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(text)
}

// selected errors
func sendNotFound(w http.ResponseWriter) {
	sendError(w, http.StatusNotFound, codeNotFound, "not found")
}
func sendForbidden(w http.ResponseWriter) {
	sendError(w, http.StatusForbidden, codeForbidden, "forbidden")
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// sendFault - status and code from the error class
func sendFault(w http.ResponseWriter, err error) {
	switch {
	case fault.ErrRateLimiting == err:
		sendError(w, http.StatusTooManyRequests, codeRateLimiting, err.Error())
	case fault.IsErrExists(err):
		sendError(w, http.StatusConflict, codeExists, err.Error())
	case fault.IsErrNotFound(err):
		sendError(w, http.StatusNotFound, codeNotFound, err.Error())
	case fault.IsErrTransient(err):
		sendError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
	case fault.IsErrProcess(err):
		sendError(w, http.StatusInternalServerError, codeInternal, err.Error())
	default:
		sendError(w, http.StatusBadRequest, codeInvalid, err.Error())
	}
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, status int, code int, message string) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just in case JSON fails
		http.Error(w, `{"code":5000,"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(text)
}

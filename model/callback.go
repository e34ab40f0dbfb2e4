// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package model

import (
	"encoding/json"
)

// callback objects
const (
	ObjectPayment = "payment"
	ObjectWallet  = "wallet"
)

// callback states
const (
	StateSuccess = "success"
	StateFail    = "fail"
)

// callback actions
const (
	ActionCreate  = "create"
	ActionSend    = "send"
	ActionReceive = "receive"
)

// Callback - webhook body
type Callback struct {
	Object string          `json:"object"`
	State  string          `json:"state"`
	Action string          `json:"action"`
	Value  json.RawMessage `json:"value"`
}

// CallbackJob - one webhook delivery, queued separately from the
// operation that produced it
type CallbackJob struct {
	URL      string   `json:"callback"`
	AppId    string   `json:"app_id"`
	Callback Callback `json:"body"`
}

// Failure - value of a failed operation callback
type Failure struct {
	Id            string `json:"id"`
	AppId         string `json:"app_id"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Reason        string `json:"reason"`
}

// NewCallbackJob - build a job, the value is encoded immediately
func NewCallbackJob(url string, appId string, object string, state string, action string, value interface{}) (*CallbackJob, error) {
	data, err := json.Marshal(value)
	if nil != err {
		return nil, err
	}
	return &CallbackJob{
		URL:   url,
		AppId: appId,
		Callback: Callback{
			Object: object,
			State:  state,
			Action: action,
			Value:  data,
		},
	}, nil
}

func marshalPair(a string, b string) ([]byte, error) {
	return json.Marshal([2]string{a, b})
}

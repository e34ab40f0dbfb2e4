// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package model

import (
	"sort"
	"time"

	"github.com/bitmark-inc/paymentd/fault"
)

// Service - a subscriber to payments touching a set of addresses
type Service struct {
	ServiceId       string   `json:"service_id"`
	Callback        string   `json:"callback"`
	WalletAddresses []string `json:"wallet_addresses"`
}

// Validate - check required fields, addresses are deduplicated and sorted
func (s *Service) Validate() error {
	if "" == s.ServiceId {
		return fault.ErrMissingServiceId
	}
	if err := validCallback(s.Callback); nil != err {
		return err
	}
	for _, address := range s.WalletAddresses {
		if !ValidAddress(address) {
			return fault.ErrInvalidAddress
		}
	}
	s.WalletAddresses = uniqueSorted(s.WalletAddresses)
	return nil
}

// AddAddresses - merge more addresses into the permanent set
func (s *Service) AddAddresses(addresses []string) {
	s.WalletAddresses = uniqueSorted(append(s.WalletAddresses, addresses...))
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	sort.Strings(result)
	return result
}

// WatchEntry - a temporary watch for one expected payment
type WatchEntry struct {
	ServiceId string    `json:"service_id"`
	Address   string    `json:"wallet_address"`
	PaymentId string    `json:"payment_id"`
	Expiry    time.Time `json:"expiry"`
}

// Subscriber - a service to notify about an address
type Subscriber struct {
	ServiceId string
	Callback  string
}

// MarshalJSON - encode as [serviceId, callback]
func (s Subscriber) MarshalJSON() ([]byte, error) {
	return marshalPair(s.ServiceId, s.Callback)
}

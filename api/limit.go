// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
)

// limit - wait for the limiter, refusing when the wait would be too long
func limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	delay := r.Delay()
	if delay > maximumRateDelay {
		r.Cancel()
		return fault.ErrRateLimiting
	}
	time.Sleep(delay)
	return nil
}

// allowed - paths listed in the allow table accept only those networks
func (s *Server) allowed(name string, r *http.Request) bool {
	networks, restricted := s.allow[name]
	if !restricted {
		return true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if nil != err {
		return false
	}
	ip := net.ParseIP(host)
	if nil == ip {
		return false
	}
	for _, network := range networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// guard - metering, access control, connection and rate limits for a route
func (s *Server) guard(name string, f http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Named(counter.APIRequests).Increment()

		if !s.allowed(name, r) {
			s.log.Warnf("deny access: %q to: %s", r.RemoteAddr, name)
			sendForbidden(w)
			return
		}

		n := s.active.Increment()
		defer s.active.Decrement()
		if n > s.maximum {
			sendFault(w, fault.ErrTooManyConnections)
			return
		}

		if err := limit(s.limiter); nil != err {
			sendFault(w, err)
			return
		}

		f(w, r)
	})
}

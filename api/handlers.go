// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/model"
)

const (
	defaultCount    = 10
	maximumCount    = 100
	maximumBodySize = 1 << 20
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /wallets", s.guard("wallets", s.createWallet))
	mux.Handle("GET /wallets/{address}", s.guard("wallets", s.getWallet))
	mux.Handle("GET /wallets/{address}/payments", s.guard("wallets", s.walletPayments))

	mux.Handle("POST /payments", s.guard("payments", s.createPayment))
	mux.Handle("GET /payments/{id}", s.guard("payments", s.getPayment))

	mux.Handle("PUT /services/{serviceId}", s.guard("services", s.putService))
	mux.Handle("DELETE /services/{serviceId}", s.guard("services", s.deleteService))
	mux.Handle("PUT /services/{serviceId}/watchers/{address}/payments/{paymentId}", s.guard("services", s.addWatch))
	mux.Handle("DELETE /services/{serviceId}/watchers/{address}/payments/{paymentId}", s.guard("services", s.removeWatch))

	mux.Handle("GET /watchers", s.guard("watchers", s.watchers))
	mux.Handle("PUT /watchers/{serviceId}", s.guard("watchers", s.putService))
	mux.Handle("POST /watchers/{serviceId}", s.guard("watchers", s.addAddresses))

	mux.Handle("GET /status", s.guard("status", s.status))
	mux.Handle("GET /config", s.guard("config", s.config))
	mux.Handle("GET /metrics", s.guard("metrics", s.metrics))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		sendNotFound(w)
	})

	return mux
}

// decode a JSON request body
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maximumBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); nil != err {
		return fault.ErrInvalidRequestBody
	}
	return nil
}

// POST /wallets
func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	var request model.WalletRequest
	if err := decode(w, r, &request); nil != err {
		sendFault(w, err)
		return
	}
	if err := s.payments.EnqueueWallet(&request); nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusAccepted, request)
}

// GET /wallets/{address}
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := s.payments.GetWallet(r.Context(), r.PathValue("address"))
	if nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, wallet)
}

// GET /wallets/{address}/payments?count=N
func (s *Server) walletPayments(w http.ResponseWriter, r *http.Request) {
	count := defaultCount
	if text := r.URL.Query().Get("count"); "" != text {
		n, err := strconv.Atoi(text)
		if nil != err || n <= 0 || n > maximumCount {
			sendFault(w, fault.ErrInvalidCount)
			return
		}
		count = n
	}

	payments, err := s.payments.WalletPayments(r.Context(), r.PathValue("address"), count)
	if nil != err {
		sendFault(w, err)
		return
	}
	if nil == payments {
		payments = []*model.Payment{}
	}
	sendReply(w, http.StatusOK, struct {
		Payments []*model.Payment `json:"payments"`
	}{
		Payments: payments,
	})
}

// POST /payments
func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var request model.PaymentRequest
	if err := decode(w, r, &request); nil != err {
		sendFault(w, err)
		return
	}
	if err := s.payments.EnqueuePayment(&request); nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusCreated, request)
}

// GET /payments/{id}
func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.GetPayment(r.PathValue("id"))
	if nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, payment)
}

// PUT /services/{serviceId} and PUT /watchers/{serviceId}
func (s *Server) putService(w http.ResponseWriter, r *http.Request) {
	var service model.Service
	if err := decode(w, r, &service); nil != err {
		sendFault(w, err)
		return
	}
	service.ServiceId = r.PathValue("serviceId")

	if err := s.services.Put(&service); nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, service)
}

// POST /watchers/{serviceId}
func (s *Server) addAddresses(w http.ResponseWriter, r *http.Request) {
	var request model.Service
	if err := decode(w, r, &request); nil != err {
		sendFault(w, err)
		return
	}

	service, err := s.services.AddAddresses(r.PathValue("serviceId"), request.Callback, request.WalletAddresses)
	if nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, service)
}

// DELETE /services/{serviceId}
func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	serviceId := r.PathValue("serviceId")
	if err := s.services.Delete(serviceId); nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, struct {
		ServiceId string `json:"service_id"`
	}{
		ServiceId: serviceId,
	})
}

// PUT /services/{serviceId}/watchers/{address}/payments/{paymentId}
func (s *Server) addWatch(w http.ResponseWriter, r *http.Request) {
	entry, err := s.services.AddWatch(r.PathValue("serviceId"), r.PathValue("address"), r.PathValue("paymentId"))
	if nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, entry)
}

// DELETE /services/{serviceId}/watchers/{address}/payments/{paymentId}
func (s *Server) removeWatch(w http.ResponseWriter, r *http.Request) {
	serviceId := r.PathValue("serviceId")
	address := r.PathValue("address")
	paymentId := r.PathValue("paymentId")

	if err := s.services.RemoveWatch(serviceId, address, paymentId); nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, model.WatchEntry{
		ServiceId: serviceId,
		Address:   address,
		PaymentId: paymentId,
	})
}

// GET /watchers
func (s *Server) watchers(w http.ResponseWriter, r *http.Request) {
	watchers, err := s.services.Watchers()
	if nil != err {
		sendFault(w, err)
		return
	}
	sendReply(w, http.StatusOK, watchers)
}

// GET /status
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	type theReply struct {
		Name     string            `json:"app_name"`
		Status   string            `json:"status"`
		Start    time.Time         `json:"start_time"`
		Uptime   string            `json:"uptime"`
		Version  string            `json:"version"`
		Counters map[string]uint64 `json:"counters"`
	}

	sendReply(w, http.StatusOK, theReply{
		Name:     s.info.Name,
		Status:   "ok",
		Start:    s.start.UTC(),
		Uptime:   time.Since(s.start).Round(time.Second).String(),
		Version:  s.info.Version,
		Counters: counter.Snapshot(),
	})
}

// GET /config
func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	type theReply struct {
		HorizonURL        string `json:"horizon_url"`
		NetworkPassphrase string `json:"network_passphrase"`
		AssetIssuer       string `json:"asset_issuer"`
		AssetCode         string `json:"asset_code"`
	}

	sendReply(w, http.StatusOK, theReply{
		HorizonURL:        s.info.HorizonURL,
		NetworkPassphrase: s.info.Network.Passphrase,
		AssetIssuer:       s.info.Asset.Issuer,
		AssetCode:         s.info.Asset.Code,
	})
}

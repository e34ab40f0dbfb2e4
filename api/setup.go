// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/counter"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/util"
)

const (
	logName          = "api"
	readWriteTimeout = 10 * time.Second
	shutdownTimeout  = 5 * time.Second

	defaultMaximumConnections = 100
	defaultRateLimit          = 200
	defaultRequestBurst       = 100
	maximumRateDelay          = time.Second
)

// Configuration - https_rpc section of the configuration file
//
// Certificate and PrivateKey hold PEM text, both empty selects plain HTTP
type Configuration struct {
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"-"`
	PrivateKey         string              `gluamapper:"private_key" json:"-"`
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	RateLimit          float64             `gluamapper:"rate_limit" json:"rate_limit"`
	RequestBurst       int                 `gluamapper:"request_burst" json:"request_burst"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

// Info - static values reported by /status and /config
type Info struct {
	Name       string         `json:"app_name"`
	Version    string         `json:"version"`
	HorizonURL string         `json:"horizon_url"`
	Network    ledger.Network `json:"network"`
	Asset      ledger.Asset   `json:"asset"`
}

// Payments - the orchestrator operations exposed over HTTP
type Payments interface {
	EnqueuePayment(request *model.PaymentRequest) error
	GetPayment(id string) (*model.Payment, error)
	EnqueueWallet(request *model.WalletRequest) error
	GetWallet(ctx context.Context, address string) (*model.Wallet, error)
	WalletPayments(ctx context.Context, address string, limit int) ([]*model.Payment, error)
}

// Services - the registry operations exposed over HTTP
type Services interface {
	Put(service *model.Service) error
	Get(serviceId string) (*model.Service, error)
	Delete(serviceId string) error
	AddAddresses(serviceId string, callback string, addresses []string) (*model.Service, error)
	AddWatch(serviceId string, address string, paymentId string) (*model.WatchEntry, error)
	RemoveWatch(serviceId string, address string, paymentId string) error
	Watchers() (map[string][]model.Subscriber, error)
}

// Server - REST front end
type Server struct {
	log       *logger.L
	info      Info
	start     time.Time
	payments  Payments
	services  Services
	limiter   *rate.Limiter
	allow     map[string][]*net.IPNet
	maximum   uint64
	active    counter.Counter
	listeners []net.Listener
	servers   []*http.Server
	handler   http.Handler
}

// New - create the handler and bind every listen address
//
// an empty listen list gives a server whose Run only waits for shutdown,
// Handler is still usable
func New(configuration *Configuration, info Info, payments Payments, services Services) (*Server, error) {
	log := logger.New(logName)

	maximum := configuration.MaximumConnections
	if 0 == maximum {
		maximum = defaultMaximumConnections
	}
	limit := configuration.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := configuration.RequestBurst
	if burst <= 0 {
		burst = defaultRequestBurst
	}

	// access control for restricted paths
	allow := make(map[string][]*net.IPNet)
	for path, addresses := range configuration.Allow {
		set := make([]*net.IPNet, len(addresses))
		for i, ip := range addresses {
			_, cidr, err := net.ParseCIDR(strings.TrimSpace(ip))
			if nil != err {
				log.Errorf("allow: %q  error: %s", ip, err)
				return nil, fault.ErrInvalidIPAddress
			}
			set[i] = cidr
		}
		allow[path] = set
	}

	s := &Server{
		log:      log,
		info:     info,
		start:    time.Now(),
		payments: payments,
		services: services,
		limiter:  rate.NewLimiter(rate.Limit(limit), burst),
		allow:    allow,
		maximum:  maximum,
	}
	s.handler = s.routes()

	var tlsConfiguration *tls.Config
	if "" != configuration.Certificate || "" != configuration.PrivateKey {
		keyPair, err := tls.X509KeyPair([]byte(configuration.Certificate), []byte(configuration.PrivateKey))
		if nil != err {
			log.Errorf("failed to load keypair: %s", err)
			return nil, err
		}
		tlsConfiguration = &tls.Config{
			Certificates: []tls.Certificate{keyPair},
			NextProtos:   []string{"http/1.1"},
		}
		log.Infof("SHA3-256 fingerprint: %s", util.Fingerprint(keyPair.Certificate[0]))
	}

	for _, listen := range configuration.Listen {
		address, err := util.CanonicalIPandPort(listen)
		if nil != err {
			log.Errorf("listen: %q  error: %s", listen, err)
			s.closeListeners()
			return nil, err
		}
		if strings.HasPrefix(address, ":") {
			// listen on tcp4 and tcp6
			address = "[::]" + address
		}

		l, err := net.Listen("tcp", address)
		if nil != err {
			log.Errorf("listen: %q  error: %s", address, err)
			s.closeListeners()
			return nil, err
		}
		if nil != tlsConfiguration {
			l = tls.NewListener(l, tlsConfiguration)
		}
		log.Infof("bound: %s", l.Addr())

		s.listeners = append(s.listeners, l)
		s.servers = append(s.servers, &http.Server{
			Handler:        s.handler,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		})
	}

	return s, nil
}

// Handler - the routed handler, used directly by tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addresses - the bound listener addresses
func (s *Server) Addresses() []string {
	addresses := make([]string, len(s.listeners))
	for i, l := range s.listeners {
		addresses[i] = l.Addr().String()
	}
	return addresses
}

func (s *Server) closeListeners() {
	for _, l := range s.listeners {
		l.Close()
	}
}

// Run - background process serving every listener until shutdown
func (s *Server) Run(args interface{}, shutdown <-chan struct{}) {
	log := s.log

	log.Info("starting…")

	wg := sync.WaitGroup{}
	for i, server := range s.servers {
		wg.Add(1)
		go func(server *http.Server, l net.Listener) {
			defer wg.Done()
			err := server.Serve(l)
			if nil != err && http.ErrServerClosed != err {
				log.Errorf("serve: %s  error: %s", l.Addr(), err)
			}
		}(server, s.listeners[i])
	}

	log.Info("waiting…")
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, server := range s.servers {
		if err := server.Shutdown(ctx); nil != err {
			log.Errorf("shutdown error: %s", err)
		}
	}
	wg.Wait()

	log.Info("stopped")
}

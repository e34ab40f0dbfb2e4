// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package publish - broadcast matched payments on a ZeroMQ PUB socket
package publish

import (
	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/zmqutil"
)

const (
	queueSize = 1000

	// Topic - first frame of every published message
	Topic = "payment"

	zapDomain = "publish"
)

// Configuration - the publish section of the configuration file
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
}

// Publisher - owns the broadcast sockets
type Publisher struct {
	log *logger.L

	socket4 *zmq.Socket
	socket6 *zmq.Socket

	queue chan *model.Payment
}

// New - bind the broadcast sockets
//
// returns nil when nothing is configured to broadcast; a nil
// publisher accepts and discards payments
func New(configuration *Configuration) (*Publisher, error) {

	log := logger.New("publish")

	if 0 == len(configuration.Broadcast) {
		log.Info("disabled")
		return nil, nil
	}

	privateKey, err := zmqutil.ReadPrivateKeyFile(configuration.PrivateKey)
	if nil != err {
		log.Errorf("read private key file: %q  error: %s", configuration.PrivateKey, err)
		return nil, err
	}
	publicKey, err := zmqutil.ReadPublicKeyFile(configuration.PublicKey)
	if nil != err {
		log.Errorf("read public key file: %q  error: %s", configuration.PublicKey, err)
		return nil, err
	}

	if err := zmqutil.StartAuthentication(); nil != err {
		return nil, err
	}

	socket4, socket6, err := zmqutil.NewBind(log, zmq.PUB, zapDomain, privateKey, publicKey, configuration.Broadcast)
	if nil != err {
		return nil, err
	}

	return &Publisher{
		log:     log,
		socket4: socket4,
		socket6: socket6,
		queue:   make(chan *model.Payment, queueSize),
	}, nil
}

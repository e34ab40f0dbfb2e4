// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/paymentd/model"
)

// Publish - queue a payment for broadcast, dropped if the queue is full
func (p *Publisher) Publish(payment *model.Payment) {
	if nil == p {
		return
	}
	select {
	case p.queue <- payment:
	default:
		p.log.Warnf("queue full, drop payment: %s", payment.Id)
	}
}

// Run - background.Process interface, the only user of the sockets
func (p *Publisher) Run(args interface{}, shutdown <-chan struct{}) {

	log := p.log
	log.Info("starting…")

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case payment := <-p.queue:
			p.send(payment)
		}
	}

	if nil != p.socket4 {
		p.socket4.Close()
	}
	if nil != p.socket6 {
		p.socket6.Close()
	}
	log.Info("stopped")
}

func (p *Publisher) send(payment *model.Payment) {
	data, err := json.Marshal(payment)
	if nil != err {
		p.log.Errorf("encode payment: %s  error: %s", payment.Id, err)
		return
	}

	for _, socket := range []*zmq.Socket{p.socket4, p.socket6} {
		if nil == socket {
			continue
		}
		if _, err := socket.SendMessage(Topic, data); nil != err {
			p.log.Errorf("send payment: %s  error: %s", payment.Id, err)
		}
	}
	p.log.Debugf("published: %s", payment.Id)
}

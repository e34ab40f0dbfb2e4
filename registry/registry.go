// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - services subscribed to ledger addresses
//
// services are kept in one hash keyed by service id; temporary watches
// are expiring values indexed by a per-service set so they can be
// removed with their service
package registry

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/model"
	"github.com/bitmark-inc/paymentd/storage"
)

const (
	defaultWatchTTL = 24 * time.Hour

	servicesKey  = "services"
	watchPrefix  = "watch:"
	watchesIndex = "watches:"
)

// Registry - service registrations
type Registry struct {
	sync.Mutex

	log      *logger.L
	store    storage.Store
	watchTTL time.Duration
}

// New - registry over a store, zero TTL gives the default
func New(store storage.Store, watchTTL time.Duration) *Registry {
	if watchTTL <= 0 {
		watchTTL = defaultWatchTTL
	}
	return &Registry{
		log:      logger.New("registry"),
		store:    store,
		watchTTL: watchTTL,
	}
}

// Put - create or replace a service
func (r *Registry) Put(service *model.Service) error {
	if err := service.Validate(); nil != err {
		return err
	}

	r.Lock()
	defer r.Unlock()

	return r.put(service)
}

func (r *Registry) put(service *model.Service) error {
	data, err := json.Marshal(service)
	if nil != err {
		return err
	}
	if err := r.store.HSet(servicesKey, service.ServiceId, data); nil != err {
		return err
	}
	r.log.Infof("service: %s  addresses: %d", service.ServiceId, len(service.WalletAddresses))
	return nil
}

// Get - fetch a service
func (r *Registry) Get(serviceId string) (*model.Service, error) {
	data, err := r.store.HGet(servicesKey, serviceId)
	if fault.IsErrNotFound(err) {
		return nil, fault.ErrServiceNotFound
	}
	if nil != err {
		return nil, err
	}

	service := &model.Service{}
	if err := json.Unmarshal(data, service); nil != err {
		return nil, err
	}
	return service, nil
}

// Services - all registered services ordered by id
func (r *Registry) Services() ([]*model.Service, error) {
	all, err := r.store.HGetAll(servicesKey)
	if nil != err {
		return nil, err
	}

	services := make([]*model.Service, 0, len(all))
	for id, data := range all {
		service := &model.Service{}
		if err := json.Unmarshal(data, service); nil != err {
			r.log.Errorf("service: %s  decode error: %s", id, err)
			continue
		}
		services = append(services, service)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].ServiceId < services[j].ServiceId
	})
	return services, nil
}

// AddAddresses - merge addresses into a service, creating it if absent
// in which case callback is required
func (r *Registry) AddAddresses(serviceId string, callback string, addresses []string) (*model.Service, error) {

	r.Lock()
	defer r.Unlock()

	service, err := r.Get(serviceId)
	if fault.ErrServiceNotFound == err {
		service = &model.Service{
			ServiceId:       serviceId,
			Callback:        callback,
			WalletAddresses: addresses,
		}
	} else if nil != err {
		return nil, err
	} else {
		if "" != callback {
			service.Callback = callback
		}
		service.AddAddresses(addresses)
	}

	if err := service.Validate(); nil != err {
		return nil, err
	}
	if err := r.put(service); nil != err {
		return nil, err
	}
	return service, nil
}

// Delete - remove a service and its temporary watches
func (r *Registry) Delete(serviceId string) error {

	r.Lock()
	defer r.Unlock()

	if _, err := r.Get(serviceId); nil != err {
		return err
	}

	members, err := r.store.SMembers(watchesIndex + serviceId)
	if nil != err {
		return err
	}
	for _, key := range members {
		if err := r.store.Delete(key); nil != err {
			return err
		}
		if err := r.store.SRem(watchesIndex+serviceId, key); nil != err {
			return err
		}
	}

	r.log.Infof("delete service: %s", serviceId)
	return r.store.HDel(servicesKey, serviceId)
}

func watchKey(serviceId string, address string, paymentId string) string {
	return watchPrefix + serviceId + ":" + address + ":" + paymentId
}

// AddWatch - watch an address for one expected payment until the TTL
// expires
func (r *Registry) AddWatch(serviceId string, address string, paymentId string) (*model.WatchEntry, error) {
	if !model.ValidAddress(address) {
		return nil, fault.ErrInvalidAddress
	}
	if "" == paymentId {
		return nil, fault.ErrMissingId
	}

	r.Lock()
	defer r.Unlock()

	if _, err := r.Get(serviceId); nil != err {
		return nil, err
	}

	entry := &model.WatchEntry{
		ServiceId: serviceId,
		Address:   address,
		PaymentId: paymentId,
		Expiry:    time.Now().Add(r.watchTTL).UTC(),
	}
	data, err := json.Marshal(entry)
	if nil != err {
		return nil, err
	}

	key := watchKey(serviceId, address, paymentId)
	if err := r.store.Set(key, data, r.watchTTL); nil != err {
		return nil, err
	}
	if err := r.store.SAdd(watchesIndex+serviceId, key); nil != err {
		return nil, err
	}

	r.log.Debugf("watch: %s  address: %s  payment: %s", serviceId, address, paymentId)
	return entry, nil
}

// RemoveWatch - drop a temporary watch, absent watches are not an error
func (r *Registry) RemoveWatch(serviceId string, address string, paymentId string) error {

	r.Lock()
	defer r.Unlock()

	key := watchKey(serviceId, address, paymentId)
	if err := r.store.Delete(key); nil != err {
		return err
	}
	return r.store.SRem(watchesIndex+serviceId, key)
}

// Watchers - address to subscribing services, permanent and temporary
// watches merged, each service listed once per address
func (r *Registry) Watchers() (map[string][]model.Subscriber, error) {

	services, err := r.Services()
	if nil != err {
		return nil, err
	}

	callbacks := make(map[string]string, len(services))
	seen := make(map[string]map[string]struct{})
	result := make(map[string][]model.Subscriber)

	add := func(address string, serviceId string) {
		s, ok := seen[address]
		if !ok {
			s = make(map[string]struct{})
			seen[address] = s
		}
		if _, ok := s[serviceId]; ok {
			return
		}
		s[serviceId] = struct{}{}
		result[address] = append(result[address], model.Subscriber{
			ServiceId: serviceId,
			Callback:  callbacks[serviceId],
		})
	}

	for _, service := range services {
		callbacks[service.ServiceId] = service.Callback
	}
	for _, service := range services {
		for _, address := range service.WalletAddresses {
			add(address, service.ServiceId)
		}
	}

	keys, err := r.store.Keys(watchPrefix)
	if nil != err {
		return nil, err
	}
	for _, key := range keys {
		data, err := r.store.Get(key)
		if fault.IsErrNotFound(err) {
			continue // expired since listed
		}
		if nil != err {
			return nil, err
		}
		entry := model.WatchEntry{}
		if err := json.Unmarshal(data, &entry); nil != err {
			r.log.Errorf("watch: %s  decode error: %s", key, err)
			continue
		}
		if _, ok := callbacks[entry.ServiceId]; !ok {
			continue
		}
		add(entry.Address, entry.ServiceId)
	}

	for _, subscribers := range result {
		sort.Slice(subscribers, func(i, j int) bool {
			return subscribers[i].ServiceId < subscribers[j].ServiceId
		})
	}
	return result, nil
}

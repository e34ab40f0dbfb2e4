// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/golang/protobuf/proto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/bitmark-inc/paymentd/counter"
)

const metricPrefix = "paymentd_"

// families - counters and gauges in exposition order
func (s *Server) families() []*dto.MetricFamily {
	snapshot := counter.Snapshot()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	families := make([]*dto.MetricFamily, 0, len(names)+2)
	for _, name := range names {
		families = append(families, &dto.MetricFamily{
			Name: proto.String(metricPrefix + name + "_total"),
			Help: proto.String("count of " + strings.ReplaceAll(name, "_", " ")),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				{Counter: &dto.Counter{Value: proto.Float64(float64(snapshot[name]))}},
			},
		})
	}

	families = append(families,
		gauge("uptime_seconds", "seconds since start", time.Since(s.start).Seconds()),
		gauge("active_requests", "requests being served", float64(s.active.Uint64())),
	)
	return families
}

func gauge(name string, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(metricPrefix + name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: proto.Float64(value)}},
		},
	}
}

// GET /metrics
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	format := expfmt.Negotiate(r.Header)

	w.Header().Set("Content-Type", string(format))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	encoder := expfmt.NewEncoder(w, format)
	for _, family := range s.families() {
		if err := encoder.Encode(family); nil != err {
			s.log.Errorf("metrics encode error: %s", err)
			return
		}
	}
}

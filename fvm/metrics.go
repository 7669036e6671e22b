// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are Prometheus collectors for integration.  A nil *Metrics
// records nothing.
type Metrics struct {
	Steps     prometheus.Counter
	Events    prometheus.Counter
	Spikes    prometheus.Counter
	Integrate prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg, if not nil
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	mt := &Metrics{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cable",
			Name:      "steps_total",
			Help:      "Number of integration time steps.",
		}),
		Events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cable",
			Name:      "events_delivered_total",
			Help:      "Number of events delivered to mechanisms.",
		}),
		Spikes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cable",
			Name:      "threshold_crossings_total",
			Help:      "Number of threshold detector crossings.",
		}),
		Integrate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cable",
			Name:      "integrate_seconds",
			Help:      "Wall time of Integrate calls.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{mt.Steps, mt.Events, mt.Spikes, mt.Integrate} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return mt, nil
}

func (mt *Metrics) addSteps(n int) {
	if mt != nil {
		mt.Steps.Add(float64(n))
	}
}

func (mt *Metrics) addEvents(n int) {
	if mt != nil {
		mt.Events.Add(float64(n))
	}
}

func (mt *Metrics) addSpikes(n int) {
	if mt != nil {
		mt.Spikes.Add(float64(n))
	}
}

func (mt *Metrics) observeIntegrate(start time.Time) {
	if mt != nil {
		mt.Integrate.Observe(time.Since(start).Seconds())
	}
}

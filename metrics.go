// Licensed to the Faultline project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The Faultline project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package faultline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type pipelineMetrics struct {
	eventsCaptured      prometheus.Counter
	eventsFiltered      prometheus.Counter
	transactionsDropped prometheus.Counter
	enrichFailures      prometheus.Counter
	checkInsReported    prometheus.Counter
}

// newPipelineMetrics builds the pipeline counters. With a nil
// registerer the counters still work but are not exported.
func newPipelineMetrics(reg prometheus.Registerer, scrubTimeouts func() float64) *pipelineMetrics {
	factory := promauto.With(reg)
	m := &pipelineMetrics{
		eventsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faultline", Subsystem: "pipeline",
			Name: "events_captured_total",
			Help: "Events admitted and handed to the backend client.",
		}),
		eventsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faultline", Subsystem: "pipeline",
			Name: "events_filtered_total",
			Help: "Captures rejected by admission rules or deduplication.",
		}),
		transactionsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faultline", Subsystem: "pipeline",
			Name: "transactions_dropped_total",
			Help: "Unsampled transactions discarded at finish.",
		}),
		enrichFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faultline", Subsystem: "pipeline",
			Name: "enrichment_failures_total",
			Help: "Enricher errors and panics caught during captures.",
		}),
		checkInsReported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "faultline", Subsystem: "pipeline",
			Name: "check_ins_reported_total",
			Help: "Check-in state transitions reported to the backend client.",
		}),
	}
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "faultline", Subsystem: "pipeline",
		Name: "scrub_pattern_timeouts_total",
		Help: "Scrub patterns skipped because they exceeded their time budget.",
	}, scrubTimeouts)
	return m
}

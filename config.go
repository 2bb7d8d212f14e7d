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
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/faultline/faultline-go/enrich"
	"github.com/faultline/faultline-go/filter"
	"github.com/faultline/faultline-go/model"
	"github.com/faultline/faultline-go/sampling"
	"github.com/faultline/faultline-go/scrub"
)

const defaultFlushTimeout = 2 * time.Second

// Config holds the read-only configuration snapshot consumed by a
// Client. It is copied at NewClient and immutable afterwards, so it
// may be read concurrently by any number of captures. Binding from
// files or the environment is up to the caller.
type Config struct {
	// Backend receives fully prepared events, spans and check-ins.
	// Required.
	Backend BackendClient

	// Logger receives pipeline diagnostics; a nop logger by default.
	Logger *zap.Logger

	// Registerer registers the pipeline's metrics; nil disables
	// registration.
	Registerer prometheus.Registerer

	// Filter holds the admission ignore lists.
	Filter filter.Rules

	// Scrub configures sensitive-data redaction.
	Scrub scrub.Rules

	// SampleRate is the static transaction sampling rate in [0,1].
	SampleRate float64

	// TracesSampler optionally computes sampling rates dynamically,
	// taking precedence over SampleRate.
	TracesSampler sampling.SamplerFunc

	// Enrichers run in ascending order before each capture is
	// emitted.
	Enrichers []enrich.Enricher

	// MaxBreadcrumbs bounds each scope's breadcrumb ring.
	MaxBreadcrumbs int

	// DedupeWindow suppresses repeated captures of an identical
	// exception within the window; zero disables deduplication.
	DedupeWindow time.Duration

	// FlushTimeout bounds the flush delegated to the backend when a
	// check-in reaches a terminal state.
	FlushTimeout time.Duration

	// Release and Environment are stamped onto every event.
	Release     string
	Environment string
}

// DefaultConfig returns a Config with scrubbing defaults, a 1.0
// sample rate and the default breadcrumb limit. Backend must still be
// set by the caller.
func DefaultConfig() Config {
	return Config{
		Scrub:          scrub.DefaultRules(),
		SampleRate:     1.0,
		MaxBreadcrumbs: model.DefaultMaxBreadcrumbs,
		FlushTimeout:   defaultFlushTimeout,
	}
}

// Validate returns an error describing the first invalid field.
func (c *Config) Validate() error {
	if c.Backend == nil {
		return errors.Wrap(ErrInvalidInput, "config: Backend is required")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return errors.Wrapf(ErrInvalidInput, "config: SampleRate %v out of range [0,1]", c.SampleRate)
	}
	if c.MaxBreadcrumbs < 0 {
		return errors.Wrap(ErrInvalidInput, "config: MaxBreadcrumbs must not be negative")
	}
	return nil
}

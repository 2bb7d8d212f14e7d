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

// Package sampling resolves the effective sampling rate for new trace
// units. A configured dynamic sampler takes precedence over the static
// rate and may inherit the parent's decision.
package sampling

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Context describes the transaction a sampling decision is being made
// for. Root and child transactions are distinguished solely by the
// presence of ParentSampled.
type Context struct {
	// Name holds the transaction name.
	Name string

	// Operation holds the transaction operation, e.g. "http.server".
	Operation string

	// ParentSampled holds the parent transaction's sampling decision
	// for continued traces, or nil for a root transaction.
	ParentSampled *bool

	// Data holds custom attributes for dynamic samplers.
	Data map[string]interface{}
}

// SamplerFunc dynamically computes a sampling rate in [0,1] for the
// given context. A nil result defers to the static rate. The returned
// value is used verbatim, including 0.0.
type SamplerFunc func(Context) *float64

// Inherit returns the parent's decision as a rate: 1.0 if the parent
// was sampled, 0.0 if it was not, nil for a root transaction. It is a
// convenience for SamplerFuncs continuing incoming traces; sampling a
// continued trace at 1.0 avoids gaps in the trace tree.
func Inherit(ctx Context) *float64 {
	if ctx.ParentSampled == nil {
		return nil
	}
	rate := 0.0
	if *ctx.ParentSampled {
		rate = 1.0
	}
	return &rate
}

// Sampler resolves effective sampling rates and draws decisions. It is
// safe for concurrent use.
type Sampler struct {
	rate float64
	fn   SamplerFunc

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Sampler with the given static rate and optional
// dynamic sampler. The static rate must lie within [0,1].
func New(rate float64, fn SamplerFunc) (*Sampler, error) {
	if rate < 0 || rate > 1 {
		return nil, errors.Errorf("sample rate %v out of range [0,1]", rate)
	}
	var seed int64
	if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed); err != nil {
		seed = time.Now().UnixNano()
	}
	return &Sampler{
		rate: rate,
		fn:   fn,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Resolve returns the effective sampling rate for the context: the
// dynamic sampler's result when one is configured and returns non-nil,
// the static rate otherwise. Dynamic results are clamped to [0,1].
func (s *Sampler) Resolve(ctx Context) float64 {
	if s.fn != nil {
		if r := s.fn(ctx); r != nil {
			rate := *r
			if rate < 0 {
				rate = 0
			} else if rate > 1 {
				rate = 1
			}
			return rate
		}
	}
	return s.rate
}

// Decide resolves the effective rate and draws a sampling decision.
// Rate 1 always samples and rate 0 never does.
func (s *Sampler) Decide(ctx Context) bool {
	rate := s.Resolve(ctx)
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	s.mu.Lock()
	v := s.rng.Float64()
	s.mu.Unlock()
	return rate > v
}

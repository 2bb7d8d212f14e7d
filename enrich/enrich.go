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

// Package enrich runs an ordered chain of independent mutators over a
// shared enrichment buffer before an event is emitted. One enricher's
// failure never blocks its siblings or the capture.
package enrich

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/faultline/faultline-go/model"
)

// Enricher adds tags, extra data, contexts or user data to a capture.
type Enricher interface {
	// Order determines the enricher's position in the chain;
	// enrichers run by ascending order, ties broken by registration
	// order.
	Order() int

	// Enrich writes into the shared enrichment buffer.
	Enrich(ctx context.Context, buf *Buffer) error
}

// Buffer accumulates enrichment output before it is merged into the
// scope. Within the buffer, later writes win per key.
type Buffer struct {
	Tags     map[string]string
	Extra    map[string]interface{}
	Contexts map[string]map[string]interface{}
	User     *model.User
}

// NewBuffer returns an empty enrichment buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		Tags:     make(map[string]string),
		Extra:    make(map[string]interface{}),
		Contexts: make(map[string]map[string]interface{}),
	}
}

func (b *Buffer) merge(other *Buffer) {
	for k, v := range other.Tags {
		b.Tags[k] = v
	}
	for k, v := range other.Extra {
		b.Extra[k] = v
	}
	for k, v := range other.Contexts {
		b.Contexts[k] = v
	}
	if other.User != nil {
		b.User = other.User
	}
}

type enricherFunc struct {
	order int
	fn    func(context.Context, *Buffer) error
}

func (e enricherFunc) Order() int { return e.order }

func (e enricherFunc) Enrich(ctx context.Context, buf *Buffer) error {
	return e.fn(ctx, buf)
}

// Fn adapts a plain function into an Enricher with the given order.
func Fn(order int, fn func(context.Context, *Buffer) error) Enricher {
	return enricherFunc{order: order, fn: fn}
}

// Chain is an ordered list of enrichers. It is immutable after
// NewChain and safe for concurrent use.
type Chain struct {
	enrichers []Enricher
	logger    *zap.Logger
}

// NewChain returns a Chain running the given enrichers by ascending
// Order, ties broken by registration order.
func NewChain(logger *zap.Logger, enrichers ...Enricher) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := make([]Enricher, len(enrichers))
	copy(sorted, enrichers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return &Chain{enrichers: sorted, logger: logger}
}

// Len returns the number of enrichers in the chain.
func (c *Chain) Len() int {
	return len(c.enrichers)
}

// Run executes the chain and merges the resulting buffer into the
// scope, last writer winning per key. A failing or panicking enricher
// is logged and skipped; its partial output is discarded. The returned
// error aggregates the caught failures for observability only and must
// not fail the capture.
func (c *Chain) Run(ctx context.Context, scope *model.Scope) error {
	if len(c.enrichers) == 0 {
		return nil
	}
	shared := NewBuffer()
	var failures *multierror.Error
	for _, e := range c.enrichers {
		staging := NewBuffer()
		if err := c.runOne(ctx, e, staging); err != nil {
			c.logger.Warn("enricher failed", zap.Int("order", e.Order()), zap.Error(err))
			failures = multierror.Append(failures, err)
			continue
		}
		shared.merge(staging)
	}
	applyBuffer(shared, scope)
	return failures.ErrorOrNil()
}

func (c *Chain) runOne(ctx context.Context, e Enricher, buf *Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enricher panic: %v", r)
		}
	}()
	return e.Enrich(ctx, buf)
}

func applyBuffer(buf *Buffer, scope *model.Scope) {
	scope.SetTags(buf.Tags)
	for k, v := range buf.Extra {
		scope.SetExtra(k, v)
	}
	for k, v := range buf.Contexts {
		scope.SetContext(k, v)
	}
	if buf.User != nil {
		scope.SetUser(*buf.User)
	}
}

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

	"github.com/faultline/faultline-go/model"
	"github.com/faultline/faultline-go/sampling"
)

// Transaction is the root span of one logical traced operation.
type Transaction struct {
	*Span
}

// Name returns the transaction name.
func (t *Transaction) Name() string { return t.name }

// TransactionOption adjusts transaction creation.
type TransactionOption func(*txOptions)

type txOptions struct {
	traceID       model.TraceID
	parentSpanID  model.SpanID
	parentSampled *bool
	data          map[string]interface{}
}

// ContinueFromTrace continues an incoming distributed trace. The
// parent's sampling decision, when known, is handed to the sampler so
// it can avoid gaps in the trace tree.
func ContinueFromTrace(traceID model.TraceID, parentSpanID model.SpanID, parentSampled *bool) TransactionOption {
	return func(o *txOptions) {
		o.traceID = traceID
		o.parentSpanID = parentSpanID
		o.parentSampled = parentSampled
	}
}

// WithSamplingData passes custom attributes to a dynamic sampler.
func WithSamplingData(data map[string]interface{}) TransactionOption {
	return func(o *txOptions) {
		o.data = data
	}
}

// StartTransaction starts a new transaction, drawing its sampling
// decision from the configured sampler. The returned transaction must
// be finished; deferring Finish guarantees that on every exit path.
func (c *Client) StartTransaction(name, op string, opts ...TransactionOption) *Transaction {
	var o txOptions
	for _, opt := range opts {
		opt(&o)
	}
	sampled := c.sampler.Decide(sampling.Context{
		Name:          name,
		Operation:     op,
		ParentSampled: o.parentSampled,
		Data:          o.data,
	})
	traceID := o.traceID
	if traceID.IsZero() {
		traceID = c.newTraceID()
	}
	return &Transaction{Span: &Span{
		client:        c,
		traceID:       traceID,
		spanID:        c.newSpanID(),
		parentSpanID:  o.parentSpanID,
		op:            op,
		name:          name,
		sampled:       sampled,
		isTransaction: true,
		start:         time.Now(),
		tags:          make(map[string]string),
		extra:         make(map[string]interface{}),
		status:        model.SpanStatusUnknown,
	}}
}

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

package faultline_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	faultline "github.com/faultline/faultline-go"
	"github.com/faultline/faultline-go/model"
	"github.com/faultline/faultline-go/sampling"
)

func TestTransactionFinishDeliversOnce(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	assert.True(t, tx.Sampled())
	assert.False(t, tx.Finished())

	tx.Finish()
	assert.True(t, tx.Finished())
	assert.Equal(t, model.SpanStatusOK, tx.Status())

	tx.Finish()
	tx.FinishWithStatus(model.SpanStatusInternalError)

	spans := recorder.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, model.SpanStatusOK, spans[0].Status)
	assert.True(t, spans[0].IsTransaction)
	assert.Equal(t, "GET /orders", spans[0].Name)
	assert.False(t, spans[0].EndTime.IsZero())
}

func TestFinishAbandonsOpenChildren(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("process-batch", "job")
	db := tx.StartChild("db.query")
	cache := tx.StartChild("cache.get")

	tx.Finish()

	spans := recorder.Spans()
	require.Len(t, spans, 3)

	// Children reach their terminal state before their owner.
	assert.Equal(t, model.SpanStatusCancelled, spans[0].Status)
	assert.Equal(t, model.SpanStatusCancelled, spans[1].Status)
	assert.Equal(t, model.SpanStatusOK, spans[2].Status)
	assert.True(t, spans[2].IsTransaction)

	// Finishing the children afterwards must not deliver them again.
	db.Finish()
	cache.FinishWithStatus(model.SpanStatusOK)
	assert.Len(t, recorder.Spans(), 3)
	assert.Equal(t, model.SpanStatusCancelled, db.Status())
	assert.Equal(t, model.SpanStatusCancelled, cache.Status())
}

func TestChildFinishedBeforeOwnerKeepsStatus(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	child := tx.StartChild("db.query")
	child.FinishWithStatus(model.SpanStatusNotFound)
	tx.Finish()

	spans := recorder.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, model.SpanStatusNotFound, spans[0].Status)
	assert.Equal(t, model.SpanStatusOK, spans[1].Status)
}

func TestChildInheritsTraceAndParent(t *testing.T) {
	client, _ := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	child := tx.StartChild("db.query")
	grandchild := child.StartChild("db.connect")

	assert.Equal(t, tx.TraceID(), child.TraceID())
	assert.Equal(t, tx.SpanID(), child.ParentSpanID())
	assert.Equal(t, child.SpanID(), grandchild.ParentSpanID())
	assert.NotEqual(t, tx.SpanID(), child.SpanID())
	assert.Equal(t, tx.Sampled(), child.Sampled())
	tx.Finish()
}

func TestUnsampledTransactionNotDelivered(t *testing.T) {
	client, recorder := newTestClient(t, func(cfg *faultline.Config) {
		cfg.SampleRate = 0.0
	})

	tx := client.StartTransaction("GET /orders", "http.server")
	assert.False(t, tx.Sampled())
	child := tx.StartChild("db.query")
	child.Finish()
	tx.Finish()

	assert.Empty(t, recorder.Spans())
	assert.True(t, tx.Finished())
	assert.True(t, child.Finished())
}

func TestContinuedTraceFollowsParentDecision(t *testing.T) {
	client, _ := newTestClient(t, func(cfg *faultline.Config) {
		cfg.SampleRate = 0.0
		cfg.TracesSampler = sampling.Inherit
	})

	var traceID model.TraceID
	traceID[0] = 0xab
	var parentSpanID model.SpanID
	parentSpanID[0] = 0xcd
	sampled := true

	tx := client.StartTransaction("GET /orders", "http.server",
		faultline.ContinueFromTrace(traceID, parentSpanID, &sampled))
	defer tx.Finish()

	assert.Equal(t, traceID, tx.TraceID())
	assert.Equal(t, parentSpanID, tx.ParentSpanID())
	// The rate is 0.0 but the parent already sampled this trace.
	assert.True(t, tx.Sampled())

	// A root transaction falls back to the static rate.
	root := client.StartTransaction("GET /orders", "http.server")
	defer root.Finish()
	assert.False(t, root.Sampled())
}

func TestMutatingFinishedSpanIsRejected(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	tx.SetTag("kept", "yes")
	tx.Finish()

	tx.SetTag("late", "no")
	tx.SetExtra("late", 1)
	tx.SetDescription("late")
	tx.SetStatus(model.SpanStatusInternalError)

	assert.Equal(t, model.SpanStatusOK, tx.Status())
	spans := recorder.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, "yes", spans[0].Tags["kept"])
	assert.NotContains(t, spans[0].Tags, "late")
	assert.NotContains(t, spans[0].Extra, "late")
}

func TestSetStatusBeforeFinishWins(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	tx.SetStatus(model.SpanStatusResourceExhausted)
	tx.Finish()

	spans := recorder.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, model.SpanStatusResourceExhausted, spans[0].Status)
}

func TestFinishWithError(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	ok := client.StartTransaction("job-a", "job")
	ok.FinishWithError(nil)
	failed := client.StartTransaction("job-b", "job")
	failed.FinishWithError(errors.New("boom"))

	spans := recorder.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, model.SpanStatusOK, spans[0].Status)
	assert.Equal(t, model.SpanStatusInternalError, spans[1].Status)
}

func TestFinishWithHTTPStatus(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders/42", "http.server")
	tx.FinishWithHTTPStatus(404)

	spans := recorder.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, model.SpanStatusNotFound, spans[0].Status)
}

func TestSpanDataCarriesAttributes(t *testing.T) {
	client, recorder := newTestClient(t, nil)

	tx := client.StartTransaction("GET /orders", "http.server")
	span := tx.StartChild("db.query")
	span.SetDescription("SELECT * FROM orders")
	span.SetTag("db.system", "postgresql")
	span.SetExtra("rows", 42)
	span.Finish()
	tx.Finish()

	spans := recorder.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "db.query", spans[0].Op)
	assert.Equal(t, "SELECT * FROM orders", spans[0].Description)
	assert.Equal(t, "postgresql", spans[0].Tags["db.system"])
	assert.Equal(t, 42, spans[0].Extra["rows"])
	assert.False(t, spans[0].IsTransaction)
}

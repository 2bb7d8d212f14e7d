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
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faultline/faultline-go/model"
)

// Span is a timed unit of work within a trace. Spans form a tree: each
// span has exactly one owner and may own further children. A span is
// active until one of the finish methods runs; finishing again is a
// silent no-op, so disposal paths may safely finish a unit that was
// already finished explicitly.
type Span struct {
	client        *Client
	traceID       model.TraceID
	spanID        model.SpanID
	parentSpanID  model.SpanID
	op            string
	name          string
	sampled       bool
	isTransaction bool
	start         time.Time

	mu          sync.Mutex
	description string
	tags        map[string]string
	extra       map[string]interface{}
	status      model.SpanStatus
	end         time.Time
	finished    bool
	children    []*Span
}

// TraceID returns the trace the span belongs to.
func (s *Span) TraceID() model.TraceID { return s.traceID }

// SpanID returns the span's own ID.
func (s *Span) SpanID() model.SpanID { return s.spanID }

// ParentSpanID returns the owner's span ID, fixed at creation. It is
// zero for a root transaction.
func (s *Span) ParentSpanID() model.SpanID { return s.parentSpanID }

// Op returns the span's operation.
func (s *Span) Op() string { return s.op }

// Sampled reports the sampling decision inherited from the
// transaction.
func (s *Span) Sampled() bool { return s.sampled }

// Finished reports whether the span reached its terminal state.
func (s *Span) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Status returns the span's status; SpanStatusUnknown until finished.
func (s *Span) Status() model.SpanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StartChild starts a new child span owned by s. The child inherits
// the trace ID and sampling decision; its parent span ID is fixed to s
// at creation.
func (s *Span) StartChild(op string) *Span {
	child := &Span{
		client:       s.client,
		traceID:      s.traceID,
		spanID:       s.client.newSpanID(),
		parentSpanID: s.spanID,
		op:           op,
		sampled:      s.sampled,
		start:        time.Now(),
		tags:         make(map[string]string),
		extra:        make(map[string]interface{}),
		status:       model.SpanStatusUnknown,
	}
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	return child
}

// SetTag sets a tag on the span. Mutating a finished span is rejected.
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		s.guarded("SetTag", key)
		return
	}
	s.tags[key] = value
}

// SetExtra sets an extra value on the span. Mutating a finished span
// is rejected.
func (s *Span) SetExtra(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		s.guarded("SetExtra", key)
		return
	}
	s.extra[key] = value
}

// SetDescription sets the span's human-readable description.
func (s *Span) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		s.guarded("SetDescription", "")
		return
	}
	s.description = description
}

// SetStatus sets the status the span will finish with, overriding the
// default derivation.
func (s *Span) SetStatus(status model.SpanStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		s.guarded("SetStatus", string(status))
		return
	}
	s.status = status
}

// guarded logs a rejected mutation of a finished unit. Callers hold
// s.mu.
func (s *Span) guarded(op, key string) {
	s.client.logger.Debug("mutation of finished span rejected",
		zap.String("op", op), zap.String("key", key),
		zap.Stringer("span", s.spanID))
}

// Finish finishes the span. A status set earlier is kept; otherwise
// the span finishes Ok. Deferring Finish guarantees the span reaches a
// terminal state on every exit path.
func (s *Span) Finish() {
	s.finishWith("")
}

// FinishWithStatus finishes the span with the given status.
func (s *Span) FinishWithStatus(status model.SpanStatus) {
	s.finishWith(status)
}

// FinishWithError finishes the span with a status derived from err: Ok
// for nil, internal error otherwise. The error itself is not captured
// here; it propagates to the caller unchanged.
func (s *Span) FinishWithError(err error) {
	if err == nil {
		s.finishWith("")
		return
	}
	s.finishWith(model.SpanStatusInternalError)
}

// FinishWithHTTPStatus finishes the span with the outcome mapped from
// an HTTP status code.
func (s *Span) FinishWithHTTPStatus(code int) {
	s.finishWith(model.SpanStatusFromHTTP(code))
}

// finishWith performs the active -> finished transition exactly once.
// An empty status means "derive": keep a status set earlier, else Ok.
func (s *Span) finishWith(status model.SpanStatus) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	if status != "" {
		s.status = status
	} else if s.status == model.SpanStatusUnknown || s.status == "" {
		s.status = model.SpanStatusOK
	}
	s.end = time.Now()
	children := make([]*Span, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	// Children abandoned by their owner still reach a terminal state
	// exactly once.
	for _, child := range children {
		child.finishAbandoned()
	}
	s.deliver()
}

// finishAbandoned finishes a span left open when its owner finished.
// Its status becomes cancelled unless one was set earlier.
func (s *Span) finishAbandoned() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	if s.status == model.SpanStatusUnknown || s.status == "" {
		s.status = model.SpanStatusCancelled
	}
	s.end = time.Now()
	children := make([]*Span, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	for _, child := range children {
		child.finishAbandoned()
	}
	s.deliver()
}

func (s *Span) deliver() {
	if !s.sampled {
		if s.isTransaction {
			s.client.metrics.transactionsDropped.Inc()
		}
		return
	}
	if err := s.client.backend.CaptureSpan(context.Background(), s.data()); err != nil {
		s.client.logger.Warn("span delivery failed",
			zap.Stringer("span", s.spanID), zap.Error(err))
	}
}

func (s *Span) data() *model.SpanData {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make(map[string]string, len(s.tags))
	for k, v := range s.tags {
		tags[k] = v
	}
	extra := make(map[string]interface{}, len(s.extra))
	for k, v := range s.extra {
		extra[k] = v
	}
	return &model.SpanData{
		TraceID:       s.traceID,
		SpanID:        s.spanID,
		ParentSpanID:  s.parentSpanID,
		Name:          s.name,
		Op:            s.op,
		Description:   s.description,
		Status:        s.status,
		Tags:          tags,
		Extra:         extra,
		StartTime:     s.start,
		EndTime:       s.end,
		Sampled:       s.sampled,
		IsTransaction: s.isTransaction,
	}
}

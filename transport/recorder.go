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

// Package transport provides backend client implementations: an
// in-memory recorder for tests and an HTTP sender.
package transport

import (
	"context"
	"sync"

	"github.com/faultline/faultline-go/model"
)

// Recorder is an in-memory backend client capturing everything it
// receives. It is safe for concurrent use and is the standard backend
// in tests.
type Recorder struct {
	mu       sync.Mutex
	events   []*model.Event
	spans    []*model.SpanData
	checkIns []*model.CheckInEvent
	flushes  int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// CaptureEvent records the event and returns its ID.
func (r *Recorder) CaptureEvent(_ context.Context, event *model.Event) (model.EventID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return event.ID, nil
}

// CaptureSpan records the span.
func (r *Recorder) CaptureSpan(_ context.Context, span *model.SpanData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, span)
	return nil
}

// CaptureCheckIn records the check-in and returns its correlation ID.
func (r *Recorder) CaptureCheckIn(_ context.Context, checkIn *model.CheckInEvent) (model.EventID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkIns = append(r.checkIns, checkIn)
	return checkIn.ID, nil
}

// Flush counts the call and returns nil; nothing is ever pending.
func (r *Recorder) Flush(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

// Events returns the recorded events in capture order.
func (r *Recorder) Events() []*model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Spans returns the recorded spans in capture order.
func (r *Recorder) Spans() []*model.SpanData {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.SpanData, len(r.spans))
	copy(out, r.spans)
	return out
}

// CheckIns returns the recorded check-in transitions in capture order.
func (r *Recorder) CheckIns() []*model.CheckInEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.CheckInEvent, len(r.checkIns))
	copy(out, r.checkIns)
	return out
}

// Flushes returns the number of Flush calls.
func (r *Recorder) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.spans = nil
	r.checkIns = nil
	r.flushes = 0
}

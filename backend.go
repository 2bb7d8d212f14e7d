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

	"github.com/faultline/faultline-go/model"
)

// BackendClient delivers fully prepared events, spans and check-ins.
// The pipeline hands it only admitted, enriched and scrubbed data; it
// owns serialization, queuing and delivery failure handling. All
// pipeline traffic must route through the injected client, never
// through a parallel static path.
type BackendClient interface {
	// CaptureEvent delivers a prepared event and returns its ID.
	CaptureEvent(ctx context.Context, event *model.Event) (model.EventID, error)

	// CaptureSpan delivers a finished span or transaction.
	CaptureSpan(ctx context.Context, span *model.SpanData) error

	// CaptureCheckIn reports a check-in state transition and returns
	// the correlation ID for the monitored job execution.
	CaptureCheckIn(ctx context.Context, checkIn *model.CheckInEvent) (model.EventID, error)

	// Flush blocks until pending deliveries drain or the context
	// expires; it may return before fully draining.
	Flush(ctx context.Context) error
}

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

package model

import "time"

// SpanData is the finished, immutable form of a span or transaction,
// handed to the backend client for delivery.
type SpanData struct {
	TraceID      TraceID
	SpanID       SpanID
	ParentSpanID SpanID

	// Name holds the transaction name; empty for plain spans.
	Name string

	Op          string
	Description string
	Status      SpanStatus
	Tags        map[string]string
	Extra       map[string]interface{}
	StartTime   time.Time
	EndTime     time.Time
	Sampled     bool

	// IsTransaction marks the root unit of a traced operation.
	IsTransaction bool
}

// Duration returns the span's wall-clock duration.
func (d *SpanData) Duration() time.Duration {
	return d.EndTime.Sub(d.StartTime)
}

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

import (
	"encoding/hex"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// EventID identifies a captured event or check-in. It is a 128-bit
// value rendered as lowercase hexadecimal without separators.
type EventID [16]byte

// TraceID identifies a trace, shared by all units of work within it.
type TraceID [16]byte

// SpanID identifies a single span within a trace.
type SpanID [8]byte

// NewEventID returns a new random EventID.
func NewEventID() EventID {
	return EventID(uuid.Must(uuid.NewV4()))
}

// ParseEventID parses the lowercase-hex form produced by EventID.String.
func ParseEventID(s string) (EventID, error) {
	var id EventID
	if len(s) != 32 {
		return id, errors.Errorf("invalid event ID %q: expected 32 hex characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, errors.Wrapf(err, "invalid event ID %q", s)
	}
	return id, nil
}

func (id EventID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the ID is unset, e.g. because a capture was
// filtered out before reaching the backend.
func (id EventID) IsZero() bool {
	return id == EventID{}
}

func (id TraceID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the trace ID is unset.
func (id TraceID) IsZero() bool {
	return id == TraceID{}
}

func (id SpanID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the span ID is unset. A root transaction has
// a zero parent span ID.
func (id SpanID) IsZero() bool {
	return id == SpanID{}
}

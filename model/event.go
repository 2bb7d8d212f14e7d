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

// Exception describes a captured error.
type Exception struct {
	// Type holds the error's type name, e.g. "*net.OpError".
	Type string

	// Value holds the error message.
	Value string

	// Module optionally holds the package the error originated in.
	Module string
}

// Event is a fully prepared capture, assembled from a Scope after
// admission, enrichment and scrubbing, and handed to the backend
// client for delivery.
type Event struct {
	ID          EventID
	Timestamp   time.Time
	Level       Level
	Message     string
	Exception   *Exception
	Tags        map[string]string
	Extra       map[string]interface{}
	Contexts    map[string]map[string]interface{}
	User        User
	Breadcrumbs []Breadcrumb
	Fingerprint []string
	Transaction string
	Attachments []Attachment

	// Release and Environment identify the running service version;
	// set by the client from its configuration.
	Release     string
	Environment string
}

// NewEvent returns an Event with a fresh ID and the current timestamp.
func NewEvent(level Level) *Event {
	return &Event{
		ID:        NewEventID(),
		Timestamp: time.Now(),
		Level:     level,
	}
}

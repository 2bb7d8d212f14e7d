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

// Package filter decides admission of captures and inbound requests
// against configured rule lists. Rejection is a normal, silent
// outcome, never an error.
package filter

import (
	"strings"

	"github.com/faultline/faultline-go/wildcard"
)

// Rules holds the ignore lists evaluated by the Engine. Rules are
// read-only during a pipeline run.
type Rules struct {
	// ExceptionTypes holds exception type names rejected on exact
	// (case-insensitive) match.
	ExceptionTypes []string

	// MessagePatterns holds wildcard patterns rejected against the
	// capture message.
	MessagePatterns []string

	// URLPatterns holds wildcard patterns rejected against the
	// request URL.
	URLPatterns []string

	// UserAgentPatterns holds wildcard patterns rejected against the
	// request user agent.
	UserAgentPatterns []string

	// StatusCodes holds HTTP status codes whose captures are
	// rejected.
	StatusCodes []int
}

// Engine evaluates admission against a fixed rule set. It is immutable
// and safe for concurrent use.
type Engine struct {
	rules Rules
}

// NewEngine returns an Engine for the given rules. Empty rule lists
// admit everything.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// AdmitError reports whether a capture with the given exception type
// name, message and associated HTTP status code (zero when not tied to
// a request) should be admitted.
func (e *Engine) AdmitError(typeName, message string, statusCode int) bool {
	for _, t := range e.rules.ExceptionTypes {
		if t != "" && strings.EqualFold(typeName, t) {
			return false
		}
	}
	if len(e.rules.MessagePatterns) > 0 {
		if match, _ := wildcard.MatchAny(message, e.rules.MessagePatterns); match {
			return false
		}
	}
	if statusCode != 0 && e.ignoredStatus(statusCode) {
		return false
	}
	return true
}

// AdmitRequest reports whether a capture originating from the given
// request URL and user agent should be admitted.
func (e *Engine) AdmitRequest(url, userAgent string) bool {
	if len(e.rules.URLPatterns) > 0 {
		if match, _ := wildcard.MatchAny(url, e.rules.URLPatterns); match {
			return false
		}
	}
	if len(e.rules.UserAgentPatterns) > 0 {
		if match, _ := wildcard.MatchAny(userAgent, e.rules.UserAgentPatterns); match {
			return false
		}
	}
	return true
}

func (e *Engine) ignoredStatus(code int) bool {
	for _, c := range e.rules.StatusCodes {
		if c == code {
			return true
		}
	}
	return false
}

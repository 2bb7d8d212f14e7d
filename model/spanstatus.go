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

// SpanStatus is the outcome of a span or transaction. A unit's status
// is SpanStatusUnknown until it is finished.
type SpanStatus string

const (
	SpanStatusUnknown           SpanStatus = "unknown"
	SpanStatusOK                SpanStatus = "ok"
	SpanStatusCancelled         SpanStatus = "cancelled"
	SpanStatusInvalidArgument   SpanStatus = "invalid_argument"
	SpanStatusDeadlineExceeded  SpanStatus = "deadline_exceeded"
	SpanStatusNotFound          SpanStatus = "not_found"
	SpanStatusAlreadyExists     SpanStatus = "already_exists"
	SpanStatusPermissionDenied  SpanStatus = "permission_denied"
	SpanStatusResourceExhausted SpanStatus = "resource_exhausted"
	SpanStatusUnimplemented     SpanStatus = "unimplemented"
	SpanStatusUnavailable       SpanStatus = "unavailable"
	SpanStatusInternalError     SpanStatus = "internal_error"
	SpanStatusUnauthenticated   SpanStatus = "unauthenticated"
)

// SpanStatusFromHTTP maps an HTTP status code to a span outcome.
func SpanStatusFromHTTP(code int) SpanStatus {
	if code >= 200 && code < 300 {
		return SpanStatusOK
	}
	switch code {
	case 400:
		return SpanStatusInvalidArgument
	case 401:
		return SpanStatusUnauthenticated
	case 403:
		return SpanStatusPermissionDenied
	case 404:
		return SpanStatusNotFound
	case 409:
		return SpanStatusAlreadyExists
	case 429:
		return SpanStatusResourceExhausted
	case 499:
		return SpanStatusCancelled
	case 501:
		return SpanStatusUnimplemented
	case 503:
		return SpanStatusUnavailable
	case 504:
		return SpanStatusDeadlineExceeded
	}
	if code >= 500 && code < 600 {
		return SpanStatusInternalError
	}
	return SpanStatusUnknown
}

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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faultline/faultline-go/model"
)

func TestSpanStatusFromHTTP(t *testing.T) {
	tests := []struct {
		code   int
		status model.SpanStatus
	}{
		{200, model.SpanStatusOK},
		{201, model.SpanStatusOK},
		{299, model.SpanStatusOK},
		{400, model.SpanStatusInvalidArgument},
		{401, model.SpanStatusUnauthenticated},
		{403, model.SpanStatusPermissionDenied},
		{404, model.SpanStatusNotFound},
		{409, model.SpanStatusAlreadyExists},
		{429, model.SpanStatusResourceExhausted},
		{499, model.SpanStatusCancelled},
		{501, model.SpanStatusUnimplemented},
		{503, model.SpanStatusUnavailable},
		{504, model.SpanStatusDeadlineExceeded},
		{500, model.SpanStatusInternalError},
		{502, model.SpanStatusInternalError},
		{599, model.SpanStatusInternalError},
		{302, model.SpanStatusUnknown},
		{100, model.SpanStatusUnknown},
		{0, model.SpanStatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, model.SpanStatusFromHTTP(tt.code), "code %d", tt.code)
	}
}

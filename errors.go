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

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a missing or empty required argument.
	// Operations fail with it before any state change.
	ErrInvalidInput = errors.New("faultline: invalid input")

	// ErrAlreadyFinalized reports an explicit Complete or Fail call
	// against a unit that already reached a terminal state. It
	// signals a programmer error; the idempotent finish paths never
	// return it.
	ErrAlreadyFinalized = errors.New("faultline: unit already finalized")
)

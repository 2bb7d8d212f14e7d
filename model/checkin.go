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

// CheckInStatus is the reported state of one scheduled-job execution.
type CheckInStatus string

const (
	CheckInStatusInProgress CheckInStatus = "in_progress"
	CheckInStatusOK         CheckInStatus = "ok"
	CheckInStatusError      CheckInStatus = "error"
)

// IsTerminal reports whether the status ends the check-in lifecycle.
func (s CheckInStatus) IsTerminal() bool {
	return s == CheckInStatusOK || s == CheckInStatusError
}

// CheckInEvent reports one state transition of a scheduled-job
// execution. The ID correlates the in-progress report with its
// terminal report.
type CheckInEvent struct {
	ID          EventID
	MonitorSlug string
	Status      CheckInStatus

	// Duration holds the job runtime; only set on terminal reports.
	Duration time.Duration
}

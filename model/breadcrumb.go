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

// Breadcrumb types, describing the kind of operation the crumb records.
const (
	BreadcrumbTypeDefault    = "default"
	BreadcrumbTypeHTTP       = "http"
	BreadcrumbTypeNavigation = "navigation"
	BreadcrumbTypeQuery      = "query"
	BreadcrumbTypeError      = "error"
)

// Breadcrumb is an immutable trail entry describing something that
// happened before an event. Breadcrumbs are append-only: once recorded
// on a Scope they are only ever evicted, never mutated.
type Breadcrumb struct {
	Message   string
	Category  string
	Type      string
	Level     Level
	Data      map[string]interface{}
	Timestamp time.Time
}

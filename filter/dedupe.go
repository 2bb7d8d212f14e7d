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

package filter

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Dedupe suppresses repeated captures of the same exception type and
// message within a TTL window. A suppressed capture is a silent
// non-admission, like any other filtered outcome.
type Dedupe struct {
	cache *gocache.Cache
}

// NewDedupe returns a Dedupe with the given suppression window.
func NewDedupe(ttl time.Duration) *Dedupe {
	return &Dedupe{cache: gocache.New(ttl, 2*ttl)}
}

// Admit reports whether the (typeName, message) pair has not been seen
// within the window, recording it as seen.
func (d *Dedupe) Admit(typeName, message string) bool {
	key := typeName + "\x00" + message
	if _, found := d.cache.Get(key); found {
		return false
	}
	d.cache.SetDefault(key, struct{}{})
	return true
}

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

// Package wildcard provides simple wildcard string matching for
// admission rule lists. A pattern matches case-insensitively, and the
// `*` wildcard is recognised only at the two ends of the pattern:
// `prefix*`, `*suffix`, `*contains*`, or an exact match otherwise.
// A `*` anywhere else is an ordinary character.
package wildcard

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNilPatterns is returned by MatchAny when the pattern collection
// itself is absent. An empty collection is legal and means no match.
var ErrNilPatterns = errors.New("wildcard: pattern collection must not be nil")

// Match reports whether value matches pattern. Matching is
// case-insensitive. An empty value or empty pattern never matches.
func Match(value, pattern string) bool {
	if value == "" || pattern == "" {
		return false
	}
	v := strings.ToLower(value)
	p := strings.ToLower(pattern)

	leading := strings.HasPrefix(p, "*")
	trailing := strings.HasSuffix(p, "*")
	switch {
	case leading && trailing:
		if len(p) == 1 {
			// A bare "*" matches any non-empty value.
			return true
		}
		return strings.Contains(v, p[1:len(p)-1])
	case leading:
		return strings.HasSuffix(v, p[1:])
	case trailing:
		return strings.HasPrefix(v, p[:len(p)-1])
	}
	return v == p
}

// MatchAny reports whether value matches any of the given patterns,
// short-circuiting on the first match. It returns ErrNilPatterns if
// patterns is nil.
func MatchAny(value string, patterns []string) (bool, error) {
	if patterns == nil {
		return false, ErrNilPatterns
	}
	for _, p := range patterns {
		if Match(value, p) {
			return true, nil
		}
	}
	return false, nil
}

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

// Package scrub redacts sensitive values from strings, maps, headers
// and query strings before events leave the process.
package scrub

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultToken replaces redacted values.
const DefaultToken = "[REDACTED]"

// patternTimeout bounds the execution of a single regex pattern. A
// pattern exceeding its budget is skipped for that input.
const patternTimeout = 100 * time.Millisecond

// Rules configures a Scrubber.
type Rules struct {
	// Enabled turns scrubbing on. When false, all operations return
	// their input unchanged.
	Enabled bool

	// Fields holds case-insensitive substrings of sensitive field
	// names. A map key containing any of them has its whole value
	// replaced with the token.
	Fields []string

	// Patterns holds regex patterns applied to string values, each
	// match replaced with the token.
	Patterns []string

	// Headers holds sensitive header names, matched exactly and
	// case-insensitively.
	Headers []string

	// Token replaces redacted values; DefaultToken when empty.
	Token string

	// ScrubBodies gates the Body operation; when false, free-form
	// bodies pass through unchanged.
	ScrubBodies bool

	// ScrubQueryStrings gates the QueryString operation.
	ScrubQueryStrings bool

	// ScrubCookies gates redaction of cookie headers by Headers.
	ScrubCookies bool
}

// DefaultRules returns the rules applied when nothing is configured,
// mirroring the usual agent defaults.
func DefaultRules() Rules {
	return Rules{
		Enabled: true,
		Fields: []string{
			"password", "passwd", "pwd", "secret", "key", "token",
			"session", "credit", "card", "auth", "signature",
		},
		Patterns: []string{
			// Payment card numbers, with optional space/dash grouping.
			`\b(?:\d[ -]?){13,16}\b`,
		},
		Headers:           []string{"Authorization", "Cookie", "Set-Cookie", "X-Api-Key"},
		Token:             DefaultToken,
		ScrubBodies:       true,
		ScrubQueryStrings: true,
		ScrubCookies:      true,
	}
}

// Scrubber applies Rules to event data. It is immutable after New and
// safe for concurrent use.
type Scrubber struct {
	rules    Rules
	token    string
	fields   []string
	headers  map[string]struct{}
	patterns []*regexp2.Regexp
	logger   *zap.Logger
	timeouts atomic.Uint64
}

// New compiles the given rules. It fails if a pattern does not
// compile, or if the replacement token would itself be scrubbed,
// which would break idempotency.
func New(rules Rules, logger *zap.Logger) (*Scrubber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	token := rules.Token
	if token == "" {
		token = DefaultToken
	}
	s := &Scrubber{
		rules:   rules,
		token:   token,
		headers: make(map[string]struct{}, len(rules.Headers)),
		logger:  logger,
	}
	for _, f := range rules.Fields {
		if f == "" {
			continue
		}
		s.fields = append(s.fields, strings.ToLower(f))
	}
	for _, h := range rules.Headers {
		s.headers[strings.ToLower(h)] = struct{}{}
	}
	for _, p := range rules.Patterns {
		re, err := regexp2.Compile(p, regexp2.IgnoreCase)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling scrub pattern %q", p)
		}
		re.MatchTimeout = patternTimeout
		s.patterns = append(s.patterns, re)
	}
	if s.fieldMatch(token) {
		return nil, errors.Errorf("replacement token %q matches a sensitive field name", token)
	}
	for i, re := range s.patterns {
		match, err := re.MatchString(token)
		if err == nil && match {
			return nil, errors.Errorf("replacement token %q matches scrub pattern %q", token, rules.Patterns[i])
		}
	}
	return s, nil
}

// Token returns the configured replacement token.
func (s *Scrubber) Token() string {
	return s.token
}

// Timeouts returns the number of pattern executions skipped because
// they exceeded their time budget.
func (s *Scrubber) Timeouts() uint64 {
	return s.timeouts.Load()
}

// String applies every configured pattern to the input in order,
// replacing matches with the token. A pattern that exceeds its time
// budget is skipped for this input.
func (s *Scrubber) String(value string) string {
	if !s.rules.Enabled || value == "" {
		return value
	}
	for _, re := range s.patterns {
		out, err := re.Replace(value, s.token, -1, -1)
		if err != nil {
			s.timeouts.Inc()
			s.logger.Debug("scrub pattern timed out, skipping",
				zap.String("pattern", re.String()))
			continue
		}
		value = out
	}
	return value
}

// Body applies the configured patterns to a free-form request or
// message body. Field rules need structured input and do not apply
// here. Returns the input unchanged when ScrubBodies is false.
func (s *Scrubber) Body(body string) string {
	if !s.rules.Enabled || !s.rules.ScrubBodies {
		return body
	}
	return s.String(body)
}

// Map redacts a map. A key containing a sensitive field substring has
// its whole value replaced with the token; string values of other keys
// pass through String; remaining values pass unchanged.
func (s *Scrubber) Map(m map[string]interface{}) map[string]interface{} {
	if !s.rules.Enabled || m == nil {
		return m
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch {
		case s.fieldMatch(k):
			out[k] = s.token
		default:
			if str, ok := v.(string); ok {
				out[k] = s.String(str)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

// Headers redacts HTTP headers. A header whose name matches a
// configured name (exact, case-insensitive) is replaced with the
// token; other values pass through String. Cookie headers are left
// untouched when ScrubCookies is false.
func (s *Scrubber) Headers(h map[string]string) map[string]string {
	if !s.rules.Enabled || h == nil {
		return h
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if _, ok := s.headers[strings.ToLower(k)]; ok {
			if isCookieHeader(k) && !s.rules.ScrubCookies {
				out[k] = v
				continue
			}
			out[k] = s.token
			continue
		}
		out[k] = s.String(v)
	}
	return out
}

func isCookieHeader(name string) bool {
	switch strings.ToLower(name) {
	case "cookie", "set-cookie":
		return true
	}
	return false
}

// QueryString redacts a URL query string, preserving pair order and a
// leading "?". Values of sensitive keys are replaced with the token;
// other values pass through String.
func (s *Scrubber) QueryString(query string) string {
	if !s.rules.Enabled || !s.rules.ScrubQueryStrings || query == "" {
		return query
	}
	prefix := ""
	if strings.HasPrefix(query, "?") {
		prefix = "?"
		query = query[1:]
	}
	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			pairs[i] = s.String(pair)
			continue
		}
		if s.fieldMatch(key) {
			pairs[i] = key + "=" + s.token
			continue
		}
		pairs[i] = key + "=" + s.String(value)
	}
	return prefix + strings.Join(pairs, "&")
}

func (s *Scrubber) fieldMatch(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range s.fields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

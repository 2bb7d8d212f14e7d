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

// DefaultMaxBreadcrumbs is the breadcrumb ring capacity used when a
// Scope is created with a non-positive limit.
const DefaultMaxBreadcrumbs = 100

// Scope holds the mutable per-capture context: tags, extra data,
// structured contexts, user, breadcrumbs, fingerprint, severity level,
// transaction name and attachments. A Scope is created per capture or
// nested-scope push and is not safe for concurrent mutation; the
// caller's own flow is expected to be single-threaded within one
// capture.
type Scope struct {
	tags           map[string]string
	extra          map[string]interface{}
	contexts       map[string]map[string]interface{}
	user           User
	breadcrumbs    []Breadcrumb
	maxBreadcrumbs int
	fingerprint    []string
	level          Level
	transaction    string
	attachments    []Attachment
}

// Attachment is a file payload delivered alongside an event.
type Attachment struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// NewScope returns an empty Scope whose breadcrumb ring holds at most
// maxBreadcrumbs entries; a non-positive limit selects
// DefaultMaxBreadcrumbs.
func NewScope(maxBreadcrumbs int) *Scope {
	if maxBreadcrumbs <= 0 {
		maxBreadcrumbs = DefaultMaxBreadcrumbs
	}
	return &Scope{
		tags:           make(map[string]string),
		extra:          make(map[string]interface{}),
		contexts:       make(map[string]map[string]interface{}),
		maxBreadcrumbs: maxBreadcrumbs,
	}
}

// SetTag sets a tag on the scope. Keys are unique; the last write wins.
func (s *Scope) SetTag(key, value string) {
	s.tags[key] = value
}

// SetTags sets multiple tags at once.
func (s *Scope) SetTags(tags map[string]string) {
	for k, v := range tags {
		s.tags[k] = v
	}
}

// RemoveTag deletes a tag from the scope.
func (s *Scope) RemoveTag(key string) {
	delete(s.tags, key)
}

// Tags returns the scope's tags. The returned map must not be mutated
// by callers; use SetTag.
func (s *Scope) Tags() map[string]string {
	return s.tags
}

// SetExtra sets an arbitrary extra value on the scope.
func (s *Scope) SetExtra(key string, value interface{}) {
	s.extra[key] = value
}

// Extra returns the scope's extra data.
func (s *Scope) Extra() map[string]interface{} {
	return s.extra
}

// SetContext sets a named structured context on the scope.
func (s *Scope) SetContext(key string, values map[string]interface{}) {
	s.contexts[key] = values
}

// Contexts returns the scope's structured contexts.
func (s *Scope) Contexts() map[string]map[string]interface{} {
	return s.contexts
}

// SetUser associates a user with the scope.
func (s *Scope) SetUser(user User) {
	s.user = user
}

// ClearUser removes any user associated with the scope.
func (s *Scope) ClearUser() {
	s.user = User{}
}

// User returns the user associated with the scope.
func (s *Scope) User() User {
	return s.user
}

// AddBreadcrumb appends a breadcrumb, evicting the oldest entry once
// the configured capacity is reached. The crumb's Data map is copied,
// keeping the recorded crumb immutable.
func (s *Scope) AddBreadcrumb(crumb Breadcrumb) {
	if crumb.Timestamp.IsZero() {
		crumb.Timestamp = time.Now()
	}
	if crumb.Data != nil {
		data := make(map[string]interface{}, len(crumb.Data))
		for k, v := range crumb.Data {
			data[k] = v
		}
		crumb.Data = data
	}
	if len(s.breadcrumbs) >= s.maxBreadcrumbs {
		s.breadcrumbs = append(s.breadcrumbs[1:], crumb)
		return
	}
	s.breadcrumbs = append(s.breadcrumbs, crumb)
}

// ClearBreadcrumbs drops all recorded breadcrumbs.
func (s *Scope) ClearBreadcrumbs() {
	s.breadcrumbs = nil
}

// Breadcrumbs returns the recorded breadcrumbs, oldest first.
func (s *Scope) Breadcrumbs() []Breadcrumb {
	return s.breadcrumbs
}

// SetFingerprint sets the ordered string list used to group related
// events.
func (s *Scope) SetFingerprint(fingerprint []string) {
	s.fingerprint = fingerprint
}

// SetLevel sets the severity level applied to events from this scope.
func (s *Scope) SetLevel(level Level) {
	s.level = level
}

// Level returns the scope's severity level, which may be empty.
func (s *Scope) Level() Level {
	return s.level
}

// SetTransaction names the transaction the scope belongs to.
func (s *Scope) SetTransaction(name string) {
	s.transaction = name
}

// Transaction returns the transaction name bound to the scope.
func (s *Scope) Transaction() string {
	return s.transaction
}

// AddAttachment records a file payload to deliver with events from
// this scope.
func (s *Scope) AddAttachment(a Attachment) {
	s.attachments = append(s.attachments, a)
}

// Clone returns a deep copy of the scope. Mutating the clone leaves
// the original untouched; nested-scope pushes and per-capture
// enrichment operate on clones.
func (s *Scope) Clone() *Scope {
	out := NewScope(s.maxBreadcrumbs)
	for k, v := range s.tags {
		out.tags[k] = v
	}
	for k, v := range s.extra {
		out.extra[k] = v
	}
	for k, ctx := range s.contexts {
		values := make(map[string]interface{}, len(ctx))
		for ck, cv := range ctx {
			values[ck] = cv
		}
		out.contexts[k] = values
	}
	out.user = s.user.clone()
	out.breadcrumbs = append(out.breadcrumbs, s.breadcrumbs...)
	out.fingerprint = append(out.fingerprint, s.fingerprint...)
	out.level = s.level
	out.transaction = s.transaction
	out.attachments = append(out.attachments, s.attachments...)
	return out
}

// ApplyToEvent copies the scope's data onto the event. Event fields
// already set by the caller win over scope values of the same name.
func (s *Scope) ApplyToEvent(event *Event) {
	if event.Tags == nil {
		event.Tags = make(map[string]string, len(s.tags))
	}
	for k, v := range s.tags {
		if _, ok := event.Tags[k]; !ok {
			event.Tags[k] = v
		}
	}
	if event.Extra == nil {
		event.Extra = make(map[string]interface{}, len(s.extra))
	}
	for k, v := range s.extra {
		if _, ok := event.Extra[k]; !ok {
			event.Extra[k] = v
		}
	}
	if event.Contexts == nil {
		event.Contexts = make(map[string]map[string]interface{}, len(s.contexts))
	}
	for k, v := range s.contexts {
		if _, ok := event.Contexts[k]; !ok {
			event.Contexts[k] = v
		}
	}
	if event.User.IsEmpty() {
		event.User = s.user.clone()
	}
	if len(event.Breadcrumbs) == 0 {
		event.Breadcrumbs = append(event.Breadcrumbs, s.breadcrumbs...)
	}
	if len(event.Fingerprint) == 0 {
		event.Fingerprint = append(event.Fingerprint, s.fingerprint...)
	}
	if event.Level == "" {
		event.Level = s.level
	}
	if event.Transaction == "" {
		event.Transaction = s.transaction
	}
	if len(event.Attachments) == 0 {
		event.Attachments = append(event.Attachments, s.attachments...)
	}
}

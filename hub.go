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

import (
	"context"

	"github.com/faultline/faultline-go/model"
)

// Hub binds a Client to a stack of scopes for one logical flow (one
// request, one job run). A Hub is not safe for concurrent use; create
// one per flow. Exactly one transaction is bound to the hub's current
// scope at a time.
type Hub struct {
	client *Client
	stack  []*model.Scope
	tx     *Transaction
}

// NewHub returns a Hub with a fresh base scope.
func NewHub(client *Client) *Hub {
	return &Hub{
		client: client,
		stack:  []*model.Scope{client.NewScope()},
	}
}

// Client returns the hub's client.
func (h *Hub) Client() *Client { return h.client }

// Scope returns the current (topmost) scope.
func (h *Hub) Scope() *model.Scope {
	return h.stack[len(h.stack)-1]
}

// PushScope clones the current scope and makes the clone current.
func (h *Hub) PushScope() *model.Scope {
	scope := h.Scope().Clone()
	h.stack = append(h.stack, scope)
	return scope
}

// PopScope discards the current scope, restoring its parent. The base
// scope is never popped.
func (h *Hub) PopScope() {
	if len(h.stack) > 1 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// WithScope runs fn against a temporary scope which is discarded
// afterwards, even if fn panics.
func (h *Hub) WithScope(fn func(*model.Scope)) {
	scope := h.PushScope()
	defer h.PopScope()
	fn(scope)
}

// AddBreadcrumb records a breadcrumb on the current scope.
func (h *Hub) AddBreadcrumb(crumb model.Breadcrumb) {
	h.Scope().AddBreadcrumb(crumb)
}

// SetUser associates a user with the current scope.
func (h *Hub) SetUser(user model.User) {
	h.Scope().SetUser(user)
}

// ClearUser removes the user from the current scope.
func (h *Hub) ClearUser() {
	h.Scope().ClearUser()
}

// SetTag sets a tag on the current scope.
func (h *Hub) SetTag(key, value string) {
	h.Scope().SetTag(key, value)
}

// CaptureException captures err against the current scope.
func (h *Hub) CaptureException(ctx context.Context, err error, opts ...CaptureOption) (model.EventID, error) {
	return h.client.CaptureException(ctx, err, h.Scope(), opts...)
}

// CaptureMessage captures a message against the current scope.
func (h *Hub) CaptureMessage(ctx context.Context, message string, level model.Level, opts ...CaptureOption) (model.EventID, error) {
	return h.client.CaptureMessage(ctx, message, level, h.Scope(), opts...)
}

// Recover captures a recovered panic value against the current scope.
func (h *Hub) Recover(ctx context.Context, recovered interface{}, opts ...CaptureOption) (model.EventID, error) {
	return h.client.Recover(ctx, recovered, h.Scope(), opts...)
}

// StartTransaction starts a transaction and binds it to the current
// scope, replacing any previous binding. The scope's transaction name
// follows the new transaction.
func (h *Hub) StartTransaction(name, op string, opts ...TransactionOption) *Transaction {
	tx := h.client.StartTransaction(name, op, opts...)
	h.tx = tx
	h.Scope().SetTransaction(name)
	return tx
}

// Transaction returns the transaction bound to the hub, if any.
func (h *Hub) Transaction() *Transaction { return h.tx }

// Flush delegates to the client.
func (h *Hub) Flush(ctx context.Context) error {
	return h.client.Flush(ctx)
}

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

// Package faultline implements the event admission and lifecycle
// pipeline: pattern-based filtering, sensitive-data scrubbing,
// sampling, ordered best-effort enrichment, and the finish-once
// lifecycles of spans, transactions and scheduled-job check-ins.
//
// Control flow for an error capture: the filter engine decides
// admission, the enricher chain mutates the scope, the scrubber
// redacts it, and the backend client receives the prepared event.
package faultline

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/faultline/faultline-go/enrich"
	"github.com/faultline/faultline-go/filter"
	"github.com/faultline/faultline-go/model"
	"github.com/faultline/faultline-go/sampling"
	"github.com/faultline/faultline-go/scrub"
)

// Client runs the capture pipeline against an immutable configuration
// snapshot. A Client is safe for concurrent use across independent
// captures; per-capture state (scopes, spans, monitors) is never
// shared between flows.
type Client struct {
	cfg      Config
	backend  BackendClient
	logger   *zap.Logger
	engine   *filter.Engine
	scrubber *scrub.Scrubber
	chain    *enrich.Chain
	sampler  *sampling.Sampler
	dedupe   *filter.Dedupe
	metrics  *pipelineMetrics

	mu  sync.Mutex
	rng *rand.Rand // trace/span ID generation
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = defaultFlushTimeout
	}
	scrubber, err := scrub.New(cfg.Scrub, logger)
	if err != nil {
		return nil, errors.Wrap(err, "invalid scrub rules")
	}
	sampler, err := sampling.New(cfg.SampleRate, cfg.TracesSampler)
	if err != nil {
		return nil, errors.Wrap(err, "invalid sampler config")
	}
	var dedupe *filter.Dedupe
	if cfg.DedupeWindow > 0 {
		dedupe = filter.NewDedupe(cfg.DedupeWindow)
	}
	var seed int64
	if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed); err != nil {
		seed = time.Now().UnixNano()
	}
	c := &Client{
		cfg:      cfg,
		backend:  cfg.Backend,
		logger:   logger,
		engine:   filter.NewEngine(cfg.Filter),
		scrubber: scrubber,
		chain:    enrich.NewChain(logger, cfg.Enrichers...),
		sampler:  sampler,
		dedupe:   dedupe,
		rng:      rand.New(rand.NewSource(seed)),
	}
	c.metrics = newPipelineMetrics(cfg.Registerer, func() float64 {
		return float64(scrubber.Timeouts())
	})
	return c, nil
}

// NewScope returns an empty scope using the client's breadcrumb limit.
func (c *Client) NewScope() *model.Scope {
	return model.NewScope(c.cfg.MaxBreadcrumbs)
}

// CaptureOption adjusts a single capture.
type CaptureOption func(*captureOptions)

type captureOptions struct {
	mutators   []func(*model.Scope)
	statusCode int
	requestURL string
	userAgent  string
	hasRequest bool
}

// WithScopeMutator applies fn to a clone of the capture's scope before
// enrichment; the caller's scope is left untouched.
func WithScopeMutator(fn func(*model.Scope)) CaptureOption {
	return func(o *captureOptions) {
		o.mutators = append(o.mutators, fn)
	}
}

// WithStatusCode associates an HTTP status code with the capture,
// subjecting it to the ignored-status admission rules.
func WithStatusCode(code int) CaptureOption {
	return func(o *captureOptions) {
		o.statusCode = code
	}
}

// WithRequest associates an inbound request with the capture,
// subjecting it to the URL and user-agent admission rules.
func WithRequest(url, userAgent string) CaptureOption {
	return func(o *captureOptions) {
		o.requestURL = url
		o.userAgent = userAgent
		o.hasRequest = true
	}
}

// CaptureException runs err through the pipeline. It returns the
// delivered event's ID; a zero ID with a nil error means the capture
// was deliberately filtered out.
func (c *Client) CaptureException(ctx context.Context, err error, scope *model.Scope, opts ...CaptureOption) (model.EventID, error) {
	if err == nil {
		return model.EventID{}, errors.Wrap(ErrInvalidInput, "capture: nil error")
	}
	event := model.NewEvent(model.LevelError)
	event.Exception = &model.Exception{
		Type:  fmt.Sprintf("%T", errors.Cause(err)),
		Value: err.Error(),
	}
	return c.process(ctx, scope, event, opts)
}

// CaptureMessage runs a plain message through the pipeline.
func (c *Client) CaptureMessage(ctx context.Context, message string, level model.Level, scope *model.Scope, opts ...CaptureOption) (model.EventID, error) {
	if message == "" {
		return model.EventID{}, errors.Wrap(ErrInvalidInput, "capture: empty message")
	}
	if level == "" {
		level = model.LevelInfo
	}
	event := model.NewEvent(level)
	event.Message = message
	return c.process(ctx, scope, event, opts)
}

// Recover captures a recovered panic value at fatal level. Re-raising
// is left to the caller.
func (c *Client) Recover(ctx context.Context, recovered interface{}, scope *model.Scope, opts ...CaptureOption) (model.EventID, error) {
	if recovered == nil {
		return model.EventID{}, errors.Wrap(ErrInvalidInput, "capture: nil panic value")
	}
	event := model.NewEvent(model.LevelFatal)
	if err, ok := recovered.(error); ok {
		event.Exception = &model.Exception{
			Type:  fmt.Sprintf("%T", errors.Cause(err)),
			Value: err.Error(),
		}
	} else {
		event.Message = fmt.Sprint(recovered)
	}
	return c.process(ctx, scope, event, opts)
}

// AdmitRequest exposes the request admission decision to framework
// integrations, so an ignored health-check or bot request can skip
// instrumentation entirely.
func (c *Client) AdmitRequest(url, userAgent string) bool {
	return c.engine.AdmitRequest(url, userAgent)
}

// Flush delegates to the backend client, honoring ctx.
func (c *Client) Flush(ctx context.Context) error {
	return c.backend.Flush(ctx)
}

func (c *Client) process(ctx context.Context, scope *model.Scope, event *model.Event, opts []CaptureOption) (model.EventID, error) {
	var o captureOptions
	for _, opt := range opts {
		opt(&o)
	}

	typeName, message := "", event.Message
	if event.Exception != nil {
		typeName, message = event.Exception.Type, event.Exception.Value
	}
	if o.hasRequest && !c.engine.AdmitRequest(o.requestURL, o.userAgent) {
		c.filtered("request rules", typeName)
		return model.EventID{}, nil
	}
	if !c.engine.AdmitError(typeName, message, o.statusCode) {
		c.filtered("error rules", typeName)
		return model.EventID{}, nil
	}
	if c.dedupe != nil && !c.dedupe.Admit(typeName, message) {
		c.filtered("dedupe", typeName)
		return model.EventID{}, nil
	}

	if scope == nil {
		scope = c.NewScope()
	}
	local := scope.Clone()
	for _, mutate := range o.mutators {
		mutate(local)
	}

	if err := c.chain.Run(ctx, local); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			c.metrics.enrichFailures.Add(float64(len(merr.Errors)))
		} else {
			c.metrics.enrichFailures.Inc()
		}
	}

	local.ApplyToEvent(event)
	event.Release = c.cfg.Release
	event.Environment = c.cfg.Environment
	c.scrubEvent(event)

	// Cancellation is cooperative: checked once here, before
	// delegating to the backend client.
	if err := ctx.Err(); err != nil {
		return model.EventID{}, err
	}
	id, err := c.backend.CaptureEvent(ctx, event)
	if err != nil {
		c.logger.Warn("event delivery failed", zap.Error(err))
		return model.EventID{}, err
	}
	c.metrics.eventsCaptured.Inc()
	return id, nil
}

func (c *Client) filtered(reason, typeName string) {
	c.metrics.eventsFiltered.Inc()
	c.logger.Debug("capture filtered",
		zap.String("reason", reason), zap.String("type", typeName))
}

func (c *Client) scrubEvent(event *model.Event) {
	sc := c.scrubber
	event.Message = sc.String(event.Message)
	if event.Exception != nil {
		event.Exception.Value = sc.String(event.Exception.Value)
	}
	event.Tags = c.scrubStringMap(event.Tags)
	event.Extra = sc.Map(event.Extra)
	for name, values := range event.Contexts {
		event.Contexts[name] = sc.Map(values)
	}
	for i, crumb := range event.Breadcrumbs {
		crumb.Message = sc.String(crumb.Message)
		crumb.Data = sc.Map(crumb.Data)
		event.Breadcrumbs[i] = crumb
	}
	event.User.Data = c.scrubStringMap(event.User.Data)
	event.Transaction = sc.String(event.Transaction)
}

func (c *Client) scrubStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	tmp := make(map[string]interface{}, len(m))
	for k, v := range m {
		tmp[k] = v
	}
	tmp = c.scrubber.Map(tmp)
	out := make(map[string]string, len(tmp))
	for k, v := range tmp {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (c *Client) newTraceID() model.TraceID {
	var id model.TraceID
	c.mu.Lock()
	binary.LittleEndian.PutUint64(id[:8], c.rng.Uint64())
	binary.LittleEndian.PutUint64(id[8:], c.rng.Uint64())
	c.mu.Unlock()
	return id
}

func (c *Client) newSpanID() model.SpanID {
	var id model.SpanID
	c.mu.Lock()
	binary.LittleEndian.PutUint64(id[:], c.rng.Uint64())
	c.mu.Unlock()
	return id
}

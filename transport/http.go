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

package transport

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/faultline/faultline-go/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultQueueSize   = 1000
	defaultSendTimeout = 30 * time.Second
)

// envelope wraps one payload for delivery.
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HTTPSender delivers prepared payloads to an ingestion endpoint as
// JSON envelopes. Sends are queued and drained by a single worker;
// when the queue is full, new payloads are dropped rather than
// blocking the capturing flow.
type HTTPSender struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger

	ch       chan envelope
	pending  sync.WaitGroup
	closed   chan struct{}
	stopOnce sync.Once
}

// HTTPSenderOption adjusts an HTTPSender.
type HTTPSenderOption func(*HTTPSender)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPSenderOption {
	return func(s *HTTPSender) { s.client = client }
}

// WithLogger sets the sender's logger.
func WithLogger(logger *zap.Logger) HTTPSenderOption {
	return func(s *HTTPSender) { s.logger = logger }
}

// NewHTTPSender returns a started HTTPSender delivering to endpoint.
// Close must be called to stop its worker.
func NewHTTPSender(endpoint string, opts ...HTTPSenderOption) (*HTTPSender, error) {
	if endpoint == "" {
		return nil, errors.New("transport: empty endpoint")
	}
	s := &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultSendTimeout},
		logger:   zap.NewNop(),
		ch:       make(chan envelope, defaultQueueSize),
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.worker()
	return s, nil
}

// CaptureEvent enqueues the event and returns its ID.
func (s *HTTPSender) CaptureEvent(_ context.Context, event *model.Event) (model.EventID, error) {
	if err := s.enqueue(envelope{Type: "event", Payload: event}); err != nil {
		return model.EventID{}, err
	}
	return event.ID, nil
}

// CaptureSpan enqueues the finished span or transaction.
func (s *HTTPSender) CaptureSpan(_ context.Context, span *model.SpanData) error {
	return s.enqueue(envelope{Type: "span", Payload: span})
}

// CaptureCheckIn enqueues the check-in transition and returns its
// correlation ID.
func (s *HTTPSender) CaptureCheckIn(_ context.Context, checkIn *model.CheckInEvent) (model.EventID, error) {
	if err := s.enqueue(envelope{Type: "check_in", Payload: checkIn}); err != nil {
		return model.EventID{}, err
	}
	return checkIn.ID, nil
}

// Flush waits for queued payloads to drain, or for ctx to expire. It
// may return before fully draining; the returned error reports the
// unexpired work left behind.
func (s *HTTPSender) Flush(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "transport: flush incomplete")
	}
}

// Close stops the worker after the queue drains. Payloads enqueued
// after Close are dropped.
func (s *HTTPSender) Close() {
	s.stopOnce.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}

func (s *HTTPSender) enqueue(env envelope) error {
	select {
	case <-s.closed:
		return errors.New("transport: sender closed")
	default:
	}
	s.pending.Add(1)
	select {
	case s.ch <- env:
		return nil
	default:
		s.pending.Done()
		s.logger.Warn("transport queue full, dropping payload",
			zap.String("type", env.Type))
		return errors.New("transport: queue full")
	}
}

func (s *HTTPSender) worker() {
	for env := range s.ch {
		if err := s.send(env); err != nil {
			s.logger.Warn("payload delivery failed",
				zap.String("type", env.Type), zap.Error(err))
		}
		s.pending.Done()
	}
}

func (s *HTTPSender) send(env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "encoding envelope")
	}
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "posting envelope")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return errors.Errorf("ingestion endpoint returned %s", resp.Status)
	}
	return nil
}

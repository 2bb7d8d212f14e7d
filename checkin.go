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
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/faultline/faultline-go/model"
)

// CheckInProgress reports the start of a scheduled-job execution and
// returns the correlation ID to supply on the terminal report.
func (c *Client) CheckInProgress(ctx context.Context, slug string) (model.EventID, error) {
	if slug == "" {
		return model.EventID{}, errors.Wrap(ErrInvalidInput, "check-in: empty monitor slug")
	}
	return c.reportCheckIn(ctx, &model.CheckInEvent{
		ID:          model.NewEventID(),
		MonitorSlug: slug,
		Status:      model.CheckInStatusInProgress,
	})
}

func (c *Client) reportCheckIn(ctx context.Context, event *model.CheckInEvent) (model.EventID, error) {
	if err := ctx.Err(); err != nil {
		return model.EventID{}, err
	}
	id, err := c.backend.CaptureCheckIn(ctx, event)
	if err != nil {
		return model.EventID{}, err
	}
	c.metrics.checkInsReported.Inc()
	return id, nil
}

// CheckInMonitor tracks one scheduled-job execution from in-progress
// to exactly one terminal state. Explicitly completing or failing a
// monitor twice is a programmer error; abandoning it without a
// terminal call makes Close report an implicit failure as a safety
// net.
type CheckInMonitor struct {
	client   *Client
	slug     string
	id       model.EventID
	start    time.Time
	terminal atomic.Bool
}

// MonitorCheckIn reports an in-progress check-in for slug and returns
// a monitor enforcing exactly-once completion. A delivery failure of
// the in-progress report is logged and does not prevent monitoring.
func (c *Client) MonitorCheckIn(ctx context.Context, slug string) (*CheckInMonitor, error) {
	if slug == "" {
		return nil, errors.Wrap(ErrInvalidInput, "check-in: empty monitor slug")
	}
	m := &CheckInMonitor{
		client: c,
		slug:   slug,
		id:     model.NewEventID(),
		start:  time.Now(),
	}
	if _, err := c.reportCheckIn(ctx, &model.CheckInEvent{
		ID:          m.id,
		MonitorSlug: slug,
		Status:      model.CheckInStatusInProgress,
	}); err != nil {
		c.logger.Warn("in-progress check-in delivery failed",
			zap.String("monitor", slug), zap.Error(err))
	}
	return m, nil
}

// ID returns the correlation ID of the monitored execution.
func (m *CheckInMonitor) ID() model.EventID { return m.id }

// Complete reports a successful terminal state. Calling it after the
// monitor is already terminal returns ErrAlreadyFinalized.
func (m *CheckInMonitor) Complete(ctx context.Context) error {
	return m.finish(ctx, model.CheckInStatusOK)
}

// Fail reports a failed terminal state. Calling it after the monitor
// is already terminal returns ErrAlreadyFinalized.
func (m *CheckInMonitor) Fail(ctx context.Context) error {
	return m.finish(ctx, model.CheckInStatusError)
}

func (m *CheckInMonitor) finish(ctx context.Context, status model.CheckInStatus) error {
	if !m.terminal.CompareAndSwap(false, true) {
		return errors.Wrapf(ErrAlreadyFinalized, "check-in %s for monitor %q", m.id, m.slug)
	}
	return m.report(ctx, status)
}

// report delivers the terminal event, then delegates a
// deadline-bounded flush to the backend client. Cancellation is
// checked once at the boundary; it does not interrupt anything
// in-flight.
func (m *CheckInMonitor) report(ctx context.Context, status model.CheckInStatus) error {
	if _, err := m.client.reportCheckIn(ctx, &model.CheckInEvent{
		ID:          m.id,
		MonitorSlug: m.slug,
		Status:      status,
		Duration:    time.Since(m.start),
	}); err != nil {
		return errors.Wrapf(err, "reporting %s check-in for monitor %q", status, m.slug)
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.client.cfg.FlushTimeout)
	defer cancel()
	return m.client.backend.Flush(flushCtx)
}

// Execute runs body, completing the monitor on normal return and
// failing it before returning the body's error unchanged. A panicking
// body fails the monitor and re-panics.
func (m *CheckInMonitor) Execute(ctx context.Context, body func(context.Context) error) error {
	defer func() {
		if r := recover(); r != nil {
			// finish is a no-op error if the body somehow already
			// reached a terminal state before panicking.
			_ = m.Fail(ctx)
			panic(r)
		}
	}()
	if err := body(ctx); err != nil {
		if ferr := m.Fail(ctx); ferr != nil {
			m.client.logger.Warn("failing check-in after job error",
				zap.String("monitor", m.slug), zap.Error(ferr))
		}
		return err
	}
	return m.Complete(ctx)
}

// ExecuteAsync runs body on its own goroutine and delivers Execute's
// result on the returned channel. A panicking body fails the monitor
// and arrives on the channel as an error; there is no caller frame to
// re-raise into.
func (m *CheckInMonitor) ExecuteAsync(ctx context.Context, body func(context.Context) error) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- errors.Errorf("check-in body panic: %v", r)
			}
		}()
		result <- m.Execute(ctx, body)
	}()
	return result
}

// Close reports an implicit failure if the monitor never reached a
// terminal state. It swallows every error: disposal must never raise.
// Closing an already-terminal monitor is a no-op, so deferring Close
// is always safe.
func (m *CheckInMonitor) Close() {
	if !m.terminal.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.client.logger.Debug("panic during check-in disposal",
				zap.String("monitor", m.slug), zap.Any("panic", r))
		}
	}()
	if err := m.report(context.Background(), model.CheckInStatusError); err != nil {
		m.client.logger.Debug("implicit check-in failure delivery failed",
			zap.String("monitor", m.slug), zap.Error(err))
	}
}

// RunCronMonitored wraps body in a check-in monitor: in-progress
// before the body, ok or error after, and an implicit failure if the
// body escapes without a terminal transition.
func (c *Client) RunCronMonitored(ctx context.Context, slug string, body func(context.Context) error) error {
	m, err := c.MonitorCheckIn(ctx, slug)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Execute(ctx, body)
}

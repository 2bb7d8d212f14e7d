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

package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline/faultline-go/model"
	"github.com/faultline/faultline-go/transport"
)

type receivedEnvelope struct {
	Type string `json:"type"`
}

func TestHTTPSenderDelivers(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies [][]byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
	}))
	defer srv.Close()

	sender, err := transport.NewHTTPSender(srv.URL)
	require.NoError(t, err)
	defer sender.Close()

	event := model.NewEvent(model.LevelError)
	event.Message = "boom"
	id, err := sender.CaptureEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, id)

	require.NoError(t, sender.CaptureSpan(context.Background(), &model.SpanData{
		Op:     "db.query",
		Status: model.SpanStatusOK,
	}))
	_, err = sender.CaptureCheckIn(context.Background(), &model.CheckInEvent{
		ID:          model.NewEventID(),
		MonitorSlug: "nightly-report",
		Status:      model.CheckInStatusOK,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sender.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 3)
	types := make([]string, 0, len(bodies))
	for _, body := range bodies {
		var env receivedEnvelope
		require.NoError(t, json.Unmarshal(body, &env))
		types = append(types, env.Type)
	}
	assert.Equal(t, []string{"event", "span", "check_in"}, types)
}

func TestHTTPSenderFlushDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	sender, err := transport.NewHTTPSender(srv.URL)
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.CaptureSpan(context.Background(), &model.SpanData{Op: "slow"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = sender.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPSenderRejectsAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	sender, err := transport.NewHTTPSender(srv.URL)
	require.NoError(t, err)
	sender.Close()

	err = sender.CaptureSpan(context.Background(), &model.SpanData{Op: "late"})
	assert.Error(t, err)
}

func TestHTTPSenderEmptyEndpoint(t *testing.T) {
	_, err := transport.NewHTTPSender("")
	assert.Error(t, err)
}

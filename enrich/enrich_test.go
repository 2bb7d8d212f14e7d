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

package enrich_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline/faultline-go/enrich"
	"github.com/faultline/faultline-go/model"
)

func setTag(key, value string) func(context.Context, *enrich.Buffer) error {
	return func(_ context.Context, buf *enrich.Buffer) error {
		buf.Tags[key] = value
		return nil
	}
}

func TestChainRunsByAscendingOrder(t *testing.T) {
	chain := enrich.NewChain(nil,
		enrich.Fn(20, setTag("source", "third")),
		enrich.Fn(10, setTag("source", "second")),
		enrich.Fn(0, setTag("source", "first")),
	)
	scope := model.NewScope(0)
	require.NoError(t, chain.Run(context.Background(), scope))
	assert.Equal(t, "third", scope.Tags()["source"])
}

func TestChainTiesKeepRegistrationOrder(t *testing.T) {
	chain := enrich.NewChain(nil,
		enrich.Fn(5, setTag("winner", "registered-first")),
		enrich.Fn(5, setTag("winner", "registered-second")),
	)
	scope := model.NewScope(0)
	require.NoError(t, chain.Run(context.Background(), scope))
	assert.Equal(t, "registered-second", scope.Tags()["winner"])
}

func TestChainFailureDoesNotBlockSiblings(t *testing.T) {
	chain := enrich.NewChain(nil,
		enrich.Fn(0, setTag("before", "yes")),
		enrich.Fn(1, func(context.Context, *enrich.Buffer) error {
			return errors.New("enricher exploded")
		}),
		enrich.Fn(2, setTag("after", "yes")),
	)
	scope := model.NewScope(0)
	err := chain.Run(context.Background(), scope)
	assert.Error(t, err)
	assert.Equal(t, "yes", scope.Tags()["before"])
	assert.Equal(t, "yes", scope.Tags()["after"])
}

func TestChainPanicIsCaught(t *testing.T) {
	chain := enrich.NewChain(nil,
		enrich.Fn(0, func(context.Context, *enrich.Buffer) error {
			panic("enricher panicked")
		}),
		enrich.Fn(1, setTag("after", "yes")),
	)
	scope := model.NewScope(0)
	err := chain.Run(context.Background(), scope)
	assert.Error(t, err)
	assert.Equal(t, "yes", scope.Tags()["after"])
}

func TestChainFailedEnricherOutputDiscarded(t *testing.T) {
	chain := enrich.NewChain(nil,
		enrich.Fn(0, func(_ context.Context, buf *enrich.Buffer) error {
			buf.Tags["partial"] = "should-not-survive"
			return errors.New("failed after writing")
		}),
	)
	scope := model.NewScope(0)
	err := chain.Run(context.Background(), scope)
	assert.Error(t, err)
	assert.NotContains(t, scope.Tags(), "partial")
}

func TestChainMergesAllBufferKinds(t *testing.T) {
	user := model.User{ID: "u-1", Email: "jane@example.com"}
	chain := enrich.NewChain(nil,
		enrich.Fn(0, func(_ context.Context, buf *enrich.Buffer) error {
			buf.Tags["region"] = "eu-west-1"
			buf.Extra["build"] = 42
			buf.Contexts["runtime"] = map[string]interface{}{"go": "1.22"}
			buf.User = &user
			return nil
		}),
	)
	scope := model.NewScope(0)
	require.NoError(t, chain.Run(context.Background(), scope))
	assert.Equal(t, "eu-west-1", scope.Tags()["region"])
	assert.Equal(t, 42, scope.Extra()["build"])
	assert.Equal(t, "1.22", scope.Contexts()["runtime"]["go"])
	assert.Equal(t, user, scope.User())
}

func TestEmptyChain(t *testing.T) {
	chain := enrich.NewChain(nil)
	assert.Equal(t, 0, chain.Len())
	assert.NoError(t, chain.Run(context.Background(), model.NewScope(0)))
}

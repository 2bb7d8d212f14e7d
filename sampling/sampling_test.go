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

package sampling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline/faultline-go/sampling"
)

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestStaticRateValidation(t *testing.T) {
	_, err := sampling.New(-0.1, nil)
	assert.Error(t, err)
	_, err = sampling.New(1.1, nil)
	assert.Error(t, err)
	_, err = sampling.New(0.5, nil)
	assert.NoError(t, err)
}

func TestResolveStaticRate(t *testing.T) {
	s, err := sampling.New(0.25, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Resolve(sampling.Context{Name: "GET /orders"}))
}

func TestResolveDynamicWins(t *testing.T) {
	s, err := sampling.New(0.25, func(sampling.Context) *float64 {
		return floatPtr(0.75)
	})
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.Resolve(sampling.Context{}))
}

func TestResolveDynamicZeroIsVerbatim(t *testing.T) {
	s, err := sampling.New(1.0, func(sampling.Context) *float64 {
		return floatPtr(0.0)
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Resolve(sampling.Context{}))
	assert.False(t, s.Decide(sampling.Context{}))
}

func TestResolveDynamicNilDefersToStatic(t *testing.T) {
	s, err := sampling.New(0.25, func(sampling.Context) *float64 {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Resolve(sampling.Context{}))
}

func TestResolveDynamicClamped(t *testing.T) {
	s, err := sampling.New(0.5, func(sampling.Context) *float64 {
		return floatPtr(7.0)
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Resolve(sampling.Context{}))
}

func TestInherit(t *testing.T) {
	assert.Nil(t, sampling.Inherit(sampling.Context{}))

	rate := sampling.Inherit(sampling.Context{ParentSampled: boolPtr(true)})
	require.NotNil(t, rate)
	assert.Equal(t, 1.0, *rate)

	rate = sampling.Inherit(sampling.Context{ParentSampled: boolPtr(false)})
	require.NotNil(t, rate)
	assert.Equal(t, 0.0, *rate)
}

func TestInheritingSamplerFollowsParent(t *testing.T) {
	s, err := sampling.New(0.0, sampling.Inherit)
	require.NoError(t, err)

	// Continued trace: the parent's decision wins over the 0.0 rate.
	assert.True(t, s.Decide(sampling.Context{ParentSampled: boolPtr(true)}))
	assert.False(t, s.Decide(sampling.Context{ParentSampled: boolPtr(false)}))

	// Root transaction: back to the static rate.
	assert.False(t, s.Decide(sampling.Context{}))
}

func TestDecideExtremes(t *testing.T) {
	always, err := sampling.New(1.0, nil)
	require.NoError(t, err)
	never, err := sampling.New(0.0, nil)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		assert.True(t, always.Decide(sampling.Context{}))
		assert.False(t, never.Decide(sampling.Context{}))
	}
}

// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package xfory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecCopyScalarsAreIndependent(t *testing.T) {
	c := New()
	cp, err := c.Copy(int32(7))
	require.NoError(t, err)
	require.Equal(t, int32(7), cp)
}

func TestCodecCopyNil(t *testing.T) {
	c := New()
	cp, err := c.Copy(nil)
	require.NoError(t, err)
	require.Nil(t, cp)
}

func TestCodecCopyDeepCopiesNestedSlice(t *testing.T) {
	c := New()
	original := [][]int32{{1, 2}, {3, 4}}

	cp, err := c.Copy(original)
	require.NoError(t, err)
	copied, ok := cp.([][]int32)
	require.True(t, ok)
	require.Equal(t, original, copied)

	copied[0][0] = 99
	require.Equal(t, int32(1), original[0][0], "mutating the copy must not alias the original's backing array")
}

func TestCodecCopyDeepCopiesNestedMap(t *testing.T) {
	c := New()
	original := map[string][]int32{"a": {1, 2, 3}}

	cp, err := c.Copy(original)
	require.NoError(t, err)
	copied, ok := cp.(map[string][]int32)
	require.True(t, ok)
	require.Equal(t, original, copied)

	copied["a"][0] = 42
	require.Equal(t, int32(1), original["a"][0], "mutating a copied map value must not alias the original slice")
}

func TestCodecCopySetDeepCopiesKeys(t *testing.T) {
	c := New()
	original := map[string]struct{}{"x": {}, "y": {}}

	cp, err := c.Copy(original)
	require.NoError(t, err)
	copied, ok := cp.(map[string]struct{})
	require.True(t, ok)
	require.Equal(t, original, copied)
}

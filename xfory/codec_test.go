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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializePrimitives(t *testing.T) {
	c := New()

	data, err := c.Serialize(int32(42))
	require.NoError(t, err)
	got, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, int32(42), got)

	data, err = c.Serialize("hello")
	require.NoError(t, err)
	got, err = c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, "hello", got)

	data, err = c.Serialize(true)
	require.NoError(t, err)
	got, err = c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, true, got)
}

func TestSerializeDeserializeNil(t *testing.T) {
	c := New()
	data, err := c.Serialize(nil)
	require.NoError(t, err)
	got, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSerializeDeserializeSliceAndMap(t *testing.T) {
	c := New()

	data, err := c.Serialize([]int32{1, 2, 3})
	require.NoError(t, err)
	got, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, got)

	data, err = c.Serialize(map[string]int32{"a": 1, "b": 2})
	require.NoError(t, err)
	got, err = c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, map[string]int32{"a": 1, "b": 2}, got)
}

func TestSerializeRejectsBadMagicNumber(t *testing.T) {
	c := New()
	data, err := c.Serialize(int32(1))
	require.NoError(t, err)
	data[0] ^= 0xFF

	_, err = c.Deserialize(data)
	require.ErrorIs(t, err, ErrMagicNumber)
}

func TestDeserializeTruncatedInputDoesNotPanic(t *testing.T) {
	c := New()
	data, err := c.Serialize([]int32{1, 2, 3, 4, 5})
	require.NoError(t, err)

	_, err = c.Deserialize(data[:len(data)-1])
	require.Error(t, err, "a truncated payload must surface as an error, not panic")
}

func TestGenericSerializeDeserializeHelpers(t *testing.T) {
	c := New()
	data, err := Serialize(c, int32(7))
	require.NoError(t, err)
	got, err := Deserialize[int32](c, data)
	require.NoError(t, err)
	require.Equal(t, int32(7), got)
}

func TestStreamRoundTrip(t *testing.T) {
	c := New()
	framed, err := c.SerializeStream([]int32{9, 8, 7})
	require.NoError(t, err)

	payload, err := ReadFramed(bytes.NewReader(framed))
	require.NoError(t, err)

	got, err := c.Deserialize(payload)
	require.NoError(t, err)
	require.Equal(t, []int32{9, 8, 7}, got)
}

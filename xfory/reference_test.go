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
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestWriteRefFirstThenRepeat(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	buf := NewByteBuffer(nil)

	var x int
	ptr := unsafe.Pointer(&x)

	first := r.WriteRef(buf, ptr, false)
	require.False(t, first, "first occurrence must not be treated as already seen")

	repeat := r.WriteRef(buf, ptr, false)
	require.True(t, repeat, "second occurrence of the same pointer must be a back-reference")

	tag, _ := r.ReadTag(buf)
	require.Equal(t, TrackFirstTag, tag)
	tag, refID := r.ReadTag(buf)
	require.Equal(t, RefTagValue, tag)
	require.Equal(t, int32(0), refID)
}

func TestWriteRefSuppressedAlwaysNotNull(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	buf := NewByteBuffer(nil)
	var x int
	ptr := unsafe.Pointer(&x)

	require.False(t, r.WriteRef(buf, ptr, true))
	require.False(t, r.WriteRef(buf, ptr, true))

	tag, _ := r.ReadTag(buf)
	require.Equal(t, NotNullValueTag, tag)
	tag, _ = r.ReadTag(buf)
	require.Equal(t, NotNullValueTag, tag)
}

func TestReferenceAndGetReferenced(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	r.Reference("first")
	r.Reference("second")

	require.Equal(t, "first", r.GetReferenced(0))
	require.Equal(t, "second", r.GetReferenced(1))
	require.Nil(t, r.GetReferenced(2))
}

func TestEnterWriteDepthGuardWithoutTracking(t *testing.T) {
	r := NewRefResolver(false, false, false, false, false)
	r.SetMaxDepth(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.EnterWrite())
	}
	err := r.EnterWrite()
	require.ErrorIs(t, err, ErrCircularWithoutTracking)
}

func TestEnterWriteDepthGuardWithTracking(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	r.SetMaxDepth(2)

	require.NoError(t, r.EnterWrite())
	require.NoError(t, r.EnterWrite())
	err := r.EnterWrite()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCircularWithoutTracking)
}

func TestEnterReadDepthGuardAlwaysMalformed(t *testing.T) {
	r := NewRefResolver(false, false, false, false, false)
	r.SetMaxDepth(1)
	require.NoError(t, r.EnterRead())
	err := r.EnterRead()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCircularWithoutTracking)
}

func TestSuppressedForByKindFamily(t *testing.T) {
	r := NewRefResolver(true, true, true, true, false)
	require.True(t, r.SuppressedFor(KindBool))
	require.True(t, r.SuppressedFor(KindString))
	require.True(t, r.SuppressedFor(KindTimestamp))
	require.False(t, r.SuppressedFor(KindStruct))
}

func TestXlangForcesStringRefTracking(t *testing.T) {
	r := NewRefResolver(true, false, true, false, true)
	require.False(t, r.StringSuppressed(), "xlang mode must force string ref tracking on")
}

func TestResetWriteClearsIdentityTable(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	buf := NewByteBuffer(nil)
	var x int
	ptr := unsafe.Pointer(&x)

	r.WriteRef(buf, ptr, false)
	r.ResetWrite()

	first := r.WriteRef(buf, ptr, false)
	require.False(t, first, "after ResetWrite the same pointer must be treated as unseen again")
}

func TestWriteStringRefDedupsByContent(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	buf := NewByteBuffer(nil)

	// Two independently constructed strings with identical content must
	// dedup even though Go gives them no shared pointer identity.
	a := string([]byte{'h', 'i'})
	b := string([]byte{'h', 'i'})

	first := r.WriteStringRef(buf, a, false)
	require.False(t, first)
	repeat := r.WriteStringRef(buf, b, false)
	require.True(t, repeat, "a second string with the same content must be a back-reference")

	tag, _ := r.ReadTag(buf)
	require.Equal(t, TrackFirstTag, tag)
	tag, refID := r.ReadTag(buf)
	require.Equal(t, RefTagValue, tag)
	require.Equal(t, int32(0), refID)
}

func TestWriteStringRefResetWriteClearsContentTable(t *testing.T) {
	r := NewRefResolver(true, false, false, false, false)
	buf := NewByteBuffer(nil)

	r.WriteStringRef(buf, "hi", false)
	r.ResetWrite()

	first := r.WriteStringRef(buf, "hi", false)
	require.False(t, first, "after ResetWrite the same content must be treated as unseen again")
}

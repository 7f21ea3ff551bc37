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
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// node is a hand-registered self-referential type, standing in for the
// struct-field reflection this package deliberately does not implement
// (see resolver.go's classVersionHash doc comment): a caller with a
// cyclic struct of their own brings a Serializer just like this one.
type node struct {
	Val  int32
	Next *node
}

type nodeSerializer struct{}

func (nodeSerializer) Kind() int32          { return KindStruct }
func (nodeSerializer) NeedToWriteRef() bool { return true }

func (nodeSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.Buffer().WriteInt32(int32(v.FieldByName("Val").Int()))
	return ctx.WriteReferencable(v.FieldByName("Next"))
}

func (nodeSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.FieldByName("Val").SetInt(int64(ctx.Buffer().ReadInt32()))
	nextField := v.FieldByName("Next")
	next, err := ctx.ReadReferencable(nextField.Type())
	if err != nil {
		return err
	}
	nextField.Set(next)
	return nil
}

func newNodeCodec(t *testing.T) *Codec {
	t.Helper()
	c := New()
	require.NoError(t, c.Register(node{}, 200))
	require.NoError(t, c.RegisterSerializer(node{}, nodeSerializer{}))
	return c
}

func TestCyclicPointerStructRoundTrips(t *testing.T) {
	c := newNodeCodec(t)

	a := &node{Val: 1}
	a.Next = a

	// Wrapped in a slice rather than serialized bare: a top-level any
	// decode only knows the registered concrete type (node), not
	// pointer-ness, so only a typed slot (here, []*node's element type)
	// exercises the pointer-preserving branch of ReadReferencable.
	data, err := c.Serialize([]*node{a})
	require.NoError(t, err)

	got, err := c.Deserialize(data)
	require.NoError(t, err)

	decoded, ok := got.([]*node)
	require.True(t, ok)
	require.Len(t, decoded, 1)
	n := decoded[0]
	require.Equal(t, int32(1), n.Val)
	require.Same(t, n, n.Next, "a cyclic struct must decode with its self-reference intact")
}

func TestCyclicSliceViaInterfaceRoundTrips(t *testing.T) {
	c := New()

	s := make([]any, 1)
	s[0] = s

	data, err := c.Serialize(s)
	require.NoError(t, err)

	got, err := c.Deserialize(data)
	require.NoError(t, err)

	outer, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, outer, 1)
	inner, ok := outer[0].([]any)
	require.True(t, ok)
	require.Equal(t, reflect.ValueOf(outer).Pointer(), reflect.ValueOf(inner).Pointer(),
		"self-referential slice element must alias the same backing array")
}

func TestSharedPointerDecodesToSameInstance(t *testing.T) {
	c := newNodeCodec(t)

	shared := &node{Val: 7}
	pair := []*node{shared, shared}

	data, err := c.Serialize(pair)
	require.NoError(t, err)

	got, err := c.Deserialize(data)
	require.NoError(t, err)

	decoded, ok := got.([]*node)
	require.True(t, ok)
	require.Len(t, decoded, 2)
	require.Same(t, decoded[0], decoded[1], "two references to the same pointer must decode to the same instance")
}

func TestRepeatedStringIsBackReference(t *testing.T) {
	c := New()

	data, err := c.Serialize([]string{"a", "a"})
	require.NoError(t, err)

	got, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "a"}, got)

	withoutTracking := New(WithRefTracking(false))
	untracked, err := withoutTracking.Serialize([]string{"a", "a"})
	require.NoError(t, err)
	require.Greater(t, len(untracked), 0)
	require.Less(t, len(data), len(untracked), "a deduped repeated string must encode shorter than an untracked repeat")
}

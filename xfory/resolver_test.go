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

type widget struct{ Name string }

func newTestTypeResolver(compatible bool) *typeResolver {
	cfg := DefaultConfig()
	cfg.Compatible = compatible
	return newTypeResolver(cfg)
}

func TestRegisterThenGetClassInfoByType(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.Register(widget{}, 100))

	info, err := r.getClassInfo(reflect.TypeOf(widget{}))
	require.NoError(t, err)
	require.Equal(t, int32(100), UserIdOf(info.TypeId))
}

func TestRegisterDuplicateIdRejected(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.Register(widget{}, 100))

	type other struct{ X int }
	err := r.Register(other{}, 100)
	require.ErrorIs(t, err, ErrIdReused)
}

func TestRegisterSameTypeTwiceReturnsExisting(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.Register(widget{}, 100))
	require.NoError(t, r.Register(widget{}, 0))
}

func TestRegisterByNamespaceRejectsDotInName(t *testing.T) {
	r := newTestTypeResolver(false)
	err := r.RegisterByNamespace(widget{}, "ns", "has.dot")
	require.ErrorIs(t, err, ErrNameContainsDot)
}

func TestRegisterByNamespaceConflict(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.RegisterByNamespace(widget{}, "ns", "widget"))

	type other struct{ X int }
	err := r.RegisterByNamespace(other{}, "ns", "widget")
	require.ErrorIs(t, err, ErrNameConflict)
}

func TestSecurityCheckerRejectsType(t *testing.T) {
	r := newTestTypeResolver(false)
	r.SetSecurityChecker(func(t reflect.Type) bool { return t != reflect.TypeOf(widget{}) })

	err := r.Register(widget{}, 100)
	require.ErrorIs(t, err, ErrPolicyViolation)
}

func TestGetClassInfoUnregisteredType(t *testing.T) {
	r := newTestTypeResolver(false)
	_, err := r.getClassInfo(reflect.TypeOf(widget{}))
	require.ErrorIs(t, err, ErrUnregisteredType)
}

func TestFallbackContainerInfoForSliceAndMap(t *testing.T) {
	r := newTestTypeResolver(false)

	sliceInfo, err := r.getClassInfo(reflect.TypeOf([]int(nil)))
	require.NoError(t, err)
	require.Equal(t, int32(KindList), sliceInfo.Kind)

	mapInfo, err := r.getClassInfo(reflect.TypeOf(map[string]int(nil)))
	require.NoError(t, err)
	require.Equal(t, int32(KindMap), mapInfo.Kind)

	setInfo, err := r.getClassInfo(reflect.TypeOf(map[string]struct{}(nil)))
	require.NoError(t, err)
	require.Equal(t, int32(KindSet), setInfo.Kind)

	bytesInfo, err := r.getClassInfo(reflect.TypeOf([]byte(nil)))
	require.NoError(t, err)
	require.Equal(t, int32(KindBinary), bytesInfo.Kind)
}

func TestWriteTypeInfoReadTypeInfoRoundTrip(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.RegisterByNamespace(widget{}, "example", "Widget"))
	info, err := r.getClassInfo(reflect.TypeOf(widget{}))
	require.NoError(t, err)

	buf := NewByteBuffer(nil)
	r.writeTypeInfo(buf, info)
	r.resetWrite()

	got, err := r.readTypeInfo(buf)
	require.NoError(t, err)
	require.Equal(t, info.Type, got.Type)
}

func TestAutoIdSkipsExplicitlyTakenId(t *testing.T) {
	r := newTestTypeResolver(false)
	require.NoError(t, r.Register(widget{}, firstAutoUserId))

	type other struct{ X int }
	require.NoError(t, r.Register(other{}, 0))

	info, err := r.getClassInfo(reflect.TypeOf(other{}))
	require.NoError(t, err)
	require.NotEqual(t, int32(firstAutoUserId), UserIdOf(info.TypeId))
}

func TestReadTypeInfoFabricatesPlaceholderForUnregisteredNsStruct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeserializeUnexistentClass = true
	r := newTypeResolver(cfg)

	info := &ClassInfo{Kind: KindNsStruct, Namespace: "com.example", Name: "Point"}
	buf := NewByteBuffer(nil)
	r.writeTypeInfo(buf, info)

	got, err := r.readTypeInfo(buf)
	require.NoError(t, err)
	require.True(t, got.Fabricated)
	require.Equal(t, "com.example", got.Namespace)
	require.Equal(t, "Point", got.Name)
}

func TestReadTypeInfoUnregisteredNsStructErrorsWithoutFabrication(t *testing.T) {
	r := newTestTypeResolver(false)

	info := &ClassInfo{Kind: KindNsStruct, Namespace: "com.example", Name: "Point"}
	buf := NewByteBuffer(nil)
	r.writeTypeInfo(buf, info)

	_, err := r.readTypeInfo(buf)
	require.ErrorIs(t, err, ErrUnregisteredType)
}

func TestReadTypeInfoUnregisteredNsExtNeverFabricates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeserializeUnexistentClass = true
	r := newTypeResolver(cfg)

	info := &ClassInfo{Kind: KindNsExt, Namespace: "com.example", Name: "Blob"}
	buf := NewByteBuffer(nil)
	r.writeTypeInfo(buf, info)

	_, err := r.readTypeInfo(buf)
	require.ErrorIs(t, err, ErrUnregisteredSerializer)
}

func TestClassVersionHashStable(t *testing.T) {
	h1 := classVersionHash("ns", "Name", KindNsStruct)
	h2 := classVersionHash("ns", "Name", KindNsStruct)
	require.Equal(t, h1, h2)

	h3 := classVersionHash("ns", "Other", KindNsStruct)
	require.NotEqual(t, h1, h3)
}

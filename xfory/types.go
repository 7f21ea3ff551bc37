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

// Package xfory implements the type-resolution and wire-format core of a
// cross-language binary object codec: type registration and identification,
// the meta-string pool used to name namespaces and type names on the wire,
// the reference-tracking protocol that preserves object identity and
// cycles, and the growable buffer that underpins all reads and writes.
//
// Concrete per-type serializers for language-specific collection shapes,
// enums, and user structs beyond the primitives and containers registered
// by default, reflection-based field discovery, code-generated
// serializers, and pooled/thread-local codec reuse are external
// collaborators built against the Serializer and resolver types exported
// here, not part of this package.
package xfory

// TypeId is the wire type identifier: the low 8 bits carry the internal
// kind, the upper 24 bits carry a user-assigned id for registered
// structs/enums/extensions (zero for built-in kinds).
type TypeId = int32

// Internal kinds occupying the low 8 bits of a TypeId.
const (
	KindBool = iota
	KindInt8
	KindInt16
	KindInt32
	KindVarInt32
	KindInt64
	KindVarInt64
	KindSliInt64
	KindFloat16
	KindFloat32
	KindFloat64
	KindString
	KindEnum
	KindNsEnum
	KindStruct
	KindPolymorphicStruct
	KindCompatibleStruct
	KindPolymorphicCompatibleStruct
	KindNsStruct
	KindNsPolymorphicStruct
	KindNsCompatibleStruct
	KindNsPolymorphicCompatibleStruct
	KindExt
	KindPolymorphicExt
	KindNsExt
	KindNsPolymorphicExt
	KindList
	KindSet
	KindMap
	KindDuration
	KindTimestamp
	KindLocalDate
	KindDecimal
	KindBinary
	KindArray
	KindBoolArray
	KindInt8Array
	KindInt16Array
	KindInt32Array
	KindInt64Array
	KindFloat32Array
	KindFloat64Array
	KindArrowRecordBatch
	KindArrowTable

	kindMask = 0xFF
)

// BuildTypeId packs an internal kind and a user id (zero for built-ins)
// into a single wire TypeId. This is the repaired interpretation of the
// source's ambiguous `xtypeId = xtypeId << 8 + kind` expression (see
// DESIGN.md): the user id occupies the upper 24 bits and the kind the low
// 8, computed with an explicit shift-then-OR.
func BuildTypeId(kind int32, userId int32) TypeId {
	return (userId << 8) | (kind & kindMask)
}

// KindOf extracts the internal kind (low 8 bits) from a wire TypeId.
func KindOf(id TypeId) int32 {
	return id & kindMask
}

// UserIdOf extracts the user-assigned id (upper 24 bits) from a wire
// TypeId. Zero for built-in kinds.
func UserIdOf(id TypeId) int32 {
	return int32(uint32(id) >> 8)
}

// IsNamespacedType reports whether a kind identifies the type on the wire
// by namespace+name rather than a numeric registration.
func IsNamespacedType(kind int32) bool {
	switch kind {
	case KindNsEnum, KindNsStruct, KindNsCompatibleStruct,
		KindNsPolymorphicStruct, KindNsPolymorphicCompatibleStruct,
		KindNsExt, KindNsPolymorphicExt:
		return true
	default:
		return false
	}
}

// IsSkippableNamespacedKind reports whether a namespaced kind's body can
// be preserved as an opaque byte run when no registration matches it.
// The NS_STRUCT family qualifies since this package frames their bodies
// with a length prefix specifically to allow that; NS_EXT/NS_POLYMORPHIC_EXT
// do not, since an ext serializer is free-form and not self-delimiting —
// an unregistered ext payload must be reported as an error, never skipped.
func IsSkippableNamespacedKind(kind int32) bool {
	switch kind {
	case KindNsEnum, KindNsStruct, KindNsCompatibleStruct,
		KindNsPolymorphicStruct, KindNsPolymorphicCompatibleStruct:
		return true
	default:
		return false
	}
}

// MaxUserTypeId bounds explicit user type-id registration: ids at or above
// this are rejected to keep the type-id reverse lookup table bounded.
const MaxUserTypeId = 4096

// firstAutoUserId is where Register(type) without an explicit id starts
// assigning ids, leaving the low range free for well-known cross-language
// types.
const firstAutoUserId = 64

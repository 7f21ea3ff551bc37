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

import "reflect"

// builtinKind is a (Go type, internal kind, serializer) triple used only
// to seed a fresh typeResolver's bootstrap table.
type builtinKind struct {
	typ  reflect.Type
	kind int32
	ser  Serializer
}

// int32BuiltinFor picks int32's serializer per CompressInt: VarInt32
// (default, smaller on the wire for small values) or a fixed 4-byte
// encoding.
func int32BuiltinFor(compressInt bool) (int32, Serializer) {
	if compressInt {
		return KindVarInt32, int32Serializer{}
	}
	return KindInt32, fixedInt32Serializer{}
}

// int64BuiltinFor and intBuiltinFor pick int64/int's serializer per
// LongEncoding: SLI (default small-value fast path), LE_RAW_BYTES
// (fixed 8 bytes), or PVL (plain ZigZag VarUint64, no fast path).
func int64BuiltinFor(enc LongEncoding) (int32, Serializer) {
	switch enc {
	case LongEncodingRawBytes:
		return KindInt64, rawInt64Serializer{}
	case LongEncodingPVL:
		return KindVarInt64, varInt64Serializer{}
	default:
		return KindSliInt64, int64Serializer{}
	}
}

func intBuiltinFor(enc LongEncoding) (int32, Serializer) {
	switch enc {
	case LongEncodingRawBytes:
		return KindInt64, rawIntSerializer{}
	case LongEncodingPVL:
		return KindVarInt64, varIntSerializer{}
	default:
		return KindSliInt64, intSerializer{}
	}
}

func builtins(r *typeResolver) []builtinKind {
	int32Kind, int32Ser := int32BuiltinFor(r.compressInt)
	int64Kind, int64Ser := int64BuiltinFor(r.longEncoding)
	intKind, intSer := intBuiltinFor(r.longEncoding)
	return []builtinKind{
		{reflect.TypeOf(false), KindBool, boolSerializer{}},
		{reflect.TypeOf(int8(0)), KindInt8, int8Serializer{}},
		{reflect.TypeOf(int16(0)), KindInt16, int16Serializer{}},
		{reflect.TypeOf(int32(0)), int32Kind, int32Ser},
		{reflect.TypeOf(int64(0)), int64Kind, int64Ser},
		{reflect.TypeOf(int(0)), intKind, intSer},
		{reflect.TypeOf(float32(0)), KindFloat32, float32Serializer{}},
		{reflect.TypeOf(float64(0)), KindFloat64, float64Serializer{}},
		{reflect.TypeOf(""), KindString, stringSerializer{compress: r.compressString}},
		{reflect.TypeOf([]byte(nil)), KindBinary, binarySerializer{}},
	}
}

// registerBuiltins populates r's byType/byTypeId tables with the
// well-known cross-language primitive kinds, each with user id zero so
// its TypeId is its kind alone and never collides with a caller's own
// registrations (which start at firstAutoUserId or an explicit id).
func registerBuiltins(r *typeResolver) {
	for _, b := range builtins(r) {
		// Built-in kinds carry a zero user id: the kind already
		// distinguishes them from one another in the low 8 bits, and a
		// nonzero id here would needlessly reserve part of the user id
		// space every built-in kind shares.
		id := BuildTypeId(b.kind, 0)
		info := &ClassInfo{Type: b.typ, Kind: b.kind, TypeId: id, Serializer: b.ser}
		info.VersionHash = classVersionHash("", b.typ.String(), b.kind)
		r.byType[b.typ] = info
		r.byTypeId[id] = info
	}
}

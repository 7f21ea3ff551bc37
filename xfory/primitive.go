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

// boolSerializer handles bool.
type boolSerializer struct{}

func (boolSerializer) Kind() int32 { return KindBool }
func (boolSerializer) NeedToWriteRef() bool { return false }
func (boolSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteBool(v.Bool())
	return nil
}
func (boolSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetBool(ctx.buffer.ReadBool())
	return nil
}
func (boolSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// int8Serializer handles int8.
type int8Serializer struct{}

func (int8Serializer) Kind() int32 { return KindInt8 }
func (int8Serializer) NeedToWriteRef() bool { return false }
func (int8Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteInt8(int8(v.Int()))
	return nil
}
func (int8Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(int64(ctx.buffer.ReadInt8()))
	return nil
}
func (int8Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// int16Serializer handles int16.
type int16Serializer struct{}

func (int16Serializer) Kind() int32 { return KindInt16 }
func (int16Serializer) NeedToWriteRef() bool { return false }
func (int16Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteInt16(int16(v.Int()))
	return nil
}
func (int16Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(int64(ctx.buffer.ReadInt16()))
	return nil
}
func (int16Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// int32Serializer handles int32, written compressed (KindVarInt32). This
// is the default; WithCompressInt(false) selects fixedInt32Serializer
// instead.
type int32Serializer struct{}

func (int32Serializer) Kind() int32 { return KindVarInt32 }
func (int32Serializer) NeedToWriteRef() bool { return false }
func (int32Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteVarint32(int32(v.Int()))
	return nil
}
func (int32Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(int64(ctx.buffer.ReadVarint32()))
	return nil
}
func (int32Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// fixedInt32Serializer handles int32 as a fixed 4-byte little-endian
// value, for deployments where CompressInt is turned off.
type fixedInt32Serializer struct{}

func (fixedInt32Serializer) Kind() int32 { return KindInt32 }
func (fixedInt32Serializer) NeedToWriteRef() bool { return false }
func (fixedInt32Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteInt32(int32(v.Int()))
	return nil
}
func (fixedInt32Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(int64(ctx.buffer.ReadInt32()))
	return nil
}
func (fixedInt32Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// int64Serializer handles int64, written via the small-long-integer
// encoding (KindSliInt64): most application integers fit the 4-byte fast
// path. This is the default (long_encoding=SLI); rawInt64Serializer and
// varInt64Serializer back the LE_RAW_BYTES and PVL alternatives.
type int64Serializer struct{}

func (int64Serializer) Kind() int32 { return KindSliInt64 }
func (int64Serializer) NeedToWriteRef() bool { return false }
func (int64Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteSliInt64(v.Int())
	return nil
}
func (int64Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadSliInt64())
	return nil
}
func (int64Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// rawInt64Serializer handles int64 as a fixed 8-byte little-endian value
// (long_encoding=LE_RAW_BYTES).
type rawInt64Serializer struct{}

func (rawInt64Serializer) Kind() int32 { return KindInt64 }
func (rawInt64Serializer) NeedToWriteRef() bool { return false }
func (rawInt64Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteInt64(v.Int())
	return nil
}
func (rawInt64Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadInt64())
	return nil
}
func (rawInt64Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// varInt64Serializer handles int64 via plain ZigZag VarUint64
// (long_encoding=PVL), with no small-value fast path.
type varInt64Serializer struct{}

func (varInt64Serializer) Kind() int32 { return KindVarInt64 }
func (varInt64Serializer) NeedToWriteRef() bool { return false }
func (varInt64Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteVarint64(v.Int())
	return nil
}
func (varInt64Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadVarint64())
	return nil
}
func (varInt64Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// intSerializer handles Go's platform int, represented on the wire as a
// KindSliInt64 to stay portable across 32- and 64-bit builds. Mirrors
// int64Serializer's long_encoding alternatives below.
type intSerializer struct{}

func (intSerializer) Kind() int32 { return KindSliInt64 }
func (intSerializer) NeedToWriteRef() bool { return false }
func (intSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteSliInt64(v.Int())
	return nil
}
func (intSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadSliInt64())
	return nil
}
func (intSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// rawIntSerializer is intSerializer's LE_RAW_BYTES alternative.
type rawIntSerializer struct{}

func (rawIntSerializer) Kind() int32 { return KindInt64 }
func (rawIntSerializer) NeedToWriteRef() bool { return false }
func (rawIntSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteInt64(v.Int())
	return nil
}
func (rawIntSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadInt64())
	return nil
}
func (rawIntSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// varIntSerializer is intSerializer's PVL alternative.
type varIntSerializer struct{}

func (varIntSerializer) Kind() int32 { return KindVarInt64 }
func (varIntSerializer) NeedToWriteRef() bool { return false }
func (varIntSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteVarint64(v.Int())
	return nil
}
func (varIntSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetInt(ctx.buffer.ReadVarint64())
	return nil
}
func (varIntSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// float32Serializer handles float32.
type float32Serializer struct{}

func (float32Serializer) Kind() int32 { return KindFloat32 }
func (float32Serializer) NeedToWriteRef() bool { return false }
func (float32Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteFloat32(float32(v.Float()))
	return nil
}
func (float32Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetFloat(float64(ctx.buffer.ReadFloat32()))
	return nil
}
func (float32Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

// float64Serializer handles float64.
type float64Serializer struct{}

func (float64Serializer) Kind() int32 { return KindFloat64 }
func (float64Serializer) NeedToWriteRef() bool { return false }
func (float64Serializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteFloat64(v.Float())
	return nil
}
func (float64Serializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	v.SetFloat(ctx.buffer.ReadFloat64())
	return nil
}
func (float64Serializer) Copy(r *typeResolver, v reflect.Value) reflect.Value { return v }

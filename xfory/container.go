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

// binarySerializer handles []byte (and any []uint8), written as a raw
// length-prefixed run with no per-element framing.
type binarySerializer struct{}

func (binarySerializer) Kind() int32 { return KindBinary }
func (binarySerializer) NeedToWriteRef() bool { return true }

func (binarySerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	b := v.Bytes()
	ctx.buffer.WriteLength(len(b))
	ctx.buffer.WriteBinary(b)
	return nil
}

func (binarySerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	n := ctx.buffer.ReadLength()
	data := ctx.buffer.ReadBinary(n)
	cp := make([]byte, n)
	copy(cp, data)
	v.Set(reflect.ValueOf(cp).Convert(typ))
	return nil
}

func (binarySerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value {
	cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(cp, v)
	return cp
}

// listSerializer handles slices and arrays of any element type other
// than byte, writing each element through the top-level value dispatch
// so nested containers, registered structs, and interface elements all
// compose without a per-shape serializer of their own.
type listSerializer struct {
	elem reflect.Type
}

func (listSerializer) Kind() int32 { return KindList }
func (listSerializer) NeedToWriteRef() bool { return true }

func (s listSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	n := v.Len()
	ctx.buffer.WriteLength(n)
	for i := 0; i < n; i++ {
		if err := ctx.WriteReferencable(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (s listSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	n := ctx.buffer.ReadLength()
	// v.Set happens before the fill loop, not after: a self-referential
	// element (s[i] == s) resolves by dereferencing the ref table's
	// skeleton pointer, which only sees a real backing array once it has
	// been assigned into v.
	if typ.Kind() == reflect.Slice {
		v.Set(reflect.MakeSlice(typ, n, n))
	}
	for i := 0; i < n; i++ {
		elem, err := ctx.ReadReferencable(typ.Elem())
		if err != nil {
			return err
		}
		v.Index(i).Set(elem)
	}
	return nil
}

func (s listSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value {
	n := v.Len()
	cp := reflect.New(v.Type()).Elem()
	if v.Kind() == reflect.Slice {
		cp = reflect.MakeSlice(v.Type(), n, n)
	}
	for i := 0; i < n; i++ {
		cp.Index(i).Set(deepCopyValue(r, v.Index(i)))
	}
	return cp
}

// setSerializer handles Go's idiomatic map[T]struct{} set representation,
// writing it as an unordered KindSet run of its keys.
type setSerializer struct {
	elem reflect.Type
}

func (setSerializer) Kind() int32 { return KindSet }
func (setSerializer) NeedToWriteRef() bool { return true }

func (s setSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteLength(v.Len())
	iter := v.MapRange()
	for iter.Next() {
		if err := ctx.WriteReferencable(iter.Key()); err != nil {
			return err
		}
	}
	return nil
}

func (s setSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	n := ctx.buffer.ReadLength()
	v.Set(reflect.MakeMapWithSize(typ, n))
	empty := reflect.Zero(typ.Elem())
	for i := 0; i < n; i++ {
		key, err := ctx.ReadReferencable(typ.Key())
		if err != nil {
			return err
		}
		v.SetMapIndex(key, empty)
	}
	return nil
}

func (s setSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value {
	cp := reflect.MakeMapWithSize(v.Type(), v.Len())
	empty := reflect.Zero(v.Type().Elem())
	iter := v.MapRange()
	for iter.Next() {
		cp.SetMapIndex(deepCopyValue(r, iter.Key()), empty)
	}
	return cp
}

// mapSerializer handles general maps, writing length-prefixed
// interleaved key/value pairs.
type mapSerializer struct {
	keyType reflect.Type
	valType reflect.Type
}

func (mapSerializer) Kind() int32 { return KindMap }
func (mapSerializer) NeedToWriteRef() bool { return true }

func (s mapSerializer) WriteData(ctx *WriteContext, v reflect.Value) error {
	ctx.buffer.WriteLength(v.Len())
	iter := v.MapRange()
	for iter.Next() {
		if err := ctx.WriteReferencable(iter.Key()); err != nil {
			return err
		}
		if err := ctx.WriteReferencable(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (s mapSerializer) ReadData(ctx *ReadContext, typ reflect.Type, v reflect.Value) error {
	n := ctx.buffer.ReadLength()
	v.Set(reflect.MakeMapWithSize(typ, n))
	for i := 0; i < n; i++ {
		key, err := ctx.ReadReferencable(typ.Key())
		if err != nil {
			return err
		}
		val, err := ctx.ReadReferencable(typ.Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(key, val)
	}
	return nil
}

func (s mapSerializer) Copy(r *typeResolver, v reflect.Value) reflect.Value {
	cp := reflect.MakeMapWithSize(v.Type(), v.Len())
	iter := v.MapRange()
	for iter.Next() {
		cp.SetMapIndex(deepCopyValue(r, iter.Key()), deepCopyValue(r, iter.Value()))
	}
	return cp
}

// isSetShaped reports whether t is the map[K]struct{} shape Go programs
// conventionally use to represent a set.
func isSetShaped(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

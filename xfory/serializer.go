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

// Serializer is the contract every concrete type serializer implements.
// The ref-tag and type-info framing around a value is handled once, in
// WriteContext/ReadContext; a Serializer only ever reads or writes the
// value's own body.
type Serializer interface {
	// WriteData writes value's body. Assumes value is addressable in the
	// sense that value.Type() matches what the serializer expects; no
	// ref tag or type id precedes it on the wire.
	WriteData(ctx *WriteContext, value reflect.Value) error

	// ReadData reads a value's body into a freshly allocated or
	// reused instance of typ, without having consumed a ref tag or type
	// id for it.
	ReadData(ctx *ReadContext, typ reflect.Type, value reflect.Value) error

	// Kind returns the internal wire kind this serializer writes. Used
	// by the resolver to select a TypeId when none is explicit.
	Kind() int32

	// NeedToWriteRef reports whether values of this type participate in
	// reference tracking (false for scalars and other types that are
	// always copied by value).
	NeedToWriteRef() bool
}

// copier is implemented by serializers that can duplicate a value without
// a full write/read round trip. It backs the Copy half of the abstract
// contract; scalars return the value unchanged, containers recurse into
// deepCopyValue element-wise so a deep copy of a container deep-copies
// its elements too, rather than aliasing their backing arrays.
type copier interface {
	Copy(r *typeResolver, value reflect.Value) reflect.Value
}

// deepCopyValue is the Copy half of the abstract serializer contract's
// dispatch, parallel to WriteContext.WriteReferencable/
// ReadContext.ReadReferencable: it resolves value's registered
// Serializer and delegates to its Copy if the serializer implements
// copier, falling back to returning value unchanged for a serializer
// that does not (a caller-supplied struct/enum Serializer is not
// required to implement copier; such a type is copied shallowly).
func deepCopyValue(r *typeResolver, value reflect.Value) reflect.Value {
	if !value.IsValid() {
		return value
	}
	if value.Kind() == reflect.Interface {
		if value.IsNil() {
			return value
		}
		inner := deepCopyValue(r, value.Elem())
		out := reflect.New(value.Type()).Elem()
		out.Set(inner)
		return out
	}
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return value
		}
		copied := deepCopyValue(r, value.Elem())
		out := reflect.New(value.Elem().Type())
		out.Elem().Set(copied)
		return out
	}

	info, err := r.getClassInfo(value.Type())
	if err != nil {
		return value
	}
	if c, ok := info.Serializer.(copier); ok {
		return c.Copy(r, value)
	}
	return value
}

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
	"unsafe"

	"github.com/cockroachdb/errors"
)

// BufferObject is an out-of-band payload: a value that knows how to
// serialize itself directly into a buffer without going through the
// ordinary reflect-based dispatch. Large binary payloads (arrow buffers,
// mmap'd blobs) implement this to avoid an intermediate copy.
type BufferObject interface {
	TotalBytes() int
	WriteTo(dst *ByteBuffer)
}

// WriteContext carries everything a Serializer needs while writing:
// the output buffer, the reference and type resolvers, and the current
// recursion depth.
type WriteContext struct {
	buffer       *ByteBuffer
	refResolver  *RefResolver
	typeResolver *typeResolver
	compatible   bool

	bufferCallback func(BufferObject) bool
}

// NewWriteContext builds a WriteContext sharing the given resolvers,
// which the owning Codec also hands to a matching ReadContext so both
// directions agree on type ids and interned strings.
func NewWriteContext(refResolver *RefResolver, typeResolver *typeResolver, compatible bool) *WriteContext {
	return &WriteContext{
		buffer:       NewByteBuffer(nil),
		refResolver:  refResolver,
		typeResolver: typeResolver,
		compatible:   compatible,
	}
}

// Reset clears the context for reuse by the next Serialize call.
func (c *WriteContext) Reset() {
	c.buffer.Reset()
	c.refResolver.ResetWrite()
	c.typeResolver.resetWrite()
	c.bufferCallback = nil
}

// Buffer returns the underlying buffer, for Serializer implementations
// that need to write primitives directly.
func (c *WriteContext) Buffer() *ByteBuffer { return c.buffer }

// SetBufferCallback installs the out-of-band buffer hook; see
// WriteBufferObject.
func (c *WriteContext) SetBufferCallback(f func(BufferObject) bool) { c.bufferCallback = f }

// WriteBufferObject writes a BufferObject in-band unless a buffer
// callback is installed and declines it, in which case only the
// in-band/out-of-band flag is written and the caller is responsible for
// transmitting the payload through its own side channel.
func (c *WriteContext) WriteBufferObject(obj BufferObject) error {
	inBand := true
	if c.bufferCallback != nil {
		inBand = c.bufferCallback(obj)
	}
	c.buffer.WriteBool(inBand)
	if !inBand {
		return nil
	}
	size := obj.TotalBytes()
	c.buffer.WriteLength(size)
	writerIndex := c.buffer.WriterIndex()
	c.buffer.grow(size)
	obj.WriteTo(c.buffer.Slice(writerIndex, size))
	c.buffer.SetWriterIndex(writerIndex + size)
	return nil
}

// valuePointer returns the identity pointer ref tracking keys on for a
// slice, map, or (already-checked-non-nil) pointer value.
func valuePointer(v reflect.Value) unsafe.Pointer {
	return unsafe.Pointer(v.Pointer())
}

// WriteReferencable is the single entry point serializers and
// container element writers use to write any value: it resolves nils,
// reference tags, type identity, and dispatches to the matching
// Serializer's WriteData, in that order. This is the core of the
// abstract serializer contract — every concrete type, built-in or
// user-registered, is reached through this path.
func (c *WriteContext) WriteReferencable(value reflect.Value) error {
	if err := c.refResolver.EnterWrite(); err != nil {
		return err
	}
	defer c.refResolver.ExitWrite()

	if value.Kind() == reflect.Interface {
		if value.IsNil() {
			c.buffer.WriteByte_(byte(NullTag))
			return nil
		}
		value = value.Elem()
	}

	var ptr unsafe.Pointer
	isString := value.Kind() == reflect.String
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			c.buffer.WriteByte_(byte(NullTag))
			return nil
		}
		ptr = valuePointer(value)
		value = value.Elem()
	case reflect.Slice, reflect.Map:
		if value.IsNil() {
			c.buffer.WriteByte_(byte(NullTag))
			return nil
		}
		ptr = valuePointer(value)
	}

	info, err := c.typeResolver.getClassInfo(value.Type())
	if err != nil {
		return err
	}

	switch {
	case isString:
		// Go strings have no pointer identity stable across independent
		// constructions, so dedup by content instead of by address.
		suppressed := c.refResolver.SuppressedFor(KindString)
		if c.refResolver.WriteStringRef(c.buffer, value.String(), suppressed) {
			return nil
		}
	case info.Serializer.NeedToWriteRef() && ptr != nil:
		suppressed := c.refResolver.SuppressedFor(info.Kind)
		if c.refResolver.WriteRef(c.buffer, ptr, suppressed) {
			return nil
		}
	default:
		c.buffer.WriteByte_(byte(NotNullValueTag))
	}

	c.typeResolver.writeTypeInfo(c.buffer, info)
	if IsSkippableNamespacedKind(info.Kind) {
		return c.writeSkippableBody(info, value)
	}
	return info.Serializer.WriteData(c, value)
}

// writeSkippableBody writes a namespaced struct-family value's body
// through a length prefix instead of directly into c.buffer. This is
// what lets a reader with no local registration for the (namespace,
// name) pair skip the body wholesale instead of erroring, and what lets
// a DeserializeUnexistentClass reader preserve it verbatim as an
// UnknownStruct's Payload.
func (c *WriteContext) writeSkippableBody(info *ClassInfo, value reflect.Value) error {
	scratch := &WriteContext{
		buffer:         NewByteBuffer(nil),
		refResolver:    c.refResolver,
		typeResolver:   c.typeResolver,
		compatible:     c.compatible,
		bufferCallback: c.bufferCallback,
	}
	if err := info.Serializer.WriteData(scratch, value); err != nil {
		return err
	}
	body := scratch.buffer.GetByteSlice(0, scratch.buffer.WriterIndex())
	c.buffer.WriteLength(len(body))
	c.buffer.WriteBinary(body)
	return nil
}

// ReadContext is WriteContext's read-side counterpart.
type ReadContext struct {
	buffer       *ByteBuffer
	refResolver  *RefResolver
	typeResolver *typeResolver
	compatible   bool
}

// NewReadContext builds a ReadContext sharing the given resolvers.
func NewReadContext(refResolver *RefResolver, typeResolver *typeResolver, compatible bool) *ReadContext {
	return &ReadContext{
		buffer:       NewByteBuffer(nil),
		refResolver:  refResolver,
		typeResolver: typeResolver,
		compatible:   compatible,
	}
}

// Reset clears the context for reuse by the next Deserialize call.
func (c *ReadContext) Reset() {
	c.refResolver.ResetRead()
	c.typeResolver.resetRead()
}

// SetData points the context's buffer at a fresh input slice.
func (c *ReadContext) SetData(data []byte) {
	c.buffer = NewByteBuffer(data)
}

// SetStream points the context's buffer at a StreamReader, for framed or
// blocking input instead of a fully-buffered byte slice.
func (c *ReadContext) SetStream(r *StreamReader) {
	c.buffer = NewByteBufferWithStream(r)
}

// Buffer returns the underlying buffer.
func (c *ReadContext) Buffer() *ByteBuffer { return c.buffer }

// ReadBufferObject is WriteBufferObject's inverse. When the payload was
// written out-of-band, the caller must supply it separately (e.g. via
// SetData on a fresh buffer shared out of band) — this returns nil data
// and lets the caller detect that case via inBand.
func (c *ReadContext) ReadBufferObject() (data []byte, inBand bool) {
	inBand = c.buffer.ReadBool()
	if !inBand {
		return nil, false
	}
	n := c.buffer.ReadLength()
	return c.buffer.ReadBinary(n), true
}

// ReadReferencable is WriteReferencable's inverse: it reads the leading
// tag, resolves a back-reference or null immediately, and otherwise
// reads the type identity and dispatches to the matching Serializer's
// ReadData, allocating a *T wrapper when typ itself is a pointer type.
func (c *ReadContext) ReadReferencable(typ reflect.Type) (reflect.Value, error) {
	if err := c.refResolver.EnterRead(); err != nil {
		return reflect.Value{}, err
	}
	defer c.refResolver.ExitRead()

	tag, refId := c.refResolver.ReadTag(c.buffer)
	switch tag {
	case NullTag:
		return reflect.Zero(typ), nil
	case RefTagValue:
		referenced := c.refResolver.GetReferenced(refId)
		if referenced == nil {
			return reflect.Value{}, errors.Newf("xfory: dangling reference id %d", refId)
		}
		slot, ok := referenced.(refSlot)
		if !ok {
			return reflect.Value{}, errors.Newf("xfory: reference id %d resolved to an unexpected shape", refId)
		}
		return slot.resolve(), nil
	}

	info, err := c.typeResolver.readTypeInfo(c.buffer)
	if err != nil {
		return reflect.Value{}, err
	}

	if info.Fabricated {
		return c.readFabricated(info, tag)
	}

	targetType := typ
	if typ.Kind() == reflect.Interface {
		// The static type at this slot is unknown (a top-level Any
		// decode or an interface-typed field); fall back to whatever
		// concrete Go type the wire identity resolved to.
		targetType = info.Type
	}
	wrapPtr := targetType.Kind() == reflect.Ptr
	if wrapPtr {
		targetType = targetType.Elem()
	}

	alloc := reflect.New(targetType)

	// The slot is recorded before ReadData descends into the value's
	// children, not after: a child that refers back to this object (a
	// cyclic struct, a self-referential slice) resolves against this
	// skeleton allocation while it is still being filled in. Storing the
	// *targetType pointer itself — never a snapshot taken via
	// alloc.Elem().Interface() before the value is populated — is what
	// makes that work, since reflect.Value.Elem() always dereferences
	// live off ptr's backing memory.
	if tag == TrackFirstTag {
		c.refResolver.Reference(refSlot{ptr: alloc, wrapPtr: wrapPtr})
	}

	if IsSkippableNamespacedKind(info.Kind) {
		err = c.readFramedBody(info, targetType, alloc.Elem())
	} else {
		err = info.Serializer.ReadData(c, targetType, alloc.Elem())
	}
	if err != nil {
		return reflect.Value{}, err
	}

	if wrapPtr {
		return alloc, nil
	}
	return alloc.Elem(), nil
}

// readFramedBody reads a skippable namespaced kind's length-prefixed
// body into a scoped sub-context, so a registered serializer that reads
// fewer bytes than an updated writer produced does not desynchronize
// the outer stream.
func (c *ReadContext) readFramedBody(info *ClassInfo, targetType reflect.Type, dst reflect.Value) error {
	n := c.buffer.ReadLength()
	body := c.buffer.ReadBinary(n)
	sub := NewReadContext(c.refResolver, c.typeResolver, c.compatible)
	sub.SetData(body)
	return info.Serializer.ReadData(sub, targetType, dst)
}

// readFabricated decodes a namespaced struct with no local registration
// into an UnknownStruct, preserving its raw payload instead of
// dispatching to a (nonexistent) Serializer.
func (c *ReadContext) readFabricated(info *ClassInfo, tag RefTag) (reflect.Value, error) {
	n := c.buffer.ReadLength()
	raw := c.buffer.ReadBinary(n)
	payload := make([]byte, n)
	copy(payload, raw)

	placeholder := UnknownStruct{
		Namespace: info.Namespace,
		Name:      info.Name,
		Kind:      info.Kind,
		Payload:   payload,
	}
	result := reflect.ValueOf(placeholder)

	if tag == TrackFirstTag {
		alloc := reflect.New(result.Type())
		alloc.Elem().Set(result)
		c.refResolver.Reference(refSlot{ptr: alloc, wrapPtr: false})
	}

	return result, nil
}

// refSlot is what Reference stores for a TrackFirst value: the
// reflect.New allocation backing it, plus whether the logical value at
// this slot is the pointer itself or what it points to. A later
// RefTagValue occurrence — including one reached from inside this same
// value's own children — resolves through resolve().
type refSlot struct {
	ptr     reflect.Value
	wrapPtr bool
}

func (s refSlot) resolve() reflect.Value {
	if s.wrapPtr {
		return s.ptr
	}
	return s.ptr.Elem()
}

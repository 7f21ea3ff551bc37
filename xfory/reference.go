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
	"unsafe"

	"github.com/cockroachdb/errors"
)

// RefTag is the one-byte tag written ahead of every reference-typed value.
type RefTag int8

const (
	// NullTag marks an absent reference; nothing follows.
	NullTag RefTag = 0
	// RefTagValue marks a back-reference; a VarUint sequence number follows.
	RefTagValue RefTag = 1
	// NotNullValueTag marks an inline value that is not reference-tracked.
	NotNullValueTag RefTag = 2
	// TrackFirstTag marks the first occurrence of a tracked object; the
	// reader must assign it the next sequence number before descending
	// into its children, so cycles resolve correctly.
	TrackFirstTag RefTag = 3
)

// defaultMaxDepth bounds recursion when reference tracking is disabled, so
// a self-referential value fails with ErrCircularWithoutTracking instead
// of exhausting the stack.
const defaultMaxDepth = 256

// RefResolver implements the reference-tracking protocol shared by the
// write and read paths of a single codec instance: on write it assigns
// each distinct reference-typed value a sequence number the first time it
// is seen and emits a back-reference for every later occurrence; on read
// it rebuilds the same sequence by appending each TrackFirst value to an
// ordered table before recursing into it, so a child referring back to
// its own ancestor can resolve against a partially-built value.
//
// A RefResolver is not safe for concurrent use.
type RefResolver struct {
	trackRef            bool
	ignoreBasicTypesRef bool
	ignoreStringRef     bool
	ignoreTimeRef       bool
	xlang               bool

	writeIds       map[unsafe.Pointer]int32
	writeStringIds map[string]int32
	nextWrite      int32

	readValues []any

	depth    int
	maxDepth int
}

// NewRefResolver builds a RefResolver. xlang forces string reference
// tracking on regardless of ignoreStringRef, since meta-strings and
// shared strings must remain identifiable across a language boundary.
func NewRefResolver(trackRef, ignoreBasicTypesRef, ignoreStringRef, ignoreTimeRef, xlang bool) *RefResolver {
	return &RefResolver{
		trackRef:            trackRef,
		ignoreBasicTypesRef: ignoreBasicTypesRef,
		ignoreStringRef:     ignoreStringRef && !xlang,
		ignoreTimeRef:       ignoreTimeRef,
		xlang:               xlang,
		writeIds:            make(map[unsafe.Pointer]int32),
		writeStringIds:      make(map[string]int32),
		maxDepth:            defaultMaxDepth,
	}
}

// SetMaxDepth overrides the default recursion guard.
func (r *RefResolver) SetMaxDepth(n int) { r.maxDepth = n }

// ResetWrite clears write-side state for reuse across Serialize calls.
func (r *RefResolver) ResetWrite() {
	clear(r.writeIds)
	clear(r.writeStringIds)
	r.nextWrite = 0
	r.depth = 0
}

// ResetRead clears read-side state for reuse across Deserialize calls.
func (r *RefResolver) ResetRead() {
	r.readValues = r.readValues[:0]
	r.depth = 0
}

// EnterWrite increments the recursion depth and fails closed: past
// maxDepth with tracking disabled it reports a likely cycle, since a
// legitimately deep but acyclic value would normally have its ancestors
// deduplicated by tracking.
func (r *RefResolver) EnterWrite() error {
	r.depth++
	if r.depth > r.maxDepth {
		if !r.trackRef {
			return ErrCircularWithoutTracking
		}
		return errors.Wrapf(ErrMalformed, "serialization depth exceeds %d", r.maxDepth)
	}
	return nil
}

// ExitWrite undoes one EnterWrite.
func (r *RefResolver) ExitWrite() { r.depth-- }

// EnterRead is EnterWrite's read-side counterpart: malformed or
// adversarial input nested past maxDepth is rejected rather than
// recursed into, regardless of trackRef (a decoder has no way to know
// whether the original write would have hit ErrCircularWithoutTracking,
// only that it is too deep to recurse into safely).
func (r *RefResolver) EnterRead() error {
	r.depth++
	if r.depth > r.maxDepth {
		return errors.Wrapf(ErrMalformed, "deserialization depth exceeds %d", r.maxDepth)
	}
	return nil
}

// ExitRead undoes one EnterRead.
func (r *RefResolver) ExitRead() { r.depth-- }

// SuppressedFor reports whether kind's type family has reference
// tracking switched off by configuration.
func (r *RefResolver) SuppressedFor(kind int32) bool {
	switch {
	case kind <= KindFloat64:
		return r.ignoreBasicTypesRef
	case kind == KindString:
		return r.ignoreStringRef
	case kind == KindDuration, kind == KindTimestamp, kind == KindLocalDate:
		return r.ignoreTimeRef
	default:
		return false
	}
}

// BasicTypesSuppressed reports whether primitive values skip the ref tag
// family entirely in favor of always writing NotNullValueTag.
func (r *RefResolver) BasicTypesSuppressed() bool { return r.ignoreBasicTypesRef }

// StringSuppressed reports whether strings skip reference tracking.
func (r *RefResolver) StringSuppressed() bool { return r.ignoreStringRef }

// TimeSuppressed reports whether time values skip reference tracking.
func (r *RefResolver) TimeSuppressed() bool { return r.ignoreTimeRef }

// WriteNullTag writes NullTag and reports true if v is nil; callers skip
// the rest of their write on a true return.
func (r *RefResolver) WriteNullTag(buf *ByteBuffer, isNil bool) bool {
	if isNil {
		buf.WriteByte_(byte(NullTag))
		return true
	}
	return false
}

// WriteRef writes the appropriate tag for a non-nil reference-typed value
// identified by ptr. suppressed forces the untracked NotNullValueTag path
// (for a type family whose ref tracking is configured off). It reports
// true when the value was already seen — the caller must not write the
// value's body again, only the tag already written.
func (r *RefResolver) WriteRef(buf *ByteBuffer, ptr unsafe.Pointer, suppressed bool) bool {
	if !r.trackRef || suppressed {
		buf.WriteByte_(byte(NotNullValueTag))
		return false
	}
	if id, ok := r.writeIds[ptr]; ok {
		buf.WriteByte_(byte(RefTagValue))
		buf.WriteVarUint32(uint32(id))
		return true
	}
	r.writeIds[ptr] = r.nextWrite
	r.nextWrite++
	buf.WriteByte_(byte(TrackFirstTag))
	return false
}

// WriteStringRef is WriteRef's string counterpart, deduping by content
// rather than identity: two independently constructed strings with the
// same bytes share a single TrackFirst occurrence, matching what the
// pointer-keyed path gives a slice or map. suppressed forces the
// untracked NotNullValueTag path; the sequence numbers it hands out
// share the same space as WriteRef's.
func (r *RefResolver) WriteStringRef(buf *ByteBuffer, s string, suppressed bool) bool {
	if !r.trackRef || suppressed {
		buf.WriteByte_(byte(NotNullValueTag))
		return false
	}
	if id, ok := r.writeStringIds[s]; ok {
		buf.WriteByte_(byte(RefTagValue))
		buf.WriteVarUint32(uint32(id))
		return true
	}
	r.writeStringIds[s] = r.nextWrite
	r.nextWrite++
	buf.WriteByte_(byte(TrackFirstTag))
	return false
}

// ReadTag reads the one-byte ref tag and, for RefTagValue, the sequence
// number that follows it.
func (r *RefResolver) ReadTag(buf *ByteBuffer) (tag RefTag, refId int32) {
	tag = RefTag(buf.ReadByte_())
	if tag == RefTagValue {
		refId = int32(buf.ReadVarUint32())
	}
	return tag, refId
}

// Reference records a TrackFirst value at the next sequence number,
// before the caller recurses into its children, so a cycle back to this
// value resolves via GetReferenced instead of recursing forever.
func (r *RefResolver) Reference(v any) {
	if r.trackRef {
		r.readValues = append(r.readValues, v)
	}
}

// GetReferenced looks up a value recorded by an earlier Reference call.
func (r *RefResolver) GetReferenced(refId int32) any {
	if int(refId) < len(r.readValues) {
		return r.readValues[refId]
	}
	return nil
}

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
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// growThreshold is the capacity above which buffer growth switches from a
// doubling policy to a 1.5x policy, bounding overshoot for very large
// buffers while keeping small-buffer amortized cost at O(1) per byte.
const growThreshold = 100 * 1024 * 1024

// ByteBuffer is a contiguous, growable byte region with a write watermark
// (size) and an independent read cursor, optionally backed by a
// StreamReader for on-demand backfill. It underlies every read and write
// performed by the resolvers and serializers in this package.
type ByteBuffer struct {
	data         []byte
	readerIndex  int
	writerIndex  int
	streamReader *StreamReader
}

// NewByteBuffer wraps data for reading, or starts an empty growable buffer
// for writing when data is nil.
func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data, writerIndex: len(data)}
}

// NewByteBufferWithStream creates an empty buffer that backfills from r
// once its buffered bytes are exhausted.
func NewByteBufferWithStream(r *StreamReader) *ByteBuffer {
	b := &ByteBuffer{streamReader: r}
	r.buffer = b
	return b
}

// Reset rewinds both indices without releasing the underlying array,
// letting a buffer be reused across calls.
func (b *ByteBuffer) Reset() {
	b.readerIndex = 0
	b.writerIndex = 0
}

// WriterIndex returns the write watermark (logical size).
func (b *ByteBuffer) WriterIndex() int { return b.writerIndex }

// SetWriterIndex moves the write watermark; callers must have ensured the
// bytes up to idx are valid.
func (b *ByteBuffer) SetWriterIndex(idx int) { b.writerIndex = idx }

// ReaderIndex returns the read cursor.
func (b *ByteBuffer) ReaderIndex() int { return b.readerIndex }

// SetReaderIndex moves the read cursor directly, e.g. to rewind after a
// peek.
func (b *ByteBuffer) SetReaderIndex(idx int) { b.readerIndex = idx }

// Capacity returns the physical capacity of the backing array.
func (b *ByteBuffer) Capacity() int { return len(b.data) }

// Remaining returns the number of unread bytes currently buffered.
func (b *ByteBuffer) Remaining() int { return b.writerIndex - b.readerIndex }

// grow ensures size+n <= capacity, preserving existing data. Below
// growThreshold required bytes, capacity doubles; above it, capacity grows
// by 1.5x, matching the documented amortization/overshoot tradeoff.
func (b *ByteBuffer) grow(n int) {
	required := b.writerIndex + n
	if required <= len(b.data) {
		return
	}
	var newCap int
	if required < growThreshold {
		newCap = required * 2
	} else {
		newCap = required + required/2
	}
	newData := make([]byte, newCap)
	copy(newData, b.data[:b.writerIndex])
	b.data = newData
}

// Shrink releases surplus capacity beyond the current write watermark.
// Callers must not invoke this mid-read; it is an explicit post-use
// operation, never triggered automatically.
func (b *ByteBuffer) Shrink() {
	if len(b.data) == b.writerIndex {
		return
	}
	newData := make([]byte, b.writerIndex)
	copy(newData, b.data[:b.writerIndex])
	b.data = newData
}

// ensureReadable asks the stream reader (if any) for more bytes when the
// buffered region can't satisfy n more bytes from the current cursor.
func (b *ByteBuffer) ensureReadable(n int) error {
	if b.Remaining() >= n {
		return nil
	}
	if b.streamReader == nil {
		return errors.Wrapf(ErrTruncatedInput, "need %d bytes, have %d", n, b.Remaining())
	}
	return b.streamReader.fillBuffer(n - b.Remaining())
}

// FillBuffer ensures at least min unread bytes are buffered, pulling only
// the shortfall from the backing stream and appending it at the write
// watermark. It is a no-op when min bytes are already buffered, and
// returns ErrTruncatedInput when they are not and the buffer has no
// backing stream.
func (b *ByteBuffer) FillBuffer(min int) error {
	return b.ensureReadable(min)
}

// ---- fixed-width writes ----

func (b *ByteBuffer) WriteByte_(v byte) {
	b.grow(1)
	b.data[b.writerIndex] = v
	b.writerIndex++
}

func (b *ByteBuffer) WriteBool(v bool) {
	if v {
		b.WriteByte_(1)
	} else {
		b.WriteByte_(0)
	}
}

func (b *ByteBuffer) WriteInt8(v int8) { b.WriteByte_(byte(v)) }

func (b *ByteBuffer) WriteInt16(v int16) {
	b.grow(2)
	binary.LittleEndian.PutUint16(b.data[b.writerIndex:], uint16(v))
	b.writerIndex += 2
}

func (b *ByteBuffer) WriteInt32(v int32) {
	b.grow(4)
	binary.LittleEndian.PutUint32(b.data[b.writerIndex:], uint32(v))
	b.writerIndex += 4
}

func (b *ByteBuffer) WriteInt64(v int64) {
	b.grow(8)
	binary.LittleEndian.PutUint64(b.data[b.writerIndex:], uint64(v))
	b.writerIndex += 8
}

func (b *ByteBuffer) WriteFloat32(v float32) { b.WriteInt32(int32(math.Float32bits(v))) }

func (b *ByteBuffer) WriteFloat64(v float64) { b.WriteInt64(int64(math.Float64bits(v))) }

// WriteRawLE64 writes a plain 8-byte little-endian value; used by the
// SLI_INT64 encoding's overflow path.
func (b *ByteBuffer) WriteRawLE64(v int64) { b.WriteInt64(v) }

// ---- fixed-width reads ----

func (b *ByteBuffer) ReadByte_() byte {
	if err := b.ensureReadable(1); err != nil {
		panic(err)
	}
	v := b.data[b.readerIndex]
	b.readerIndex++
	return v
}

func (b *ByteBuffer) ReadBool() bool { return b.ReadByte_() != 0 }

func (b *ByteBuffer) ReadInt8() int8 { return int8(b.ReadByte_()) }

func (b *ByteBuffer) ReadInt16() int16 {
	if err := b.ensureReadable(2); err != nil {
		panic(err)
	}
	v := binary.LittleEndian.Uint16(b.data[b.readerIndex:])
	b.readerIndex += 2
	return int16(v)
}

func (b *ByteBuffer) ReadInt32() int32 {
	if err := b.ensureReadable(4); err != nil {
		panic(err)
	}
	v := binary.LittleEndian.Uint32(b.data[b.readerIndex:])
	b.readerIndex += 4
	return int32(v)
}

func (b *ByteBuffer) ReadInt64() int64 {
	if err := b.ensureReadable(8); err != nil {
		panic(err)
	}
	v := binary.LittleEndian.Uint64(b.data[b.readerIndex:])
	b.readerIndex += 8
	return int64(v)
}

func (b *ByteBuffer) ReadFloat32() float32 { return math.Float32frombits(uint32(b.ReadInt32())) }

func (b *ByteBuffer) ReadFloat64() float64 { return math.Float64frombits(uint64(b.ReadInt64())) }

// ---- variable-length integers ----

// WriteVarUint32 writes v as 7-bit little-endian groups with MSB
// continuation, truncated to at most 5 bytes, and returns the byte count.
func (b *ByteBuffer) WriteVarUint32(v uint32) int8 {
	var n int8
	for {
		if v&^0x7F == 0 {
			b.WriteByte_(byte(v))
			n++
			return n
		}
		b.WriteByte_(byte(v&0x7F) | 0x80)
		v >>= 7
		n++
	}
}

// WriteVarUint32Small7 is a fast path identical to WriteVarUint32 but
// special-cased for the common case of a value fitting in 7 bits (type
// ids, enum ordinals), avoiding the loop overhead.
func (b *ByteBuffer) WriteVarUint32Small7(v uint32) int8 {
	if v>>7 == 0 {
		b.WriteByte_(byte(v))
		return 1
	}
	return b.WriteVarUint32(v)
}

// ReadVarUint32 reads a VarUint32 previously written by WriteVarUint32.
func (b *ByteBuffer) ReadVarUint32() uint32 {
	var v uint32
	var shift uint
	for {
		c := b.ReadByte_()
		v |= uint32(c&0x7F) << shift
		if c&0x80 == 0 {
			return v
		}
		shift += 7
		if shift >= 35 {
			panic(errors.Wrap(ErrMalformed, "varuint32 overflow"))
		}
	}
}

// ReadVarUint32Small7 mirrors WriteVarUint32Small7's single-byte fast path.
func (b *ByteBuffer) ReadVarUint32Small7() uint32 {
	if err := b.ensureReadable(1); err != nil {
		panic(err)
	}
	c := b.data[b.readerIndex]
	if c&0x80 == 0 {
		b.readerIndex++
		return uint32(c)
	}
	return b.ReadVarUint32()
}

func zigzag32(v int32) uint32   { return uint32((v << 1) ^ (v >> 31)) }
func unzigzag32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }
func zigzag64(v int64) uint64   { return uint64((v << 1) ^ (v >> 63)) }
func unzigzag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// WriteVarint32 writes v ZigZag-encoded then VarUint-encoded, so small
// magnitude negatives compress as well as small positives.
func (b *ByteBuffer) WriteVarint32(v int32) int8 {
	return b.WriteVarUint32(zigzag32(v))
}

// ReadVarint32 is the inverse of WriteVarint32.
func (b *ByteBuffer) ReadVarint32() int32 {
	return unzigzag32(b.ReadVarUint32())
}

// WriteVarint64 ZigZag-then-VarUint encodes a 64-bit signed integer,
// truncated to at most 10 bytes.
func (b *ByteBuffer) WriteVarint64(v int64) int8 {
	return b.writeVarUint64(zigzag64(v))
}

func (b *ByteBuffer) writeVarUint64(v uint64) int8 {
	var n int8
	for {
		if v&^0x7F == 0 {
			b.WriteByte_(byte(v))
			n++
			return n
		}
		b.WriteByte_(byte(v&0x7F) | 0x80)
		v >>= 7
		n++
	}
}

// ReadVarint64 is the inverse of WriteVarint64.
func (b *ByteBuffer) ReadVarint64() int64 {
	var v uint64
	var shift uint
	for {
		c := b.ReadByte_()
		v |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return unzigzag64(v)
		}
		shift += 7
		if shift >= 70 {
			panic(errors.Wrap(ErrMalformed, "varint64 overflow"))
		}
	}
}

// WriteVaruint36Small writes an unsigned value known to fit in 36 bits
// (e.g. a string's byte-length-and-encoding header) as plain VarUint
// groups, without ZigZag.
func (b *ByteBuffer) WriteVaruint36Small(v uint64) int8 { return b.writeVarUint64(v) }

// ReadVaruint36Small is the inverse of WriteVaruint36Small.
func (b *ByteBuffer) ReadVaruint36Small() uint64 {
	var v uint64
	var shift uint
	for {
		c := b.ReadByte_()
		v |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return v
		}
		shift += 7
	}
}

// WriteSliInt64 implements the "small long integer" encoding: values in
// [-2^30, 2^30) are written as (value<<1) over 4 little-endian bytes with
// low bit 0; values outside that range are written as marker byte 1
// followed by 8 raw little-endian bytes.
func (b *ByteBuffer) WriteSliInt64(v int64) int8 {
	const sliBound = int64(1) << 30
	if v >= -sliBound && v < sliBound {
		b.WriteInt32(int32(v << 1))
		return 4
	}
	b.WriteByte_(1)
	b.WriteRawLE64(v)
	return 9
}

// ReadSliInt64 is the inverse of WriteSliInt64, peeking the low bit of the
// first 4-byte group to decide between the two layouts.
func (b *ByteBuffer) ReadSliInt64() int64 {
	if err := b.ensureReadable(4); err != nil {
		panic(err)
	}
	head := binary.LittleEndian.Uint32(b.data[b.readerIndex:])
	if head&1 == 0 {
		b.readerIndex += 4
		return int64(int32(head)) >> 1
	}
	b.readerIndex++ // skip the 1-byte marker
	return b.ReadInt64()
}

// WriteLength writes n, which must fit in int32, as a ZigZag VarInt32.
func (b *ByteBuffer) WriteLength(n int) {
	b.WriteVarint32(int32(n))
}

// ReadLength is the inverse of WriteLength.
func (b *ByteBuffer) ReadLength() int {
	return int(b.ReadVarint32())
}

// ---- bulk copy ----

// WriteBinary bulk-copies p into the buffer.
func (b *ByteBuffer) WriteBinary(p []byte) {
	if len(p) == 0 {
		return
	}
	b.grow(len(p))
	copy(b.data[b.writerIndex:], p)
	b.writerIndex += len(p)
}

// ReadBinary returns the next n bytes. The returned slice aliases the
// buffer's backing array; callers that retain it across further writes
// must copy it first.
func (b *ByteBuffer) ReadBinary(n int) []byte {
	if n == 0 {
		return nil
	}
	if err := b.ensureReadable(n); err != nil {
		panic(err)
	}
	v := b.data[b.readerIndex : b.readerIndex+n]
	b.readerIndex += n
	return v
}

// GetByteSlice returns a copy of data[start:end), used by the façade to
// hand callers an owned result independent of further buffer reuse.
func (b *ByteBuffer) GetByteSlice(start, end int) []byte {
	out := make([]byte, end-start)
	copy(out, b.data[start:end])
	return out
}

// Slice returns a read-only view of length bytes starting at offset,
// sharing the backing array. Used for out-of-band buffer objects.
func (b *ByteBuffer) Slice(offset, length int) *ByteBuffer {
	return &ByteBuffer{data: b.data[offset : offset+length], writerIndex: length}
}

// WriteUnsafe copies n bytes from ptr into the buffer without bounds
// checks on the source; the caller must guarantee ptr has n valid bytes.
func (b *ByteBuffer) WriteUnsafe(ptr unsafe.Pointer, n int) {
	b.grow(n)
	src := unsafe.Slice((*byte)(ptr), n)
	copy(b.data[b.writerIndex:], src)
	b.writerIndex += n
}

// ReadUnsafe copies n bytes into dst without re-checking that they were
// already buffered; it advances the reader index by n regardless. The
// caller must have ensured availability (e.g. via FillBuffer) beforehand.
func (b *ByteBuffer) ReadUnsafe(dst unsafe.Pointer, n int) {
	src := b.data[b.readerIndex : b.readerIndex+n]
	dstSlice := unsafe.Slice((*byte)(dst), n)
	copy(dstSlice, src)
	b.readerIndex += n
}

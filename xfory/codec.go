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
	"reflect"

	"github.com/cockroachdb/errors"
)

// Language identifies a cross-language peer, written into the protocol
// header so a multi-language deployment can tell which runtime produced
// a message (useful for diagnostics; this package does not special-case
// the value on read beyond validating it parses).
type Language = uint8

const (
	LangXlang Language = iota
	LangJava
	LangPython
	LangCpp
	LangGo
	LangJavaScript
	LangRust
	LangDart
)

// magicNumber is teacher-faithful; see DESIGN.md for why it diverges
// from the header constant in the distilled spec.
const magicNumber uint16 = 0x62D4

const (
	headerLittleEndianFlag byte = 1 << 1
	headerXlangFlag        byte = 1 << 2
)

// LongEncoding selects how int64/int are written on the wire.
type LongEncoding int8

const (
	// LongEncodingSLI is the default small-long-integer encoding: most
	// application integers fit a 4-byte fast path.
	LongEncodingSLI LongEncoding = iota
	// LongEncodingRawBytes writes a fixed 8 bytes, little-endian.
	LongEncodingRawBytes
	// LongEncodingPVL writes a plain ZigZag VarUint64 with no small-value
	// fast path.
	LongEncodingPVL
)

// Config configures a Codec. The zero value is not valid; build one with
// DefaultConfig or New's option functions.
type Config struct {
	TrackRef            bool
	IgnoreBasicTypesRef bool
	IgnoreStringRef     bool
	IgnoreTimeRef       bool
	Language            Language
	Compatible          bool
	MaxDepth            int

	// CompressInt toggles the VarInt32 fast path for int32; off selects a
	// fixed 4-byte encoding instead.
	CompressInt bool
	// LongEncoding selects int64/int's wire representation.
	LongEncoding LongEncoding
	// CompressString toggles the Latin1 one-byte-per-rune shortcut for
	// ASCII-only strings; off always writes UTF-8.
	CompressString bool
	// RequireClassRegistration, when true (the default), makes decoding
	// an unregistered namespaced struct fail instead of fabricating a
	// placeholder, unless DeserializeUnexistentClass overrides it.
	RequireClassRegistration bool
	// DeserializeUnexistentClass, when true, fabricates a
	// placeholder UnknownStruct for a namespaced struct-family type with
	// no local registration instead of failing. Has no effect on
	// NS_EXT-family kinds, whose payload is never safe to fabricate.
	DeserializeUnexistentClass bool
	// ShareMetaContext, when true, keeps a long-lived Codec's interned
	// namespace/name tokens across Serialize/Deserialize calls instead of
	// resetting them each message.
	ShareMetaContext bool
}

// DefaultConfig returns the configuration New uses absent any Option.
func DefaultConfig() Config {
	return Config{
		TrackRef:                 true,
		Language:                 LangXlang,
		MaxDepth:                 defaultMaxDepth,
		CompressInt:              true,
		LongEncoding:             LongEncodingSLI,
		CompressString:           true,
		RequireClassRegistration: true,
	}
}

// Option configures a Codec at construction.
type Option func(*Config)

func WithRefTracking(enabled bool) Option { return func(c *Config) { c.TrackRef = enabled } }

func WithIgnoreBasicTypesRef(enabled bool) Option {
	return func(c *Config) { c.IgnoreBasicTypesRef = enabled }
}

func WithIgnoreStringRef(enabled bool) Option {
	return func(c *Config) { c.IgnoreStringRef = enabled }
}

func WithIgnoreTimeRef(enabled bool) Option { return func(c *Config) { c.IgnoreTimeRef = enabled } }

func WithLanguage(lang Language) Option { return func(c *Config) { c.Language = lang } }

func WithCompatible(enabled bool) Option { return func(c *Config) { c.Compatible = enabled } }

func WithMaxDepth(depth int) Option { return func(c *Config) { c.MaxDepth = depth } }

func WithCompressInt(enabled bool) Option { return func(c *Config) { c.CompressInt = enabled } }

func WithLongEncoding(enc LongEncoding) Option {
	return func(c *Config) { c.LongEncoding = enc }
}

func WithCompressString(enabled bool) Option {
	return func(c *Config) { c.CompressString = enabled }
}

func WithRequireClassRegistration(enabled bool) Option {
	return func(c *Config) { c.RequireClassRegistration = enabled }
}

func WithDeserializeUnexistentClass(enabled bool) Option {
	return func(c *Config) { c.DeserializeUnexistentClass = enabled }
}

func WithShareMetaContext(enabled bool) Option {
	return func(c *Config) { c.ShareMetaContext = enabled }
}

// Codec is the top-level serialization instance: one write context, one
// read context, one reference resolver, one type resolver, reused across
// calls. Codec is
// NOT safe for concurrent use — a caller serving concurrent requests
// should give each goroutine its own Codec built with the same Options
// and Register calls.
type Codec struct {
	config Config

	refResolver  *RefResolver
	typeResolver *typeResolver

	writeCtx *WriteContext
	readCtx  *ReadContext
}

// New builds a Codec with the given options applied over DefaultConfig.
func New(opts ...Option) *Codec {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	refResolver := NewRefResolver(cfg.TrackRef, cfg.IgnoreBasicTypesRef, cfg.IgnoreStringRef,
		cfg.IgnoreTimeRef, cfg.Language == LangXlang)
	refResolver.SetMaxDepth(cfg.MaxDepth)
	typeResolver := newTypeResolver(cfg)

	c := &Codec{
		config:       cfg,
		refResolver:  refResolver,
		typeResolver: typeResolver,
	}
	c.writeCtx = NewWriteContext(refResolver, typeResolver, cfg.Compatible)
	c.readCtx = NewReadContext(refResolver, typeResolver, cfg.Compatible)
	return c
}

// Register assigns type_ a numeric wire identity. type_ may be a
// reflect.Type or an instance (including a nil typed pointer).
func (c *Codec) Register(type_ interface{}, id int32) error {
	return c.typeResolver.Register(type_, id)
}

// RegisterByNamespace assigns type_ a cross-language (namespace, name)
// wire identity instead of a numeric id.
func (c *Codec) RegisterByNamespace(type_ interface{}, namespace, name string) error {
	return c.typeResolver.RegisterByNamespace(type_, namespace, name)
}

// RegisterSerializer attaches a custom Serializer to an already
// registered type, overriding whatever default the bootstrap table or a
// container fallback picked.
func (c *Codec) RegisterSerializer(type_ interface{}, s Serializer) error {
	return c.typeResolver.RegisterSerializer(type_, s)
}

// SetSecurityChecker installs a predicate every Register call consults;
// returning false rejects the registration with ErrPolicyViolation. This
// is the hook a deployment uses to refuse deserializing types it did not
// explicitly allow-list.
func (c *Codec) SetSecurityChecker(f func(reflect.Type) bool) {
	c.typeResolver.SetSecurityChecker(f)
}

// SetBufferCallback installs the out-of-band buffer hook used by values
// implementing BufferObject.
func (c *Codec) SetBufferCallback(f func(BufferObject) bool) {
	c.writeCtx.SetBufferCallback(f)
}

func writeHeader(buf *ByteBuffer, cfg Config) {
	buf.WriteInt16(int16(magicNumber))
	var bitmap byte
	bitmap |= headerLittleEndianFlag // this package always writes little-endian
	if cfg.Language == LangXlang {
		bitmap |= headerXlangFlag
	}
	buf.WriteByte_(bitmap)
	buf.WriteByte_(cfg.Language)
}

func readHeader(buf *ByteBuffer) error {
	magic := uint16(buf.ReadInt16())
	if magic != magicNumber {
		return ErrMagicNumber
	}
	buf.ReadByte_() // bitmap: endianness/xlang flags, informational only on read
	buf.ReadByte_() // source language
	return nil
}

// recoverPanic turns a ByteBuffer short-read panic (or any other panic
// reached during serialization) into an error, so callers never need a
// recover() of their own.
func recoverPanic(errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = err
			return
		}
		*errp = errors.Newf("xfory: %v", r)
	}
}

// Serialize writes v, including its protocol header, to a freshly
// returned byte slice. v may be nil, a concrete value, or a pointer.
func (c *Codec) Serialize(v any) (data []byte, err error) {
	defer recoverPanic(&err)

	c.writeCtx.Reset()
	writeHeader(c.writeCtx.buffer, c.config)

	if v == nil {
		c.writeCtx.buffer.WriteByte_(byte(NullTag))
		return c.writeCtx.buffer.GetByteSlice(0, c.writeCtx.buffer.WriterIndex()), nil
	}
	if err := c.writeCtx.WriteReferencable(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return c.writeCtx.buffer.GetByteSlice(0, c.writeCtx.buffer.WriterIndex()), nil
}

// Deserialize reads a value previously produced by Serialize, returning
// it boxed in any. A value serialized through a pointer comes back as its
// pointee type, and an unregistered container comes back as the Go type
// this Codec's resolver holds for its container kind (see
// fallbackContainerInfo), which is not always the type that was written.
func (c *Codec) Deserialize(data []byte) (v any, err error) {
	defer recoverPanic(&err)

	c.readCtx.Reset()
	c.readCtx.SetData(data)
	if err := readHeader(c.readCtx.buffer); err != nil {
		return nil, err
	}

	anyType := reflect.TypeOf((*any)(nil)).Elem()
	result, err := c.readCtx.ReadReferencable(anyType)
	if err != nil {
		return nil, err
	}
	if !result.IsValid() {
		return nil, nil
	}
	return result.Interface(), nil
}

// SerializeStream writes v to an internal buffer and returns it framed
// with a 4-byte length prefix via WriteFramed's layout, ready to hand to
// an io.Writer that has no message framing of its own.
func (c *Codec) SerializeStream(v any) ([]byte, error) {
	payload, err := c.Serialize(v)
	if err != nil {
		return nil, err
	}
	framed := make([]byte, 0, len(payload)+frameLengthSize)
	var header [frameLengthSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	framed = append(framed, header[:]...)
	framed = append(framed, payload...)
	return framed, nil
}

// DeserializeFromStream reads one Serialize-produced message from r,
// backfilling through a StreamReader instead of requiring the whole
// message to already be in memory.
func (c *Codec) DeserializeFromStream(r *StreamReader) (v any, err error) {
	defer recoverPanic(&err)

	c.readCtx.Reset()
	c.readCtx.SetStream(r)
	if err := readHeader(c.readCtx.buffer); err != nil {
		return nil, err
	}
	anyType := reflect.TypeOf((*any)(nil)).Elem()
	result, err := c.readCtx.ReadReferencable(anyType)
	if err != nil {
		return nil, err
	}
	if !result.IsValid() {
		return nil, nil
	}
	return result.Interface(), nil
}

// Copy returns a deep copy of v in the codec's own semantics: every
// registered container (slice, set, map) is copied element-wise through
// its own serializer's Copy rather than aliasing the original's backing
// array or map, while a registered type whose Serializer does not
// implement copier (most hand-authored struct serializers) is returned
// unchanged, matching Serialize/Deserialize's treatment of such a type
// as an opaque unit. Copy never touches the wire format: no header, no
// ref tags, no buffer allocation beyond what reflect.MakeSlice/
// reflect.MakeMapWithSize need.
func (c *Codec) Copy(v any) (cp any, err error) {
	defer recoverPanic(&err)

	if v == nil {
		return nil, nil
	}
	result := deepCopyValue(c.typeResolver, reflect.ValueOf(v))
	if !result.IsValid() {
		return nil, nil
	}
	return result.Interface(), nil
}

// Serialize is a type-inferring convenience wrapper over Codec.Serialize
// for callers who already know the static type of value.
func Serialize[T any](c *Codec, value T) ([]byte, error) {
	return c.Serialize(value)
}

// Deserialize is Serialize's inverse, type-asserting the result back to
// T. It errors if the decoded value's concrete type is not assignable to
// T.
func Deserialize[T any](c *Codec, data []byte) (T, error) {
	var zero T
	result, err := c.Deserialize(data)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.Newf("xfory: decoded %T, want %T", result, zero)
	}
	return typed, nil
}

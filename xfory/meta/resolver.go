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

package meta

import "github.com/cockroachdb/errors"

// ErrBadToken is returned when a reader decodes a back-reference token
// whose index was never defined.
var ErrBadToken = errors.New("meta: back-reference to undefined string")

// Writer is the subset of xfory.ByteBuffer's write methods the resolver
// needs. It is declared here, rather than imported, so this package stays
// free of a dependency on the codec package that embeds it.
type Writer interface {
	WriteVarUint32(v uint32) int8
	WriteByte_(b byte)
	WriteBinary(b []byte)
}

// Reader is the read-side counterpart of Writer.
type Reader interface {
	ReadVarUint32() uint32
	ReadByte_() byte
	ReadBinary(n int) []byte
}

// Resolver interns namespace and type-name strings within the lifetime of
// a single codec instance: the first time a string is written, its full
// encoded payload goes on the wire and it is assigned the next sequential
// token; every later occurrence writes only that token. This is the same
// shape as the reference-tracking protocol in the parent package, applied
// to strings instead of object graphs.
//
// A Resolver is not safe for concurrent use, matching the single-threaded
// contract of the codec it is embedded in.
type Resolver struct {
	writeIndex map[string]uint32
	writeOrder []string

	readStrings []Bytes
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{writeIndex: make(map[string]uint32)}
}

// Reset clears all interned state, as done between independent top-level
// Serialize calls when the caller does not want cross-call string reuse.
func (r *Resolver) Reset() {
	r.writeIndex = make(map[string]uint32)
	r.writeOrder = r.writeOrder[:0]
	r.readStrings = r.readStrings[:0]
}

// WriteString writes s to w, either as a back-reference token to an
// earlier occurrence of the same string in this resolver's lifetime, or,
// the first time, as a fresh token followed by its encoded payload:
// char count, encoding tag, byte length, and the packed bytes.
func (r *Resolver) WriteString(w Writer, s string) {
	if idx, ok := r.writeIndex[s]; ok {
		w.WriteVarUint32((idx << 1) | 0)
		return
	}
	idx := uint32(len(r.writeOrder))
	r.writeIndex[s] = idx
	r.writeOrder = append(r.writeOrder, s)

	enc := NewEncoder().Encode(s)
	w.WriteVarUint32((idx << 1) | 1)
	w.WriteVarUint32(uint32(enc.CharCount))
	w.WriteByte_(byte(enc.Encoding))
	w.WriteVarUint32(uint32(len(enc.Data)))
	w.WriteBinary(enc.Data)
}

// ReadString is the inverse of WriteString.
func (r *Resolver) ReadString(rd Reader) (string, error) {
	tag := rd.ReadVarUint32()
	if tag&1 == 0 {
		idx := tag >> 1
		if int(idx) >= len(r.readStrings) {
			return "", errors.Wrapf(ErrBadToken, "index %d", idx)
		}
		return r.readStrings[idx].Decode()
	}

	charCount := int(rd.ReadVarUint32())
	enc := Encoding(rd.ReadByte_())
	byteLen := int(rd.ReadVarUint32())
	data := rd.ReadBinary(byteLen)

	b := Bytes{Encoding: enc, CharCount: charCount, Data: data, Hash: hashPayload(enc, data)}
	r.readStrings = append(r.readStrings, b)
	return b.Decode()
}

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

import "github.com/spaolacci/murmur3"

// Bytes is an encoded meta-string together with the hash used to key the
// interning caches in Resolver. Two Bytes values with equal Encoding,
// CharCount, and Data are always equal; the Hash field exists purely to
// make map lookups and cross-language hash comparisons cheap.
type Bytes struct {
	Encoding  Encoding
	CharCount int
	Data      []byte
	Hash      uint64
}

// NewBytes encodes s and computes its hash in one step.
func NewBytes(s string) Bytes {
	enc := NewEncoder().Encode(s)
	return Bytes{
		Encoding:  enc.Encoding,
		CharCount: enc.CharCount,
		Data:      enc.Data,
		Hash:      hashPayload(enc.Encoding, enc.Data),
	}
}

// Equal reports whether b and other encode the same source string.
func (b Bytes) Equal(other Bytes) bool {
	if b.Hash != other.Hash || b.Encoding != other.Encoding || b.CharCount != other.CharCount {
		return false
	}
	if len(b.Data) != len(other.Data) {
		return false
	}
	for i := range b.Data {
		if b.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// Decode reverses b back to the source string.
func (b Bytes) Decode() (string, error) {
	return NewDecoder().Decode(b.Data, b.Encoding, b.CharCount)
}

// hashPayload combines the encoding tag into the murmur3 hash of the
// packed bytes, so payloads that happen to coincide under two different
// encodings don't collide in the intern cache.
func hashPayload(enc Encoding, data []byte) uint64 {
	h := murmur3.Sum64(data)
	return h*31 + uint64(enc)
}

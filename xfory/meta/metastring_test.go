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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeEncodingPicksSmallest(t *testing.T) {
	enc := NewEncoder()
	require.Equal(t, LowerSpecial, enc.ComputeEncoding("com.example.pkg"))
	require.Equal(t, FirstToLowerSpecial, enc.ComputeEncoding("Example"))
	// "exAMPLE" fits AllToLowerSpecial at (7+5)*5 = 60 bits, but
	// LowerUpperDigitSpecial needs only 7*6 = 42.
	require.Equal(t, LowerUpperDigitSpecial, enc.ComputeEncoding("exAMPLE"))
	// 19 chars, 3 uppercase: (19+3)*5 = 110 bits beats 19*6 = 114.
	require.Equal(t, AllToLowerSpecial, enc.ComputeEncoding("exampleWithOneUpper"))
	require.Equal(t, LowerUpperDigitSpecial, enc.ComputeEncoding("Example2"))
	require.Equal(t, Utf8, enc.ComputeEncoding("例"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"", "a", "com.example.pkg", "Example", "exAMPLE", "Example2",
		"ALLCAPS", "mixedCaseName123", "例えば",
	}
	enc := NewEncoder()
	dec := NewDecoder()
	for _, s := range cases {
		encoded := enc.Encode(s)
		got, err := dec.Decode(encoded.Data, encoded.Encoding, encoded.CharCount)
		require.NoError(t, err, "input %q", s)
		require.Equal(t, s, got, "input %q via encoding %d", s, encoded.Encoding)
	}
}

// TestAllToLowerCharCountAmbiguity is the regression test for the
// explicit-char-count design: decoding AllToLowerSpecial payloads without
// the escaped character count (derived solely from byte length) would be
// ambiguous, since floor(byteLen*8/5) does not always recover the exact
// source count once '|' escapes inflate it.
func TestAllToLowerCharCountAmbiguity(t *testing.T) {
	enc := NewEncoder()
	s := "ABCDE" // every rune escaped: 10 expanded chars
	encoded := enc.EncodeWithEncoding(s, AllToLowerSpecial)
	require.Equal(t, 10, encoded.CharCount)

	dec := NewDecoder()
	got, err := dec.Decode(encoded.Data, AllToLowerSpecial, encoded.CharCount)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestBytesEqualAcrossEncodings(t *testing.T) {
	a := NewBytes("example")
	b := NewBytes("example")
	require.True(t, a.Equal(b))

	c := NewBytes("Example")
	require.False(t, a.Equal(c))
}

func TestResolverWriteStringInternsRepeats(t *testing.T) {
	r := NewResolver()
	buf := newFakeBuffer()

	r.WriteString(buf, "shared.namespace")
	r.WriteString(buf, "shared.namespace")
	r.WriteString(buf, "other")

	reader := NewResolver()
	got1, err := reader.ReadString(buf)
	require.NoError(t, err)
	require.Equal(t, "shared.namespace", got1)

	got2, err := reader.ReadString(buf)
	require.NoError(t, err)
	require.Equal(t, "shared.namespace", got2)

	got3, err := reader.ReadString(buf)
	require.NoError(t, err)
	require.Equal(t, "other", got3)
}

func TestResolverReadStringBadToken(t *testing.T) {
	r := NewResolver()
	buf := newFakeBuffer()
	buf.WriteVarUint32(uint32(5 << 1)) // back-reference to an index never written
	_, err := r.ReadString(buf)
	require.ErrorIs(t, err, ErrBadToken)
}

// fakeBuffer is a minimal Writer/Reader satisfying the resolver's local
// interfaces, standing in for xfory.ByteBuffer without importing the
// parent package (which would create an import cycle).
type fakeBuffer struct {
	data []byte
	pos  int
}

func newFakeBuffer() *fakeBuffer { return &fakeBuffer{} }

func (f *fakeBuffer) WriteVarUint32(v uint32) int8 {
	n := 0
	for {
		n++
		if v>>7 == 0 {
			f.data = append(f.data, byte(v))
			return int8(n)
		}
		f.data = append(f.data, byte(v)|0x80)
		v >>= 7
	}
}

func (f *fakeBuffer) WriteByte_(b byte) { f.data = append(f.data, b) }

func (f *fakeBuffer) WriteBinary(b []byte) { f.data = append(f.data, b...) }

func (f *fakeBuffer) ReadVarUint32() uint32 {
	var v uint32
	var shift uint
	for {
		b := f.data[f.pos]
		f.pos++
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v
		}
		shift += 7
	}
}

func (f *fakeBuffer) ReadByte_() byte {
	b := f.data[f.pos]
	f.pos++
	return b
}

func (f *fakeBuffer) ReadBinary(n int) []byte {
	b := f.data[f.pos : f.pos+n]
	f.pos += n
	return b
}

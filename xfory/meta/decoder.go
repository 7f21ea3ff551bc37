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

// ErrUnknownEncoding is returned by Decode when the Encoding tag does not
// match any of the packed alphabets or Utf8.
var ErrUnknownEncoding = errors.New("meta: unknown string encoding")

// Decoder is the inverse of Encoder. Unlike encoding, decoding a packed
// alphabet needs to know how many characters were packed: the final byte
// of a bitWriter's output is zero-padded, and that padding is otherwise
// indistinguishable from a short final code. Callers get the character
// count from the same place they got the byte length — the MetaStringBytes
// record — rather than from the packed bytes alone.
type Decoder struct{}

// NewDecoder returns a Decoder. It holds no state.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode unpacks data, which was produced by Encoder.EncodeWithEncoding(s,
// enc), back into s. charCount must be the number of fixed-width codes
// packed, as reported in EncodedString.CharCount: the length of s for
// the packed alphabets except AllToLowerSpecial, where it is the escaped
// length. For Utf8 it is ignored and the whole of data is returned as-is.
func (d *Decoder) Decode(data []byte, enc Encoding, charCount int) (string, error) {
	switch enc {
	case LowerSpecial:
		return unpackLowerSpecial(data, charCount), nil
	case LowerUpperDigitSpecial:
		return unpackLowerUpperDigitSpecial(data, charCount), nil
	case FirstToLowerSpecial:
		return unpackFirstToLower(data, charCount), nil
	case AllToLowerSpecial:
		return unpackAllToLower(data, charCount), nil
	case Utf8:
		return string(data), nil
	default:
		return "", errors.Wrapf(ErrUnknownEncoding, "tag %d", enc)
	}
}

func unpackLowerSpecial(data []byte, charCount int) string {
	r := newBitReader(data)
	buf := make([]byte, charCount)
	for i := 0; i < charCount; i++ {
		buf[i] = lowerSpecialChars[r.readBits(5)]
	}
	return string(buf)
}

func unpackLowerUpperDigitSpecial(data []byte, charCount int) string {
	r := newBitReader(data)
	buf := make([]byte, charCount)
	for i := 0; i < charCount; i++ {
		buf[i] = lowerUpperDigitSpecialChars[r.readBits(6)]
	}
	return string(buf)
}

// unpackFirstToLower reverses packFirstToLower: it unpacks charCount codes
// exactly as LowerSpecial does, then re-uppercases the first byte.
func unpackFirstToLower(data []byte, charCount int) string {
	s := unpackLowerSpecial(data, charCount)
	if s == "" {
		return s
	}
	buf := []byte(s)
	buf[0] = buf[0] - 'a' + 'A'
	return string(buf)
}

// unpackAllToLower reverses packAllToLower: it unpacks charCount codes
// (the expanded, escaped length, which is >= the original string's
// length) and then collapses each '|' + lowercase pair back into a single
// uppercase byte.
func unpackAllToLower(data []byte, charCount int) string {
	expanded := unpackLowerSpecial(data, charCount)
	buf := make([]byte, 0, len(expanded))
	for i := 0; i < len(expanded); i++ {
		c := expanded[i]
		if c == '|' && i+1 < len(expanded) {
			i++
			buf = append(buf, expanded[i]-'a'+'A')
			continue
		}
		buf = append(buf, c)
	}
	return string(buf)
}

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

// Encoder picks the smallest packed representation for a namespace or
// type-name string that preserves it exactly, falling back to raw UTF-8.
type Encoder struct{}

// NewEncoder returns an Encoder. It holds no state; encoding decisions
// depend only on the input string.
func NewEncoder() *Encoder { return &Encoder{} }

// ComputeEncoding selects the smallest Encoding that losslessly represents
// s, without actually encoding it.
func (e *Encoder) ComputeEncoding(s string) Encoding {
	return e.ComputeEncodingWith(s, allEncodings)
}

var allEncodings = []Encoding{LowerSpecial, FirstToLowerSpecial, AllToLowerSpecial, LowerUpperDigitSpecial, Utf8}

// ComputeEncodingWith picks, among the given candidate encodings that can
// represent s, the one with the fewest packed bits; on a tie the earlier
// candidate wins. It falls back to Utf8 when no candidate fits.
func (e *Encoder) ComputeEncodingWith(s string, candidates []Encoding) Encoding {
	if s == "" {
		return LowerSpecial
	}
	best, bestBits := Utf8, 8*len(s)
	for _, enc := range candidates {
		bits := -1
		switch enc {
		case LowerSpecial:
			if fitsLowerSpecial(s) {
				bits = 5 * len(s)
			}
		case FirstToLowerSpecial:
			if fitsFirstToLower(s) {
				bits = 5 * len(s)
			}
		case AllToLowerSpecial:
			if fitsAllToLower(s) {
				bits = 5 * len(expandAllToLower(s))
			}
		case LowerUpperDigitSpecial:
			if fitsLowerUpperDigitSpecial(s) {
				bits = 6 * len(s)
			}
		}
		if bits >= 0 && bits < bestBits {
			best, bestBits = enc, bits
		}
	}
	return best
}

// EncodedString is a packed meta-string payload together with the
// character count the Decoder needs to reverse it: for AllToLowerSpecial
// this is the expanded (escaped) length, not len(source string).
type EncodedString struct {
	Encoding  Encoding
	CharCount int
	Data      []byte
}

// Encode encodes s with the smallest representation.
func (e *Encoder) Encode(s string) EncodedString {
	enc := e.ComputeEncoding(s)
	return e.EncodeWithEncoding(s, enc)
}

// EncodeWithEncoding packs s using the specified encoding. The caller is
// responsible for having verified s fits that encoding (ComputeEncoding
// does this); EncodeWithEncoding does not re-validate.
func (e *Encoder) EncodeWithEncoding(s string, enc Encoding) EncodedString {
	switch enc {
	case LowerSpecial:
		return EncodedString{enc, len(s), packLowerSpecial(s)}
	case FirstToLowerSpecial:
		return EncodedString{enc, len(s), packFirstToLower(s)}
	case AllToLowerSpecial:
		expanded := expandAllToLower(s)
		return EncodedString{enc, len(expanded), packLowerSpecial(expanded)}
	case LowerUpperDigitSpecial:
		return EncodedString{enc, len(s), packLowerUpperDigitSpecial(s)}
	default:
		return EncodedString{Utf8, len(s), []byte(s)}
	}
}

func packLowerSpecial(s string) []byte {
	w := &bitWriter{}
	for i := 0; i < len(s); i++ {
		w.writeBits(uint32(lowerSpecialIndex[s[i]]), 5)
	}
	return w.flush()
}

func packLowerUpperDigitSpecial(s string) []byte {
	w := &bitWriter{}
	for i := 0; i < len(s); i++ {
		w.writeBits(uint32(lowerUpperDigitSpecialIndex[s[i]]), 6)
	}
	return w.flush()
}

// packFirstToLower lowercases the leading uppercase rune, packs the whole
// string with the LowerSpecial alphabet, and relies on the decoder to
// re-uppercase the first rune on read.
func packFirstToLower(s string) []byte {
	buf := make([]byte, len(s))
	copy(buf, s)
	buf[0] = buf[0] - 'A' + 'a'
	return packLowerSpecial(string(buf))
}

// expandAllToLower expands each uppercase rune into a '|' escape marker
// followed by its lowercase form.
func expandAllToLower(s string) string {
	var expanded []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpperASCII(c) {
			expanded = append(expanded, '|', c-'A'+'a')
		} else {
			expanded = append(expanded, c)
		}
	}
	return string(expanded)
}

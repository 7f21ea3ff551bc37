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
	"io"

	"github.com/cockroachdb/errors"
)

// StreamReader adapts a chunked io.Reader to ByteBuffer.FillBuffer's
// on-demand backfill: a ByteBuffer built over a StreamReader only ever
// holds as much of the input as has been demanded so far, pulling more
// from the underlying reader when a read crosses the end of what is
// currently buffered.
type StreamReader struct {
	r      io.Reader
	buffer *ByteBuffer
}

// NewStreamReader wraps r. The returned StreamReader is not usable until
// it is installed on a ByteBuffer via NewByteBufferWithStream, which
// gives it the buffer it backfills into.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// fillBuffer reads at least `need` more bytes into the owning buffer,
// growing it first if its remaining capacity can't hold them. It pulls
// in chunks of at least the buffer's current capacity so a slow
// byte-at-a-time reader doesn't turn every read into its own syscall.
func (s *StreamReader) fillBuffer(need int) error {
	if need <= 0 {
		return nil
	}
	buf := s.buffer
	chunk := buf.Capacity()
	if chunk < need {
		chunk = need
	}
	buf.grow(chunk)

	read := 0
	for read < need {
		n, err := s.r.Read(buf.data[buf.writerIndex:])
		if n > 0 {
			buf.writerIndex += n
			read += n
		}
		if err != nil {
			if err == io.EOF && read >= need {
				break
			}
			return errors.Wrapf(ErrTruncatedInput, "stream read: %v", err)
		}
	}
	return nil
}

// frameLengthSize is the byte width of the length prefix WriteFramed adds
// ahead of a message.
const frameLengthSize = 4

// WriteFramed writes a 4-byte little-endian length prefix followed by
// message, to an io.Writer such as a socket or pipe that has no framing
// of its own.
func WriteFramed(w io.Writer, message []byte) error {
	var header [frameLengthSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(message)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(message)
	return err
}

// ReadFramed reads one WriteFramed-delimited message from r.
func ReadFramed(r io.Reader) ([]byte, error) {
	var header [frameLengthSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrapf(ErrTruncatedInput, "frame header: %v", err)
	}
	size := binary.LittleEndian.Uint32(header[:])
	message := make([]byte, size)
	if _, err := io.ReadFull(r, message); err != nil {
		return nil, errors.Wrapf(ErrTruncatedInput, "frame body: %v", err)
	}
	return message, nil
}

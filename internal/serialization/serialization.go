// Copyright 2025 The keyring-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serialization implements the length-prefixed, big-endian binary
// codec used for every persisted entity.
//
// Primitive sizes are fixed: u8=1, u16=2, u32=4, i32=4, bool=1. Strings and
// byte slices are written as a u32 length followed by the raw bytes.
package serialization

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Primitive encoded sizes in bytes.
const (
	Uint8Size  = 1
	Uint16Size = 2
	Uint32Size = 4
	Int32Size  = 4
	BoolSize   = 1
)

// StringSize returns the encoded size of a length-prefixed string.
func StringSize(s string) int { return Uint32Size + len(s) }

// BytesSize returns the encoded size of a length-prefixed byte slice.
func BytesSize(b []byte) int { return Uint32Size + len(b) }

// Encoder writes primitives to an underlying writer in big-endian order.
//
// The first write error is latched; subsequent writes are no-ops. Callers
// check Err once after writing a whole entity.
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error encountered by the encoder, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

// WriteUint8 writes a single byte.
func (e *Encoder) WriteUint8(v uint8) {
	e.write([]byte{v})
}

// WriteUint16 writes v as 2 big-endian bytes.
func (e *Encoder) WriteUint16(v uint16) {
	var buf [Uint16Size]byte
	binary.BigEndian.PutUint16(buf[:], v)
	e.write(buf[:])
}

// WriteUint32 writes v as 4 big-endian bytes.
func (e *Encoder) WriteUint32(v uint32) {
	var buf [Uint32Size]byte
	binary.BigEndian.PutUint32(buf[:], v)
	e.write(buf[:])
}

// WriteInt32 writes v as 4 big-endian bytes.
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteBool writes a single byte, 1 for true and 0 for false.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteUint8(1)
	} else {
		e.WriteUint8(0)
	}
}

// WriteString writes a u32 length prefix followed by the string bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteUint32(uint32(len(s)))
	e.write([]byte(s))
}

// WriteBytes writes a u32 length prefix followed by the slice bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteUint32(uint32(len(b)))
	e.write(b)
}

// WriteRaw writes b with no length prefix.
func (e *Encoder) WriteRaw(b []byte) {
	e.write(b)
}

// Decoder reads primitives from a byte slice in big-endian order.
//
// Like Encoder, the first error is latched. Every read is bounds-checked
// against the remaining input so a truncated or corrupted buffer fails
// cleanly instead of panicking.
type Decoder struct {
	data []byte
	off  int
	err  error
}

// NewDecoder returns a Decoder reading from data. The decoder does not copy
// data; the caller must not mutate it while decoding.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Err returns the first error encountered by the decoder, if any.
func (d *Decoder) Err() error { return d.err }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.off }

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.Remaining() < n {
		d.err = fmt.Errorf("serialization: need %d bytes, have %d", n, d.Remaining())
		return nil
	}
	p := d.data[d.off : d.off+n]
	d.off += n
	return p
}

// ReadUint8 reads a single byte.
func (d *Decoder) ReadUint8() uint8 {
	p := d.take(Uint8Size)
	if p == nil {
		return 0
	}
	return p[0]
}

// ReadUint16 reads 2 big-endian bytes.
func (d *Decoder) ReadUint16() uint16 {
	p := d.take(Uint16Size)
	if p == nil {
		return 0
	}
	return binary.BigEndian.Uint16(p)
}

// ReadUint32 reads 4 big-endian bytes.
func (d *Decoder) ReadUint32() uint32 {
	p := d.take(Uint32Size)
	if p == nil {
		return 0
	}
	return binary.BigEndian.Uint32(p)
}

// ReadInt32 reads 4 big-endian bytes as a signed value.
func (d *Decoder) ReadInt32() int32 {
	return int32(d.ReadUint32())
}

// ReadBool reads a single byte; any non-zero value is true.
func (d *Decoder) ReadBool() bool {
	return d.ReadUint8() != 0
}

// ReadString reads a u32 length prefix followed by that many bytes.
func (d *Decoder) ReadString() string {
	n := d.ReadUint32()
	p := d.take(int(n))
	if p == nil {
		return ""
	}
	return string(p)
}

// ReadBytes reads a u32 length prefix followed by that many bytes. The
// returned slice is a copy.
func (d *Decoder) ReadBytes() []byte {
	n := d.ReadUint32()
	p := d.take(int(n))
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

// ReadRaw reads n bytes with no length prefix. The returned slice is a copy.
func (d *Decoder) ReadRaw(n int) []byte {
	p := d.take(n)
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

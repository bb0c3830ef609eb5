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

package serialization

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteUint8(0xab)
	enc.WriteUint16(0x1234)
	enc.WriteUint32(0xdeadbeef)
	enc.WriteInt32(-42)
	enc.WriteBool(true)
	enc.WriteBool(false)
	enc.WriteString("hello")
	enc.WriteString("")
	enc.WriteBytes([]byte{1, 2, 3})
	enc.WriteRaw([]byte{9, 9})
	if err := enc.Err(); err != nil {
		t.Fatalf("Encoder.Err() = %v, want nil", err)
	}

	dec := NewDecoder(buf.Bytes())
	if got := dec.ReadUint8(); got != 0xab {
		t.Errorf("ReadUint8() = %#x, want 0xab", got)
	}
	if got := dec.ReadUint16(); got != 0x1234 {
		t.Errorf("ReadUint16() = %#x, want 0x1234", got)
	}
	if got := dec.ReadUint32(); got != 0xdeadbeef {
		t.Errorf("ReadUint32() = %#x, want 0xdeadbeef", got)
	}
	if got := dec.ReadInt32(); got != -42 {
		t.Errorf("ReadInt32() = %d, want -42", got)
	}
	if got := dec.ReadBool(); !got {
		t.Errorf("ReadBool() = false, want true")
	}
	if got := dec.ReadBool(); got {
		t.Errorf("ReadBool() = true, want false")
	}
	if got := dec.ReadString(); got != "hello" {
		t.Errorf("ReadString() = %q, want %q", got, "hello")
	}
	if got := dec.ReadString(); got != "" {
		t.Errorf("ReadString() = %q, want empty", got)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, dec.ReadBytes()); diff != "" {
		t.Errorf("ReadBytes() diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{9, 9}, dec.ReadRaw(2)); diff != "" {
		t.Errorf("ReadRaw() diff (-want +got):\n%s", diff)
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("Decoder.Err() = %v, want nil", err)
	}
	if got := dec.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestBigEndianLayout(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteUint16(0x0102)
	enc.WriteUint32(0x03040506)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("encoded bytes diff (-want +got):\n%s", diff)
	}
}

func TestDecoderTruncated(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
		read func(*Decoder)
	}{
		{"uint32 short", []byte{1, 2}, func(d *Decoder) { d.ReadUint32() }},
		{"string length past end", []byte{0, 0, 0, 9, 'a'}, func(d *Decoder) { d.ReadString() }},
		{"bytes length past end", []byte{0xff, 0xff, 0xff, 0xff}, func(d *Decoder) { d.ReadBytes() }},
		{"raw past end", []byte{1}, func(d *Decoder) { d.ReadRaw(2) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder(tc.data)
			tc.read(d)
			if d.Err() == nil {
				t.Errorf("Decoder.Err() = nil, want error")
			}
		})
	}
}

func TestDecoderErrorLatches(t *testing.T) {
	d := NewDecoder([]byte{1})
	d.ReadUint32()
	first := d.Err()
	if first == nil {
		t.Fatal("Decoder.Err() = nil, want error")
	}
	d.ReadUint8() // would succeed on a fresh decoder; must stay failed
	if d.Err() != first {
		t.Errorf("Decoder.Err() changed after latched error")
	}
}

func TestStringSize(t *testing.T) {
	if got := StringSize("abc"); got != 7 {
		t.Errorf("StringSize(\"abc\") = %d, want 7", got)
	}
	if got := BytesSize(nil); got != 4 {
		t.Errorf("BytesSize(nil) = %d, want 4", got)
	}
}

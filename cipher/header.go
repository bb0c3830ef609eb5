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

package cipher

import (
	"encoding/binary"
	"fmt"

	"github.com/keyring-crypto/keyring-go/keys"
)

// Header sizes in bytes.
const (
	// CiphertextHeaderSize is the inner length header:
	// ivLength u16 | ciphertextLength u32 | macLength u16.
	CiphertextHeaderSize = 8
	// FrameHeaderSize is the outer envelope: keyId 32 | payloadLength u32.
	FrameHeaderSize = keys.IDSize + 4
)

// Worst-case field sizes bounding a ciphertext record.
const (
	maxIVLength    = 16
	maxBlockLength = 32
	maxMACLength   = 64
)

// MaxPlaintextLength is the largest plaintext a single record can carry,
// assuming the 32-bit ciphertext length field. Do not widen the field
// without a format-version bump.
const MaxPlaintextLength = 1<<32 - FrameHeaderSize - CiphertextHeaderSize -
	maxIVLength - maxBlockLength - maxMACLength

// CiphertextHeader is the inner header describing one encrypted record.
type CiphertextHeader struct {
	IVLength         uint16
	CiphertextLength uint32
	MACLength        uint16
}

func (h CiphertextHeader) marshal(out []byte) {
	binary.BigEndian.PutUint16(out[0:], h.IVLength)
	binary.BigEndian.PutUint32(out[2:], h.CiphertextLength)
	binary.BigEndian.PutUint16(out[6:], h.MACLength)
}

func parseCiphertextHeader(in []byte) (CiphertextHeader, error) {
	if len(in) < CiphertextHeaderSize {
		return CiphertextHeader{}, fmt.Errorf("%w: record shorter than header", ErrInvalidCiphertext)
	}
	return CiphertextHeader{
		IVLength:         binary.BigEndian.Uint16(in[0:]),
		CiphertextLength: binary.BigEndian.Uint32(in[2:]),
		MACLength:        binary.BigEndian.Uint16(in[6:]),
	}, nil
}

// FrameHeader is the outer envelope naming the key a record was encrypted
// under.
type FrameHeader struct {
	KeyID         keys.ID
	PayloadLength uint32
}

func (h FrameHeader) marshal(out []byte) {
	copy(out, h.KeyID[:])
	binary.BigEndian.PutUint32(out[keys.IDSize:], h.PayloadLength)
}

// ParseFrameHeader reads the outer envelope of a framed record. Callers use
// the key id to locate the decryption key before handing the payload to its
// Cipher.
func ParseFrameHeader(in []byte) (FrameHeader, error) {
	if len(in) < FrameHeaderSize {
		return FrameHeader{}, fmt.Errorf("%w: frame shorter than header", ErrInvalidCiphertext)
	}
	var h FrameHeader
	copy(h.KeyID[:], in[:keys.IDSize])
	h.PayloadLength = binary.BigEndian.Uint32(in[keys.IDSize:])
	return h, nil
}

// Copyright 2025 Google LLC
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

package mac

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// AES-CMAC per RFC 4493. The tag over a message M of n blocks is
// E(X_{n-1} ^ M_n'), where X chains E(X ^ M_i) over the leading blocks and
// M_n' is the final block masked with subkey K1 (complete) or padded and
// masked with K2 (partial or empty).

// cmacTagSize is the CMAC output size, one AES block.
const cmacTagSize = aes.BlockSize

type cmacState struct {
	block  cipher.Block
	k1, k2 [aes.BlockSize]byte
}

// shiftLeft returns in shifted left one bit and the bit shifted out.
func shiftLeft(in [aes.BlockSize]byte) (out [aes.BlockSize]byte, carry byte) {
	for i := aes.BlockSize - 1; i >= 0; i-- {
		out[i] = in[i]<<1 | carry
		carry = in[i] >> 7
	}
	return out, carry
}

// nextSubkey is one doubling step in GF(2^128): shift left and fold the
// carry back with the field constant, without branching on key material.
func nextSubkey(in [aes.BlockSize]byte) [aes.BlockSize]byte {
	out, carry := shiftLeft(in)
	out[aes.BlockSize-1] ^= byte(subtle.ConstantTimeSelect(int(carry), 0x87, 0x00))
	return out
}

func newCMACState(key []byte) (*cmacState, error) {
	// aes.NewCipher enforces the 16/24/32-byte key sizes.
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mac: %v", err)
	}
	s := &cmacState{block: block}
	var l [aes.BlockSize]byte
	s.block.Encrypt(l[:], l[:])
	s.k1 = nextSubkey(l)
	s.k2 = nextSubkey(s.k1)
	return s, nil
}

// finalBlock builds M_n': the last (possibly empty) chunk of msg, padded
// with 10..0 when incomplete, masked with the matching subkey.
func (s *cmacState) finalBlock(msg []byte, start int) [aes.BlockSize]byte {
	var final [aes.BlockSize]byte
	n := copy(final[:], msg[start:])
	if n == aes.BlockSize {
		subtle.XORBytes(final[:], final[:], s.k1[:])
	} else {
		final[n] = 0x80
		subtle.XORBytes(final[:], final[:], s.k2[:])
	}
	return final
}

// tag computes the CMAC of msg. The work done depends only on len(msg).
func (s *cmacState) tag(msg []byte) []byte {
	// Index of the final block; every message has one, even the empty
	// message, and a complete trailing block is final rather than chained.
	lastStart := 0
	if len(msg) > 0 {
		lastStart = (len(msg) - 1) / aes.BlockSize * aes.BlockSize
	}

	x := make([]byte, aes.BlockSize)
	for off := 0; off < lastStart; off += aes.BlockSize {
		subtle.XORBytes(x, x, msg[off:off+aes.BlockSize])
		s.block.Encrypt(x, x)
	}
	final := s.finalBlock(msg, lastStart)
	subtle.XORBytes(x, x, final[:])
	s.block.Encrypt(x, x)
	return x
}

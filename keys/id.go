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

package keys

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/keyring-crypto/keyring-go/internal/random"
)

// IDSize is the size of an ID in bytes.
const IDSize = 32

// ID is an opaque, stable key identifier, compared bitwise. IDs are produced
// by hashing and are never reissued for the same logical key.
type ID [IDSize]byte

// NewID derives an ID by hashing buf with SHA2-256.
func NewID(buf []byte) ID {
	return ID(sha256.Sum256(buf))
}

// RandomID derives an ID from a fresh 32-byte random draw.
func RandomID() ID {
	return NewID(random.GetRandomBytes(IDSize))
}

// ParseID decodes the hex form produced by String.
func ParseID(s string) (ID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("keys: invalid id %q: %v", s, err)
	}
	if len(raw) != IDSize {
		return ID{}, fmt.Errorf("keys: invalid id length %d, want %d", len(raw), IDSize)
	}
	var id ID
	copy(id[:], raw)
	return id, nil
}

// String returns the lowercase hex form of the id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders ids by lexicographic byte comparison, the order used for
// recursive key-ring iteration.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

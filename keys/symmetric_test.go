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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

func TestFromSecretAndSaltDeterministic(t *testing.T) {
	k1, err := FromSecretAndSalt([]byte("password"), []byte("salt"), 32, digest.SHA2256, 1000, "", "")
	if err != nil {
		t.Fatalf("FromSecretAndSalt() err = %v", err)
	}
	k2, err := FromSecretAndSalt([]byte("password"), []byte("salt"), 32, digest.SHA2256, 1000, "", "")
	if err != nil {
		t.Fatalf("FromSecretAndSalt() err = %v", err)
	}
	if !bytes.Equal(k1.Bytes(), k2.Bytes()) {
		t.Errorf("FromSecretAndSalt() not deterministic:\n%x\n%x", k1.Bytes(), k2.Bytes())
	}
}

// TestFromSecretAndSaltAlgorithm pins the stretch construction: block_0 =
// md^count(secret || salt), block_i = md^count(block_{i-1} || secret || salt),
// where each extra iteration re-digests the block alone.
func TestFromSecretAndSaltAlgorithm(t *testing.T) {
	secret := []byte("password")
	salt := []byte("salt")
	const count = 1000

	block := sha256.Sum256(append(append([]byte{}, secret...), salt...))
	for i := 1; i < count; i++ {
		block = sha256.Sum256(block[:])
	}
	want := block[:]

	got, err := FromSecretAndSalt(secret, salt, 32, digest.SHA2256, count, "", "")
	if err != nil {
		t.Fatalf("FromSecretAndSalt() err = %v", err)
	}
	if diff := cmp.Diff(want, got.Bytes()); diff != "" {
		t.Errorf("FromSecretAndSalt() diff (-want +got):\n%s", diff)
	}
}

func TestFromSecretAndSaltMultiBlock(t *testing.T) {
	// 80 bytes needs three SHA2-256 blocks; the third is truncated.
	k, err := FromSecretAndSalt([]byte("s"), nil, 80, digest.SHA2256, 1, "", "")
	if err != nil {
		t.Fatalf("FromSecretAndSalt() err = %v", err)
	}
	if k.Length() != 80 {
		t.Fatalf("Length() = %d, want 80", k.Length())
	}

	b0 := sha256.Sum256([]byte("s"))
	b1 := sha256.Sum256(append(b0[:], 's'))
	b2 := sha256.Sum256(append(b1[:], 's'))
	want := append(append(append([]byte{}, b0[:]...), b1[:]...), b2[:16]...)
	if diff := cmp.Diff(want, k.Bytes()); diff != "" {
		t.Errorf("multi-block stretch diff (-want +got):\n%s", diff)
	}
}

func TestFromSecretAndSaltRejectsBadArguments(t *testing.T) {
	for _, tc := range []struct {
		name      string
		secret    []byte
		keyLength int
		count     int
		md        string
	}{
		{"empty secret", nil, 32, 1, digest.SHA2256},
		{"zero key length", []byte("s"), 0, 1, digest.SHA2256},
		{"zero count", []byte("s"), 32, 0, digest.SHA2256},
		{"unknown digest", []byte("s"), 32, 1, "MD5"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromSecretAndSalt(tc.secret, nil, tc.keyLength, tc.md, tc.count, "", ""); err == nil {
				t.Errorf("FromSecretAndSalt() err = nil, want error")
			}
		})
	}
}

func TestFromRandomLength(t *testing.T) {
	k, err := FromRandom(0, nil, 32, digest.SHA2256, 1, "session", "")
	if err != nil {
		t.Fatalf("FromRandom() err = %v", err)
	}
	if k.Length() != 32 {
		t.Errorf("Length() = %d, want 32", k.Length())
	}
	if k.Name() != "session" {
		t.Errorf("Name() = %q, want %q", k.Name(), "session")
	}
}

func TestFromRandomKeysDiffer(t *testing.T) {
	k1, err := FromRandom(0, nil, 32, digest.SHA2256, 1, "", "")
	if err != nil {
		t.Fatalf("FromRandom() err = %v", err)
	}
	k2, err := FromRandom(0, nil, 32, digest.SHA2256, 1, "", "")
	if err != nil {
		t.Fatalf("FromRandom() err = %v", err)
	}
	if bytes.Equal(k1.Bytes(), k2.Bytes()) {
		t.Errorf("two random keys are identical")
	}
	if k1.ID() == k2.ID() {
		t.Errorf("two random keys share an id")
	}
}

func TestFromPBKDF2(t *testing.T) {
	k1, err := FromPBKDF2([]byte("password"), []byte("salt"), 32, digest.SHA2256, 4096, "", "")
	if err != nil {
		t.Fatalf("FromPBKDF2() err = %v", err)
	}
	k2, err := FromPBKDF2([]byte("password"), []byte("salt"), 32, digest.SHA2256, 4096, "", "")
	if err != nil {
		t.Fatalf("FromPBKDF2() err = %v", err)
	}
	if !bytes.Equal(k1.Bytes(), k2.Bytes()) {
		t.Errorf("FromPBKDF2() not deterministic")
	}
}

func TestFromArgon2id(t *testing.T) {
	k, err := FromArgon2id([]byte("password"), []byte("somesalt"), 32, 1, 64*1024, 4, "", "")
	if err != nil {
		t.Fatalf("FromArgon2id() err = %v", err)
	}
	if k.Length() != 32 {
		t.Errorf("Length() = %d, want 32", k.Length())
	}
}

func TestSymmetricSerializeRoundTrip(t *testing.T) {
	key, err := NewSymmetric([]byte{1, 2, 3, 4, 5, 6, 7, 8}, "master", "ring master key")
	if err != nil {
		t.Fatalf("NewSymmetric() err = %v", err)
	}

	var buf bytes.Buffer
	enc := serialization.NewEncoder(&buf)
	key.Serialize(enc)
	if err := enc.Err(); err != nil {
		t.Fatalf("Serialize() err = %v", err)
	}
	if got := buf.Len(); got != key.SerializedSize() {
		t.Errorf("encoded %d bytes, SerializedSize() = %d", got, key.SerializedSize())
	}

	out, err := Deserialize(serialization.NewDecoder(buf.Bytes()))
	if err != nil {
		t.Fatalf("Deserialize() err = %v", err)
	}
	got, ok := out.(*SymmetricKey)
	if !ok {
		t.Fatalf("Deserialize() = %T, want *SymmetricKey", out)
	}
	if got.ID() != key.ID() || got.Name() != key.Name() || got.Description() != key.Description() {
		t.Errorf("metadata mismatch after round trip")
	}
	if !got.Equal(key) {
		t.Errorf("key material mismatch after round trip")
	}

	// Re-serialization is byte-identical.
	var buf2 bytes.Buffer
	enc2 := serialization.NewEncoder(&buf2)
	got.Serialize(enc2)
	if diff := cmp.Diff(buf.Bytes(), buf2.Bytes()); diff != "" {
		t.Errorf("re-serialization diff (-first +second):\n%s", diff)
	}
}

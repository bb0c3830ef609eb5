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
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/internal/random"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
	"github.com/keyring-crypto/keyring-go/securebuf"
)

// SymmetricKeyType is the type tag of serialized symmetric keys.
const SymmetricKeyType = "SymmetricKey"

const (
	// MinRandomLength is the smallest random draw FromRandom will stretch
	// into a key.
	MinRandomLength = 256
	// DefaultDigest is the digest used to stretch secrets when the caller
	// has no suite in hand.
	DefaultDigest = digest.SHA2256
	// DefaultCount is the default per-block iteration count for
	// FromSecretAndSalt.
	DefaultCount = 1
)

// SymmetricKey is a contiguous secret byte buffer of the length required by
// its consuming cipher. The material lives in protected memory and is wiped
// by Destroy.
type SymmetricKey struct {
	Metadata
	buf *securebuf.Buffer
}

func init() {
	register(SymmetricKeyType, readSymmetricKey)
}

// NewSymmetric builds a key from the given material under a fresh random
// id. The bytes are copied into protected memory; the caller keeps
// ownership of data.
func NewSymmetric(data []byte, name, description string) (*SymmetricKey, error) {
	return NewSymmetricWithID(RandomID(), data, name, description)
}

// NewSymmetricWithID is NewSymmetric under a caller-chosen id, for keys
// whose identity is derived from caller-supplied bytes. An id must never be
// reissued for a different logical key.
func NewSymmetricWithID(id ID, data []byte, name, description string) (*SymmetricKey, error) {
	if len(data) == 0 {
		return nil, errors.New("keys: empty symmetric key")
	}
	buf := securebuf.New(len(data))
	copy(buf.Bytes(), data)
	return &SymmetricKey{
		Metadata: NewMetadata(id, name, description),
		buf:      buf,
	}, nil
}

// FromSecretAndSalt stretches secret (and optional salt) into a key of
// keyLength bytes.
//
// The stretch is the iterated-digest construction: each output block is
// md(previousBlock || secret || salt), re-digested count-1 further times,
// and blocks are concatenated until keyLength bytes are produced. The output
// is deterministic across runs and processes.
func FromSecretAndSalt(secret, salt []byte, keyLength int, mdName string, count int, name, description string) (*SymmetricKey, error) {
	if len(secret) == 0 {
		return nil, errors.New("keys: empty secret")
	}
	if keyLength <= 0 {
		return nil, fmt.Errorf("keys: invalid key length %d", keyLength)
	}
	if count <= 0 {
		return nil, fmt.Errorf("keys: invalid iteration count %d", count)
	}
	md, err := digest.New(mdName)
	if err != nil {
		return nil, err
	}
	buf := securebuf.New(keyLength)
	out := buf.Bytes()
	written := 0
	var block []byte
	for written < keyLength {
		md.Init()
		if len(block) > 0 {
			md.Update(block)
		}
		md.Update(secret)
		if len(salt) > 0 {
			md.Update(salt)
		}
		securebuf.Wipe(block)
		block = md.Final()
		for i := 1; i < count; i++ {
			md.Init()
			md.Update(block)
			securebuf.Wipe(block)
			block = md.Final()
		}
		n := copy(out[written:], block)
		written += n
	}
	securebuf.Wipe(block)
	return &SymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		buf:      buf,
	}, nil
}

// FromRandom draws randomLength random bytes (raised to MinRandomLength if
// smaller) and stretches them with FromSecretAndSalt.
func FromRandom(randomLength int, salt []byte, keyLength int, mdName string, count int, name, description string) (*SymmetricKey, error) {
	if randomLength < MinRandomLength {
		randomLength = MinRandomLength
	}
	seed := random.GetRandomBytes(uint32(randomLength))
	defer securebuf.Wipe(seed)
	return FromSecretAndSalt(seed, salt, keyLength, mdName, count, name, description)
}

// FromPBKDF2 derives a key from a password with PBKDF2-HMAC over the named
// digest.
func FromPBKDF2(password, salt []byte, keyLength int, mdName string, count int, name, description string) (*SymmetricKey, error) {
	if len(password) == 0 {
		return nil, errors.New("keys: empty password")
	}
	if keyLength <= 0 {
		return nil, fmt.Errorf("keys: invalid key length %d", keyLength)
	}
	if count <= 0 {
		return nil, fmt.Errorf("keys: invalid iteration count %d", count)
	}
	hasher, err := digest.Hasher(mdName)
	if err != nil {
		return nil, err
	}
	derived := pbkdf2.Key(password, salt, count, keyLength, hasher)
	defer securebuf.Wipe(derived)
	return NewSymmetric(derived, name, description)
}

// FromArgon2id derives a key from a password with Argon2id.
func FromArgon2id(password, salt []byte, keyLength int, time, memory uint32, threads uint8, name, description string) (*SymmetricKey, error) {
	if len(password) == 0 {
		return nil, errors.New("keys: empty password")
	}
	if keyLength <= 0 {
		return nil, fmt.Errorf("keys: invalid key length %d", keyLength)
	}
	derived := argon2.IDKey(password, salt, time, memory, threads, uint32(keyLength))
	defer securebuf.Wipe(derived)
	return NewSymmetric(derived, name, description)
}

// Bytes returns the key material. The slice aliases protected memory and is
// valid until Destroy.
func (k *SymmetricKey) Bytes() []byte { return k.buf.Bytes() }

// Length returns the key length in bytes.
func (k *SymmetricKey) Length() int { return k.buf.Len() }

// Equal compares key material in constant time. Metadata is ignored.
func (k *SymmetricKey) Equal(other *SymmetricKey) bool {
	if other == nil || k.Length() != other.Length() {
		return false
	}
	return subtle.ConstantTimeCompare(k.Bytes(), other.Bytes()) == 1
}

// Destroy wipes the key material. The key is unusable afterwards.
func (k *SymmetricKey) Destroy() { k.buf.Destroy() }

// TypeTag implements Serializable.
func (k *SymmetricKey) TypeTag() string { return SymmetricKeyType }

// SerializedSize implements Serializable.
func (k *SymmetricKey) SerializedSize() int {
	return k.HeaderSize(SymmetricKeyType) + serialization.Uint32Size + k.Length()
}

// Serialize implements Serializable.
func (k *SymmetricKey) Serialize(enc *serialization.Encoder) {
	k.WriteHeader(enc, SymmetricKeyType)
	enc.WriteUint32(uint32(k.Length()))
	enc.WriteRaw(k.Bytes())
}

func readSymmetricKey(m Metadata, dec *serialization.Decoder) (Serializable, error) {
	length := dec.ReadUint32()
	raw := dec.ReadRaw(int(length))
	if err := dec.Err(); err != nil {
		return nil, err
	}
	defer securebuf.Wipe(raw)
	key, err := NewSymmetricWithID(m.id, raw, m.name, m.description)
	if err != nil {
		return nil, err
	}
	key.Metadata = m
	return key, nil
}

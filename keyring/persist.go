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

package keyring

import (
	"fmt"
	"os"

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/securebuf"
	"github.com/keyring-crypto/keyring-go/suite"
)

// The persisted layout of a ring is its common header, the cipher suite,
// then each category as a u32 count followed by that many serialized
// entities, in this order: key-exchange params, key-exchange keys,
// authenticator params, authenticator keys, the master cipher key, active
// cipher keys, retired cipher keys, MAC keys, subrings. Entities within a
// category are written in ascending id order, so re-serialization of a
// loaded ring is byte-identical. The lazy object caches are never
// persisted.

// SerializedSize implements keys.Serializable.
func (r *Ring) SerializedSize() int {
	size := r.HeaderSize(KeyRingType) + r.cipherSuite.SerializedSize()
	size += mapSize(r.keyExchangeParams)
	size += mapSize(r.keyExchangeKeys)
	size += mapSize(r.authenticatorParams)
	size += mapSize(r.authenticatorKeys)
	size += r.masterCipherKey.SerializedSize()
	size += mapSize(r.activeCipherKeys)
	size += mapSize(r.retiredCipherKeys)
	size += mapSize(r.macKeys)
	size += mapSize(r.subrings)
	return size
}

func mapSize[V keys.Serializable](m map[keys.ID]V) int {
	size := serialization.Uint32Size
	for _, v := range m {
		size += v.SerializedSize()
	}
	return size
}

func writeMap[V keys.Serializable](enc *serialization.Encoder, m map[keys.ID]V) {
	enc.WriteUint32(uint32(len(m)))
	for _, id := range sortedIDs(m) {
		m[id].Serialize(enc)
	}
}

// TypeTag implements keys.Serializable.
func (r *Ring) TypeTag() string { return KeyRingType }

// Serialize implements keys.Serializable.
func (r *Ring) Serialize(enc *serialization.Encoder) {
	r.WriteHeader(enc, KeyRingType)
	r.cipherSuite.Serialize(enc)
	writeMap(enc, r.keyExchangeParams)
	writeMap(enc, r.keyExchangeKeys)
	writeMap(enc, r.authenticatorParams)
	writeMap(enc, r.authenticatorKeys)
	r.masterCipherKey.Serialize(enc)
	writeMap(enc, r.activeCipherKeys)
	writeMap(enc, r.retiredCipherKeys)
	writeMap(enc, r.macKeys)
	writeMap(enc, r.subrings)
}

func readEntry[T keys.Serializable](dec *serialization.Decoder) (T, error) {
	var zero T
	s, err := keys.Deserialize(dec)
	if err != nil {
		return zero, err
	}
	v, ok := s.(T)
	if !ok {
		return zero, fmt.Errorf("keyring: unexpected entity %T", s)
	}
	return v, nil
}

func readInto[T keys.Serializable](dec *serialization.Decoder, insert func(T) error) error {
	count := dec.ReadUint32()
	if err := dec.Err(); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		v, err := readEntry[T](dec)
		if err != nil {
			return err
		}
		if err := insert(v); err != nil {
			return err
		}
	}
	return nil
}

// readRing reads a serialized ring, type tag included. Every key and
// parameter set is re-verified against the node's suite on the way in.
func readRing(dec *serialization.Decoder) (*Ring, error) {
	typeTag := dec.ReadString()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if typeTag != KeyRingType {
		return nil, fmt.Errorf("keyring: unexpected type %q", typeTag)
	}
	m := keys.ReadMetadata(dec)
	if err := dec.Err(); err != nil {
		return nil, err
	}
	cipherSuite, err := suite.Read(dec)
	if err != nil {
		return nil, err
	}
	r := newEmpty(m, cipherSuite)

	if err := readInto(dec, r.AddKeyExchangeParams); err != nil {
		return nil, err
	}
	if err := readInto(dec, r.AddKeyExchangeKey); err != nil {
		return nil, err
	}
	if err := readInto(dec, r.AddAuthenticatorParams); err != nil {
		return nil, err
	}
	if err := readInto(dec, r.AddAuthenticatorKey); err != nil {
		return nil, err
	}
	master, err := readEntry[*keys.SymmetricKey](dec)
	if err != nil {
		return nil, err
	}
	if err := r.SetMasterCipherKey(master); err != nil {
		return nil, err
	}
	if err := readInto(dec, r.AddCipherActiveKey); err != nil {
		return nil, err
	}
	if err := readInto(dec, func(k *keys.SymmetricKey) error {
		if !r.cipherSuite.VerifyCipherKey(k) {
			return fmt.Errorf("%w: retired cipher key", suite.ErrKeyTypeMismatch)
		}
		if _, ok := r.retiredCipherKeys[k.ID()]; ok {
			return fmt.Errorf("%w: cipher key %s", ErrDuplicateID, k.ID())
		}
		r.retiredCipherKeys[k.ID()] = k
		return nil
	}); err != nil {
		return nil, err
	}
	if err := readInto(dec, r.AddMACKey); err != nil {
		return nil, err
	}

	subringCount := dec.ReadUint32()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	for i := uint32(0); i < subringCount; i++ {
		sub, err := readRing(dec)
		if err != nil {
			return nil, err
		}
		if err := r.AddSubring(sub); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// sliceWriter writes into a fixed, pre-sized buffer so serialized secret
// material never leaves protected memory.
type sliceWriter struct {
	buf []byte
	off int
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.off {
		return 0, fmt.Errorf("keyring: serialization overflows the %d-byte buffer", len(w.buf))
	}
	n := copy(w.buf[w.off:], p)
	w.off += n
	return n, nil
}

// Save serializes the ring into a secure buffer, optionally encrypts it
// with c (a cipher built from a password-derived or master key, with
// associatedData authenticated), and truncate-writes the result to path.
func (r *Ring) Save(path string, c *cipher.Cipher, associatedData []byte) error {
	size := r.SerializedSize()
	buf := securebuf.New(size)
	defer buf.Destroy()
	w := &sliceWriter{buf: buf.Bytes()}
	enc := serialization.NewEncoder(w)
	r.Serialize(enc)
	if err := enc.Err(); err != nil {
		return err
	}
	if w.off != size {
		return fmt.Errorf("%w: serialized %d bytes, sized %d", ErrInternal, w.off, size)
	}

	out := buf.Bytes()
	if c != nil {
		encrypted, err := c.Encrypt(out, associatedData)
		if err != nil {
			return err
		}
		out = encrypted
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("keyring: %w", err)
	}
	return nil
}

// Load reads a ring saved by Save. When c is non-nil the file is decrypted
// first; the decrypted image lives in a secure buffer for the duration of
// deserialization.
func Load(path string, c *cipher.Cipher, associatedData []byte) (*Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: %w", err)
	}
	if c == nil {
		return readRing(serialization.NewDecoder(data))
	}
	plain, err := c.DecryptSecure(data, associatedData)
	if err != nil {
		return nil, err
	}
	defer plain.Destroy()
	return readRing(serialization.NewDecoder(plain.Bytes()))
}

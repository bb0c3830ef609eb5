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

// Package digest provides a streaming message-digest adapter over the hash
// algorithms this library understands.
//
// SHA2-256, SHA2-384 and SHA2-512 are legal cipher-suite tokens. The BLAKE2b
// digests are available to direct callers of this package only.
package digest

import (
	"fmt"
	"hash"

	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
)

// Digest algorithm names.
const (
	SHA2256    = "SHA2-256"
	SHA2384    = "SHA2-384"
	SHA2512    = "SHA2-512"
	BLAKE2b256 = "BLAKE2b-256"
	BLAKE2b512 = "BLAKE2b-512"
)

// Hasher returns a constructor for the named hash algorithm.
func Hasher(name string) (func() hash.Hash, error) {
	switch name {
	case SHA2256:
		return sha256.New, nil
	case SHA2384:
		return sha512.New384, nil
	case SHA2512:
		return sha512.New, nil
	case BLAKE2b256:
		return func() hash.Hash {
			h, _ := blake2b.New256(nil)
			return h
		}, nil
	case BLAKE2b512:
		return func() hash.Hash {
			h, _ := blake2b.New512(nil)
			return h
		}, nil
	}
	return nil, fmt.Errorf("digest: unknown algorithm %q", name)
}

// Size returns the output size in bytes of the named hash algorithm.
func Size(name string) (int, error) {
	switch name {
	case SHA2256, BLAKE2b256:
		return 32, nil
	case SHA2384:
		return 48, nil
	case SHA2512, BLAKE2b512:
		return 64, nil
	}
	return 0, fmt.Errorf("digest: unknown algorithm %q", name)
}

// MessageDigest is a streaming hash. Init resets it, Update feeds it, Final
// returns the sum and resets it, so the same instance is reusable. It is not
// safe for concurrent use.
type MessageDigest struct {
	name      string
	h         hash.Hash
	byteCount uint64
}

// New returns a MessageDigest for the named algorithm.
func New(name string) (*MessageDigest, error) {
	hasher, err := Hasher(name)
	if err != nil {
		return nil, err
	}
	return &MessageDigest{name: name, h: hasher()}, nil
}

// Name returns the algorithm name.
func (d *MessageDigest) Name() string { return d.name }

// DigestSize returns the output size in bytes.
func (d *MessageDigest) DigestSize() int { return d.h.Size() }

// ByteCount returns the number of bytes hashed since the last Init or Final.
func (d *MessageDigest) ByteCount() uint64 { return d.byteCount }

// Init resets the digest to its initial state.
func (d *MessageDigest) Init() {
	d.h.Reset()
	d.byteCount = 0
}

// Update feeds p into the digest.
func (d *MessageDigest) Update(p []byte) {
	d.h.Write(p)
	d.byteCount += uint64(len(p))
}

// Final returns the digest of everything fed since the last Init and resets
// the state for reuse.
func (d *MessageDigest) Final() []byte {
	sum := d.h.Sum(nil)
	d.Init()
	return sum
}

// Sum computes the digest of data in one shot, leaving streaming state
// untouched on a fresh instance.
func Sum(name string, data []byte) ([]byte, error) {
	d, err := New(name)
	if err != nil {
		return nil, err
	}
	d.Update(data)
	return d.Final(), nil
}

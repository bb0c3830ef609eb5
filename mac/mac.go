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

// Package mac provides message authentication over HMAC and AES-CMAC keys.
package mac

import (
	"crypto/hmac"
	"crypto/subtle"
	"fmt"
	"hash"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/primitive"
)

// MAC signs and verifies buffers under an HMAC or CMAC key. State is reset
// between calls, so one instance is reusable; it is not safe for concurrent
// use.
type MAC struct {
	h  hash.Hash
	cm *cmacState
}

var _ primitive.MAC = (*MAC)(nil)

// New builds a MAC from an HMAC or CMAC key. The digest name keys the HMAC
// construction and is ignored for CMAC.
func New(key *keys.AsymmetricKey, mdName string) (*MAC, error) {
	secret, err := key.Secret()
	if err != nil {
		return nil, fmt.Errorf("mac: %v", err)
	}
	switch key.KeyType() {
	case keys.KeyTypeHMAC:
		return NewHMAC(secret, mdName)
	case keys.KeyTypeCMAC:
		return NewCMAC(secret)
	}
	return nil, fmt.Errorf("mac: unsupported key type %s", key.KeyType())
}

// NewHMAC builds a MAC over raw HMAC secret bytes.
func NewHMAC(secret []byte, mdName string) (*MAC, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("mac: empty HMAC secret")
	}
	hasher, err := digest.Hasher(mdName)
	if err != nil {
		return nil, err
	}
	return &MAC{h: hmac.New(hasher, secret)}, nil
}

// NewCMAC builds a MAC over a raw AES key.
func NewCMAC(secret []byte) (*MAC, error) {
	cm, err := newCMACState(secret)
	if err != nil {
		return nil, err
	}
	return &MAC{cm: cm}, nil
}

// MACLength returns the tag size in bytes.
func (m *MAC) MACLength() int {
	if m.cm != nil {
		return cmacTagSize
	}
	return m.h.Size()
}

// SignBuffer computes the authentication tag of data.
func (m *MAC) SignBuffer(data []byte) ([]byte, error) {
	if m.cm != nil {
		return m.cm.tag(data), nil
	}
	m.h.Reset()
	m.h.Write(data)
	return m.h.Sum(nil), nil
}

// VerifyBufferSignature reports whether mac authenticates data, comparing in
// constant time.
func (m *MAC) VerifyBufferSignature(data, mac []byte) (bool, error) {
	computed, err := m.SignBuffer(data)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, mac) == 1, nil
}

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

// Package signature implements signing and verification for the EC, DSA,
// RSA and Ed25519 key families, and the sign-or-verify Authenticator facade
// over them.
//
// Signers and verifiers stream: Init resets the state, Update feeds data,
// Final produces or checks the signature and resets the state again, so a
// single instance is reusable. Ed25519 is a single-shot algorithm, so its
// streaming state is the accumulated message. None of the types are safe for
// concurrent use.
package signature

import (
	"bytes"
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/asn1"
	"fmt"
	"hash"
	"math/big"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/primitive"
)

// dsaSignature is the ASN.1 encoding of a DSA (r, s) pair.
type dsaSignature struct {
	R, S *big.Int
}

func cryptoHash(mdName string) (crypto.Hash, error) {
	switch mdName {
	case digest.SHA2256:
		return crypto.SHA256, nil
	case digest.SHA2384:
		return crypto.SHA384, nil
	case digest.SHA2512:
		return crypto.SHA512, nil
	case digest.BLAKE2b256:
		return crypto.BLAKE2b_256, nil
	case digest.BLAKE2b512:
		return crypto.BLAKE2b_512, nil
	}
	return 0, fmt.Errorf("signature: unknown digest %q", mdName)
}

// Signer produces signatures under a private key.
type Signer struct {
	key   keys.Key
	md    string
	chash crypto.Hash // RSA only
	h     hash.Hash   // nil for Ed25519
	buf   bytes.Buffer
}

var _ primitive.Signer = (*Signer)(nil)

// NewSigner builds a Signer for the given private key. mdName selects the
// digest for the EC, DSA and RSA families; Ed25519 signs the message
// directly and ignores it.
func NewSigner(key keys.Key, mdName string) (*Signer, error) {
	if !key.IsPrivate() {
		return nil, fmt.Errorf("signature: key %s is not private", key.ID())
	}
	s := &Signer{key: key, md: mdName}
	switch key.KeyType() {
	case keys.KeyTypeEC, keys.KeyTypeDSA, keys.KeyTypeRSA:
		hasher, err := digest.Hasher(mdName)
		if err != nil {
			return nil, err
		}
		s.h = hasher()
		if key.KeyType() == keys.KeyTypeRSA {
			ch, err := cryptoHash(mdName)
			if err != nil {
				return nil, err
			}
			s.chash = ch
		}
	case keys.KeyTypeEd25519:
	default:
		return nil, fmt.Errorf("signature: cannot sign with %s key", key.KeyType())
	}
	return s, nil
}

// Init resets the signer state.
func (s *Signer) Init() {
	if s.h != nil {
		s.h.Reset()
	}
	s.buf.Reset()
}

// Update feeds p into the signer.
func (s *Signer) Update(p []byte) {
	if s.h != nil {
		s.h.Write(p)
		return
	}
	s.buf.Write(p)
}

// Final produces the signature over everything fed since Init and resets
// the state.
func (s *Signer) Final() ([]byte, error) {
	defer s.Init()
	switch s.key.KeyType() {
	case keys.KeyTypeEC:
		priv := s.key.(*keys.AsymmetricKey).Material().(*ecdsa.PrivateKey)
		sig, err := ecdsa.SignASN1(rand.Reader, priv, s.h.Sum(nil))
		if err != nil {
			return nil, fmt.Errorf("signature: %v", err)
		}
		return sig, nil
	case keys.KeyTypeDSA:
		priv := s.key.(*keys.AsymmetricKey).Material().(*dsa.PrivateKey)
		r, sv, err := dsa.Sign(rand.Reader, priv, s.h.Sum(nil))
		if err != nil {
			return nil, fmt.Errorf("signature: %v", err)
		}
		sig, err := asn1.Marshal(dsaSignature{R: r, S: sv})
		if err != nil {
			return nil, fmt.Errorf("signature: %v", err)
		}
		return sig, nil
	case keys.KeyTypeRSA:
		priv := s.key.(*keys.AsymmetricKey).Material().(*rsa.PrivateKey)
		sig, err := rsa.SignPKCS1v15(rand.Reader, priv, s.chash, s.h.Sum(nil))
		if err != nil {
			return nil, fmt.Errorf("signature: %v", err)
		}
		return sig, nil
	case keys.KeyTypeEd25519:
		priv, err := s.key.(*keys.Ed25519AsymmetricKey).PrivateKey()
		if err != nil {
			return nil, err
		}
		return ed25519.Sign(priv, s.buf.Bytes()), nil
	}
	return nil, fmt.Errorf("signature: cannot sign with %s key", s.key.KeyType())
}

// Sign computes the signature of data in one shot.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	s.Init()
	s.Update(data)
	return s.Final()
}

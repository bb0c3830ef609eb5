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

package signature

import (
	"bytes"
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/asn1"
	"errors"
	"fmt"
	"hash"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/primitive"
)

// ErrInvalidSignature is returned by Verify when the signature does not
// match.
var ErrInvalidSignature = errors.New("signature: invalid signature")

// Verifier checks signatures under a public key. A private key is accepted
// and verification uses its public half.
type Verifier struct {
	key   keys.Key
	md    string
	chash crypto.Hash // RSA only
	h     hash.Hash   // nil for Ed25519
	buf   bytes.Buffer
}

var _ primitive.Verifier = (*Verifier)(nil)

// NewVerifier builds a Verifier for the given key.
func NewVerifier(key keys.Key, mdName string) (*Verifier, error) {
	pub, err := key.Public()
	if err != nil {
		return nil, err
	}
	v := &Verifier{key: pub, md: mdName}
	switch pub.KeyType() {
	case keys.KeyTypeEC, keys.KeyTypeDSA, keys.KeyTypeRSA:
		hasher, err := digest.Hasher(mdName)
		if err != nil {
			return nil, err
		}
		v.h = hasher()
		if pub.KeyType() == keys.KeyTypeRSA {
			ch, err := cryptoHash(mdName)
			if err != nil {
				return nil, err
			}
			v.chash = ch
		}
	case keys.KeyTypeEd25519:
	default:
		return nil, fmt.Errorf("signature: cannot verify with %s key", pub.KeyType())
	}
	return v, nil
}

// Init resets the verifier state.
func (v *Verifier) Init() {
	if v.h != nil {
		v.h.Reset()
	}
	v.buf.Reset()
}

// Update feeds p into the verifier.
func (v *Verifier) Update(p []byte) {
	if v.h != nil {
		v.h.Write(p)
		return
	}
	v.buf.Write(p)
}

// Final reports whether sig signs everything fed since Init, and resets the
// state.
func (v *Verifier) Final(sig []byte) (bool, error) {
	defer v.Init()
	switch v.key.KeyType() {
	case keys.KeyTypeEC:
		pub := v.key.(*keys.AsymmetricKey).Material().(*ecdsa.PublicKey)
		return ecdsa.VerifyASN1(pub, v.h.Sum(nil), sig), nil
	case keys.KeyTypeDSA:
		pub := v.key.(*keys.AsymmetricKey).Material().(*dsa.PublicKey)
		var parsed dsaSignature
		rest, err := asn1.Unmarshal(sig, &parsed)
		if err != nil || len(rest) != 0 {
			return false, nil
		}
		return dsa.Verify(pub, v.h.Sum(nil), parsed.R, parsed.S), nil
	case keys.KeyTypeRSA:
		pub := v.key.(*keys.AsymmetricKey).Material().(*rsa.PublicKey)
		return rsa.VerifyPKCS1v15(pub, v.chash, v.h.Sum(nil), sig) == nil, nil
	case keys.KeyTypeEd25519:
		pub := v.key.(*keys.Ed25519AsymmetricKey).PublicKey()
		return ed25519.Verify(pub, v.buf.Bytes(), sig), nil
	}
	return false, fmt.Errorf("signature: cannot verify with %s key", v.key.KeyType())
}

// Verify returns nil iff sig is a valid signature of data.
func (v *Verifier) Verify(sig, data []byte) error {
	v.Init()
	v.Update(data)
	ok, err := v.Final(sig)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

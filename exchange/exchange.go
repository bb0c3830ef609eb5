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

// Package exchange implements ephemeral Diffie-Hellman key agreement over
// classic (p, g) groups and over elliptic curves.
//
// A KeyExchange holds one party's key pair. Feeding it the peer's public key
// derives a shared secret, which is stretched into a SymmetricKey with the
// iterated-digest construction; the stretch salt binds both public values,
// initiator first, so both sides derive the same key.
package exchange

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/securebuf"
)

// KeyExchange encapsulates one party's private/public pair and the
// parameters of the derived key.
type KeyExchange struct {
	privateKey *keys.AsymmetricKey
	initiator  bool
	keyLength  int
	mdName     string
	count      int
}

// New wraps an existing DH or EC private key. initiator fixes the salt
// ordering; exactly one side of the exchange must set it.
func New(key *keys.AsymmetricKey, initiator bool, keyLength int, mdName string, count int) (*KeyExchange, error) {
	if !key.IsPrivate() {
		return nil, fmt.Errorf("exchange: key %s is not private", key.ID())
	}
	switch key.KeyType() {
	case keys.KeyTypeDH, keys.KeyTypeEC:
	default:
		return nil, fmt.Errorf("exchange: cannot agree with %s key", key.KeyType())
	}
	if keyLength <= 0 {
		return nil, fmt.Errorf("exchange: invalid key length %d", keyLength)
	}
	if count <= 0 {
		return nil, fmt.Errorf("exchange: invalid iteration count %d", count)
	}
	return &KeyExchange{
		privateKey: key,
		initiator:  initiator,
		keyLength:  keyLength,
		mdName:     mdName,
		count:      count,
	}, nil
}

// FromParams generates a fresh ephemeral key pair of the parameter family
// and wraps it.
func FromParams(params *keys.Params, initiator bool, keyLength int, mdName string, count int) (*KeyExchange, error) {
	key, err := params.CreateKey("", "")
	if err != nil {
		return nil, err
	}
	asym, ok := key.(*keys.AsymmetricKey)
	if !ok {
		return nil, fmt.Errorf("exchange: cannot agree with %s key", key.KeyType())
	}
	return New(asym, initiator, keyLength, mdName, count)
}

// PublicKey returns the local public key to send to the peer.
func (kx *KeyExchange) PublicKey() (*keys.AsymmetricKey, error) {
	pub, err := kx.privateKey.Public()
	if err != nil {
		return nil, err
	}
	return pub.(*keys.AsymmetricKey), nil
}

// publicBytes returns a fixed-width encoding of a public value for salt
// construction.
func publicBytes(key *keys.AsymmetricKey) ([]byte, error) {
	switch m := key.Material().(type) {
	case *keys.DHPublicKey:
		width := (m.Spec.P.BitLen() + 7) / 8
		return m.Y.FillBytes(make([]byte, width)), nil
	case *keys.DHPrivateKey:
		width := (m.Spec.P.BitLen() + 7) / 8
		return m.Y.FillBytes(make([]byte, width)), nil
	case *ecdsa.PublicKey:
		pub, err := m.ECDH()
		if err != nil {
			return nil, fmt.Errorf("exchange: %v", err)
		}
		return pub.Bytes(), nil
	case *ecdsa.PrivateKey:
		pub, err := m.PublicKey.ECDH()
		if err != nil {
			return nil, fmt.Errorf("exchange: %v", err)
		}
		return pub.Bytes(), nil
	}
	return nil, fmt.Errorf("exchange: no public form for %T", key.Material())
}

func (kx *KeyExchange) sharedSecret(peer *keys.AsymmetricKey) ([]byte, error) {
	if peer.KeyType() != kx.privateKey.KeyType() {
		return nil, fmt.Errorf("exchange: peer key is %s, want %s", peer.KeyType(), kx.privateKey.KeyType())
	}
	switch local := kx.privateKey.Material().(type) {
	case *keys.DHPrivateKey:
		var peerY *big.Int
		switch m := peer.Material().(type) {
		case *keys.DHPublicKey:
			if !m.Spec.Equal(local.Spec) {
				return nil, fmt.Errorf("exchange: peer key uses a different DH group")
			}
			peerY = m.Y
		case *keys.DHPrivateKey:
			if !m.Spec.Equal(local.Spec) {
				return nil, fmt.Errorf("exchange: peer key uses a different DH group")
			}
			peerY = m.Y
		default:
			return nil, fmt.Errorf("exchange: unexpected peer material %T", peer.Material())
		}
		s := new(big.Int).Exp(peerY, local.X, local.Spec.P)
		width := (local.Spec.P.BitLen() + 7) / 8
		return s.FillBytes(make([]byte, width)), nil
	case *ecdsa.PrivateKey:
		ecdhPriv, err := local.ECDH()
		if err != nil {
			return nil, fmt.Errorf("exchange: %v", err)
		}
		var peerPub *ecdsa.PublicKey
		switch m := peer.Material().(type) {
		case *ecdsa.PublicKey:
			peerPub = m
		case *ecdsa.PrivateKey:
			peerPub = &m.PublicKey
		default:
			return nil, fmt.Errorf("exchange: unexpected peer material %T", peer.Material())
		}
		ecdhPub, err := peerPub.ECDH()
		if err != nil {
			return nil, fmt.Errorf("exchange: %v", err)
		}
		secret, err := ecdhPriv.ECDH(ecdhPub)
		if err != nil {
			return nil, fmt.Errorf("exchange: %v", err)
		}
		return secret, nil
	}
	return nil, fmt.Errorf("exchange: cannot agree with %s key", kx.privateKey.KeyType())
}

// DeriveSharedSecret computes the shared secret with the peer's public key
// and stretches it into a SymmetricKey.
func (kx *KeyExchange) DeriveSharedSecret(peer *keys.AsymmetricKey, name, description string) (*keys.SymmetricKey, error) {
	secret, err := kx.sharedSecret(peer)
	if err != nil {
		return nil, err
	}
	defer securebuf.Wipe(secret)

	localPub, err := publicBytes(kx.privateKey)
	if err != nil {
		return nil, err
	}
	peerPub, err := publicBytes(peer)
	if err != nil {
		return nil, err
	}
	var salt []byte
	if kx.initiator {
		salt = append(localPub, peerPub...)
	} else {
		salt = append(peerPub, localPub...)
	}
	return keys.FromSecretAndSalt(secret, salt, kx.keyLength, kx.mdName, kx.count, name, description)
}

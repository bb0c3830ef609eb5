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
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

// Ed25519AsymmetricKeyType is the type tag of serialized Ed25519 keys.
const Ed25519AsymmetricKeyType = "Ed25519AsymmetricKey"

// Ed25519AsymmetricKey is the raw-bodied Ed25519 key variant: 64 bytes when
// private, 32 when public. The private encoding's trailing 32 bytes are the
// public key, so the public half shares storage with the private tail.
type Ed25519AsymmetricKey struct {
	Metadata
	private bool
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
}

func init() {
	register(Ed25519AsymmetricKeyType, readEd25519Key)
}

// GenerateEd25519 generates a fresh Ed25519 private key.
func GenerateEd25519(name, description string) (*Ed25519AsymmetricKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: %v", err)
	}
	return &Ed25519AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		private:  true,
		priv:     priv,
		pub:      pub,
	}, nil
}

// NewEd25519Private wraps an existing private key.
func NewEd25519Private(priv ed25519.PrivateKey, name, description string) (*Ed25519AsymmetricKey, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keys: invalid Ed25519 private key length %d", len(priv))
	}
	return &Ed25519AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		private:  true,
		priv:     priv,
		pub:      priv.Public().(ed25519.PublicKey),
	}, nil
}

// NewEd25519Public wraps an existing public key.
func NewEd25519Public(pub ed25519.PublicKey, name, description string) (*Ed25519AsymmetricKey, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("keys: invalid Ed25519 public key length %d", len(pub))
	}
	return &Ed25519AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		private:  false,
		pub:      pub,
	}, nil
}

// KeyType implements Key.
func (k *Ed25519AsymmetricKey) KeyType() KeyType { return KeyTypeEd25519 }

// IsPrivate implements Key.
func (k *Ed25519AsymmetricKey) IsPrivate() bool { return k.private }

// Public implements Key.
func (k *Ed25519AsymmetricKey) Public() (Key, error) {
	if !k.private {
		return k, nil
	}
	return &Ed25519AsymmetricKey{
		Metadata: k.Metadata,
		private:  false,
		pub:      k.pub,
	}, nil
}

// PrivateKey returns the private key material.
func (k *Ed25519AsymmetricKey) PrivateKey() (ed25519.PrivateKey, error) {
	if !k.private {
		return nil, fmt.Errorf("keys: Ed25519 key %s is public", k.ID())
	}
	return k.priv, nil
}

// PublicKey returns the public key material.
func (k *Ed25519AsymmetricKey) PublicKey() ed25519.PublicKey { return k.pub }

// TypeTag implements Serializable.
func (k *Ed25519AsymmetricKey) TypeTag() string { return Ed25519AsymmetricKeyType }

// SerializedSize implements Serializable.
func (k *Ed25519AsymmetricKey) SerializedSize() int {
	size := k.HeaderSize(Ed25519AsymmetricKeyType) + serialization.BoolSize
	if k.private {
		return size + ed25519.PrivateKeySize
	}
	return size + ed25519.PublicKeySize
}

// Serialize implements Serializable. The body is the isPrivate flag followed
// by the raw key bytes; the length is implied by the flag.
func (k *Ed25519AsymmetricKey) Serialize(enc *serialization.Encoder) {
	k.WriteHeader(enc, Ed25519AsymmetricKeyType)
	enc.WriteBool(k.private)
	if k.private {
		enc.WriteRaw(k.priv)
	} else {
		enc.WriteRaw(k.pub)
	}
}

func readEd25519Key(m Metadata, dec *serialization.Decoder) (Serializable, error) {
	private := dec.ReadBool()
	var key *Ed25519AsymmetricKey
	if private {
		raw := dec.ReadRaw(ed25519.PrivateKeySize)
		if err := dec.Err(); err != nil {
			return nil, err
		}
		key = &Ed25519AsymmetricKey{
			Metadata: m,
			private:  true,
			priv:     ed25519.PrivateKey(raw),
		}
		key.pub = key.priv.Public().(ed25519.PublicKey)
	} else {
		raw := dec.ReadRaw(ed25519.PublicKeySize)
		if err := dec.Err(); err != nil {
			return nil, err
		}
		key = &Ed25519AsymmetricKey{
			Metadata: m,
			private:  false,
			pub:      ed25519.PublicKey(raw),
		}
	}
	return key, nil
}

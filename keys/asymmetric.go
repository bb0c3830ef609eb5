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
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/keyring-crypto/keyring-go/internal/pemutil"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

// AsymmetricKeyType is the type tag of serialized asymmetric keys.
const AsymmetricKeyType = "AsymmetricKey"

// KeyType discriminates the key families a key or parameter set can hold.
type KeyType int32

// Key families.
const (
	KeyTypeDH KeyType = iota + 1
	KeyTypeDSA
	KeyTypeEC
	KeyTypeRSA
	KeyTypeHMAC
	KeyTypeCMAC
	KeyTypeEd25519
)

// String returns the family name.
func (t KeyType) String() string {
	switch t {
	case KeyTypeDH:
		return "DH"
	case KeyTypeDSA:
		return "DSA"
	case KeyTypeEC:
		return "EC"
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeHMAC:
		return "HMAC"
	case KeyTypeCMAC:
		return "CMAC"
	case KeyTypeEd25519:
		return "Ed25519"
	}
	return fmt.Sprintf("KeyType(%d)", int32(t))
}

// Key is the interface shared by asymmetric key variants.
type Key interface {
	Serializable
	// KeyType returns the key family.
	KeyType() KeyType
	// IsPrivate reports whether the key holds private material.
	IsPrivate() bool
	// Public returns the public counterpart of a private key, or the key
	// itself if already public.
	Public() (Key, error)
}

// AsymmetricKey holds one of the DH, DSA, EC, RSA, HMAC or CMAC key
// variants. Ed25519 keys have their own raw-bodied type, see
// [Ed25519AsymmetricKey].
type AsymmetricKey struct {
	Metadata
	keyType  KeyType
	private  bool
	material any
}

func init() {
	register(AsymmetricKeyType, readAsymmetricKey)
}

// NewAsymmetric wraps stdlib (or DH) key material. The family and
// private/public discrimination are inferred from the concrete type of
// material.
func NewAsymmetric(material any, name, description string) (*AsymmetricKey, error) {
	keyType, private, err := classify(material)
	if err != nil {
		return nil, err
	}
	return &AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		keyType:  keyType,
		private:  private,
		material: material,
	}, nil
}

// NewHMACKey wraps a raw HMAC secret. HMAC keys are always private.
func NewHMACKey(secret []byte, name, description string) (*AsymmetricKey, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("keys: empty HMAC secret")
	}
	material := make([]byte, len(secret))
	copy(material, secret)
	return &AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		keyType:  KeyTypeHMAC,
		private:  true,
		material: material,
	}, nil
}

// NewCMACKey wraps a raw CMAC (AES) secret. The secret must be a legal AES
// key length. CMAC keys are always private.
func NewCMACKey(secret []byte, name, description string) (*AsymmetricKey, error) {
	switch len(secret) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("keys: invalid CMAC key length %d", len(secret))
	}
	material := make([]byte, len(secret))
	copy(material, secret)
	return &AsymmetricKey{
		Metadata: NewMetadata(RandomID(), name, description),
		keyType:  KeyTypeCMAC,
		private:  true,
		material: material,
	}, nil
}

func classify(material any) (KeyType, bool, error) {
	switch material.(type) {
	case *rsa.PrivateKey:
		return KeyTypeRSA, true, nil
	case *rsa.PublicKey:
		return KeyTypeRSA, false, nil
	case *ecdsa.PrivateKey:
		return KeyTypeEC, true, nil
	case *ecdsa.PublicKey:
		return KeyTypeEC, false, nil
	case *dsa.PrivateKey:
		return KeyTypeDSA, true, nil
	case *dsa.PublicKey:
		return KeyTypeDSA, false, nil
	case *DHPrivateKey:
		return KeyTypeDH, true, nil
	case *DHPublicKey:
		return KeyTypeDH, false, nil
	}
	return 0, false, fmt.Errorf("keys: unsupported key material %T", material)
}

// KeyType implements Key.
func (k *AsymmetricKey) KeyType() KeyType { return k.keyType }

// IsPrivate implements Key.
func (k *AsymmetricKey) IsPrivate() bool { return k.private }

// Material returns the wrapped key material: one of *rsa.PrivateKey,
// *rsa.PublicKey, *ecdsa.PrivateKey, *ecdsa.PublicKey, *dsa.PrivateKey,
// *dsa.PublicKey, *DHPrivateKey, *DHPublicKey, or []byte for HMAC/CMAC
// secrets.
func (k *AsymmetricKey) Material() any { return k.material }

// Secret returns the raw secret of an HMAC or CMAC key.
func (k *AsymmetricKey) Secret() ([]byte, error) {
	if k.keyType != KeyTypeHMAC && k.keyType != KeyTypeCMAC {
		return nil, fmt.Errorf("keys: %s key has no raw secret", k.keyType)
	}
	return k.material.([]byte), nil
}

// Public implements Key. The public key keeps the private key's id so both
// halves address the same logical key.
func (k *AsymmetricKey) Public() (Key, error) {
	if !k.private {
		return k, nil
	}
	var material any
	switch m := k.material.(type) {
	case *rsa.PrivateKey:
		material = &m.PublicKey
	case *ecdsa.PrivateKey:
		material = &m.PublicKey
	case *dsa.PrivateKey:
		material = &m.PublicKey
	case *DHPrivateKey:
		material = m.Public()
	default:
		return nil, fmt.Errorf("keys: %s key has no public half", k.keyType)
	}
	return &AsymmetricKey{
		Metadata: k.Metadata,
		keyType:  k.keyType,
		private:  false,
		material: material,
	}, nil
}

// PEM returns the PEM encoding of the key material.
func (k *AsymmetricKey) PEM() ([]byte, error) {
	switch m := k.material.(type) {
	case *rsa.PrivateKey:
		return pemutil.MarshalRSAPrivate(m)
	case *rsa.PublicKey:
		return pemutil.MarshalPKIXPublic(m)
	case *ecdsa.PrivateKey:
		return pemutil.MarshalECPrivate(m)
	case *ecdsa.PublicKey:
		return pemutil.MarshalPKIXPublic(m)
	case *dsa.PrivateKey:
		return pemutil.MarshalDSAPrivate(m)
	case *dsa.PublicKey:
		return pemutil.MarshalDSAPublic(m)
	case *DHPrivateKey:
		return pemutil.MarshalDHPrivate(m.Spec.P, m.Spec.G, m.X, m.Y)
	case *DHPublicKey:
		return pemutil.MarshalDHPublic(m.Spec.P, m.Spec.G, m.Y)
	case []byte:
		if k.keyType == KeyTypeHMAC {
			return pemutil.MarshalSecret(pemutil.BlockHMACKey, m), nil
		}
		return pemutil.MarshalSecret(pemutil.BlockCMACKey, m), nil
	}
	return nil, fmt.Errorf("keys: unsupported key material %T", k.material)
}

func parseMaterial(keyType KeyType, private bool, pemBytes []byte) (any, error) {
	switch keyType {
	case KeyTypeRSA:
		if private {
			return pemutil.ParseRSAPrivate(pemBytes)
		}
		pub, err := pemutil.ParsePKIXPublic(pemBytes)
		if err != nil {
			return nil, err
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("keys: PEM holds %T, want *rsa.PublicKey", pub)
		}
		return rsaPub, nil
	case KeyTypeEC:
		if private {
			return pemutil.ParseECPrivate(pemBytes)
		}
		pub, err := pemutil.ParsePKIXPublic(pemBytes)
		if err != nil {
			return nil, err
		}
		ecPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("keys: PEM holds %T, want *ecdsa.PublicKey", pub)
		}
		return ecPub, nil
	case KeyTypeDSA:
		if private {
			return pemutil.ParseDSAPrivate(pemBytes)
		}
		return pemutil.ParseDSAPublic(pemBytes)
	case KeyTypeDH:
		if private {
			p, g, x, y, err := pemutil.ParseDHPrivate(pemBytes)
			if err != nil {
				return nil, err
			}
			return &DHPrivateKey{Spec: DHParameterSpec{P: p, G: g}, X: x, Y: y}, nil
		}
		p, g, y, err := pemutil.ParseDHPublic(pemBytes)
		if err != nil {
			return nil, err
		}
		return &DHPublicKey{Spec: DHParameterSpec{P: p, G: g}, Y: y}, nil
	case KeyTypeHMAC:
		return pemutil.ParseSecret(pemutil.BlockHMACKey, pemBytes)
	case KeyTypeCMAC:
		return pemutil.ParseSecret(pemutil.BlockCMACKey, pemBytes)
	}
	return nil, fmt.Errorf("keys: unsupported key type %s", keyType)
}

// TypeTag implements Serializable.
func (k *AsymmetricKey) TypeTag() string { return AsymmetricKeyType }

// SerializedSize implements Serializable.
func (k *AsymmetricKey) SerializedSize() int {
	pemBytes, err := k.PEM()
	if err != nil {
		return 0
	}
	return k.HeaderSize(AsymmetricKeyType) +
		serialization.BoolSize +
		serialization.Int32Size +
		serialization.Int32Size + len(pemBytes)
}

// Serialize implements Serializable.
func (k *AsymmetricKey) Serialize(enc *serialization.Encoder) {
	pemBytes, err := k.PEM()
	if err != nil {
		// Construction validates the material; an unencodable key here is
		// an internal invariant violation.
		panic(fmt.Sprintf("keys: serialize: %v", err))
	}
	k.WriteHeader(enc, AsymmetricKeyType)
	enc.WriteBool(k.private)
	enc.WriteInt32(int32(k.keyType))
	enc.WriteInt32(int32(len(pemBytes)))
	enc.WriteRaw(pemBytes)
}

func readAsymmetricKey(m Metadata, dec *serialization.Decoder) (Serializable, error) {
	private := dec.ReadBool()
	keyType := KeyType(dec.ReadInt32())
	pemLen := dec.ReadInt32()
	if pemLen < 0 {
		return nil, fmt.Errorf("keys: negative PEM length %d", pemLen)
	}
	pemBytes := dec.ReadRaw(int(pemLen))
	if err := dec.Err(); err != nil {
		return nil, err
	}
	material, err := parseMaterial(keyType, private, pemBytes)
	if err != nil {
		return nil, err
	}
	return &AsymmetricKey{
		Metadata: m,
		keyType:  keyType,
		private:  private,
		material: material,
	}, nil
}

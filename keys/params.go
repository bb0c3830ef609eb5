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
	"crypto/elliptic"
	"crypto/rand"
	"fmt"

	"github.com/keyring-crypto/keyring-go/internal/pemutil"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

// ParamsType is the type tag of serialized parameters.
const ParamsType = "Params"

// Params is a serializable parameter set for a key family: a DH group, DSA
// domain parameters, an EC named curve, or the (empty) Ed25519 parameter
// set. Its only operation is CreateKey.
type Params struct {
	Metadata
	paramsType KeyType
	dh         DHParameterSpec
	dsaParams  *dsa.Parameters
	curve      elliptic.Curve
}

func init() {
	register(ParamsType, readParams)
}

// NewDHParams wraps a caller-supplied Diffie-Hellman group.
func NewDHParams(spec DHParameterSpec, name, description string) (*Params, error) {
	if spec.P == nil || spec.G == nil {
		return nil, fmt.Errorf("keys: incomplete DH group")
	}
	return &Params{
		Metadata:   NewMetadata(RandomID(), name, description),
		paramsType: KeyTypeDH,
		dh:         spec,
	}, nil
}

// GenerateDSAParams generates fresh DSA domain parameters of the given
// size.
func GenerateDSAParams(sizes dsa.ParameterSizes, name, description string) (*Params, error) {
	params := new(dsa.Parameters)
	if err := dsa.GenerateParameters(params, rand.Reader, sizes); err != nil {
		return nil, fmt.Errorf("keys: %v", err)
	}
	return &Params{
		Metadata:   NewMetadata(RandomID(), name, description),
		paramsType: KeyTypeDSA,
		dsaParams:  params,
	}, nil
}

// NewECParams wraps a named curve. P-256, P-384 and P-521 are supported.
func NewECParams(curve elliptic.Curve, name, description string) (*Params, error) {
	switch curve {
	case elliptic.P256(), elliptic.P384(), elliptic.P521():
	default:
		return nil, fmt.Errorf("keys: unsupported curve")
	}
	return &Params{
		Metadata:   NewMetadata(RandomID(), name, description),
		paramsType: KeyTypeEC,
		curve:      curve,
	}, nil
}

// NewEd25519Params returns the empty Ed25519 parameter set. Ed25519 needs no
// domain parameters; the set exists so key rings can generate Ed25519 keys
// the same way they generate every other family.
func NewEd25519Params(name, description string) *Params {
	return &Params{
		Metadata:   NewMetadata(RandomID(), name, description),
		paramsType: KeyTypeEd25519,
	}
}

// ParamsType returns the key family these parameters generate.
func (p *Params) ParamsType() KeyType { return p.paramsType }

// DH returns the wrapped DH group.
func (p *Params) DH() (DHParameterSpec, error) {
	if p.paramsType != KeyTypeDH {
		return DHParameterSpec{}, fmt.Errorf("keys: %s params have no DH group", p.paramsType)
	}
	return p.dh, nil
}

// Curve returns the wrapped EC curve.
func (p *Params) Curve() (elliptic.Curve, error) {
	if p.paramsType != KeyTypeEC {
		return nil, fmt.Errorf("keys: %s params have no curve", p.paramsType)
	}
	return p.curve, nil
}

// CreateKey generates a fresh private key of this parameter family.
func (p *Params) CreateKey(name, description string) (Key, error) {
	switch p.paramsType {
	case KeyTypeDH:
		key, err := GenerateDHKey(p.dh)
		if err != nil {
			return nil, err
		}
		return NewAsymmetric(key, name, description)
	case KeyTypeDSA:
		key := &dsa.PrivateKey{}
		key.Parameters = *p.dsaParams
		if err := dsa.GenerateKey(key, rand.Reader); err != nil {
			return nil, fmt.Errorf("keys: %v", err)
		}
		return NewAsymmetric(key, name, description)
	case KeyTypeEC:
		key, err := ecdsa.GenerateKey(p.curve, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("keys: %v", err)
		}
		return NewAsymmetric(key, name, description)
	case KeyTypeEd25519:
		return GenerateEd25519(name, description)
	}
	return nil, fmt.Errorf("keys: cannot create key from %s params", p.paramsType)
}

func (p *Params) pem() ([]byte, error) {
	switch p.paramsType {
	case KeyTypeDH:
		return pemutil.MarshalDHParams(p.dh.P, p.dh.G)
	case KeyTypeDSA:
		return pemutil.MarshalDSAParams(p.dsaParams)
	case KeyTypeEC:
		return pemutil.MarshalECParams(p.curve)
	case KeyTypeEd25519:
		return nil, nil
	}
	return nil, fmt.Errorf("keys: unsupported params type %s", p.paramsType)
}

// TypeTag implements Serializable.
func (p *Params) TypeTag() string { return ParamsType }

// SerializedSize implements Serializable.
func (p *Params) SerializedSize() int {
	pemBytes, err := p.pem()
	if err != nil {
		return 0
	}
	return p.HeaderSize(ParamsType) +
		serialization.Int32Size +
		serialization.Int32Size + len(pemBytes)
}

// Serialize implements Serializable.
func (p *Params) Serialize(enc *serialization.Encoder) {
	pemBytes, err := p.pem()
	if err != nil {
		panic(fmt.Sprintf("keys: serialize: %v", err))
	}
	p.WriteHeader(enc, ParamsType)
	enc.WriteInt32(int32(p.paramsType))
	enc.WriteInt32(int32(len(pemBytes)))
	enc.WriteRaw(pemBytes)
}

func readParams(m Metadata, dec *serialization.Decoder) (Serializable, error) {
	paramsType := KeyType(dec.ReadInt32())
	pemLen := dec.ReadInt32()
	if pemLen < 0 {
		return nil, fmt.Errorf("keys: negative PEM length %d", pemLen)
	}
	pemBytes := dec.ReadRaw(int(pemLen))
	if err := dec.Err(); err != nil {
		return nil, err
	}
	params := &Params{Metadata: m, paramsType: paramsType}
	switch paramsType {
	case KeyTypeDH:
		p, g, err := pemutil.ParseDHParams(pemBytes)
		if err != nil {
			return nil, err
		}
		params.dh = DHParameterSpec{P: p, G: g}
	case KeyTypeDSA:
		dsaParams, err := pemutil.ParseDSAParams(pemBytes)
		if err != nil {
			return nil, err
		}
		params.dsaParams = dsaParams
	case KeyTypeEC:
		curve, err := pemutil.ParseECParams(pemBytes)
		if err != nil {
			return nil, err
		}
		params.curve = curve
	case KeyTypeEd25519:
	default:
		return nil, fmt.Errorf("keys: unsupported params type %s", paramsType)
	}
	return params, nil
}

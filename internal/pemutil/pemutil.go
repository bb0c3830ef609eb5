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

// Package pemutil encodes and decodes the PEM bodies carried by asymmetric
// keys and parameters.
//
// EC and RSA use the standard x509 encodings. DSA and DH have no marshal
// support in x509, so their DER layouts are defined here: OpenSSL-style
// integer sequences for DSA, PKCS#3-style for DH parameters, and private/
// public DH keys as (p, g, x, y) / (p, g, y) sequences.
package pemutil

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
)

// PEM block types.
const (
	BlockECPrivate  = "EC PRIVATE KEY"
	BlockRSAPrivate = "RSA PRIVATE KEY"
	BlockDSAPrivate = "DSA PRIVATE KEY"
	BlockDSAPublic  = "DSA PUBLIC KEY"
	BlockDHPrivate  = "DH PRIVATE KEY"
	BlockDHPublic   = "DH PUBLIC KEY"
	BlockPublic     = "PUBLIC KEY"
	BlockDHParams   = "DH PARAMETERS"
	BlockDSAParams  = "DSA PARAMETERS"
	BlockECParams   = "EC PARAMETERS"
	BlockHMACKey    = "HMAC KEY"
	BlockCMACKey    = "CMAC KEY"
)

func encode(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func decode(blockType string, data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("pemutil: no PEM block found")
	}
	if block.Type != blockType {
		return nil, fmt.Errorf("pemutil: got PEM block %q, want %q", block.Type, blockType)
	}
	return block.Bytes, nil
}

// MarshalECPrivate encodes an EC private key as a SEC 1 PEM block.
func MarshalECPrivate(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockECPrivate, der), nil
}

// ParseECPrivate decodes a SEC 1 PEM block.
func ParseECPrivate(data []byte) (*ecdsa.PrivateKey, error) {
	der, err := decode(BlockECPrivate, data)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return key, nil
}

// MarshalRSAPrivate encodes an RSA private key as a PKCS #1 PEM block.
func MarshalRSAPrivate(key *rsa.PrivateKey) ([]byte, error) {
	return encode(BlockRSAPrivate, x509.MarshalPKCS1PrivateKey(key)), nil
}

// ParseRSAPrivate decodes a PKCS #1 PEM block.
func ParseRSAPrivate(data []byte) (*rsa.PrivateKey, error) {
	der, err := decode(BlockRSAPrivate, data)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return key, nil
}

// MarshalPKIXPublic encodes an EC or RSA public key as a PKIX PEM block.
func MarshalPKIXPublic(pub any) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockPublic, der), nil
}

// ParsePKIXPublic decodes a PKIX PEM block. The caller type-asserts the
// result.
func ParsePKIXPublic(data []byte) (any, error) {
	der, err := decode(BlockPublic, data)
	if err != nil {
		return nil, err
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return pub, nil
}

// dsaPrivate mirrors the OpenSSL DSA private key layout.
type dsaPrivate struct {
	Version int
	P, Q, G *big.Int
	Y, X    *big.Int
}

// MarshalDSAPrivate encodes a DSA private key.
func MarshalDSAPrivate(key *dsa.PrivateKey) ([]byte, error) {
	der, err := asn1.Marshal(dsaPrivate{
		P: key.P, Q: key.Q, G: key.G, Y: key.Y, X: key.X,
	})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDSAPrivate, der), nil
}

// ParseDSAPrivate decodes a DSA private key.
func ParseDSAPrivate(data []byte) (*dsa.PrivateKey, error) {
	der, err := decode(BlockDSAPrivate, data)
	if err != nil {
		return nil, err
	}
	var priv dsaPrivate
	if _, err := asn1.Unmarshal(der, &priv); err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: priv.P, Q: priv.Q, G: priv.G},
			Y:          priv.Y,
		},
		X: priv.X,
	}, nil
}

type dsaPublic struct {
	P, Q, G, Y *big.Int
}

// MarshalDSAPublic encodes a DSA public key.
func MarshalDSAPublic(key *dsa.PublicKey) ([]byte, error) {
	der, err := asn1.Marshal(dsaPublic{P: key.P, Q: key.Q, G: key.G, Y: key.Y})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDSAPublic, der), nil
}

// ParseDSAPublic decodes a DSA public key.
func ParseDSAPublic(data []byte) (*dsa.PublicKey, error) {
	der, err := decode(BlockDSAPublic, data)
	if err != nil {
		return nil, err
	}
	var pub dsaPublic
	if _, err := asn1.Unmarshal(der, &pub); err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: pub.P, Q: pub.Q, G: pub.G},
		Y:          pub.Y,
	}, nil
}

type dhParams struct {
	P, G *big.Int
}

// MarshalDHParams encodes a (p, g) Diffie-Hellman group.
func MarshalDHParams(p, g *big.Int) ([]byte, error) {
	der, err := asn1.Marshal(dhParams{P: p, G: g})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDHParams, der), nil
}

// ParseDHParams decodes a (p, g) Diffie-Hellman group.
func ParseDHParams(data []byte) (p, g *big.Int, err error) {
	der, err := decode(BlockDHParams, data)
	if err != nil {
		return nil, nil, err
	}
	var params dhParams
	if _, err := asn1.Unmarshal(der, &params); err != nil {
		return nil, nil, fmt.Errorf("pemutil: %v", err)
	}
	return params.P, params.G, nil
}

type dhPrivate struct {
	P, G, X, Y *big.Int
}

// MarshalDHPrivate encodes a Diffie-Hellman private key with its group.
func MarshalDHPrivate(p, g, x, y *big.Int) ([]byte, error) {
	der, err := asn1.Marshal(dhPrivate{P: p, G: g, X: x, Y: y})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDHPrivate, der), nil
}

// ParseDHPrivate decodes a Diffie-Hellman private key.
func ParseDHPrivate(data []byte) (p, g, x, y *big.Int, err error) {
	der, err := decode(BlockDHPrivate, data)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var priv dhPrivate
	if _, err := asn1.Unmarshal(der, &priv); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("pemutil: %v", err)
	}
	return priv.P, priv.G, priv.X, priv.Y, nil
}

type dhPublic struct {
	P, G, Y *big.Int
}

// MarshalDHPublic encodes a Diffie-Hellman public key with its group.
func MarshalDHPublic(p, g, y *big.Int) ([]byte, error) {
	der, err := asn1.Marshal(dhPublic{P: p, G: g, Y: y})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDHPublic, der), nil
}

// ParseDHPublic decodes a Diffie-Hellman public key.
func ParseDHPublic(data []byte) (p, g, y *big.Int, err error) {
	der, err := decode(BlockDHPublic, data)
	if err != nil {
		return nil, nil, nil, err
	}
	var pub dhPublic
	if _, err := asn1.Unmarshal(der, &pub); err != nil {
		return nil, nil, nil, fmt.Errorf("pemutil: %v", err)
	}
	return pub.P, pub.G, pub.Y, nil
}

type dsaParams struct {
	P, Q, G *big.Int
}

// MarshalDSAParams encodes DSA domain parameters.
func MarshalDSAParams(params *dsa.Parameters) ([]byte, error) {
	der, err := asn1.Marshal(dsaParams{P: params.P, Q: params.Q, G: params.G})
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockDSAParams, der), nil
}

// ParseDSAParams decodes DSA domain parameters.
func ParseDSAParams(data []byte) (*dsa.Parameters, error) {
	der, err := decode(BlockDSAParams, data)
	if err != nil {
		return nil, err
	}
	var params dsaParams
	if _, err := asn1.Unmarshal(der, &params); err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return &dsa.Parameters{P: params.P, Q: params.Q, G: params.G}, nil
}

var (
	oidP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidP384 = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
	oidP521 = asn1.ObjectIdentifier{1, 3, 132, 0, 35}
)

// MarshalECParams encodes a named curve as an OID, the way OpenSSL writes
// "EC PARAMETERS".
func MarshalECParams(curve elliptic.Curve) ([]byte, error) {
	var oid asn1.ObjectIdentifier
	switch curve {
	case elliptic.P256():
		oid = oidP256
	case elliptic.P384():
		oid = oidP384
	case elliptic.P521():
		oid = oidP521
	default:
		return nil, fmt.Errorf("pemutil: unsupported curve %v", curve.Params().Name)
	}
	der, err := asn1.Marshal(oid)
	if err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	return encode(BlockECParams, der), nil
}

// ParseECParams decodes a named-curve OID.
func ParseECParams(data []byte) (elliptic.Curve, error) {
	der, err := decode(BlockECParams, data)
	if err != nil {
		return nil, err
	}
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(der, &oid); err != nil {
		return nil, fmt.Errorf("pemutil: %v", err)
	}
	switch {
	case oid.Equal(oidP256):
		return elliptic.P256(), nil
	case oid.Equal(oidP384):
		return elliptic.P384(), nil
	case oid.Equal(oidP521):
		return elliptic.P521(), nil
	}
	return nil, fmt.Errorf("pemutil: unsupported curve OID %v", oid)
}

// MarshalSecret wraps a raw secret (HMAC or CMAC key material) in a PEM
// block.
func MarshalSecret(blockType string, raw []byte) []byte {
	return encode(blockType, raw)
}

// ParseSecret unwraps a raw secret from a PEM block.
func ParseSecret(blockType string, data []byte) ([]byte, error) {
	return decode(blockType, data)
}

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
	"crypto/rand"
	"fmt"
	"math/big"
)

// DHParameterSpec is a classic Diffie-Hellman group: an odd prime modulus p
// and a generator g.
type DHParameterSpec struct {
	P *big.Int
	G *big.Int
}

// Equal reports whether both groups have the same p and g.
func (s DHParameterSpec) Equal(other DHParameterSpec) bool {
	return s.P.Cmp(other.P) == 0 && s.G.Cmp(other.G) == 0
}

// DHPrivateKey is a Diffie-Hellman private key: the group, the secret
// exponent x and the public value y = g^x mod p.
type DHPrivateKey struct {
	Spec DHParameterSpec
	X    *big.Int
	Y    *big.Int
}

// Public returns the public half of the key.
func (k *DHPrivateKey) Public() *DHPublicKey {
	return &DHPublicKey{Spec: k.Spec, Y: k.Y}
}

// DHPublicKey is a Diffie-Hellman public key.
type DHPublicKey struct {
	Spec DHParameterSpec
	Y    *big.Int
}

// GenerateDHKey draws a fresh private exponent in [2, p-2] and computes the
// public value.
func GenerateDHKey(spec DHParameterSpec) (*DHPrivateKey, error) {
	if spec.P == nil || spec.G == nil || spec.P.Sign() <= 0 {
		return nil, fmt.Errorf("keys: invalid DH group")
	}
	// x in [2, p-2]
	limit := new(big.Int).Sub(spec.P, big.NewInt(3))
	x, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("keys: %v", err)
	}
	x.Add(x, big.NewInt(2))
	y := new(big.Int).Exp(spec.G, x, spec.P)
	return &DHPrivateKey{Spec: spec, X: x, Y: y}, nil
}

// modP2048Hex is the RFC 3526 group 14 prime. The generator is 2.
const modP2048Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AACAA68FFFFFFFFFFFFFFFF"

// ModP2048 returns the RFC 3526 group 14 Diffie-Hellman group.
func ModP2048() DHParameterSpec {
	p, ok := new(big.Int).SetString(modP2048Hex, 16)
	if !ok {
		panic("keys: bad MODP prime constant")
	}
	return DHParameterSpec{P: p, G: big.NewInt(2)}
}

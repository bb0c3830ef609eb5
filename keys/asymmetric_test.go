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
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/keyring-crypto/keyring-go/internal/serialization"
)

func serializeEntity(t *testing.T, s Serializable) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := serialization.NewEncoder(&buf)
	s.Serialize(enc)
	if err := enc.Err(); err != nil {
		t.Fatalf("Serialize() err = %v", err)
	}
	if buf.Len() != s.SerializedSize() {
		t.Fatalf("encoded %d bytes, SerializedSize() = %d", buf.Len(), s.SerializedSize())
	}
	return buf.Bytes()
}

// roundTrip serializes s, deserializes it, and checks the second encoding is
// byte-identical to the first.
func roundTrip(t *testing.T, s Serializable) Serializable {
	t.Helper()
	first := serializeEntity(t, s)
	out, err := Deserialize(serialization.NewDecoder(first))
	if err != nil {
		t.Fatalf("Deserialize() err = %v", err)
	}
	second := serializeEntity(t, out)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-serialization diff (-first +second):\n%s", diff)
	}
	return out
}

func TestAsymmetricRoundTripEC(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	key, err := NewAsymmetric(priv, "signer", "")
	if err != nil {
		t.Fatalf("NewAsymmetric() err = %v", err)
	}
	out := roundTrip(t, key).(*AsymmetricKey)
	if out.KeyType() != KeyTypeEC || !out.IsPrivate() {
		t.Errorf("round trip lost type: %s private=%v", out.KeyType(), out.IsPrivate())
	}
	if !out.Material().(*ecdsa.PrivateKey).Equal(priv) {
		t.Errorf("round trip changed the key")
	}
}

func TestAsymmetricRoundTripRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	key, err := NewAsymmetric(priv, "", "")
	if err != nil {
		t.Fatalf("NewAsymmetric() err = %v", err)
	}
	out := roundTrip(t, key).(*AsymmetricKey)
	if !out.Material().(*rsa.PrivateKey).Equal(priv) {
		t.Errorf("round trip changed the key")
	}
}

func TestAsymmetricRoundTripDH(t *testing.T) {
	priv, err := GenerateDHKey(ModP2048())
	if err != nil {
		t.Fatalf("GenerateDHKey() err = %v", err)
	}
	key, err := NewAsymmetric(priv, "", "")
	if err != nil {
		t.Fatalf("NewAsymmetric() err = %v", err)
	}
	out := roundTrip(t, key).(*AsymmetricKey)
	got := out.Material().(*DHPrivateKey)
	if got.X.Cmp(priv.X) != 0 || got.Y.Cmp(priv.Y) != 0 || !got.Spec.Equal(priv.Spec) {
		t.Errorf("round trip changed the key")
	}
}

func TestAsymmetricRoundTripHMAC(t *testing.T) {
	key, err := NewHMACKey(bytes.Repeat([]byte{7}, 64), "mac", "")
	if err != nil {
		t.Fatalf("NewHMACKey() err = %v", err)
	}
	out := roundTrip(t, key).(*AsymmetricKey)
	secret, err := out.Secret()
	if err != nil {
		t.Fatalf("Secret() err = %v", err)
	}
	if diff := cmp.Diff(bytes.Repeat([]byte{7}, 64), secret); diff != "" {
		t.Errorf("secret diff (-want +got):\n%s", diff)
	}
}

func TestAsymmetricPublicSharesID(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	key, err := NewAsymmetric(priv, "", "")
	if err != nil {
		t.Fatal(err)
	}
	pub, err := key.Public()
	if err != nil {
		t.Fatalf("Public() err = %v", err)
	}
	if pub.ID() != key.ID() {
		t.Errorf("public id %s != private id %s", pub.ID(), key.ID())
	}
	if pub.IsPrivate() {
		t.Errorf("Public() returned a private key")
	}
}

func TestCMACKeyLengths(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		if _, err := NewCMACKey(make([]byte, n), "", ""); err != nil {
			t.Errorf("NewCMACKey(len %d) err = %v", n, err)
		}
	}
	if _, err := NewCMACKey(make([]byte, 20), "", ""); err == nil {
		t.Errorf("NewCMACKey(len 20) err = nil, want error")
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	key, err := GenerateEd25519("auth", "")
	if err != nil {
		t.Fatalf("GenerateEd25519() err = %v", err)
	}
	out := roundTrip(t, key).(*Ed25519AsymmetricKey)
	priv, err := out.PrivateKey()
	if err != nil {
		t.Fatalf("PrivateKey() err = %v", err)
	}
	wantPriv, _ := key.PrivateKey()
	if !priv.Equal(wantPriv) {
		t.Errorf("round trip changed the key")
	}

	pub, err := key.Public()
	if err != nil {
		t.Fatalf("Public() err = %v", err)
	}
	outPub := roundTrip(t, pub).(*Ed25519AsymmetricKey)
	if !outPub.PublicKey().Equal(key.PublicKey()) {
		t.Errorf("round trip changed the public key")
	}
	if outPub.IsPrivate() {
		t.Errorf("public key round-tripped private")
	}
}

func TestEd25519PublicTailSharesStorage(t *testing.T) {
	key, err := GenerateEd25519("", "")
	if err != nil {
		t.Fatal(err)
	}
	priv, _ := key.PrivateKey()
	if !bytes.Equal(priv[32:], key.PublicKey()) {
		t.Errorf("private key tail is not the public key")
	}
	if !ed25519.PublicKey(priv[32:]).Equal(key.PublicKey()) {
		t.Errorf("public key mismatch")
	}
}

func TestParamsCreateKey(t *testing.T) {
	for _, tc := range []struct {
		name     string
		params   func(t *testing.T) *Params
		wantType KeyType
	}{
		{
			"DH",
			func(t *testing.T) *Params {
				p, err := NewDHParams(ModP2048(), "", "")
				if err != nil {
					t.Fatal(err)
				}
				return p
			},
			KeyTypeDH,
		},
		{
			"EC",
			func(t *testing.T) *Params {
				p, err := NewECParams(elliptic.P256(), "", "")
				if err != nil {
					t.Fatal(err)
				}
				return p
			},
			KeyTypeEC,
		},
		{
			"Ed25519",
			func(t *testing.T) *Params { return NewEd25519Params("", "") },
			KeyTypeEd25519,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			params := tc.params(t)
			key, err := params.CreateKey("fresh", "")
			if err != nil {
				t.Fatalf("CreateKey() err = %v", err)
			}
			if key.KeyType() != tc.wantType {
				t.Errorf("CreateKey() type = %s, want %s", key.KeyType(), tc.wantType)
			}
			if !key.IsPrivate() {
				t.Errorf("CreateKey() returned a public key")
			}
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	params, err := NewECParams(elliptic.P384(), "curve", "")
	if err != nil {
		t.Fatal(err)
	}
	out := roundTrip(t, params).(*Params)
	curve, err := out.Curve()
	if err != nil {
		t.Fatalf("Curve() err = %v", err)
	}
	if curve != elliptic.P384() {
		t.Errorf("round trip changed the curve")
	}
}

func TestIDOrderingAndParse(t *testing.T) {
	a := NewID([]byte("a"))
	b := NewID([]byte("b"))
	if a.Compare(a) != 0 {
		t.Errorf("Compare(self) != 0")
	}
	if a.Compare(b) == 0 {
		t.Errorf("distinct inputs hash to the same id")
	}
	parsed, err := ParseID(a.String())
	if err != nil {
		t.Fatalf("ParseID() err = %v", err)
	}
	if parsed != a {
		t.Errorf("ParseID(String()) != id")
	}
	if _, err := ParseID("zz"); err == nil {
		t.Errorf("ParseID(garbage) err = nil, want error")
	}
}

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

// Package suite parses cipher-suite names, validates that keys and
// parameters are compatible with their suite role, and constructs the
// stateful objects that operate with those keys.
//
// A suite name is four algorithm tokens joined by underscores, for example
// ECDHE_ECDSA_AES-256-GCM_SHA2-512. The token sets are closed.
package suite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/exchange"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/mac"
	"github.com/keyring-crypto/keyring-go/signature"
)

// Errors surfaced by Parse and the Get constructors.
var (
	// ErrUnknownCipherSuite reports a name with an unknown token.
	ErrUnknownCipherSuite = errors.New("suite: unknown cipher suite")
	// ErrKeyTypeMismatch reports a key or parameter set rejected for its
	// role.
	ErrKeyTypeMismatch = errors.New("suite: key type mismatch")
)

// Key-exchange tokens.
const (
	KeyExchangeECDHE = "ECDHE"
	KeyExchangeDHE   = "DHE"
)

// Authenticator tokens.
const (
	AuthenticatorECDSA   = "ECDSA"
	AuthenticatorDSA     = "DSA"
	AuthenticatorRSA     = "RSA"
	AuthenticatorEd25519 = "Ed25519"
)

var (
	keyExchanges = map[string]keys.KeyType{
		KeyExchangeECDHE: keys.KeyTypeEC,
		KeyExchangeDHE:   keys.KeyTypeDH,
	}
	authenticators = map[string]keys.KeyType{
		AuthenticatorECDSA:   keys.KeyTypeEC,
		AuthenticatorDSA:     keys.KeyTypeDSA,
		AuthenticatorRSA:     keys.KeyTypeRSA,
		AuthenticatorEd25519: keys.KeyTypeEd25519,
	}
	digests = map[string]bool{
		digest.SHA2256: true,
		digest.SHA2384: true,
		digest.SHA2512: true,
	}
)

// CipherSuite is a validated 4-tuple of algorithm tokens.
type CipherSuite struct {
	keyExchange   string
	authenticator string
	cipherName    string
	mdName        string
	algorithm     cipher.Algorithm
}

// New builds a CipherSuite from its four tokens.
func New(keyExchange, authenticator, cipherName, mdName string) (CipherSuite, error) {
	if _, ok := keyExchanges[keyExchange]; !ok {
		return CipherSuite{}, fmt.Errorf("%w: key exchange %q", ErrUnknownCipherSuite, keyExchange)
	}
	if _, ok := authenticators[authenticator]; !ok {
		return CipherSuite{}, fmt.Errorf("%w: authenticator %q", ErrUnknownCipherSuite, authenticator)
	}
	algorithm, err := cipher.AlgorithmByName(cipherName)
	if err != nil {
		return CipherSuite{}, fmt.Errorf("%w: cipher %q", ErrUnknownCipherSuite, cipherName)
	}
	if !digests[mdName] {
		return CipherSuite{}, fmt.Errorf("%w: digest %q", ErrUnknownCipherSuite, mdName)
	}
	return CipherSuite{
		keyExchange:   keyExchange,
		authenticator: authenticator,
		cipherName:    cipherName,
		mdName:        mdName,
		algorithm:     algorithm,
	}, nil
}

// Parse splits an underscore-joined suite name and validates each token.
func Parse(name string) (CipherSuite, error) {
	tokens := strings.Split(name, "_")
	if len(tokens) != 4 {
		return CipherSuite{}, fmt.Errorf("%w: %q", ErrUnknownCipherSuite, name)
	}
	return New(tokens[0], tokens[1], tokens[2], tokens[3])
}

// String returns the underscore-joined suite name.
func (s CipherSuite) String() string {
	return s.keyExchange + "_" + s.authenticator + "_" + s.cipherName + "_" + s.mdName
}

// KeyExchange returns the key-exchange token.
func (s CipherSuite) KeyExchange() string { return s.keyExchange }

// Authenticator returns the authenticator token.
func (s CipherSuite) Authenticator() string { return s.authenticator }

// CipherName returns the cipher token.
func (s CipherSuite) CipherName() string { return s.cipherName }

// Digest returns the digest token.
func (s CipherSuite) Digest() string { return s.mdName }

// Algorithm returns the cipher algorithm of this suite.
func (s CipherSuite) Algorithm() cipher.Algorithm { return s.algorithm }

// KeyLength returns the symmetric key length the suite's cipher requires.
func (s CipherSuite) KeyLength() int { return s.algorithm.KeyLength }

// VerifyKeyExchangeParams reports whether params can seed this suite's key
// exchange.
func (s CipherSuite) VerifyKeyExchangeParams(params *keys.Params) bool {
	return params != nil && params.ParamsType() == keyExchanges[s.keyExchange]
}

// VerifyKeyExchangeKey reports whether key fits this suite's key exchange.
func (s CipherSuite) VerifyKeyExchangeKey(key *keys.AsymmetricKey) bool {
	return key != nil && key.KeyType() == keyExchanges[s.keyExchange]
}

// VerifyAuthenticatorParams reports whether params can seed this suite's
// authenticator. RSA has no parameter family, so RSA suites accept none.
func (s CipherSuite) VerifyAuthenticatorParams(params *keys.Params) bool {
	if params == nil || s.authenticator == AuthenticatorRSA {
		return false
	}
	return params.ParamsType() == authenticators[s.authenticator]
}

// VerifyAuthenticatorKey reports whether key fits this suite's
// authenticator.
func (s CipherSuite) VerifyAuthenticatorKey(key keys.Key) bool {
	return key != nil && key.KeyType() == authenticators[s.authenticator]
}

// VerifyCipherKey reports whether key fits this suite's cipher.
func (s CipherSuite) VerifyCipherKey(key *keys.SymmetricKey) bool {
	return key != nil && key.Length() == s.algorithm.KeyLength
}

// VerifyMACKey reports whether key fits this suite's MAC: an HMAC key whose
// length equals the suite digest size, or a CMAC key of AES length.
func (s CipherSuite) VerifyMACKey(key *keys.AsymmetricKey) bool {
	if key == nil {
		return false
	}
	secret, err := key.Secret()
	if err != nil {
		return false
	}
	switch key.KeyType() {
	case keys.KeyTypeHMAC:
		mdSize, err := digest.Size(s.mdName)
		if err != nil {
			return false
		}
		return len(secret) == mdSize
	case keys.KeyTypeCMAC:
		switch len(secret) {
		case 16, 24, 32:
			return true
		}
	}
	return false
}

// GetCipher constructs the suite's Cipher from a symmetric key.
func (s CipherSuite) GetCipher(key *keys.SymmetricKey) (*cipher.Cipher, error) {
	if !s.VerifyCipherKey(key) {
		return nil, fmt.Errorf("%w: cipher key for %s", ErrKeyTypeMismatch, s.cipherName)
	}
	return cipher.New(key, s.algorithm, s.mdName)
}

// GetAuthenticator constructs the suite's Authenticator for op. Ed25519
// suites sign the message directly, with no digest state.
func (s CipherSuite) GetAuthenticator(op signature.Op, key keys.Key) (*signature.Authenticator, error) {
	if !s.VerifyAuthenticatorKey(key) {
		return nil, fmt.Errorf("%w: authenticator key for %s", ErrKeyTypeMismatch, s.authenticator)
	}
	return signature.NewAuthenticator(op, key, s.mdName)
}

// GetMAC constructs the suite's MAC from an HMAC or CMAC key.
func (s CipherSuite) GetMAC(key *keys.AsymmetricKey) (*mac.MAC, error) {
	if !s.VerifyMACKey(key) {
		return nil, fmt.Errorf("%w: MAC key for %s", ErrKeyTypeMismatch, s.mdName)
	}
	return mac.New(key, s.mdName)
}

// GetKeyExchange constructs the suite's KeyExchange from an existing
// private key.
func (s CipherSuite) GetKeyExchange(key *keys.AsymmetricKey, initiator bool) (*exchange.KeyExchange, error) {
	if !s.VerifyKeyExchangeKey(key) {
		return nil, fmt.Errorf("%w: key exchange key for %s", ErrKeyTypeMismatch, s.keyExchange)
	}
	return exchange.New(key, initiator, s.algorithm.KeyLength, s.mdName, keys.DefaultCount)
}

// GetKeyExchangeFromParams constructs the suite's KeyExchange with a fresh
// ephemeral pair generated from params.
func (s CipherSuite) GetKeyExchangeFromParams(params *keys.Params, initiator bool) (*exchange.KeyExchange, error) {
	if !s.VerifyKeyExchangeParams(params) {
		return nil, fmt.Errorf("%w: key exchange params for %s", ErrKeyTypeMismatch, s.keyExchange)
	}
	return exchange.FromParams(params, initiator, s.algorithm.KeyLength, s.mdName, keys.DefaultCount)
}

// SerializedSize returns the encoded size: four length-prefixed strings.
func (s CipherSuite) SerializedSize() int {
	return serialization.StringSize(s.keyExchange) +
		serialization.StringSize(s.authenticator) +
		serialization.StringSize(s.cipherName) +
		serialization.StringSize(s.mdName)
}

// Serialize writes the four tokens.
func (s CipherSuite) Serialize(enc *serialization.Encoder) {
	enc.WriteString(s.keyExchange)
	enc.WriteString(s.authenticator)
	enc.WriteString(s.cipherName)
	enc.WriteString(s.mdName)
}

// Read decodes and validates a serialized suite.
func Read(dec *serialization.Decoder) (CipherSuite, error) {
	keyExchange := dec.ReadString()
	authenticator := dec.ReadString()
	cipherName := dec.ReadString()
	mdName := dec.ReadString()
	if err := dec.Err(); err != nil {
		return CipherSuite{}, err
	}
	return New(keyExchange, authenticator, cipherName, mdName)
}

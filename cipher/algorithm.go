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

package cipher

import (
	"crypto/aes"
	"fmt"
)

// Mode is the block-cipher mode of an Algorithm.
type Mode int

// Supported modes.
const (
	// ModeGCM is AEAD: associated data is authenticated, the tag comes from
	// the cipher itself.
	ModeGCM Mode = iota
	// ModeCBC is encrypt-then-MAC: an HMAC over IV || ciphertext
	// authenticates the record. Associated data is rejected.
	ModeCBC
)

// GCMTagSize is the GCM authentication tag size in bytes.
const GCMTagSize = 16

// Algorithm identifies a symmetric cipher: AES at one of three key lengths,
// in GCM or CBC mode.
type Algorithm struct {
	Name      string
	KeyLength int
	IVLength  int
	Mode      Mode
}

// The supported algorithms.
var (
	AES256GCM = Algorithm{Name: "AES-256-GCM", KeyLength: 32, IVLength: 12, Mode: ModeGCM}
	AES192GCM = Algorithm{Name: "AES-192-GCM", KeyLength: 24, IVLength: 12, Mode: ModeGCM}
	AES128GCM = Algorithm{Name: "AES-128-GCM", KeyLength: 16, IVLength: 12, Mode: ModeGCM}
	AES256CBC = Algorithm{Name: "AES-256-CBC", KeyLength: 32, IVLength: aes.BlockSize, Mode: ModeCBC}
	AES192CBC = Algorithm{Name: "AES-192-CBC", KeyLength: 24, IVLength: aes.BlockSize, Mode: ModeCBC}
	AES128CBC = Algorithm{Name: "AES-128-CBC", KeyLength: 16, IVLength: aes.BlockSize, Mode: ModeCBC}
)

var algorithms = map[string]Algorithm{
	AES256GCM.Name: AES256GCM,
	AES192GCM.Name: AES192GCM,
	AES128GCM.Name: AES128GCM,
	AES256CBC.Name: AES256CBC,
	AES192CBC.Name: AES192CBC,
	AES128CBC.Name: AES128CBC,
}

// AlgorithmByName resolves a cipher token to its Algorithm.
func AlgorithmByName(name string) (Algorithm, error) {
	algorithm, ok := algorithms[name]
	if !ok {
		return Algorithm{}, fmt.Errorf("cipher: unknown algorithm %q", name)
	}
	return algorithm, nil
}

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
	"fmt"
	"io"
	"os"

	"github.com/keyring-crypto/keyring-go/keys"
)

// Op selects the single operation an Authenticator performs.
type Op int

// Authenticator operations.
const (
	OpSign Op = iota
	OpVerify
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpSign:
		return "Sign"
	case OpVerify:
		return "Verify"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// fileBlockSize is the read granularity of the file variants.
const fileBlockSize = 4096

// Authenticator is a stateful sign-or-verify facade over a Signer or a
// Verifier. The operation is fixed at construction. State resets after each
// call, so the same instance is reusable; it is not safe for concurrent
// use.
type Authenticator struct {
	op       Op
	signer   *Signer
	verifier *Verifier
}

// NewAuthenticator builds an Authenticator for the given key. OpSign
// requires a private key; OpVerify accepts either half.
func NewAuthenticator(op Op, key keys.Key, mdName string) (*Authenticator, error) {
	switch op {
	case OpSign:
		signer, err := NewSigner(key, mdName)
		if err != nil {
			return nil, err
		}
		return &Authenticator{op: op, signer: signer}, nil
	case OpVerify:
		verifier, err := NewVerifier(key, mdName)
		if err != nil {
			return nil, err
		}
		return &Authenticator{op: op, verifier: verifier}, nil
	}
	return nil, fmt.Errorf("signature: unknown operation %d", op)
}

// Op returns the operation this authenticator performs.
func (a *Authenticator) Op() Op { return a.op }

// SignBuffer signs data.
func (a *Authenticator) SignBuffer(data []byte) ([]byte, error) {
	if a.op != OpSign {
		return nil, fmt.Errorf("signature: authenticator is %s, not Sign", a.op)
	}
	return a.signer.Sign(data)
}

// VerifyBufferSignature reports whether sig signs data.
func (a *Authenticator) VerifyBufferSignature(data, sig []byte) (bool, error) {
	if a.op != OpVerify {
		return false, fmt.Errorf("signature: authenticator is %s, not Verify", a.op)
	}
	a.verifier.Init()
	a.verifier.Update(data)
	return a.verifier.Final(sig)
}

func streamFile(path string, update func([]byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	defer f.Close()
	buf := make([]byte, fileBlockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			update(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
	}
}

// SignFile signs the contents of the file at path, reading it in 4-KiB
// blocks.
func (a *Authenticator) SignFile(path string) ([]byte, error) {
	if a.op != OpSign {
		return nil, fmt.Errorf("signature: authenticator is %s, not Sign", a.op)
	}
	a.signer.Init()
	if err := streamFile(path, a.signer.Update); err != nil {
		a.signer.Init()
		return nil, err
	}
	return a.signer.Final()
}

// VerifyFileSignature reports whether sig signs the contents of the file at
// path.
func (a *Authenticator) VerifyFileSignature(path string, sig []byte) (bool, error) {
	if a.op != OpVerify {
		return false, fmt.Errorf("signature: authenticator is %s, not Verify", a.op)
	}
	a.verifier.Init()
	if err := streamFile(path, a.verifier.Update); err != nil {
		a.verifier.Init()
		return false, err
	}
	return a.verifier.Final(sig)
}

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

// Package primitive defines the interfaces implemented by the stateful
// cryptographic objects of this library.
package primitive

// Signer computes digital signatures over byte buffers.
type Signer interface {
	// Sign computes a signature for data.
	Sign(data []byte) ([]byte, error)
}

// Verifier checks digital signatures produced by the matching Signer.
type Verifier interface {
	// Verify returns nil iff signature is a valid signature of data.
	Verify(signature, data []byte) error
}

// MAC computes and verifies message authentication codes.
type MAC interface {
	// SignBuffer computes an authentication tag for data.
	SignBuffer(data []byte) ([]byte, error)
	// VerifyBufferSignature reports whether mac authenticates data. The
	// comparison is constant time.
	VerifyBufferSignature(data, mac []byte) (bool, error)
}

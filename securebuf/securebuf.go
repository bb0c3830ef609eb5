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

// Package securebuf is the allocator seam for buffers holding secret
// material: key bytes, derived secrets, decrypted plaintext, and the
// serialized form of a key ring before encryption.
//
// The default implementation is backed by memguard locked buffers: pages are
// mlocked, guarded by canaries, and zeroed on Destroy. Callers own the
// lifetime; a Buffer must be destroyed when no longer needed, after which its
// bytes are gone.
package securebuf

import (
	"github.com/awnumar/memguard"
)

// Buffer is a fixed-size region of protected memory.
type Buffer struct {
	lb *memguard.LockedBuffer
}

// New allocates a zero-filled protected buffer of the given size.
func New(size int) *Buffer {
	return &Buffer{lb: memguard.NewBuffer(size)}
}

// FromBytes allocates a protected buffer holding a copy of b, then wipes b.
// The caller's slice is unusable afterwards.
func FromBytes(b []byte) *Buffer {
	return &Buffer{lb: memguard.NewBufferFromBytes(b)}
}

// Bytes returns the buffer contents. The slice aliases protected memory and
// is only valid until Destroy.
func (b *Buffer) Bytes() []byte {
	return b.lb.Bytes()
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int {
	return b.lb.Size()
}

// IsAlive reports whether the buffer has not been destroyed.
func (b *Buffer) IsAlive() bool {
	return b.lb.IsAlive()
}

// Destroy wipes the contents and releases the protected pages. Destroy is
// idempotent.
func (b *Buffer) Destroy() {
	b.lb.Destroy()
}

// Wipe zeroes b in place. Use for transient secret copies in regular memory
// on every exit path.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}

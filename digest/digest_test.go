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

package digest

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"testing"
)

func TestStreamingMatchesOneShot(t *testing.T) {
	for _, name := range []string{SHA2256, SHA2384, SHA2512, BLAKE2b256, BLAKE2b512} {
		t.Run(name, func(t *testing.T) {
			d, err := New(name)
			if err != nil {
				t.Fatalf("New(%q) err = %v", name, err)
			}
			d.Update([]byte("hello "))
			d.Update([]byte("world"))
			streamed := d.Final()

			oneShot, err := Sum(name, []byte("hello world"))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(streamed, oneShot) {
				t.Errorf("streamed %x != one-shot %x", streamed, oneShot)
			}

			size, err := Size(name)
			if err != nil {
				t.Fatal(err)
			}
			if len(streamed) != size {
				t.Errorf("digest length %d, Size() = %d", len(streamed), size)
			}
		})
	}
}

func TestKnownAnswers(t *testing.T) {
	sum256 := sha256.Sum256([]byte("abc"))
	got, err := Sum(SHA2256, []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, sum256[:]) {
		t.Errorf("SHA2-256 mismatch")
	}

	sum512 := sha512.Sum512([]byte("abc"))
	got, err = Sum(SHA2512, []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, sum512[:]) {
		t.Errorf("SHA2-512 mismatch")
	}
}

func TestFinalResets(t *testing.T) {
	d, err := New(SHA2256)
	if err != nil {
		t.Fatal(err)
	}
	d.Update([]byte("abc"))
	first := d.Final()
	if d.ByteCount() != 0 {
		t.Errorf("ByteCount() after Final = %d, want 0", d.ByteCount())
	}
	d.Update([]byte("abc"))
	second := d.Final()
	if !bytes.Equal(first, second) {
		t.Errorf("digest not reusable after Final")
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := New("SHA1"); err == nil {
		t.Errorf("New(SHA1) err = nil, want error")
	}
	if _, err := Size("whirlpool"); err == nil {
		t.Errorf("Size(whirlpool) err = nil, want error")
	}
	if _, err := Hasher(""); err == nil {
		t.Errorf("Hasher(\"\") err = nil, want error")
	}
}

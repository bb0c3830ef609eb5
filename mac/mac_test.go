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

package mac

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"testing"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/keys"
)

func TestHMACSignVerify(t *testing.T) {
	key, err := keys.NewHMACKey(bytes.Repeat([]byte{0x42}, 64), "", "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(key, digest.SHA2512)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	data := []byte("the quick brown fox")
	tag, err := m.SignBuffer(data)
	if err != nil {
		t.Fatalf("SignBuffer() err = %v", err)
	}
	if len(tag) != 64 {
		t.Errorf("tag length = %d, want 64", len(tag))
	}
	if got := m.MACLength(); got != 64 {
		t.Errorf("MACLength() = %d, want 64", got)
	}

	ok, err := m.VerifyBufferSignature(data, tag)
	if err != nil {
		t.Fatalf("VerifyBufferSignature() err = %v", err)
	}
	if !ok {
		t.Errorf("VerifyBufferSignature() = false for a valid tag")
	}

	tag[0] ^= 1
	ok, err = m.VerifyBufferSignature(data, tag)
	if err != nil {
		t.Fatalf("VerifyBufferSignature() err = %v", err)
	}
	if ok {
		t.Errorf("VerifyBufferSignature() = true for a corrupted tag")
	}
}

func TestHMACMatchesStdlib(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	m, err := NewHMAC(secret, digest.SHA2512)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("payload")
	got, err := m.SignBuffer(data)
	if err != nil {
		t.Fatal(err)
	}
	ref := hmac.New(sha512.New, secret)
	ref.Write(data)
	if want := ref.Sum(nil); !bytes.Equal(got, want) {
		t.Errorf("SignBuffer() = %x, want %x", got, want)
	}
}

func TestHMACStateResetsBetweenCalls(t *testing.T) {
	m, err := NewHMAC([]byte("secret"), digest.SHA2256)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := m.SignBuffer([]byte("a"))
	m.SignBuffer([]byte("interleaved"))
	second, _ := m.SignBuffer([]byte("a"))
	if !bytes.Equal(first, second) {
		t.Errorf("tag changed across calls: %x vs %x", first, second)
	}
}

func TestCMACSignVerify(t *testing.T) {
	key, err := keys.NewCMACKey(make([]byte, 32), "", "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(key, digest.SHA2256)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if got := m.MACLength(); got != 16 {
		t.Errorf("MACLength() = %d, want 16", got)
	}
	tag, err := m.SignBuffer([]byte("data"))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := m.VerifyBufferSignature([]byte("data"), tag)
	if err != nil || !ok {
		t.Errorf("VerifyBufferSignature() = %v, %v; want true, nil", ok, err)
	}
	ok, _ = m.VerifyBufferSignature([]byte("datA"), tag)
	if ok {
		t.Errorf("VerifyBufferSignature() = true for different data")
	}
}

func TestNewRejectsUnknownDigest(t *testing.T) {
	key, err := keys.NewHMACKey([]byte("x"), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(key, "no-such-digest"); err == nil {
		t.Errorf("New() with unknown digest: err = nil, want error")
	}
}

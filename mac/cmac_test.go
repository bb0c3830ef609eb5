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
	"encoding/hex"
	"testing"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// RFC 4493 section 4 test vectors: one AES-128 key, prefixes of the same
// 64-byte message.
func TestCMACKnownAnswers(t *testing.T) {
	key := fromHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	message := fromHex(t, "6bc1bee22e409f96e93d7e117393172a"+
		"ae2d8a571e03ac9c9eb76fac45af8e51"+
		"30c81c46a35ce411e5fbc1191a0a52ef"+
		"f69f2445df4f9b17ad2b417be66c3710")
	for _, tc := range []struct {
		name    string
		dataLen int
		want    string
	}{
		{"empty message", 0, "bb1d6929e95937287fa37d129b756746"},
		{"single complete block", 16, "070a16b46b4d4144f79bdd9dd04a287c"},
		{"partial final block", 40, "dfa66747de9ae63030ca32611497c827"},
		{"all complete blocks", 64, "51f0bebf7e3b9d92fc49741779363cfe"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewCMAC(key)
			if err != nil {
				t.Fatalf("NewCMAC() err = %v", err)
			}
			got, err := m.SignBuffer(message[:tc.dataLen])
			if err != nil {
				t.Fatalf("SignBuffer() err = %v", err)
			}
			if want := fromHex(t, tc.want); !bytes.Equal(got, want) {
				t.Errorf("SignBuffer() = %x, want %x", got, want)
			}
		})
	}
}

func TestNewCMACRejectsBadKeySizes(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17, 33, 64} {
		if _, err := NewCMAC(make([]byte, n)); err == nil {
			t.Errorf("NewCMAC(len %d) err = nil, want error", n)
		}
	}
}

func TestCMACStableAcrossCalls(t *testing.T) {
	m, err := NewCMAC(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	first, err := m.SignBuffer([]byte("data"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.SignBuffer([]byte("interleaved")); err != nil {
		t.Fatal(err)
	}
	second, err := m.SignBuffer([]byte("data"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("tag changed across calls: %x vs %x", first, second)
	}
}

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

package keyring

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/internal/serialization"
	"github.com/keyring-crypto/keyring-go/keys"
)

// idSets collects the id sets of every mapping at a node, keyed by
// category.
func idSets(r *Ring) map[string][]keys.ID {
	return map[string][]keys.ID{
		"keyExchangeParams":   sortedIDs(r.keyExchangeParams),
		"keyExchangeKeys":     sortedIDs(r.keyExchangeKeys),
		"authenticatorParams": sortedIDs(r.authenticatorParams),
		"authenticatorKeys":   sortedIDs(r.authenticatorKeys),
		"activeCipherKeys":    sortedIDs(r.activeCipherKeys),
		"retiredCipherKeys":   sortedIDs(r.retiredCipherKeys),
		"macKeys":             sortedIDs(r.macKeys),
		"subrings":            sortedIDs(r.subrings),
	}
}

// requireSameTree compares two rings by id-set equality at every node.
func requireSameTree(t *testing.T, want, got *Ring) {
	t.Helper()
	require.Equal(t, want.ID(), got.ID())
	require.Equal(t, want.Name(), got.Name())
	require.Equal(t, want.CipherSuite().String(), got.CipherSuite().String())
	require.Equal(t, want.MasterCipherKey().ID(), got.MasterCipherKey().ID())
	require.True(t, want.MasterCipherKey().Equal(got.MasterCipherKey()))
	require.Equal(t, idSets(want), idSets(got))
	for _, id := range sortedIDs(want.subrings) {
		sub := got.subrings[id]
		require.NotNil(t, sub)
		requireSameTree(t, want.subrings[id], sub)
	}
}

// buildTestTree builds the E3 shape: one authenticator key and two
// subrings, one empty, one holding a MAC key.
func buildTestTree(t *testing.T) *Ring {
	t.Helper()
	root := newTestRing(t, "root")

	authKey, err := keys.GenerateEd25519("signer", "")
	require.NoError(t, err)
	require.NoError(t, root.AddAuthenticatorKey(authKey))

	empty := newTestRing(t, "empty")
	require.NoError(t, root.AddSubring(empty))

	withMAC := newTestRing(t, "with-mac")
	macKey, err := keys.NewHMACKey(make([]byte, 64), "mac", "")
	require.NoError(t, err)
	require.NoError(t, withMAC.AddMACKey(macKey))
	require.NoError(t, root.AddSubring(withMAC))

	return root
}

func serializeRing(t *testing.T, r *Ring) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := serialization.NewEncoder(&buf)
	r.Serialize(enc)
	require.NoError(t, enc.Err())
	require.Equal(t, r.SerializedSize(), buf.Len())
	return buf.Bytes()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := buildTestTree(t)
	path := filepath.Join(t.TempDir(), "ring.bin")

	require.NoError(t, root.Save(path, nil, nil))
	loaded, err := Load(path, nil, nil)
	require.NoError(t, err)
	requireSameTree(t, root, loaded)
}

// Serialize/deserialize is an identity: the reloaded ring re-serializes to
// the same bytes.
func TestReserializationIsByteIdentical(t *testing.T) {
	root := buildTestTree(t)
	key := newCipherKey(t, 11)
	require.NoError(t, root.AddCipherActiveKey(key))
	require.True(t, root.RetireActiveCipherKey(key.ID(), false))
	require.NoError(t, root.AddCipherActiveKey(newCipherKey(t, 12)))

	first := serializeRing(t, root)
	loaded, err := readRing(serialization.NewDecoder(first))
	require.NoError(t, err)
	second := serializeRing(t, loaded)
	require.Equal(t, first, second)
}

func TestPasswordWrappedRing(t *testing.T) {
	root := buildTestTree(t)
	path := filepath.Join(t.TempDir(), "ring.enc")

	password := []byte("correct horse battery staple")
	wrap := func(pw []byte) *cipher.Cipher {
		key, err := keys.FromSecretAndSalt(pw, pw, 32, keys.DefaultDigest, keys.DefaultCount, "", "")
		require.NoError(t, err)
		c, err := root.CipherSuite().GetCipher(key)
		require.NoError(t, err)
		return c
	}

	associatedData := []byte("ring-v1")
	require.NoError(t, root.Save(path, wrap(password), associatedData))

	loaded, err := Load(path, wrap(password), associatedData)
	require.NoError(t, err)
	requireSameTree(t, root, loaded)

	// A one-byte-different password fails authentication.
	wrong := append([]byte{}, password...)
	wrong[0] ^= 1
	_, err = Load(path, wrap(wrong), associatedData)
	require.ErrorIs(t, err, cipher.ErrAuthenticationFailed)

	// So does the right password with the wrong associated data.
	_, err = Load(path, wrap(password), []byte("ring-v2"))
	require.ErrorIs(t, err, cipher.ErrAuthenticationFailed)
}

func TestSelfEncryptionUnderMasterKey(t *testing.T) {
	root := buildTestTree(t)
	path := filepath.Join(t.TempDir(), "ring.self")

	master, err := root.GetMasterCipher()
	require.NoError(t, err)
	require.NoError(t, root.Save(path, master, nil))

	loaded, err := Load(path, master, nil)
	require.NoError(t, err)
	requireSameTree(t, root, loaded)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(path, []byte("not a ring"), 0o600))
	_, err := Load(path, nil, nil)
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing"), nil, nil)
	require.Error(t, err)
}

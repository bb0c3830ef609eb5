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
	"fmt"

	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/signature"
	"github.com/keyring-crypto/keyring-go/suite"
)

// The cipher-key lifecycle is active (encrypt and decrypt), retired
// (decrypt only), dropped (absent). Retiring a key during rotation lets a
// node keep decrypting traffic encrypted under a key it no longer offers
// for new encryption.

// RetireActiveCipherKey moves a cipher key from active to retired. The
// cached Cipher for the id is discarded at this node unconditionally — even
// when the key was found in a descendant — because a retired key's cipher
// may only decrypt.
func (r *Ring) RetireActiveCipherKey(id keys.ID, recursive bool) bool {
	if key, ok := r.activeCipherKeys[id]; ok {
		delete(r.activeCipherKeys, id)
		delete(r.cipherObjects, id)
		r.retiredCipherKeys[id] = key
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].RetireActiveCipherKey(id, true) {
				delete(r.cipherObjects, id)
				return true
			}
		}
	}
	return false
}

// DropActiveCipherKey removes an active cipher key and its cached Cipher.
func (r *Ring) DropActiveCipherKey(id keys.ID, recursive bool) bool {
	if _, ok := r.activeCipherKeys[id]; ok {
		delete(r.activeCipherKeys, id)
		delete(r.cipherObjects, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropActiveCipherKey(id, true) {
				return true
			}
		}
	}
	return false
}

// DropRetiredCipherKey removes a retired cipher key and its cached Cipher.
func (r *Ring) DropRetiredCipherKey(id keys.ID, recursive bool) bool {
	if _, ok := r.retiredCipherKeys[id]; ok {
		delete(r.retiredCipherKeys, id)
		delete(r.cipherObjects, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropRetiredCipherKey(id, true) {
				return true
			}
		}
	}
	return false
}

// DropAllActiveCipherKeys clears the active category and its cached
// ciphers.
func (r *Ring) DropAllActiveCipherKeys(recursive bool) {
	for id := range r.activeCipherKeys {
		delete(r.cipherObjects, id)
	}
	clear(r.activeCipherKeys)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllActiveCipherKeys(true)
		}
	}
}

// DropAllRetiredCipherKeys clears the retired category and its cached
// ciphers.
func (r *Ring) DropAllRetiredCipherKeys(recursive bool) {
	for id := range r.retiredCipherKeys {
		delete(r.cipherObjects, id)
	}
	clear(r.retiredCipherKeys)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllRetiredCipherKeys(true)
		}
	}
}

// SetMasterCipherKey replaces the master cipher key and discards the cached
// Cipher built from the previous master. The master key is never in the
// active or retired maps; it is a separate slot used for message traffic
// and for self-encrypting the ring.
func (r *Ring) SetMasterCipherKey(key *keys.SymmetricKey) error {
	if !r.cipherSuite.VerifyCipherKey(key) {
		return fmt.Errorf("%w: master cipher key", suite.ErrKeyTypeMismatch)
	}
	if r.masterCipherKey != nil {
		delete(r.cipherObjects, r.masterCipherKey.ID())
	}
	r.masterCipherKey = key
	return nil
}

// DropKeyExchangeParams removes key-exchange parameters and the key
// exchange cached under the same id.
func (r *Ring) DropKeyExchangeParams(id keys.ID, recursive bool) bool {
	if _, ok := r.keyExchangeParams[id]; ok {
		delete(r.keyExchangeParams, id)
		delete(r.keyExchangeObjects, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropKeyExchangeParams(id, true) {
				return true
			}
		}
	}
	return false
}

// DropKeyExchangeKey removes a key-exchange key and its cached key
// exchange.
func (r *Ring) DropKeyExchangeKey(id keys.ID, recursive bool) bool {
	if _, ok := r.keyExchangeKeys[id]; ok {
		delete(r.keyExchangeKeys, id)
		delete(r.keyExchangeObjects, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropKeyExchangeKey(id, true) {
				return true
			}
		}
	}
	return false
}

// DropAllKeyExchangeParams clears the key-exchange parameter category.
func (r *Ring) DropAllKeyExchangeParams(recursive bool) {
	for id := range r.keyExchangeParams {
		delete(r.keyExchangeObjects, id)
	}
	clear(r.keyExchangeParams)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllKeyExchangeParams(true)
		}
	}
}

// DropAllKeyExchangeKeys clears the key-exchange key category.
func (r *Ring) DropAllKeyExchangeKeys(recursive bool) {
	for id := range r.keyExchangeKeys {
		delete(r.keyExchangeObjects, id)
	}
	clear(r.keyExchangeKeys)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllKeyExchangeKeys(true)
		}
	}
}

// DropAuthenticatorParams removes authenticator parameters.
func (r *Ring) DropAuthenticatorParams(id keys.ID, recursive bool) bool {
	if _, ok := r.authenticatorParams[id]; ok {
		delete(r.authenticatorParams, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropAuthenticatorParams(id, true) {
				return true
			}
		}
	}
	return false
}

// DropAuthenticatorKey removes an authenticator key and both of its cached
// authenticators.
func (r *Ring) DropAuthenticatorKey(id keys.ID, recursive bool) bool {
	if _, ok := r.authenticatorKeys[id]; ok {
		delete(r.authenticatorKeys, id)
		delete(r.authenticatorObjects, authenticatorCacheKey{signature.OpSign, id})
		delete(r.authenticatorObjects, authenticatorCacheKey{signature.OpVerify, id})
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropAuthenticatorKey(id, true) {
				return true
			}
		}
	}
	return false
}

// DropAllAuthenticatorKeys clears the authenticator key category.
func (r *Ring) DropAllAuthenticatorKeys(recursive bool) {
	for id := range r.authenticatorKeys {
		delete(r.authenticatorObjects, authenticatorCacheKey{signature.OpSign, id})
		delete(r.authenticatorObjects, authenticatorCacheKey{signature.OpVerify, id})
	}
	clear(r.authenticatorKeys)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllAuthenticatorKeys(true)
		}
	}
}

// DropMACKey removes a MAC key and its cached MAC.
func (r *Ring) DropMACKey(id keys.ID, recursive bool) bool {
	if _, ok := r.macKeys[id]; ok {
		delete(r.macKeys, id)
		delete(r.macObjects, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropMACKey(id, true) {
				return true
			}
		}
	}
	return false
}

// DropAllMACKeys clears the MAC key category.
func (r *Ring) DropAllMACKeys(recursive bool) {
	clear(r.macKeys)
	clear(r.macObjects)
	if recursive {
		for _, sub := range r.subrings {
			sub.DropAllMACKeys(true)
		}
	}
}

// Clear drops every mapping and cache of this node and, recursively, its
// children. The suite and master key survive.
func (r *Ring) Clear() {
	for _, sub := range r.subrings {
		sub.Clear()
	}
	clear(r.keyExchangeParams)
	clear(r.keyExchangeKeys)
	clear(r.authenticatorParams)
	clear(r.authenticatorKeys)
	clear(r.activeCipherKeys)
	clear(r.retiredCipherKeys)
	clear(r.macKeys)
	clear(r.subrings)
	clear(r.keyExchangeObjects)
	clear(r.authenticatorObjects)
	clear(r.cipherObjects)
	clear(r.macObjects)
}

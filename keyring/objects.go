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

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/exchange"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/mac"
	"github.com/keyring-crypto/keyring-go/signature"
)

// The stateful-object getters consult their cache first, then resolve the
// keying material locally and instantiate through the suite, and only then
// — when asked — delegate to children the way plain getters do. Objects are
// cached at the node that owns the key.

// GetCipher returns the Cipher for a cipher key id: the master key, an
// active key, or a retired key. The result is nil when the id is unknown.
func (r *Ring) GetCipher(id keys.ID, recursive bool) (*cipher.Cipher, error) {
	if c, ok := r.cipherObjects[id]; ok {
		return c, nil
	}
	if key, ok := r.cipherKeysView()[id]; ok {
		c, err := r.cipherSuite.GetCipher(key)
		if err != nil {
			return nil, err
		}
		if err := insertUnique(r.cipherObjects, id, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			c, err := r.subrings[subID].GetCipher(id, true)
			if c != nil || err != nil {
				return c, err
			}
		}
	}
	return nil, nil
}

// GetMasterCipher returns the Cipher built from this node's master key.
func (r *Ring) GetMasterCipher() (*cipher.Cipher, error) {
	if r.masterCipherKey == nil {
		return nil, fmt.Errorf("%w: ring has no master cipher key", ErrInternal)
	}
	return r.GetCipher(r.masterCipherKey.ID(), false)
}

// GetAuthenticator returns the Authenticator for (op, key id). The same key
// backs distinct Sign and Verify instances.
func (r *Ring) GetAuthenticator(op signature.Op, id keys.ID, recursive bool) (*signature.Authenticator, error) {
	cacheKey := authenticatorCacheKey{op, id}
	if a, ok := r.authenticatorObjects[cacheKey]; ok {
		return a, nil
	}
	if key, ok := r.authenticatorKeys[id]; ok {
		a, err := r.cipherSuite.GetAuthenticator(op, key)
		if err != nil {
			return nil, err
		}
		if err := insertUnique(r.authenticatorObjects, cacheKey, a); err != nil {
			return nil, err
		}
		return a, nil
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			a, err := r.subrings[subID].GetAuthenticator(op, id, true)
			if a != nil || err != nil {
				return a, err
			}
		}
	}
	return nil, nil
}

// GetMAC returns the MAC for a MAC key id.
func (r *Ring) GetMAC(id keys.ID, recursive bool) (*mac.MAC, error) {
	if m, ok := r.macObjects[id]; ok {
		return m, nil
	}
	if key, ok := r.macKeys[id]; ok {
		m, err := r.cipherSuite.GetMAC(key)
		if err != nil {
			return nil, err
		}
		if err := insertUnique(r.macObjects, id, m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			m, err := r.subrings[subID].GetMAC(id, true)
			if m != nil || err != nil {
				return m, err
			}
		}
	}
	return nil, nil
}

// GetKeyExchange returns the KeyExchange for a key id. The id may name a
// stored key-exchange key, or key-exchange parameters, in which case a
// fresh ephemeral pair is generated and the exchange is cached under the
// params id. The ring side is the initiator.
func (r *Ring) GetKeyExchange(id keys.ID, recursive bool) (*exchange.KeyExchange, error) {
	if kx, ok := r.keyExchangeObjects[id]; ok {
		return kx, nil
	}
	if key, ok := r.keyExchangeKeys[id]; ok {
		kx, err := r.cipherSuite.GetKeyExchange(key, true)
		if err != nil {
			return nil, err
		}
		if err := insertUnique(r.keyExchangeObjects, id, kx); err != nil {
			return nil, err
		}
		return kx, nil
	}
	if params, ok := r.keyExchangeParams[id]; ok {
		kx, err := r.cipherSuite.GetKeyExchangeFromParams(params, true)
		if err != nil {
			return nil, err
		}
		if err := insertUnique(r.keyExchangeObjects, id, kx); err != nil {
			return nil, err
		}
		return kx, nil
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			kx, err := r.subrings[subID].GetKeyExchange(id, true)
			if kx != nil || err != nil {
				return kx, err
			}
		}
	}
	return nil, nil
}

// insertUnique inserts into a cache, failing on a duplicate: the getters
// check the cache before resolving, so a collision is a cache desync.
func insertUnique[K comparable, V any](m map[K]V, k K, v V) error {
	if _, ok := m[k]; ok {
		return fmt.Errorf("%w: cache already holds %v", ErrInternal, k)
	}
	m[k] = v
	return nil
}

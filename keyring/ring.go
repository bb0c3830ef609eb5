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

// Package keyring implements the hierarchical, id-indexed key ring.
//
// A Ring node holds a cipher suite, a master cipher key, id-keyed mappings
// of parameters and keys for every suite role, child rings, and lazy caches
// of the stateful objects built from those keys. Lookups search the local
// node first and, when asked, descend into children in ascending id order;
// the first hit wins.
//
// Rings mutate their caches on lookup and are not safe for concurrent use
// without external synchronisation.
package keyring

import (
	"errors"
	"fmt"
	"slices"

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/exchange"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/mac"
	"github.com/keyring-crypto/keyring-go/signature"
	"github.com/keyring-crypto/keyring-go/suite"
)

// Errors surfaced by ring mutation and cache maintenance.
var (
	// ErrDuplicateID reports an insertion colliding with an existing id.
	ErrDuplicateID = errors.New("keyring: duplicate id")
	// ErrInternal reports an internal invariant violation, such as a cache
	// desync.
	ErrInternal = errors.New("keyring: internal error")
)

// KeyRingType is the type tag of serialized rings.
const KeyRingType = "KeyRing"

// authenticatorCacheKey identifies one cached Authenticator: the same key
// backs distinct Sign and Verify instances.
type authenticatorCacheKey struct {
	op signature.Op
	id keys.ID
}

// Ring is one node of a key-ring tree.
type Ring struct {
	keys.Metadata
	cipherSuite suite.CipherSuite

	keyExchangeParams   map[keys.ID]*keys.Params
	keyExchangeKeys     map[keys.ID]*keys.AsymmetricKey
	authenticatorParams map[keys.ID]*keys.Params
	authenticatorKeys   map[keys.ID]keys.Key
	masterCipherKey     *keys.SymmetricKey
	activeCipherKeys    map[keys.ID]*keys.SymmetricKey
	retiredCipherKeys   map[keys.ID]*keys.SymmetricKey
	macKeys             map[keys.ID]*keys.AsymmetricKey
	subrings            map[keys.ID]*Ring

	// Lazy caches; derivative state, never persisted.
	keyExchangeObjects   map[keys.ID]*exchange.KeyExchange
	authenticatorObjects map[authenticatorCacheKey]*signature.Authenticator
	cipherObjects        map[keys.ID]*cipher.Cipher
	macObjects           map[keys.ID]*mac.MAC
}

func newEmpty(m keys.Metadata, cipherSuite suite.CipherSuite) *Ring {
	return &Ring{
		Metadata:             m,
		cipherSuite:          cipherSuite,
		keyExchangeParams:    make(map[keys.ID]*keys.Params),
		keyExchangeKeys:      make(map[keys.ID]*keys.AsymmetricKey),
		authenticatorParams:  make(map[keys.ID]*keys.Params),
		authenticatorKeys:    make(map[keys.ID]keys.Key),
		activeCipherKeys:     make(map[keys.ID]*keys.SymmetricKey),
		retiredCipherKeys:    make(map[keys.ID]*keys.SymmetricKey),
		macKeys:              make(map[keys.ID]*keys.AsymmetricKey),
		subrings:             make(map[keys.ID]*Ring),
		keyExchangeObjects:   make(map[keys.ID]*exchange.KeyExchange),
		authenticatorObjects: make(map[authenticatorCacheKey]*signature.Authenticator),
		cipherObjects:        make(map[keys.ID]*cipher.Cipher),
		macObjects:           make(map[keys.ID]*mac.MAC),
	}
}

// New builds a ring for the given suite. If masterCipherKey is nil a fresh
// random key of the suite's required length is generated.
func New(cipherSuite suite.CipherSuite, masterCipherKey *keys.SymmetricKey, name, description string) (*Ring, error) {
	if masterCipherKey == nil {
		var err error
		masterCipherKey, err = keys.FromRandom(0, nil, cipherSuite.KeyLength(),
			cipherSuite.Digest(), keys.DefaultCount, "master", "")
		if err != nil {
			return nil, err
		}
	} else if !cipherSuite.VerifyCipherKey(masterCipherKey) {
		return nil, fmt.Errorf("%w: master cipher key", suite.ErrKeyTypeMismatch)
	}
	r := newEmpty(keys.NewMetadata(keys.RandomID(), name, description), cipherSuite)
	r.masterCipherKey = masterCipherKey
	return r, nil
}

// CipherSuite returns the ring's suite. It is immutable after construction.
func (r *Ring) CipherSuite() suite.CipherSuite { return r.cipherSuite }

// MasterCipherKey returns the ring's master cipher key.
func (r *Ring) MasterCipherKey() *keys.SymmetricKey { return r.masterCipherKey }

// sortedIDs returns the map's ids in ascending lexicographic byte order,
// the iteration order for recursive search and serialization.
func sortedIDs[V any](m map[keys.ID]V) []keys.ID {
	ids := make([]keys.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, keys.ID.Compare)
	return ids
}

// getByID searches the chosen mapping at r, then r's children in id order.
func getByID[V any](r *Ring, mapping func(*Ring) map[keys.ID]V, id keys.ID, recursive bool) (V, bool) {
	if v, ok := mapping(r)[id]; ok {
		return v, true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if v, ok := getByID(r.subrings[subID], mapping, id, true); ok {
				return v, true
			}
		}
	}
	var zero V
	return zero, false
}

// getByPredicate is getByID with a caller predicate; it stops at the first
// match.
func getByPredicate[V any](r *Ring, mapping func(*Ring) map[keys.ID]V, predicate func(V) bool, recursive bool) (V, bool) {
	m := mapping(r)
	for _, id := range sortedIDs(m) {
		if predicate(m[id]) {
			return m[id], true
		}
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if v, ok := getByPredicate(r.subrings[subID], mapping, predicate, true); ok {
				return v, true
			}
		}
	}
	var zero V
	return zero, false
}

func keyExchangeParamsMap(r *Ring) map[keys.ID]*keys.Params      { return r.keyExchangeParams }
func keyExchangeKeysMap(r *Ring) map[keys.ID]*keys.AsymmetricKey { return r.keyExchangeKeys }
func authenticatorParamsMap(r *Ring) map[keys.ID]*keys.Params    { return r.authenticatorParams }
func authenticatorKeysMap(r *Ring) map[keys.ID]keys.Key          { return r.authenticatorKeys }
func activeCipherKeysMap(r *Ring) map[keys.ID]*keys.SymmetricKey { return r.activeCipherKeys }
func retiredCipherKeysMap(r *Ring) map[keys.ID]*keys.SymmetricKey {
	return r.retiredCipherKeys
}
func macKeysMap(r *Ring) map[keys.ID]*keys.AsymmetricKey { return r.macKeys }
func subringsMap(r *Ring) map[keys.ID]*Ring              { return r.subrings }

// AddKeyExchangeParams inserts key-exchange parameters at this node.
func (r *Ring) AddKeyExchangeParams(params *keys.Params) error {
	if !r.cipherSuite.VerifyKeyExchangeParams(params) {
		return fmt.Errorf("%w: key exchange params", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.keyExchangeParams[params.ID()]; ok {
		return fmt.Errorf("%w: key exchange params %s", ErrDuplicateID, params.ID())
	}
	r.keyExchangeParams[params.ID()] = params
	return nil
}

// GetKeyExchangeParams looks up key-exchange parameters by id.
func (r *Ring) GetKeyExchangeParams(id keys.ID, recursive bool) *keys.Params {
	v, _ := getByID(r, keyExchangeParamsMap, id, recursive)
	return v
}

// GetKeyExchangeParamsBy returns the first key-exchange parameters matching
// the predicate.
func (r *Ring) GetKeyExchangeParamsBy(predicate func(*keys.Params) bool, recursive bool) *keys.Params {
	v, _ := getByPredicate(r, keyExchangeParamsMap, predicate, recursive)
	return v
}

// AddKeyExchangeKey inserts a key-exchange key at this node.
func (r *Ring) AddKeyExchangeKey(key *keys.AsymmetricKey) error {
	if !r.cipherSuite.VerifyKeyExchangeKey(key) {
		return fmt.Errorf("%w: key exchange key", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.keyExchangeKeys[key.ID()]; ok {
		return fmt.Errorf("%w: key exchange key %s", ErrDuplicateID, key.ID())
	}
	r.keyExchangeKeys[key.ID()] = key
	return nil
}

// GetKeyExchangeKey looks up a key-exchange key by id.
func (r *Ring) GetKeyExchangeKey(id keys.ID, recursive bool) *keys.AsymmetricKey {
	v, _ := getByID(r, keyExchangeKeysMap, id, recursive)
	return v
}

// GetKeyExchangeKeyBy returns the first key-exchange key matching the
// predicate.
func (r *Ring) GetKeyExchangeKeyBy(predicate func(*keys.AsymmetricKey) bool, recursive bool) *keys.AsymmetricKey {
	v, _ := getByPredicate(r, keyExchangeKeysMap, predicate, recursive)
	return v
}

// AddAuthenticatorParams inserts authenticator parameters at this node.
func (r *Ring) AddAuthenticatorParams(params *keys.Params) error {
	if !r.cipherSuite.VerifyAuthenticatorParams(params) {
		return fmt.Errorf("%w: authenticator params", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.authenticatorParams[params.ID()]; ok {
		return fmt.Errorf("%w: authenticator params %s", ErrDuplicateID, params.ID())
	}
	r.authenticatorParams[params.ID()] = params
	return nil
}

// GetAuthenticatorParams looks up authenticator parameters by id.
func (r *Ring) GetAuthenticatorParams(id keys.ID, recursive bool) *keys.Params {
	v, _ := getByID(r, authenticatorParamsMap, id, recursive)
	return v
}

// GetAuthenticatorParamsBy returns the first authenticator parameters
// matching the predicate.
func (r *Ring) GetAuthenticatorParamsBy(predicate func(*keys.Params) bool, recursive bool) *keys.Params {
	v, _ := getByPredicate(r, authenticatorParamsMap, predicate, recursive)
	return v
}

// AddAuthenticatorKey inserts an authenticator key at this node.
func (r *Ring) AddAuthenticatorKey(key keys.Key) error {
	if !r.cipherSuite.VerifyAuthenticatorKey(key) {
		return fmt.Errorf("%w: authenticator key", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.authenticatorKeys[key.ID()]; ok {
		return fmt.Errorf("%w: authenticator key %s", ErrDuplicateID, key.ID())
	}
	r.authenticatorKeys[key.ID()] = key
	return nil
}

// GetAuthenticatorKey looks up an authenticator key by id.
func (r *Ring) GetAuthenticatorKey(id keys.ID, recursive bool) keys.Key {
	v, _ := getByID(r, authenticatorKeysMap, id, recursive)
	return v
}

// GetAuthenticatorKeyBy returns the first authenticator key matching the
// predicate.
func (r *Ring) GetAuthenticatorKeyBy(predicate func(keys.Key) bool, recursive bool) keys.Key {
	v, _ := getByPredicate(r, authenticatorKeysMap, predicate, recursive)
	return v
}

// AddCipherActiveKey inserts a cipher key at this node in the active state.
func (r *Ring) AddCipherActiveKey(key *keys.SymmetricKey) error {
	if !r.cipherSuite.VerifyCipherKey(key) {
		return fmt.Errorf("%w: cipher key", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.activeCipherKeys[key.ID()]; ok {
		return fmt.Errorf("%w: cipher key %s", ErrDuplicateID, key.ID())
	}
	if _, ok := r.retiredCipherKeys[key.ID()]; ok {
		return fmt.Errorf("%w: cipher key %s is retired", ErrDuplicateID, key.ID())
	}
	r.activeCipherKeys[key.ID()] = key
	return nil
}

// GetCipherKey looks up a cipher key by id among the master, active and
// retired keys.
func (r *Ring) GetCipherKey(id keys.ID, recursive bool) *keys.SymmetricKey {
	v, _ := getByID(r, func(r *Ring) map[keys.ID]*keys.SymmetricKey {
		return r.cipherKeysView()
	}, id, recursive)
	return v
}

// GetCipherKeyBy returns the first cipher key (master, active or retired)
// matching the predicate.
func (r *Ring) GetCipherKeyBy(predicate func(*keys.SymmetricKey) bool, recursive bool) *keys.SymmetricKey {
	v, _ := getByPredicate(r, func(r *Ring) map[keys.ID]*keys.SymmetricKey {
		return r.cipherKeysView()
	}, predicate, recursive)
	return v
}

// GetActiveCipherKey looks up an active cipher key by id.
func (r *Ring) GetActiveCipherKey(id keys.ID, recursive bool) *keys.SymmetricKey {
	v, _ := getByID(r, activeCipherKeysMap, id, recursive)
	return v
}

// GetActiveCipherKeyBy returns the first active cipher key matching the
// predicate.
func (r *Ring) GetActiveCipherKeyBy(predicate func(*keys.SymmetricKey) bool, recursive bool) *keys.SymmetricKey {
	v, _ := getByPredicate(r, activeCipherKeysMap, predicate, recursive)
	return v
}

// GetRetiredCipherKey looks up a retired cipher key by id.
func (r *Ring) GetRetiredCipherKey(id keys.ID, recursive bool) *keys.SymmetricKey {
	v, _ := getByID(r, retiredCipherKeysMap, id, recursive)
	return v
}

// GetRetiredCipherKeyBy returns the first retired cipher key matching the
// predicate.
func (r *Ring) GetRetiredCipherKeyBy(predicate func(*keys.SymmetricKey) bool, recursive bool) *keys.SymmetricKey {
	v, _ := getByPredicate(r, retiredCipherKeysMap, predicate, recursive)
	return v
}

// cipherKeysView is the union view used by GetCipherKey and GetCipher:
// master, then active, then retired.
func (r *Ring) cipherKeysView() map[keys.ID]*keys.SymmetricKey {
	view := make(map[keys.ID]*keys.SymmetricKey, len(r.activeCipherKeys)+len(r.retiredCipherKeys)+1)
	for id, key := range r.retiredCipherKeys {
		view[id] = key
	}
	for id, key := range r.activeCipherKeys {
		view[id] = key
	}
	if r.masterCipherKey != nil {
		view[r.masterCipherKey.ID()] = r.masterCipherKey
	}
	return view
}

// AddMACKey inserts a MAC key at this node.
func (r *Ring) AddMACKey(key *keys.AsymmetricKey) error {
	if !r.cipherSuite.VerifyMACKey(key) {
		return fmt.Errorf("%w: MAC key", suite.ErrKeyTypeMismatch)
	}
	if _, ok := r.macKeys[key.ID()]; ok {
		return fmt.Errorf("%w: MAC key %s", ErrDuplicateID, key.ID())
	}
	r.macKeys[key.ID()] = key
	return nil
}

// GetMACKey looks up a MAC key by id.
func (r *Ring) GetMACKey(id keys.ID, recursive bool) *keys.AsymmetricKey {
	v, _ := getByID(r, macKeysMap, id, recursive)
	return v
}

// GetMACKeyBy returns the first MAC key matching the predicate.
func (r *Ring) GetMACKeyBy(predicate func(*keys.AsymmetricKey) bool, recursive bool) *keys.AsymmetricKey {
	v, _ := getByPredicate(r, macKeysMap, predicate, recursive)
	return v
}

// AddSubring attaches a child ring. The tree stays acyclic: a ring must not
// be attached to itself or to one of its descendants.
func (r *Ring) AddSubring(sub *Ring) error {
	if sub == nil {
		return errors.New("keyring: nil subring")
	}
	if sub.contains(r) || sub == r {
		return errors.New("keyring: attaching would create a cycle")
	}
	if _, ok := r.subrings[sub.ID()]; ok {
		return fmt.Errorf("%w: subring %s", ErrDuplicateID, sub.ID())
	}
	r.subrings[sub.ID()] = sub
	return nil
}

// contains reports whether target is r or one of r's descendants.
func (r *Ring) contains(target *Ring) bool {
	if r == target {
		return true
	}
	for _, sub := range r.subrings {
		if sub.contains(target) {
			return true
		}
	}
	return false
}

// GetSubring looks up a child ring by id.
func (r *Ring) GetSubring(id keys.ID, recursive bool) *Ring {
	v, _ := getByID(r, subringsMap, id, recursive)
	return v
}

// GetSubringBy returns the first child ring matching the predicate.
func (r *Ring) GetSubringBy(predicate func(*Ring) bool, recursive bool) *Ring {
	v, _ := getByPredicate(r, subringsMap, predicate, recursive)
	return v
}

// DropSubring detaches a child ring.
func (r *Ring) DropSubring(id keys.ID, recursive bool) bool {
	if _, ok := r.subrings[id]; ok {
		delete(r.subrings, id)
		return true
	}
	if recursive {
		for _, subID := range sortedIDs(r.subrings) {
			if r.subrings[subID].DropSubring(id, true) {
				return true
			}
		}
	}
	return false
}

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

package exchange

import (
	"crypto/elliptic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/keys"
)

func TestECDHEBothSidesAgree(t *testing.T) {
	params, err := keys.NewECParams(elliptic.P256(), "", "")
	require.NoError(t, err)

	initiator, err := FromParams(params, true, 32, digest.SHA2256, 1)
	require.NoError(t, err)
	responder, err := FromParams(params, false, 32, digest.SHA2256, 1)
	require.NoError(t, err)

	initiatorPub, err := initiator.PublicKey()
	require.NoError(t, err)
	responderPub, err := responder.PublicKey()
	require.NoError(t, err)

	k1, err := initiator.DeriveSharedSecret(responderPub, "session", "")
	require.NoError(t, err)
	k2, err := responder.DeriveSharedSecret(initiatorPub, "session", "")
	require.NoError(t, err)

	require.Equal(t, 32, k1.Length())
	require.True(t, k1.Equal(k2), "the two sides derived different keys")
}

func TestDHEBothSidesAgree(t *testing.T) {
	params, err := keys.NewDHParams(keys.ModP2048(), "", "")
	require.NoError(t, err)

	initiator, err := FromParams(params, true, 32, digest.SHA2512, 1)
	require.NoError(t, err)
	responder, err := FromParams(params, false, 32, digest.SHA2512, 1)
	require.NoError(t, err)

	initiatorPub, err := initiator.PublicKey()
	require.NoError(t, err)
	responderPub, err := responder.PublicKey()
	require.NoError(t, err)

	k1, err := initiator.DeriveSharedSecret(responderPub, "", "")
	require.NoError(t, err)
	k2, err := responder.DeriveSharedSecret(initiatorPub, "", "")
	require.NoError(t, err)

	require.True(t, k1.Equal(k2), "the two sides derived different keys")
}

func TestThirdPartyDerivesDifferentKey(t *testing.T) {
	params, err := keys.NewECParams(elliptic.P256(), "", "")
	require.NoError(t, err)

	alice, err := FromParams(params, true, 32, digest.SHA2256, 1)
	require.NoError(t, err)
	bob, err := FromParams(params, false, 32, digest.SHA2256, 1)
	require.NoError(t, err)
	eve, err := FromParams(params, false, 32, digest.SHA2256, 1)
	require.NoError(t, err)

	bobPub, err := bob.PublicKey()
	require.NoError(t, err)
	alicePub, err := alice.PublicKey()
	require.NoError(t, err)

	aliceKey, err := alice.DeriveSharedSecret(bobPub, "", "")
	require.NoError(t, err)
	eveKey, err := eve.DeriveSharedSecret(alicePub, "", "")
	require.NoError(t, err)

	require.False(t, aliceKey.Equal(eveKey), "an unrelated pair derived the shared key")
}

func TestMismatchedFamiliesRejected(t *testing.T) {
	ecParams, err := keys.NewECParams(elliptic.P256(), "", "")
	require.NoError(t, err)
	dhParams, err := keys.NewDHParams(keys.ModP2048(), "", "")
	require.NoError(t, err)

	ec, err := FromParams(ecParams, true, 32, digest.SHA2256, 1)
	require.NoError(t, err)
	dh, err := FromParams(dhParams, false, 32, digest.SHA2256, 1)
	require.NoError(t, err)

	dhPub, err := dh.PublicKey()
	require.NoError(t, err)
	_, err = ec.DeriveSharedSecret(dhPub, "", "")
	require.Error(t, err)
}

func TestNewRejectsBadArguments(t *testing.T) {
	params, err := keys.NewECParams(elliptic.P256(), "", "")
	require.NoError(t, err)
	key, err := params.CreateKey("", "")
	require.NoError(t, err)
	asym := key.(*keys.AsymmetricKey)

	_, err = New(asym, true, 0, digest.SHA2256, 1)
	require.Error(t, err, "zero key length")
	_, err = New(asym, true, 32, digest.SHA2256, 0)
	require.Error(t, err, "zero count")

	pub, err := asym.Public()
	require.NoError(t, err)
	_, err = New(pub.(*keys.AsymmetricKey), true, 32, digest.SHA2256, 1)
	require.Error(t, err, "public key")
}

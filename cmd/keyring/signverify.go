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

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/keyring-crypto/keyring-go/keyring"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/signature"
)

var signKeyID string

// resolveAuthenticatorKey picks the key named by --key, or the first
// authenticator key in the ring.
func resolveAuthenticatorKey(r *keyring.Ring) (keys.Key, error) {
	if signKeyID != "" {
		id, err := keys.ParseID(signKeyID)
		if err != nil {
			return nil, err
		}
		key := r.GetAuthenticatorKey(id, true)
		if key == nil {
			return nil, errors.Errorf("no authenticator key %s in the ring", signKeyID)
		}
		return key, nil
	}
	key := r.GetAuthenticatorKeyBy(func(keys.Key) bool { return true }, true)
	if key == nil {
		return nil, errors.New("the ring holds no authenticator keys")
	}
	return key, nil
}

var signCmd = &cobra.Command{
	Use:   "sign <file> <signature>",
	Short: "Sign a file with a ring authenticator key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRing()
		if err != nil {
			return errors.Wrap(err, "loading ring")
		}
		key, err := resolveAuthenticatorKey(r)
		if err != nil {
			return err
		}
		signer, err := r.GetAuthenticator(signature.OpSign, key.ID(), true)
		if err != nil {
			return err
		}
		sig, err := signer.SignFile(args[0])
		if err != nil {
			return errors.Wrap(err, "signing")
		}
		if err := os.WriteFile(args[1], sig, 0o600); err != nil {
			return errors.Wrap(err, "writing signature")
		}
		log.WithField("key_id", key.ID().String()).Info("file signed")
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file> <signature>",
	Short: "Verify a file signature with a ring authenticator key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRing()
		if err != nil {
			return errors.Wrap(err, "loading ring")
		}
		key, err := resolveAuthenticatorKey(r)
		if err != nil {
			return err
		}
		verifier, err := r.GetAuthenticator(signature.OpVerify, key.ID(), true)
		if err != nil {
			return err
		}
		sig, err := os.ReadFile(args[1])
		if err != nil {
			return errors.Wrap(err, "reading signature")
		}
		ok, err := verifier.VerifyFileSignature(args[0], sig)
		if err != nil {
			return errors.Wrap(err, "verifying")
		}
		if !ok {
			return errors.New("signature does not verify")
		}
		log.WithField("key_id", key.ID().String()).Info("signature verified")
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signKeyID, "key", "", "authenticator key id (hex)")
	verifyCmd.Flags().StringVar(&signKeyID, "key", "", "authenticator key id (hex)")
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
}

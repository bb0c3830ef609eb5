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
	"crypto/dsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/keyring-crypto/keyring-go/keyring"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/suite"
)

var (
	ringName        string
	ringDescription string
	withSigner      bool
	withCipherKey   bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new key ring",
	Long: `create generates a key ring for the configured cipher suite with a fresh
master cipher key, and optionally seeds it with an authenticator key and an
active cipher key. The ring is written to the --ring path, encrypted when a
password is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := configuredSuite()
		if err != nil {
			return err
		}
		r, err := keyring.New(s, nil, ringName, ringDescription)
		if err != nil {
			return errors.Wrap(err, "creating ring")
		}

		if withSigner {
			signer, err := generateAuthenticatorKey(s, "signer-"+uuid.NewString())
			if err != nil {
				return errors.Wrap(err, "generating authenticator key")
			}
			if err := r.AddAuthenticatorKey(signer); err != nil {
				return errors.Wrap(err, "adding authenticator key")
			}
		}
		if withCipherKey {
			key, err := keys.FromRandom(0, nil, s.KeyLength(), s.Digest(),
				keys.DefaultCount, "cipher-"+uuid.NewString(), "")
			if err != nil {
				return errors.Wrap(err, "generating cipher key")
			}
			if err := r.AddCipherActiveKey(key); err != nil {
				return errors.Wrap(err, "adding cipher key")
			}
		}

		if err := saveRing(r); err != nil {
			return errors.Wrap(err, "saving ring")
		}
		log.WithFields(logrus.Fields{
			"id":    r.ID().String(),
			"suite": s.String(),
		}).Info("key ring created")
		return nil
	},
}

// generateAuthenticatorKey produces a fresh private key of the suite's
// authenticator family.
func generateAuthenticatorKey(s suite.CipherSuite, name string) (keys.Key, error) {
	switch s.Authenticator() {
	case suite.AuthenticatorEd25519:
		return keys.GenerateEd25519(name, "")
	case suite.AuthenticatorECDSA:
		params, err := keys.NewECParams(elliptic.P256(), "", "")
		if err != nil {
			return nil, err
		}
		return params.CreateKey(name, "")
	case suite.AuthenticatorDSA:
		params, err := keys.GenerateDSAParams(dsa.L2048N256, "", "")
		if err != nil {
			return nil, err
		}
		return params.CreateKey(name, "")
	case suite.AuthenticatorRSA:
		priv, err := rsa.GenerateKey(rand.Reader, 3072)
		if err != nil {
			return nil, err
		}
		return keys.NewAsymmetric(priv, name, "")
	}
	return nil, errors.Errorf("unknown authenticator %q", s.Authenticator())
}

func init() {
	createCmd.Flags().StringVarP(&ringName, "name", "n", "", "ring name")
	createCmd.Flags().StringVarP(&ringDescription, "description", "d", "", "ring description")
	createCmd.Flags().BoolVar(&withSigner, "signer", true, "seed an authenticator key")
	createCmd.Flags().BoolVar(&withCipherKey, "cipher-key", true, "seed an active cipher key")
	rootCmd.AddCommand(createCmd)
}

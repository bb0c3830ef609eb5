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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keyring-crypto/keyring-go/cipher"
	"github.com/keyring-crypto/keyring-go/keyring"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/suite"
)

const defaultSuite = "ECDHE_Ed25519_AES-256-GCM_SHA2-256"

var (
	cfgFile  string
	ringPath string
	password string
	suiteArg string
	verbose  bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Create and operate on key-ring files",
	Long: `keyring manages key-ring files: hierarchical, id-indexed collections of
cipher, authenticator, MAC and key-exchange keys bound to a cipher suite.
Rings are stored as a single binary file, optionally encrypted under a
password-derived key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.keyring.yaml)")
	rootCmd.PersistentFlags().StringVarP(&ringPath, "ring", "r", "", "path to the key-ring file")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "ring password (or KEYRING_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&suiteArg, "suite", "c", "", "cipher suite name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	must(viper.BindPFlag("ring", rootCmd.PersistentFlags().Lookup("ring")))
	must(viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password")))
	must(viper.BindPFlag("suite", rootCmd.PersistentFlags().Lookup("suite")))
	viper.SetDefault("suite", defaultSuite)
	viper.SetDefault("kdf.count", 4096)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".keyring")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("keyring")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("config", viper.ConfigFileUsed()).Debug("loaded config file")
	}
}

func configuredSuite() (suite.CipherSuite, error) {
	return suite.Parse(viper.GetString("suite"))
}

// passwordCipher derives the ring-wrapping cipher from the password, using
// the configured suite's cipher and the iterated-digest stretch with the
// password doubling as salt.
func passwordCipher(s suite.CipherSuite) (*cipher.Cipher, error) {
	pw := viper.GetString("password")
	if pw == "" {
		return nil, nil
	}
	key, err := keys.FromSecretAndSalt([]byte(pw), []byte(pw), s.KeyLength(),
		s.Digest(), viper.GetInt("kdf.count"), "", "")
	if err != nil {
		return nil, err
	}
	return s.GetCipher(key)
}

func loadRing() (*keyring.Ring, error) {
	s, err := configuredSuite()
	if err != nil {
		return nil, err
	}
	wrapper, err := passwordCipher(s)
	if err != nil {
		return nil, err
	}
	path := viper.GetString("ring")
	log.WithField("path", path).Debug("loading key ring")
	return keyring.Load(path, wrapper, nil)
}

func saveRing(r *keyring.Ring) error {
	wrapper, err := passwordCipher(r.CipherSuite())
	if err != nil {
		return err
	}
	path := viper.GetString("ring")
	log.WithField("path", path).Debug("saving key ring")
	return r.Save(path, wrapper, nil)
}

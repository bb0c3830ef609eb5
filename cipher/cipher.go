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

// Package cipher implements the authenticated framing cipher.
//
// Records are laid out as
//
//	[CiphertextHeader (8)] [IV] [ciphertext] [MAC or TAG]
//
// with an optional outer FrameHeader naming the encryption key. GCM
// algorithms are AEAD: associated data is authenticated but not encrypted
// and the tag comes from the cipher. CBC algorithms are encrypt-then-MAC:
// after encryption under a fresh IV, an HMAC is computed over
// IV || ciphertext — never over the plaintext — and associated data is
// rejected.
//
// A Cipher mutates per-direction usage counters on every call and is not
// safe for concurrent use without external synchronisation.
package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"errors"
	"fmt"

	"github.com/keyring-crypto/keyring-go/digest"
	"github.com/keyring-crypto/keyring-go/internal/random"
	"github.com/keyring-crypto/keyring-go/keys"
	"github.com/keyring-crypto/keyring-go/mac"
	"github.com/keyring-crypto/keyring-go/securebuf"
)

// Errors surfaced by Encrypt and Decrypt.
var (
	// ErrAuthenticationFailed reports a MAC or tag mismatch.
	ErrAuthenticationFailed = errors.New("cipher: authentication failed")
	// ErrInvalidCiphertext reports header fields inconsistent with the
	// payload.
	ErrInvalidCiphertext = errors.New("cipher: invalid ciphertext")
)

// Cipher performs authenticated symmetric encryption under one key.
type Cipher struct {
	key       *keys.SymmetricKey
	algorithm Algorithm
	mdName    string
	mac       *mac.MAC // CBC mode only

	encryptor Stats
	decryptor Stats
}

// New builds a Cipher from a symmetric key.
//
// The key length must match the algorithm. In CBC mode the MAC key is
// derived deterministically from the cipher key:
// FromSecretAndSalt(secret = key bytes, salt = nil, keyLength = digest size,
// md = mdName, count = 1), so both ends of a record derive the same MAC.
func New(key *keys.SymmetricKey, algorithm Algorithm, mdName string) (*Cipher, error) {
	if key == nil {
		return nil, errors.New("cipher: nil key")
	}
	if key.Length() != algorithm.KeyLength {
		return nil, fmt.Errorf("cipher: key length %d, %s needs %d",
			key.Length(), algorithm.Name, algorithm.KeyLength)
	}
	c := &Cipher{key: key, algorithm: algorithm, mdName: mdName}
	if algorithm.Mode == ModeCBC {
		mdSize, err := digest.Size(mdName)
		if err != nil {
			return nil, err
		}
		macKey, err := keys.FromSecretAndSalt(key.Bytes(), nil, mdSize, mdName, 1, "", "")
		if err != nil {
			return nil, err
		}
		defer macKey.Destroy()
		c.mac, err = mac.NewHMAC(macKey.Bytes(), mdName)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Key returns the symmetric key this cipher operates with.
func (c *Cipher) Key() *keys.SymmetricKey { return c.key }

// Algorithm returns the cipher algorithm.
func (c *Cipher) Algorithm() Algorithm { return c.algorithm }

// EncryptorStats returns a copy of the encryption-side counters.
func (c *Cipher) EncryptorStats() Stats { return c.encryptor }

// DecryptorStats returns a copy of the decryption-side counters.
func (c *Cipher) DecryptorStats() Stats { return c.decryptor }

func (c *Cipher) newAEAD() (gocipher.AEAD, error) {
	block, err := aes.NewCipher(c.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("cipher: %v", err)
	}
	aead, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher: %v", err)
	}
	return aead, nil
}

func pkcs7Pad(p []byte, blockSize int) []byte {
	n := blockSize - len(p)%blockSize
	out := make([]byte, len(p)+n)
	copy(out, p)
	for i := len(p); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(p []byte, blockSize int) (int, error) {
	if len(p) == 0 || len(p)%blockSize != 0 {
		return 0, ErrInvalidCiphertext
	}
	n := int(p[len(p)-1])
	if n == 0 || n > blockSize {
		return 0, ErrInvalidCiphertext
	}
	for _, b := range p[len(p)-n:] {
		if int(b) != n {
			return 0, ErrInvalidCiphertext
		}
	}
	return len(p) - n, nil
}

// Encrypt encrypts plaintext and returns a self-describing record:
// CiphertextHeader, then IV, ciphertext and MAC/TAG. associatedData is legal
// in GCM mode only.
func (c *Cipher) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("cipher: empty plaintext")
	}
	if uint64(len(plaintext)) > MaxPlaintextLength {
		return nil, fmt.Errorf("cipher: plaintext length %d exceeds %d",
			len(plaintext), uint64(MaxPlaintextLength))
	}
	if c.algorithm.Mode == ModeCBC && len(associatedData) > 0 {
		return nil, errors.New("cipher: associated data requires an AEAD algorithm")
	}

	iv := random.GetRandomBytes(uint32(c.algorithm.IVLength))
	var ciphertext, tag []byte
	switch c.algorithm.Mode {
	case ModeGCM:
		aead, err := c.newAEAD()
		if err != nil {
			return nil, err
		}
		sealed := aead.Seal(nil, iv, plaintext, associatedData)
		ciphertext = sealed[:len(sealed)-GCMTagSize]
		tag = sealed[len(sealed)-GCMTagSize:]
	case ModeCBC:
		block, err := aes.NewCipher(c.key.Bytes())
		if err != nil {
			return nil, fmt.Errorf("cipher: %v", err)
		}
		padded := pkcs7Pad(plaintext, aes.BlockSize)
		ciphertext = make([]byte, len(padded))
		gocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
		securebuf.Wipe(padded)
		tag, err = c.mac.SignBuffer(append(append([]byte{}, iv...), ciphertext...))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cipher: unknown mode %d", c.algorithm.Mode)
	}

	record := make([]byte, CiphertextHeaderSize+len(iv)+len(ciphertext)+len(tag))
	CiphertextHeader{
		IVLength:         uint16(len(iv)),
		CiphertextLength: uint32(len(ciphertext)),
		MACLength:        uint16(len(tag)),
	}.marshal(record)
	off := CiphertextHeaderSize
	off += copy(record[off:], iv)
	off += copy(record[off:], ciphertext)
	copy(record[off:], tag)

	c.encryptor.update(len(plaintext))
	return record, nil
}

// EncryptAndFrame encrypts plaintext and prepends the outer FrameHeader
// carrying this cipher's key id.
func (c *Cipher) EncryptAndFrame(plaintext, associatedData []byte) ([]byte, error) {
	record, err := c.Encrypt(plaintext, associatedData)
	if err != nil {
		return nil, err
	}
	framed := make([]byte, FrameHeaderSize+len(record))
	FrameHeader{KeyID: c.key.ID(), PayloadLength: uint32(len(record))}.marshal(framed)
	copy(framed[FrameHeaderSize:], record)
	return framed, nil
}

// parseRecord validates the header against the payload and splits the
// record.
func (c *Cipher) parseRecord(record []byte) (iv, ciphertext, tag []byte, err error) {
	header, err := parseCiphertextHeader(record)
	if err != nil {
		return nil, nil, nil, err
	}
	if int(header.IVLength) > maxIVLength || int(header.MACLength) > maxMACLength {
		return nil, nil, nil, fmt.Errorf("%w: oversized header fields", ErrInvalidCiphertext)
	}
	if header.CiphertextLength == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty ciphertext", ErrInvalidCiphertext)
	}
	payload := record[CiphertextHeaderSize:]
	total := uint64(header.IVLength) + uint64(header.CiphertextLength) + uint64(header.MACLength)
	if total != uint64(len(payload)) {
		return nil, nil, nil, fmt.Errorf("%w: header sums to %d, payload is %d",
			ErrInvalidCiphertext, total, len(payload))
	}
	iv = payload[:header.IVLength]
	ciphertext = payload[header.IVLength : uint32(header.IVLength)+header.CiphertextLength]
	tag = payload[uint32(header.IVLength)+header.CiphertextLength:]
	if len(iv) != c.algorithm.IVLength {
		return nil, nil, nil, fmt.Errorf("%w: IV length %d, want %d",
			ErrInvalidCiphertext, len(iv), c.algorithm.IVLength)
	}
	return iv, ciphertext, tag, nil
}

func (c *Cipher) decrypt(record, associatedData []byte, secure bool) ([]byte, *securebuf.Buffer, error) {
	if c.algorithm.Mode == ModeCBC && len(associatedData) > 0 {
		return nil, nil, errors.New("cipher: associated data requires an AEAD algorithm")
	}
	iv, ciphertext, tag, err := c.parseRecord(record)
	if err != nil {
		return nil, nil, err
	}

	var plaintext []byte
	switch c.algorithm.Mode {
	case ModeGCM:
		aead, err := c.newAEAD()
		if err != nil {
			return nil, nil, err
		}
		sealed := make([]byte, 0, len(ciphertext)+len(tag))
		sealed = append(sealed, ciphertext...)
		sealed = append(sealed, tag...)
		plaintext, err = aead.Open(nil, iv, sealed, associatedData)
		if err != nil {
			return nil, nil, ErrAuthenticationFailed
		}
	case ModeCBC:
		// Authenticate before any decryption output exists.
		ok, err := c.mac.VerifyBufferSignature(append(append([]byte{}, iv...), ciphertext...), tag)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, ErrAuthenticationFailed
		}
		block, err := aes.NewCipher(c.key.Bytes())
		if err != nil {
			return nil, nil, fmt.Errorf("cipher: %v", err)
		}
		if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
			return nil, nil, ErrInvalidCiphertext
		}
		padded := make([]byte, len(ciphertext))
		gocipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
		n, err := pkcs7Unpad(padded, aes.BlockSize)
		if err != nil {
			securebuf.Wipe(padded)
			return nil, nil, err
		}
		plaintext = padded[:n]
	default:
		return nil, nil, fmt.Errorf("cipher: unknown mode %d", c.algorithm.Mode)
	}

	c.decryptor.update(len(record) - CiphertextHeaderSize)
	if !secure {
		return plaintext, nil, nil
	}
	buf := securebuf.New(len(plaintext))
	copy(buf.Bytes(), plaintext)
	securebuf.Wipe(plaintext)
	return nil, buf, nil
}

// Decrypt authenticates and decrypts a record produced by Encrypt.
// Authentication always happens before any plaintext is returned.
func (c *Cipher) Decrypt(record, associatedData []byte) ([]byte, error) {
	plaintext, _, err := c.decrypt(record, associatedData, false)
	return plaintext, err
}

// DecryptSecure is Decrypt with the plaintext placed in a protected buffer.
// The caller owns the buffer and must destroy it.
func (c *Cipher) DecryptSecure(record, associatedData []byte) (*securebuf.Buffer, error) {
	_, buf, err := c.decrypt(record, associatedData, true)
	return buf, err
}

// DecryptFrame strips and checks the outer FrameHeader, then decrypts the
// payload. The frame's key id must match this cipher's key.
func (c *Cipher) DecryptFrame(framed, associatedData []byte) ([]byte, error) {
	header, err := ParseFrameHeader(framed)
	if err != nil {
		return nil, err
	}
	if header.KeyID != c.key.ID() {
		return nil, fmt.Errorf("cipher: frame key id %s, cipher key is %s",
			header.KeyID, c.key.ID())
	}
	payload := framed[FrameHeaderSize:]
	if uint64(header.PayloadLength) != uint64(len(payload)) {
		return nil, fmt.Errorf("%w: frame payload length %d, have %d",
			ErrInvalidCiphertext, header.PayloadLength, len(payload))
	}
	return c.Decrypt(payload, associatedData)
}

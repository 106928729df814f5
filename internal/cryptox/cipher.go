// Package cryptox implements the passphrase-based encryption protecting
// health records at rest: PBKDF2 key derivation and AES-256-GCM blobs.
//
// Blob layout (before base64): salt(16) || iv(12) || ciphertext+tag.
// A fresh salt and IV are generated for every Encrypt call, so identical
// plaintexts never produce identical blobs and the derived key is never
// reused with the same IV.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/medtrack/internal/common"
)

const (
	// SaltSize is the per-blob KDF salt length in bytes.
	SaltSize = 16
	// IVSize is the AES-GCM nonce length in bytes.
	IVSize = 12

	keySize       = 32
	kdfIterations = 100000

	// minBlobSize is the smallest decoded length a valid blob can have:
	// salt + IV. The GCM tag makes real blobs longer, but 28 is the bound
	// the format check relies on.
	minBlobSize = SaltSize + IVSize
)

// DeriveKey derives a 256-bit symmetric key from a passphrase and salt using
// PBKDF2-SHA256 with 100 000 iterations. The iteration count makes
// brute-forcing the passphrase computationally expensive.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, kdfIterations, keySize, sha256.New)
}

// MakeVerifier returns a SHA-256 digest of the derived key. The verifier is
// safe to persist: it lets the vault check a passphrase at unlock time
// without attempting a decrypt, and does not reveal the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// Encrypt encrypts plaintext under the given passphrase and returns an
// opaque base64 blob. Each call uses a fresh random salt and IV.
func Encrypt(plaintext, passphrase []byte) (string, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("gcm init: %w", err)
	}

	iv := common.GenerateRandByteArray(IVSize)

	buf := make([]byte, 0, minBlobSize+len(plaintext)+aesgcm.Overhead())
	buf = append(buf, salt...)
	buf = append(buf, iv...)
	buf = aesgcm.Seal(buf, iv, plaintext, nil)

	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decrypt reverses Encrypt. Any failure, whether the blob is malformed, the
// data was tampered with, or the passphrase is wrong, surfaces
// common.ErrDecryptionFailed. The causes are indistinguishable on purpose:
// the error must not reveal why decryption failed.
func Decrypt(blob string, passphrase []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil || len(raw) < minBlobSize {
		return nil, common.ErrDecryptionFailed
	}

	salt := raw[:SaltSize]
	iv := raw[SaltSize:minBlobSize]
	ciphertext := raw[minBlobSize:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	plaintext, err := aesgcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}

// IsEncryptedBlob reports whether text looks like an Encrypt output: valid
// base64 whose decoded length is at least salt+IV (28 bytes).
//
// This is a heuristic. Sufficiently long plaintext that happens to be valid
// base64 is misclassified as encrypted; the boundary is covered by tests and
// the limitation is documented rather than silently "fixed".
func IsEncryptedBlob(text string) bool {
	raw, err := base64.StdEncoding.DecodeString(text)
	return err == nil && len(raw) >= minBlobSize
}

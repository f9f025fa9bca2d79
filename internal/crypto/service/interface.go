// Package service provides the cryptographic services of the vault key hierarchy:
// AEAD ciphers, the secret payload engine, DEK generation and wrapping, master key
// derivation and KMS access.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// CryptoEngine encrypts and decrypts secret payloads under a DEK.
type CryptoEngine interface {
	Encrypt(plaintext, dek, aad []byte, alg cryptoDomain.Algorithm) (cryptoDomain.Ciphertext, error)
	Decrypt(ct cryptoDomain.Ciphertext, dek, aad []byte, alg cryptoDomain.Algorithm) ([]byte, error)
}

// DekService generates DEKs and wraps them under the master key.
type DekService interface {
	// GenerateDek returns 32 fresh random bytes. Callers zero the key after use.
	GenerateDek() ([]byte, error)

	// Wrap encrypts dek under the master key.
	Wrap(
		dek []byte,
		masterKey *cryptoDomain.MasterKey,
		alg cryptoDomain.Algorithm,
	) (cryptoDomain.Ciphertext, error)

	// Unwrap decrypts a wrapped DEK. Fails with ErrDecryptionFailed on any tag mismatch.
	Unwrap(
		wrapped cryptoDomain.Ciphertext,
		masterKey *cryptoDomain.MasterKey,
		alg cryptoDomain.Algorithm,
	) ([]byte, error)
}

// KeyDeriver derives the master key from a passphrase and persisted parameters.
type KeyDeriver interface {
	// NewSalt returns a random salt of cryptoDomain.SaltSize bytes.
	NewSalt() ([]byte, error)

	// Derive returns a 32-byte key. Equal inputs always produce equal output.
	Derive(passphrase, salt []byte, iterations int) ([]byte, error)
}

// KMSService opens keepers for an external key management service.
type KMSService interface {
	// OpenKeeper opens a keeper for the key identified by keyURI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

package domain

import (
	"github.com/allisson/vault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so the
// HTTP layer can map them without knowing about crypto internals.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key that is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates an AEAD open failed.
	//
	// This covers a wrong key, a tampered or truncated ciphertext and an invalid nonce.
	// The specific cause is never disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrCryptoFailure, "decryption failed")

	// ErrInvalidPassphrase indicates the passphrase check value did not decrypt under the
	// derived master key.
	ErrInvalidPassphrase = errors.Wrap(errors.ErrCryptoFailure, "invalid unseal passphrase")

	// ErrEmptyPassphrase indicates an unseal attempt without a passphrase.
	ErrEmptyPassphrase = errors.Wrap(errors.ErrInvalidInput, "unseal passphrase is empty")

	// ErrInvalidKDFParams indicates persisted key derivation parameters are unusable.
	ErrInvalidKDFParams = errors.Wrap(errors.ErrInvalidFormat, "invalid key derivation parameters")

	// ErrKDFParamsNotFound indicates the store has never been initialized.
	ErrKDFParamsNotFound = errors.Wrap(errors.ErrNotFound, "key derivation parameters not found")

	// ErrMasterKeyDestroyed indicates use of a master key after Destroy.
	ErrMasterKeyDestroyed = errors.Wrap(errors.ErrSealed, "master key destroyed")

	// ErrVaultSealed indicates a key-dependent operation before a successful unseal.
	ErrVaultSealed = errors.Wrap(errors.ErrSealed, "vault is sealed")
)

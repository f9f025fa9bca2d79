// Package domain defines the secret record stored by the vault.
//
// One record exists per logical path. Each put overwrites the record in place and
// increments its version; the original creation time is kept.
package domain

import (
	"time"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// Secret represents an encrypted secret record.
type Secret struct {
	// Path is the unique logical key of the record (e.g., "db/prod").
	Path string
	// WrappedDek is the record's DEK encrypted under the master key.
	WrappedDek cryptoDomain.Ciphertext
	// Ciphertext is the secret value encrypted under the DEK, with the path as AAD.
	Ciphertext cryptoDomain.Ciphertext
	// Algorithm used for both the DEK wrap and the payload encryption.
	Algorithm cryptoDomain.Algorithm
	// Version starts at 1 and grows by exactly 1 on every overwrite.
	Version uint
	// CreatedAt is set on the first write and never changes.
	CreatedAt time.Time
	// UpdatedAt is refreshed on every write.
	UpdatedAt time.Time
	// Plaintext holds the decrypted value in memory only; must be zeroed after use.
	Plaintext []byte `json:"-"`
}

// Validate checks that the encrypted fields of a loaded record are usable.
func (s *Secret) Validate() error {
	if s.Version < 1 {
		return ErrInvalidSecretRecord
	}
	if len(s.WrappedDek.Data) == 0 || len(s.WrappedDek.Nonce) != cryptoDomain.NonceSize {
		return ErrInvalidSecretRecord
	}
	if len(s.Ciphertext.Nonce) != cryptoDomain.NonceSize || len(s.Ciphertext.Data) < cryptoDomain.TagSize {
		return ErrInvalidSecretRecord
	}
	if _, err := cryptoDomain.ParseAlgorithm(string(s.Algorithm)); err != nil {
		return ErrInvalidSecretRecord
	}
	return nil
}

package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// pbkdf2Deriver implements KeyDeriver with PBKDF2-HMAC-SHA256.
type pbkdf2Deriver struct{}

// NewKeyDeriver creates the PBKDF2-HMAC-SHA256 KeyDeriver.
func NewKeyDeriver() KeyDeriver {
	return &pbkdf2Deriver{}
}

// NewSalt returns a random 128-bit salt.
func (p *pbkdf2Deriver) NewSalt() ([]byte, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive stretches passphrase into a 32-byte key.
func (p *pbkdf2Deriver) Derive(passphrase, salt []byte, iterations int) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, cryptoDomain.ErrEmptyPassphrase
	}
	if len(salt) < cryptoDomain.SaltSize || iterations < cryptoDomain.MinKDFIterations {
		return nil, cryptoDomain.ErrInvalidKDFParams
	}

	return pbkdf2.Key(passphrase, salt, iterations, cryptoDomain.KeySize, sha256.New), nil
}

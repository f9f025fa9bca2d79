package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// dekService implements DekService.
type dekService struct {
	aeadManager AEADManager
}

// NewDekService creates a DekService.
func NewDekService(aeadManager AEADManager) DekService {
	return &dekService{aeadManager: aeadManager}
}

// GenerateDek returns a random 256-bit data encryption key.
func (d *dekService) GenerateDek() ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate dek: %w", err)
	}
	return dek, nil
}

// Wrap encrypts dek under the master key. The master key bytes are only readable
// inside the enclave callback.
func (d *dekService) Wrap(
	dek []byte,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Ciphertext, error) {
	if len(dek) != cryptoDomain.KeySize {
		return cryptoDomain.Ciphertext{}, cryptoDomain.ErrInvalidKeySize
	}

	var wrapped cryptoDomain.Ciphertext
	err := masterKey.WithBytes(func(key []byte) error {
		cipher, err := d.aeadManager.CreateCipher(key, alg)
		if err != nil {
			return err
		}

		data, nonce, err := cipher.Encrypt(dek, nil)
		if err != nil {
			return err
		}

		wrapped = cryptoDomain.Ciphertext{Data: data, Nonce: nonce}
		return nil
	})
	if err != nil {
		return cryptoDomain.Ciphertext{}, fmt.Errorf("failed to wrap dek: %w", err)
	}

	return wrapped, nil
}

// Unwrap decrypts a wrapped DEK and checks it has the expected size.
func (d *dekService) Unwrap(
	wrapped cryptoDomain.Ciphertext,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	var dek []byte
	err := masterKey.WithBytes(func(key []byte) error {
		cipher, err := d.aeadManager.CreateCipher(key, alg)
		if err != nil {
			return err
		}

		plain, err := cipher.Decrypt(wrapped.Data, wrapped.Nonce, nil)
		if err != nil {
			return err
		}

		dek = plain
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap dek: %w", err)
	}

	if len(dek) != cryptoDomain.KeySize {
		cryptoDomain.Zero(dek)
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return dek, nil
}

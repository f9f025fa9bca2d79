package service

import (
	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// cryptoEngine implements CryptoEngine on top of an AEADManager.
type cryptoEngine struct {
	aeadManager AEADManager
}

// NewCryptoEngine creates a CryptoEngine.
func NewCryptoEngine(aeadManager AEADManager) CryptoEngine {
	return &cryptoEngine{aeadManager: aeadManager}
}

// Encrypt AEAD-encrypts plaintext under dek with a fresh random nonce.
func (e *cryptoEngine) Encrypt(
	plaintext, dek, aad []byte,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Ciphertext, error) {
	cipher, err := e.aeadManager.CreateCipher(dek, alg)
	if err != nil {
		return cryptoDomain.Ciphertext{}, err
	}

	data, nonce, err := cipher.Encrypt(plaintext, aad)
	if err != nil {
		return cryptoDomain.Ciphertext{}, err
	}

	return cryptoDomain.Ciphertext{Data: data, Nonce: nonce}, nil
}

// Decrypt opens ct under dek. Tag mismatch, truncation or the wrong key all yield
// ErrDecryptionFailed.
func (e *cryptoEngine) Decrypt(
	ct cryptoDomain.Ciphertext,
	dek, aad []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	cipher, err := e.aeadManager.CreateCipher(dek, alg)
	if err != nil {
		return nil, err
	}

	return cipher.Decrypt(ct.Data, ct.Nonce, aad)
}

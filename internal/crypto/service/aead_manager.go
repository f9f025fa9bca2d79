package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// cipherFactories maps every supported algorithm to its constructor.
var cipherFactories = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM:   func(key []byte) (AEAD, error) { return NewAESGCM(key) },
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) { return NewChaCha20Poly1305(key) },
}

// AEADManagerService builds ciphers for DEKs, the master key and the canary.
type AEADManagerService struct{}

func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns the cipher for alg keyed with key, which must be KeySize bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	factory, ok := cipherFactories[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, alg)
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes for %s", cryptoDomain.ErrInvalidKeySize, len(key), alg)
	}
	return factory(key)
}

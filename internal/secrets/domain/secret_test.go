package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

func validSecret() *Secret {
	return &Secret{
		Path:       "db/prod",
		WrappedDek: cryptoDomain.Ciphertext{Data: make([]byte, 48), Nonce: make([]byte, 12)},
		Ciphertext: cryptoDomain.Ciphertext{Data: make([]byte, 22), Nonce: make([]byte, 12)},
		Algorithm:  cryptoDomain.AESGCM,
		Version:    1,
	}
}

func TestSecret_Validate(t *testing.T) {
	assert.NoError(t, validSecret().Validate())

	mutations := map[string]func(*Secret){
		"ZeroVersion":      func(s *Secret) { s.Version = 0 },
		"EmptyWrappedDek":  func(s *Secret) { s.WrappedDek.Data = nil },
		"ShortDekNonce":    func(s *Secret) { s.WrappedDek.Nonce = []byte{1} },
		"ShortNonce":       func(s *Secret) { s.Ciphertext.Nonce = nil },
		"TruncatedPayload": func(s *Secret) { s.Ciphertext.Data = []byte{1, 2} },
		"UnknownAlgorithm": func(s *Secret) { s.Algorithm = "xor" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := validSecret()
			mutate(s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSecretRecord)
		})
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	apperrors "github.com/allisson/vault/internal/errors"
)

func TestCryptoEngine(t *testing.T) {
	engine := NewCryptoEngine(NewAEADManager())
	dek := randomKey(t)
	aad := []byte("secrets/app1/db")

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			t.Run("Success_RoundTrip", func(t *testing.T) {
				ct, err := engine.Encrypt([]byte("s3cr3t"), dek, aad, alg)
				require.NoError(t, err)
				assert.Len(t, ct.Nonce, cryptoDomain.NonceSize)

				plain, err := engine.Decrypt(ct, dek, aad, alg)
				require.NoError(t, err)
				assert.Equal(t, []byte("s3cr3t"), plain)
			})

			t.Run("Success_DistinctCiphertextsForSamePlaintext", func(t *testing.T) {
				a, err := engine.Encrypt([]byte("same"), dek, aad, alg)
				require.NoError(t, err)
				b, err := engine.Encrypt([]byte("same"), dek, aad, alg)
				require.NoError(t, err)
				assert.NotEqual(t, a.Nonce, b.Nonce)
				assert.NotEqual(t, a.Data, b.Data)
			})

			t.Run("Error_RecordMovedToAnotherPath", func(t *testing.T) {
				ct, err := engine.Encrypt([]byte("s3cr3t"), dek, aad, alg)
				require.NoError(t, err)

				_, err = engine.Decrypt(ct, dek, []byte("secrets/app2/db"), alg)
				assert.ErrorIs(t, err, apperrors.ErrCryptoFailure)
			})

			t.Run("Error_WrongDek", func(t *testing.T) {
				ct, err := engine.Encrypt([]byte("s3cr3t"), dek, aad, alg)
				require.NoError(t, err)

				_, err = engine.Decrypt(ct, randomKey(t), aad, alg)
				assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			})
		})
	}

	t.Run("Error_InvalidDek", func(t *testing.T) {
		_, err := engine.Encrypt([]byte("x"), []byte("short"), nil, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

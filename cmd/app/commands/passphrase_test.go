package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// Manual mocks for KMS since they might not be generated in all environments
type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

func TestRunEncryptPassphrase(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://...").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, []byte("correct horse")).Return([]byte("encrypted"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunEncryptPassphrase(ctx, mockService, logger, "base64key://...", IOTuple{
			Reader: strings.NewReader("correct horse\n"),
			Writer: &out,
		})
		require.NoError(t, err)
		require.Contains(t, out.String(), `VAULT_UNSEAL_PASSPHRASE_CIPHERTEXT="ZW5jcnlwdGVk"`)
		require.Contains(t, out.String(), `KMS_KEY_URI="base64key://..."`)
		require.NotContains(t, out.String(), "correct horse")

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("missing-key-uri", func(t *testing.T) {
		err := RunEncryptPassphrase(ctx, nil, logger, "", IOTuple{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("empty-passphrase", func(t *testing.T) {
		err := RunEncryptPassphrase(ctx, &MockKMSService{}, logger, "base64key://...", IOTuple{
			Reader: strings.NewReader("\n"),
			Writer: io.Discard,
		})
		require.ErrorIs(t, err, cryptoDomain.ErrEmptyPassphrase)
	})

	t.Run("kms-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "base64key://...").Return(nil, errors.New("kms down"))

		err := RunEncryptPassphrase(ctx, mockService, logger, "base64key://...", IOTuple{
			Reader: strings.NewReader("pass"),
			Writer: io.Discard,
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "kms down")
	})
}

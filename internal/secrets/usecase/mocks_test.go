package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

type mockSecretRepository struct {
	mock.Mock
}

func (m *mockSecretRepository) Get(ctx context.Context, path string) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

func (m *mockSecretRepository) Save(
	ctx context.Context,
	secret *secretsDomain.Secret,
	expectedVersion *uint,
) error {
	args := m.Called(ctx, secret, expectedVersion)
	return args.Error(0)
}

func (m *mockSecretRepository) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *mockSecretRepository) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSecretRepository) ListKeys(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockMasterKeyProvider struct {
	mock.Mock
}

func (m *mockMasterKeyProvider) RequireMasterKey() (*cryptoDomain.MasterKey, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKey), args.Error(1)
}

type mockDekService struct {
	mock.Mock
}

func (m *mockDekService) GenerateDek() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockDekService) Wrap(
	dek []byte,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Ciphertext, error) {
	args := m.Called(dek, masterKey, alg)
	return args.Get(0).(cryptoDomain.Ciphertext), args.Error(1)
}

func (m *mockDekService) Unwrap(
	wrapped cryptoDomain.Ciphertext,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	args := m.Called(wrapped, masterKey, alg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockCryptoEngine struct {
	mock.Mock
}

func (m *mockCryptoEngine) Encrypt(
	plaintext, dek, aad []byte,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Ciphertext, error) {
	args := m.Called(plaintext, dek, aad, alg)
	return args.Get(0).(cryptoDomain.Ciphertext), args.Error(1)
}

func (m *mockCryptoEngine) Decrypt(
	ct cryptoDomain.Ciphertext,
	dek, aad []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	args := m.Called(ct, dek, aad, alg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

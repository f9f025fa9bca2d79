// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

// Put mocks the Put method of SecretUseCase.
func (m *MockSecretUseCase) Put(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, identity, path, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// PutWithVersion mocks the PutWithVersion method of SecretUseCase.
func (m *MockSecretUseCase) PutWithVersion(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
	expectedVersion uint,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, identity, path, plaintext, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// Get mocks the Get method of SecretUseCase.
func (m *MockSecretUseCase) Get(ctx context.Context, identity, path string) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, identity, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// Delete mocks the Delete method of SecretUseCase.
func (m *MockSecretUseCase) Delete(ctx context.Context, identity, path string) error {
	args := m.Called(ctx, identity, path)
	return args.Error(0)
}

// List mocks the List method of SecretUseCase.
func (m *MockSecretUseCase) List(ctx context.Context, identity, prefix string) ([]string, error) {
	args := m.Called(ctx, identity, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ListKeys mocks the ListKeys method of SecretUseCase.
func (m *MockSecretUseCase) ListKeys(ctx context.Context, identity, path string) ([]string, error) {
	args := m.Called(ctx, identity, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

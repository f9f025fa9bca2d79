package usecase

import (
	"context"
	"time"

	"github.com/allisson/vault/internal/metrics"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

const metricsDomain = "vault"

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, s.metrics, metricsDomain, operation, start, err)
}

// Put records metrics for secret writes.
func (s *secretUseCaseWithMetrics) Put(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Put(ctx, identity, path, plaintext)
	s.record(ctx, "secret_put", start, err)
	return secret, err
}

// PutWithVersion records metrics for versioned secret writes.
func (s *secretUseCaseWithMetrics) PutWithVersion(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
	expectedVersion uint,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.PutWithVersion(ctx, identity, path, plaintext, expectedVersion)
	s.record(ctx, "secret_put_cas", start, err)
	return secret, err
}

// Get records metrics for secret reads.
func (s *secretUseCaseWithMetrics) Get(ctx context.Context, identity, path string) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, identity, path)
	s.record(ctx, "secret_get", start, err)
	return secret, err
}

// Delete records metrics for secret deletions.
func (s *secretUseCaseWithMetrics) Delete(ctx context.Context, identity, path string) error {
	start := time.Now()
	err := s.next.Delete(ctx, identity, path)
	s.record(ctx, "secret_delete", start, err)
	return err
}

// List records metrics for prefix listings.
func (s *secretUseCaseWithMetrics) List(ctx context.Context, identity, prefix string) ([]string, error) {
	start := time.Now()
	paths, err := s.next.List(ctx, identity, prefix)
	s.record(ctx, "secret_list", start, err)
	return paths, err
}

// ListKeys records metrics for key listings.
func (s *secretUseCaseWithMetrics) ListKeys(ctx context.Context, identity, path string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.ListKeys(ctx, identity, path)
	s.record(ctx, "secret_list_keys", start, err)
	return keys, err
}

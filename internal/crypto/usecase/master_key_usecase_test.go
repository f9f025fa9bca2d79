package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
	apperrors "github.com/allisson/vault/internal/errors"
)

// memoryParamsRepo is an in-memory KDFParamsRepository that counts initializations.
type memoryParamsRepo struct {
	mu      sync.Mutex
	params  *cryptoDomain.KDFParams
	creates int
}

func (r *memoryParamsRepo) LoadKDFParams(ctx context.Context) (*cryptoDomain.KDFParams, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.params == nil {
		return nil, cryptoDomain.ErrKDFParamsNotFound
	}
	return r.params, nil
}

func (r *memoryParamsRepo) LoadOrCreateKDFParams(
	ctx context.Context,
	create func() (*cryptoDomain.KDFParams, error),
) (*cryptoDomain.KDFParams, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.params != nil {
		return r.params, false, nil
	}
	params, err := create()
	if err != nil {
		return nil, false, err
	}
	r.creates++
	r.params = params
	return params, true, nil
}

// mockParamsRepo is a testify mock for error paths.
type mockParamsRepo struct {
	mock.Mock
}

func (m *mockParamsRepo) LoadKDFParams(ctx context.Context) (*cryptoDomain.KDFParams, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KDFParams), args.Error(1)
}

func (m *mockParamsRepo) LoadOrCreateKDFParams(
	ctx context.Context,
	create func() (*cryptoDomain.KDFParams, error),
) (*cryptoDomain.KDFParams, bool, error) {
	args := m.Called(ctx, create)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*cryptoDomain.KDFParams), args.Bool(1), args.Error(2)
}

func newTestUseCase(repo KDFParamsRepository) MasterKeyUseCase {
	return NewMasterKeyUseCase(
		repo,
		cryptoService.NewKeyDeriver(),
		cryptoService.NewCryptoEngine(cryptoService.NewAEADManager()),
		cryptoDomain.AESGCM,
		cryptoDomain.MinKDFIterations,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestMasterKeyUseCase_Sealed(t *testing.T) {
	uc := newTestUseCase(&memoryParamsRepo{})

	assert.True(t, uc.IsSealed())
	assert.Equal(t, cryptoDomain.Sealed, uc.State())

	mk, err := uc.RequireMasterKey()
	assert.Nil(t, mk)
	assert.ErrorIs(t, err, cryptoDomain.ErrVaultSealed)
	assert.ErrorIs(t, err, apperrors.ErrSealed)
}

func TestMasterKeyUseCase_Unseal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InitializesEmptyStore", func(t *testing.T) {
		repo := &memoryParamsRepo{}
		uc := newTestUseCase(repo)

		passphrase := []byte("p1")
		require.NoError(t, uc.Unseal(ctx, passphrase))

		assert.Equal(t, []byte{0, 0}, passphrase)
		assert.Equal(t, cryptoDomain.Unsealed, uc.State())
		require.NotNil(t, repo.params)
		assert.Len(t, repo.params.Salt, cryptoDomain.SaltSize)
		assert.Equal(t, cryptoDomain.MinKDFIterations, repo.params.Iterations)
		require.NotNil(t, repo.params.Canary)
		assert.Equal(t, cryptoDomain.AESGCM, repo.params.Algorithm)

		mk, err := uc.RequireMasterKey()
		require.NoError(t, err)
		assert.NotNil(t, mk)
	})

	t.Run("Success_IdempotentWhenUnsealed", func(t *testing.T) {
		repo := &memoryParamsRepo{}
		uc := newTestUseCase(repo)
		require.NoError(t, uc.Unseal(ctx, []byte("p1")))
		first, _ := uc.RequireMasterKey()

		require.NoError(t, uc.Unseal(ctx, []byte("anything")))
		second, _ := uc.RequireMasterKey()
		assert.Same(t, first, second)
	})

	t.Run("Success_DeterministicAcrossRestarts", func(t *testing.T) {
		repo := &memoryParamsRepo{}
		dekService := cryptoService.NewDekService(cryptoService.NewAEADManager())

		first := newTestUseCase(repo)
		require.NoError(t, first.Unseal(ctx, []byte("p1")))
		mk1, err := first.RequireMasterKey()
		require.NoError(t, err)

		dek, err := dekService.GenerateDek()
		require.NoError(t, err)
		wrapped, err := dekService.Wrap(dek, mk1, cryptoDomain.AESGCM)
		require.NoError(t, err)

		restarted := newTestUseCase(repo)
		require.NoError(t, restarted.Unseal(ctx, []byte("p1")))
		mk2, err := restarted.RequireMasterKey()
		require.NoError(t, err)

		unwrapped, err := dekService.Unwrap(wrapped, mk2, cryptoDomain.AESGCM)
		require.NoError(t, err)
		assert.Equal(t, dek, unwrapped)
		assert.Equal(t, 1, repo.creates)
	})

	t.Run("Error_WrongPassphrase", func(t *testing.T) {
		repo := &memoryParamsRepo{}
		require.NoError(t, newTestUseCase(repo).Unseal(ctx, []byte("p1")))

		uc := newTestUseCase(repo)
		err := uc.Unseal(ctx, []byte("p2"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
		assert.ErrorIs(t, err, apperrors.ErrCryptoFailure)
		assert.True(t, uc.IsSealed())
	})

	t.Run("Success_StoreWithoutCanary", func(t *testing.T) {
		repo := &memoryParamsRepo{params: &cryptoDomain.KDFParams{
			Salt:       make([]byte, cryptoDomain.SaltSize),
			Iterations: cryptoDomain.MinKDFIterations,
		}}
		uc := newTestUseCase(repo)
		require.NoError(t, uc.Unseal(ctx, []byte("legacy")))
		assert.False(t, uc.IsSealed())
		assert.Equal(t, 0, repo.creates)
	})

	t.Run("Error_InvalidPersistedParams", func(t *testing.T) {
		repo := &memoryParamsRepo{params: &cryptoDomain.KDFParams{Salt: []byte{1}, Iterations: 5}}
		uc := newTestUseCase(repo)
		err := uc.Unseal(ctx, []byte("p1"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKDFParams)
		assert.True(t, uc.IsSealed())
	})

	t.Run("Error_EmptyPassphrase", func(t *testing.T) {
		uc := newTestUseCase(&memoryParamsRepo{})
		assert.ErrorIs(t, uc.Unseal(ctx, nil), cryptoDomain.ErrEmptyPassphrase)
		assert.True(t, uc.IsSealed())
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := &mockParamsRepo{}
		repo.On("LoadOrCreateKDFParams", ctx, mock.Anything).Return(nil, false, errors.New("disk full"))

		uc := newTestUseCase(repo)
		err := uc.Unseal(ctx, []byte("p1"))
		assert.ErrorContains(t, err, "disk full")
		assert.True(t, uc.IsSealed())
		repo.AssertExpectations(t)
	})
}

func TestMasterKeyUseCase_ConcurrentUnseal(t *testing.T) {
	ctx := context.Background()
	repo := &memoryParamsRepo{}
	uc := newTestUseCase(repo)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- uc.Unseal(ctx, []byte("p1"))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, repo.creates)
	assert.False(t, uc.IsSealed())
}

func TestMasterKeyUseCase_Seal(t *testing.T) {
	uc := newTestUseCase(&memoryParamsRepo{})
	require.NoError(t, uc.Unseal(context.Background(), []byte("p1")))

	mk, err := uc.RequireMasterKey()
	require.NoError(t, err)

	uc.Seal()
	assert.True(t, uc.IsSealed())
	assert.True(t, mk.IsDestroyed())

	_, err = uc.RequireMasterKey()
	assert.ErrorIs(t, err, cryptoDomain.ErrVaultSealed)

	assert.NotPanics(t, uc.Seal)
}

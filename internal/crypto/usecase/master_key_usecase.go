package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
)

// masterKeyUseCase implements MasterKeyUseCase.
type masterKeyUseCase struct {
	mu         sync.RWMutex
	state      cryptoDomain.VaultState
	masterKey  *cryptoDomain.MasterKey
	paramsRepo KDFParamsRepository
	deriver    cryptoService.KeyDeriver
	engine     cryptoService.CryptoEngine
	algorithm  cryptoDomain.Algorithm
	iterations int
	logger     *slog.Logger
}

// NewMasterKeyUseCase creates a sealed MasterKeyUseCase.
//
// algorithm and iterations only apply when the store is initialized; existing
// parameters always win.
func NewMasterKeyUseCase(
	paramsRepo KDFParamsRepository,
	deriver cryptoService.KeyDeriver,
	engine cryptoService.CryptoEngine,
	algorithm cryptoDomain.Algorithm,
	iterations int,
	logger *slog.Logger,
) MasterKeyUseCase {
	if iterations < cryptoDomain.MinKDFIterations {
		iterations = cryptoDomain.DefaultKDFIterations
	}
	return &masterKeyUseCase{
		state:      cryptoDomain.Sealed,
		paramsRepo: paramsRepo,
		deriver:    deriver,
		engine:     engine,
		algorithm:  algorithm,
		iterations: iterations,
		logger:     logger,
	}
}

// Unseal derives and installs the master key.
func (m *masterKeyUseCase) Unseal(ctx context.Context, passphrase []byte) error {
	defer cryptoDomain.Zero(passphrase)

	if len(passphrase) == 0 {
		return cryptoDomain.ErrEmptyPassphrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == cryptoDomain.Unsealed {
		return nil
	}

	var derived []byte
	params, created, err := m.paramsRepo.LoadOrCreateKDFParams(ctx, func() (*cryptoDomain.KDFParams, error) {
		var err error
		var params *cryptoDomain.KDFParams
		params, derived, err = m.initParams(passphrase)
		return params, err
	})
	if err != nil {
		cryptoDomain.Zero(derived)
		return fmt.Errorf("failed to load key derivation parameters: %w", err)
	}

	if !created {
		cryptoDomain.Zero(derived)
		if err := params.Validate(); err != nil {
			return err
		}
		derived, err = m.deriver.Derive(passphrase, params.Salt, params.Iterations)
		if err != nil {
			return err
		}
		if err := m.verifyCanary(params, derived); err != nil {
			cryptoDomain.Zero(derived)
			return err
		}
	}

	masterKey, err := cryptoDomain.NewMasterKey(derived)
	if err != nil {
		return err
	}

	m.masterKey = masterKey
	m.state = cryptoDomain.Unsealed

	m.logger.Info("vault unsealed",
		slog.Bool("initialized", created),
		slog.Int("kdf_iterations", params.Iterations),
	)
	return nil
}

// initParams generates fresh parameters and the check value. Returns the derived key
// so the caller does not derive twice.
func (m *masterKeyUseCase) initParams(passphrase []byte) (*cryptoDomain.KDFParams, []byte, error) {
	salt, err := m.deriver.NewSalt()
	if err != nil {
		return nil, nil, err
	}

	derived, err := m.deriver.Derive(passphrase, salt, m.iterations)
	if err != nil {
		return nil, nil, err
	}

	canary, err := m.engine.Encrypt(cryptoDomain.CanaryPlaintext, derived, nil, m.algorithm)
	if err != nil {
		cryptoDomain.Zero(derived)
		return nil, nil, fmt.Errorf("failed to create passphrase check value: %w", err)
	}

	params := &cryptoDomain.KDFParams{
		Salt:       salt,
		Iterations: m.iterations,
		Canary:     &canary,
		Algorithm:  m.algorithm,
	}
	return params, derived, nil
}

func (m *masterKeyUseCase) verifyCanary(params *cryptoDomain.KDFParams, derived []byte) error {
	if params.Canary == nil {
		m.logger.Warn("store has no passphrase check value, skipping verification")
		return nil
	}

	plain, err := m.engine.Decrypt(*params.Canary, derived, nil, params.Algorithm)
	if err != nil {
		return cryptoDomain.ErrInvalidPassphrase
	}
	defer cryptoDomain.Zero(plain)

	if subtle.ConstantTimeCompare(plain, cryptoDomain.CanaryPlaintext) != 1 {
		return cryptoDomain.ErrInvalidPassphrase
	}
	return nil
}

// RequireMasterKey returns the installed master key.
func (m *masterKeyUseCase) RequireMasterKey() (*cryptoDomain.MasterKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != cryptoDomain.Unsealed || m.masterKey == nil {
		return nil, cryptoDomain.ErrVaultSealed
	}
	return m.masterKey, nil
}

// State returns the seal state.
func (m *masterKeyUseCase) State() cryptoDomain.VaultState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsSealed reports whether the vault is sealed.
func (m *masterKeyUseCase) IsSealed() bool {
	return m.State() == cryptoDomain.Sealed
}

// Seal drops the master key.
func (m *masterKeyUseCase) Seal() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.masterKey != nil {
		m.masterKey.Destroy()
		m.masterKey = nil
	}
	if m.state == cryptoDomain.Unsealed {
		m.logger.Info("vault sealed")
	}
	m.state = cryptoDomain.Sealed
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allisson/vault/internal/config"
	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	cryptoRepository "github.com/allisson/vault/internal/crypto/repository"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/vault/internal/crypto/usecase"
)

// ErrNoUnsealPassphrase is returned by Unseal when neither passphrase form is configured.
var ErrNoUnsealPassphrase = errors.New(
	"missing VAULT_UNSEAL_PASSPHRASE or VAULT_UNSEAL_PASSPHRASE_CIPHERTEXT environment variable",
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyDeriver returns the PBKDF2 master key deriver.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver()
	})
	return c.keyDeriver
}

// CryptoEngine returns the authenticated encryption engine.
func (c *Container) CryptoEngine() cryptoService.CryptoEngine {
	c.cryptoEngineInit.Do(func() {
		c.cryptoEngine = cryptoService.NewCryptoEngine(c.AEADManager())
	})
	return c.cryptoEngine
}

// DekService returns the data encryption key service.
func (c *Container) DekService() cryptoService.DekService {
	c.dekServiceInit.Do(func() {
		c.dekService = cryptoService.NewDekService(c.AEADManager())
	})
	return c.dekService
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KDFParamsRepository returns the master key parameter store for the configured driver.
func (c *Container) KDFParamsRepository() (cryptoUseCase.KDFParamsRepository, error) {
	var err error
	c.kdfParamsRepoInit.Do(func() {
		c.kdfParamsRepo, err = c.initKDFParamsRepository()
		if err != nil {
			c.initErrors["kdfParamsRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kdfParamsRepo"]; exists {
		return nil, storedErr
	}
	return c.kdfParamsRepo, nil
}

// MasterKeyUseCase returns the seal lifecycle use case. It starts sealed; see Unseal.
func (c *Container) MasterKeyUseCase() (cryptoUseCase.MasterKeyUseCase, error) {
	var err error
	c.masterKeyUseCaseInit.Do(func() {
		c.masterKeyUseCase, err = c.initMasterKeyUseCase()
		if err != nil {
			c.initErrors["masterKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.masterKeyUseCase, nil
}

// Unseal resolves the configured passphrase and unseals the vault.
func (c *Container) Unseal(ctx context.Context) error {
	masterKeys, err := c.MasterKeyUseCase()
	if err != nil {
		return err
	}

	passphrase, err := c.unsealPassphrase(ctx)
	if err != nil {
		return err
	}

	// Unseal wipes passphrase.
	if err := masterKeys.Unseal(ctx, passphrase); err != nil {
		return fmt.Errorf("failed to unseal vault: %w", err)
	}

	c.Logger().Info("vault unsealed", slog.String("state", string(masterKeys.State())))
	return nil
}

// unsealPassphrase returns the plaintext passphrase, decrypting it through the KMS when it is
// configured in its encrypted form.
func (c *Container) unsealPassphrase(ctx context.Context) ([]byte, error) {
	switch {
	case c.config.UnsealPassphrase != "":
		return []byte(c.config.UnsealPassphrase), nil
	case c.config.UnsealPassphraseCiphertext != "":
		passphrase, err := cryptoService.DecryptPassphrase(
			ctx,
			c.KMSService(),
			c.config.KMSKeyURI,
			c.config.UnsealPassphraseCiphertext,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt unseal passphrase: %w", err)
		}
		return passphrase, nil
	default:
		return nil, ErrNoUnsealPassphrase
	}
}

// initKDFParamsRepository creates the parameter store sharing the secret store's backend.
func (c *Container) initKDFParamsRepository() (cryptoUseCase.KDFParamsRepository, error) {
	switch c.config.StorageDriver {
	case config.StorageDriverFile:
		return cryptoRepository.NewFileKDFParamsRepository(c.Store()), nil
	case config.StorageDriverSQLite:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for kdf params repository: %w", err)
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for kdf params repository: %w", err)
		}
		return cryptoRepository.NewSQLiteKDFParamsRepository(db, txManager), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}
}

// initMasterKeyUseCase creates the master key use case with all its dependencies.
func (c *Container) initMasterKeyUseCase() (cryptoUseCase.MasterKeyUseCase, error) {
	paramsRepo, err := c.KDFParamsRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get kdf params repository for master key use case: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.CryptoAlgorithm)
	if err != nil {
		return nil, err
	}

	return cryptoUseCase.NewMasterKeyUseCase(
		paramsRepo,
		c.KeyDeriver(),
		c.CryptoEngine(),
		algorithm,
		c.config.KDFIterations,
		c.Logger(),
	), nil
}

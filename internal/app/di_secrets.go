package app

import (
	"context"
	"fmt"

	"github.com/allisson/vault/internal/config"
	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	secretsHTTP "github.com/allisson/vault/internal/secrets/http"
	secretsRepository "github.com/allisson/vault/internal/secrets/repository"
	secretsUseCase "github.com/allisson/vault/internal/secrets/usecase"
)

// SecretRepository returns the secret repository based on the storage driver.
func (c *Container) SecretRepository() (secretsUseCase.SecretRepository, error) {
	var err error
	c.secretRepositoryInit.Do(func() {
		c.secretRepository, err = c.initSecretRepository()
		if err != nil {
			c.initErrors["secretRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretRepository"]; exists {
		return nil, storedErr
	}
	return c.secretRepository, nil
}

// SecretUseCase returns the secret use case.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	var err error
	c.secretUseCaseInit.Do(func() {
		c.secretUseCase, err = c.initSecretUseCase()
		if err != nil {
			c.initErrors["secretUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretUseCase"]; exists {
		return nil, storedErr
	}
	return c.secretUseCase, nil
}

// SecretHandler returns the HTTP handler for secret management operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// initSecretRepository creates the secret repository based on the storage driver.
func (c *Container) initSecretRepository() (secretsUseCase.SecretRepository, error) {
	switch c.config.StorageDriver {
	case config.StorageDriverFile:
		return secretsRepository.NewFileSecretRepository(c.Store(), c.Logger()), nil
	case config.StorageDriverSQLite:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for secret repository: %w", err)
		}
		return secretsRepository.NewSQLiteSecretRepository(db, txManager), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}
}

// initSecretUseCase creates the secret use case with all its dependencies.
func (c *Container) initSecretUseCase() (secretsUseCase.SecretUseCase, error) {
	secretRepository, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for secret use case: %w", err)
	}

	// Policies are loaded once here; later reloads go through PolicyUseCase.Reload.
	policies, err := c.PolicyUseCase(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get policy use case for secret use case: %w", err)
	}

	masterKeys, err := c.MasterKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key use case for secret use case: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.CryptoAlgorithm)
	if err != nil {
		return nil, err
	}

	baseUseCase := secretsUseCase.NewSecretUseCase(
		secretRepository,
		policies,
		masterKeys,
		c.DekService(),
		c.CryptoEngine(),
		algorithm,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
		}
		return secretsUseCase.NewSecretUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSecretHandler creates the secret HTTP handler with all its dependencies.
func (c *Container) initSecretHandler() (*secretsHTTP.SecretHandler, error) {
	secretUseCase, err := c.SecretUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for secret handler: %w", err)
	}

	return secretsHTTP.NewSecretHandler(secretUseCase, c.Logger()), nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	authService "github.com/allisson/vault/internal/auth/service"
	authUseCase "github.com/allisson/vault/internal/auth/usecase"
)

// PolicyUseCase returns the policy engine loaded from the configured policy file.
func (c *Container) PolicyUseCase(ctx context.Context) (authUseCase.PolicyUseCase, error) {
	var err error
	c.policyUseCaseInit.Do(func() {
		c.policyUseCase, err = c.initPolicyUseCase(ctx)
		if err != nil {
			c.initErrors["policyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyUseCase"]; exists {
		return nil, storedErr
	}
	return c.policyUseCase, nil
}

// DefaultIdentity returns the fingerprint of the configured default certificate, or "" when
// none is configured or AllowDefaultIdentity is off.
func (c *Container) DefaultIdentity() (string, error) {
	var err error
	c.defaultIdentityInit.Do(func() {
		c.defaultIdentity, err = c.initDefaultIdentity()
		if err != nil {
			c.initErrors["defaultIdentity"] = err
		}
	})
	if err != nil {
		return "", err
	}
	if storedErr, exists := c.initErrors["defaultIdentity"]; exists {
		return "", storedErr
	}
	return c.defaultIdentity, nil
}

// initPolicyUseCase creates the policy use case from the policy file.
func (c *Container) initPolicyUseCase(ctx context.Context) (authUseCase.PolicyUseCase, error) {
	logger := c.Logger()

	policies, err := authUseCase.NewPolicyUseCase(ctx, authUseCase.FileLoader(c.config.PoliciesPath), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	logger.Info("policies loaded",
		slog.String("path", c.config.PoliciesPath),
		slog.Int("identities", len(policies.Identities())),
	)
	return policies, nil
}

// initDefaultIdentity fingerprints the default certificate when cert-less API calls are
// allowed to act as it.
func (c *Container) initDefaultIdentity() (string, error) {
	if !c.config.AllowDefaultIdentity || c.config.CertPath == "" {
		return "", nil
	}

	fingerprint, err := authService.FingerprintFile(c.config.CertPath)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint default certificate: %w", err)
	}

	logger := c.Logger()
	if c.config.IsLoopbackHost() {
		logger.Info("requests without a client certificate act as the default identity",
			slog.String("cert_path", c.config.CertPath),
		)
	} else {
		logger.Warn("requests without a client certificate act as the default identity on a non-loopback host",
			slog.String("cert_path", c.config.CertPath),
			slog.String("host", c.config.ServerHost),
		)
	}
	return fingerprint, nil
}

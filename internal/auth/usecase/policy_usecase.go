package usecase

import (
	"context"
	"log/slog"
	"sync"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	authService "github.com/allisson/vault/internal/auth/service"
)

type policyUseCase struct {
	mu     sync.RWMutex
	set    *authDomain.PolicySet
	loader PolicyLoader
	logger *slog.Logger
}

// NewPolicyUseCase loads the initial policy set and returns a PolicyUseCase.
func NewPolicyUseCase(ctx context.Context, loader PolicyLoader, logger *slog.Logger) (PolicyUseCase, error) {
	p := &policyUseCase{loader: loader, logger: logger}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// FileLoader returns a PolicyLoader reading the policy file at path.
func FileLoader(path string) PolicyLoader {
	return func(ctx context.Context) (*authDomain.PolicySet, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return authService.LoadPolicyFile(path)
	}
}

func (p *policyUseCase) current() *authDomain.PolicySet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set
}

// CanRead reports whether identity may read path.
func (p *policyUseCase) CanRead(identity, path string) bool {
	return p.current().CanRead(identity, path)
}

// CanWrite reports whether identity may write path.
func (p *policyUseCase) CanWrite(identity, path string) bool {
	return p.current().CanWrite(identity, path)
}

// Identities lists the identities that currently have a policy.
func (p *policyUseCase) Identities() []string {
	return p.current().Identities()
}

// Reload replaces the policy set.
func (p *policyUseCase) Reload(ctx context.Context) error {
	set, err := p.loader(ctx)
	if err != nil {
		p.logger.Error("failed to load policies", slog.Any("error", err))
		return err
	}

	p.mu.Lock()
	p.set = set
	p.mu.Unlock()

	p.logger.Info("policies loaded", slog.Int("identities", set.Len()))
	if set.Len() == 0 {
		p.logger.Warn("no policies configured, every request will be denied")
	}
	return nil
}

// Package usecase holds the live policy set consulted for every vault operation.
package usecase

import (
	"context"

	authDomain "github.com/allisson/vault/internal/auth/domain"
)

// PolicyLoader produces a freshly compiled policy set.
type PolicyLoader func(ctx context.Context) (*authDomain.PolicySet, error)

// PolicyUseCase answers authorization questions against the current policy set and swaps it
// on reload.
type PolicyUseCase interface {
	// CanRead reports whether identity may read path.
	CanRead(identity, path string) bool

	// CanWrite reports whether identity may write path.
	CanWrite(identity, path string) bool

	// Reload replaces the policy set. On failure the previous set stays active.
	Reload(ctx context.Context) error

	// Identities lists the identities that currently have a policy.
	Identities() []string
}

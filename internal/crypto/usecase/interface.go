// Package usecase implements the vault seal lifecycle.
//
// The MasterKeyUseCase owns the vault state value (Sealed or Unsealed) and is the
// only component that derives the master key. Every key-dependent operation asks it
// for the key through RequireMasterKey and fails with ErrSealed before an unseal.
//
// # Unseal
//
// On the first unseal of an empty store a random salt and the default iteration count
// are generated and persisted, together with a check value encrypted under the new
// master key, before the key is installed. Initialization runs inside the parameter
// store's exclusive section, so concurrent initializers cannot persist divergent salts.
// Later unseals reuse the persisted parameters and verify the check value.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// KDFParamsRepository persists the master key derivation parameters.
type KDFParamsRepository interface {
	// LoadKDFParams returns the persisted parameters or ErrKDFParamsNotFound.
	LoadKDFParams(ctx context.Context) (*cryptoDomain.KDFParams, error)

	// LoadOrCreateKDFParams returns the persisted parameters, or calls create and persists
	// its result when none exist. created reports which case happened. The whole sequence
	// is exclusive with respect to every other store mutation.
	LoadOrCreateKDFParams(
		ctx context.Context,
		create func() (*cryptoDomain.KDFParams, error),
	) (params *cryptoDomain.KDFParams, created bool, err error)
}

// MasterKeyUseCase manages the seal state and the in-memory master key.
type MasterKeyUseCase interface {
	// Unseal derives the master key from passphrase. The passphrase slice is wiped.
	// A no-op when already unsealed.
	Unseal(ctx context.Context, passphrase []byte) error

	// RequireMasterKey returns the master key or ErrVaultSealed.
	RequireMasterKey() (*cryptoDomain.MasterKey, error)

	// State returns the current seal state.
	State() cryptoDomain.VaultState

	// IsSealed reports whether State is Sealed.
	IsSealed() bool

	// Seal destroys the in-memory master key and returns to Sealed.
	Seal()
}

// Package usecase orchestrates the vault operations exposed to the CLI and HTTP layers.
//
// Every operation takes an already resolved caller identity. Authorization always runs
// before any key generation, decryption or storage access; list operations filter
// silently instead of failing.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// SecretRepository defines the interface for secret record persistence.
type SecretRepository interface {
	// Get returns the record at path or ErrSecretNotFound.
	Get(ctx context.Context, path string) (*secretsDomain.Secret, error)

	// Save creates or overwrites the record at secret.Path, assigning Version, CreatedAt and
	// UpdatedAt on the argument. When expectedVersion is non-nil the stored version must
	// match it (0 meaning absent) or ErrSecretVersionConflict is returned.
	Save(ctx context.Context, secret *secretsDomain.Secret, expectedVersion *uint) error

	// Delete removes the record at path. Absent paths are not an error.
	Delete(ctx context.Context, path string) error

	// List returns every stored path starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// ListKeys returns the immediate child segments under path.
	ListKeys(ctx context.Context, path string) ([]string, error)
}

// PolicyEngine answers path authorization questions for an identity.
type PolicyEngine interface {
	CanRead(identity, path string) bool
	CanWrite(identity, path string) bool
}

// MasterKeyProvider hands out the master key once the vault is unsealed.
type MasterKeyProvider interface {
	RequireMasterKey() (*cryptoDomain.MasterKey, error)
}

// SecretUseCase defines the vault operations.
type SecretUseCase interface {
	// Put encrypts plaintext and stores it at path.
	Put(ctx context.Context, identity, path string, plaintext []byte) (*secretsDomain.Secret, error)

	// PutWithVersion is Put that only succeeds when the stored version equals expectedVersion
	// (0 for "does not exist yet").
	PutWithVersion(
		ctx context.Context,
		identity, path string,
		plaintext []byte,
		expectedVersion uint,
	) (*secretsDomain.Secret, error)

	// Get retrieves and decrypts a secret.
	//
	// Security Note: The returned Secret contains plaintext data in the Plaintext field.
	// Callers MUST zero this data after use by calling cryptoDomain.Zero(secret.Plaintext).
	Get(ctx context.Context, identity, path string) (*secretsDomain.Secret, error)

	// Delete removes the secret at path. Requires write access.
	Delete(ctx context.Context, identity, path string) error

	// List returns the readable paths starting with prefix.
	List(ctx context.Context, identity, prefix string) ([]string, error)

	// ListKeys returns the immediate children of path that lead to readable secrets.
	ListKeys(ctx context.Context, identity, path string) ([]string, error)
}

package repository

import (
	"time"

	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// nextVersion assigns version and timestamps on secret given the currently stored record
// (nil when absent). A new record keeps a positive secret.Version as its initial version and
// starts at 1 otherwise. A non-nil expectedVersion must equal the stored version, 0 standing
// for "no record".
func nextVersion(
	secret *secretsDomain.Secret,
	current *secretsDomain.Secret,
	expectedVersion *uint,
	now time.Time,
) error {
	var currentVersion uint
	if current != nil {
		currentVersion = current.Version
	}

	if expectedVersion != nil && *expectedVersion != currentVersion {
		return secretsDomain.ErrSecretVersionConflict
	}

	secret.UpdatedAt = now
	if current == nil {
		if secret.Version == 0 {
			secret.Version = 1
		}
		secret.CreatedAt = now
		return nil
	}

	secret.Version = current.Version + 1
	secret.CreatedAt = current.CreatedAt
	return nil
}

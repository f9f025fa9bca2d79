package domain

import (
	"github.com/allisson/vault/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates no record exists at the path.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrSecretVersionConflict indicates the stored version differs from the expected one.
	ErrSecretVersionConflict = errors.Wrap(errors.ErrConflict, "secret version mismatch")

	// ErrInvalidPath indicates a path that cannot be stored.
	ErrInvalidPath = errors.Wrap(errors.ErrInvalidInput, "invalid secret path")

	// ErrInvalidSecretRecord indicates a persisted record with missing or malformed fields.
	ErrInvalidSecretRecord = errors.Wrap(errors.ErrInvalidFormat, "invalid secret record")
)

package domain

import (
	"github.com/allisson/vault/internal/errors"
)

// Authorization errors.
var (
	// ErrAccessDenied indicates the identity's policy does not grant the operation on the path.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrInvalidPolicy indicates a policy document that cannot be used.
	ErrInvalidPolicy = errors.Wrap(errors.ErrInvalidFormat, "invalid policy")

	// ErrMissingIdentity indicates a request without a resolvable caller identity.
	ErrMissingIdentity = errors.Wrap(errors.ErrUnauthorized, "missing identity")

	// ErrInvalidCertificate indicates credential material that does not contain a certificate.
	ErrInvalidCertificate = errors.Wrap(errors.ErrInvalidInput, "invalid certificate")
)

package domain

import (
	"errors"
	"fmt"
)

// KDFParams are the persisted inputs of the master key derivation.
//
// They are generated once, on the first unseal of an empty store, and reused on
// every later unseal so the same passphrase always yields the same master key.
type KDFParams struct {
	Salt       []byte
	Iterations int

	// Canary is a fixed check value encrypted under the master key when the
	// parameters were created. Nil for stores initialized without one.
	Canary *Ciphertext

	// Algorithm used to encrypt Canary.
	Algorithm Algorithm
}

// CanaryPlaintext is the value sealed into KDFParams.Canary.
var CanaryPlaintext = []byte("vault-master-key-check-v1")

// Validate checks the parameters read from the store.
func (p *KDFParams) Validate() error {
	if p == nil {
		return ErrInvalidKDFParams
	}
	if len(p.Salt) < SaltSize {
		return fmt.Errorf("%w: salt must be at least %d bytes, got %d", ErrInvalidKDFParams, SaltSize, len(p.Salt))
	}
	if p.Iterations < MinKDFIterations {
		return fmt.Errorf(
			"%w: iterations must be at least %d, got %d",
			ErrInvalidKDFParams,
			MinKDFIterations,
			p.Iterations,
		)
	}
	if p.Canary != nil {
		if len(p.Canary.Nonce) != NonceSize {
			return fmt.Errorf("%w: canary nonce must be %d bytes", ErrInvalidKDFParams, NonceSize)
		}
		if _, err := ParseAlgorithm(string(p.Algorithm)); err != nil {
			return errors.Join(ErrInvalidKDFParams, err)
		}
	}
	return nil
}

package domain

import "fmt"

// Algorithm represents the AEAD algorithm used to wrap DEKs and encrypt secrets.
//
// Both supported algorithms use 256-bit keys, 96-bit nonces and 128-bit tags, so
// records written with either can live side by side in the same store.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Default for new writes.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, preferred on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of master keys and DEKs.
	KeySize = 32

	// NonceSize is the AEAD nonce size in bytes for both algorithms.
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = 16

	// SaltSize is the size in bytes of the randomly generated KDF salt.
	SaltSize = 16

	// DefaultKDFIterations is the PBKDF2 iteration count written on first unseal.
	DefaultKDFIterations = 120000

	// MinKDFIterations is the lowest iteration count accepted from the store or config.
	MinKDFIterations = 100000
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

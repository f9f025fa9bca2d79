package service

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	apperrors "github.com/allisson/vault/internal/errors"
)

// Fingerprint returns the identity string of a certificate: the SHA-256 digest of its DER
// encoding as 64 uppercase hex characters.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// FingerprintPEM returns the fingerprint of the first CERTIFICATE block in data.
func FingerprintPEM(data []byte) (string, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return "", fmt.Errorf("%w: no CERTIFICATE block found", authDomain.ErrInvalidCertificate)
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("%w: %v", authDomain.ErrInvalidCertificate, err)
		}
		return Fingerprint(cert), nil
	}
}

// FingerprintFile returns the fingerprint of the PEM certificate stored at path.
func FingerprintFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided certificate path
	if err != nil {
		return "", apperrors.Wrap(err, "failed to read certificate")
	}
	return FingerprintPEM(data)
}

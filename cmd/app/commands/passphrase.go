package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
)

// RunEncryptPassphrase reads an unseal passphrase from the reader (first line), encrypts it
// with the KMS key at kmsKeyURI and prints the environment variables the server needs to
// unseal without a plaintext passphrase.
//
// For local development, use kmsKeyURI="base64key://<32-byte-base64-key>". Never use the
// base64key scheme in production.
func RunEncryptPassphrase(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	kmsKeyURI string,
	io IOTuple,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required\n\nFor local development, use:\n  --kms-key-uri=\"base64key://<32-byte-base64-key>\"\n\nFor production, use cloud KMS providers:\n  --kms-key-uri=\"gcpkms://projects/.../cryptoKeys/...\"\n  --kms-key-uri=\"awskms:///alias/...\"\n  --kms-key-uri=\"azurekeyvault://...\"\n  --kms-key-uri=\"hashivault://...\"",
		)
	}

	line, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	passphrase := []byte(strings.TrimRight(line, "\r\n"))
	defer cryptoDomain.Zero(passphrase)

	if len(passphrase) == 0 {
		return cryptoDomain.ErrEmptyPassphrase
	}

	encoded, err := cryptoService.EncryptPassphrase(ctx, kmsService, kmsKeyURI, passphrase)
	if err != nil {
		return err
	}

	logger.Info("unseal passphrase encrypted")

	_, _ = fmt.Fprintln(io.Writer, "# Unseal configuration (KMS mode)")
	_, _ = fmt.Fprintln(io.Writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintf(io.Writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(io.Writer, "VAULT_UNSEAL_PASSPHRASE_CIPHERTEXT=\"%s\"\n", encoded)
	return nil
}

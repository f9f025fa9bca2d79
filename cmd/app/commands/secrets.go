package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	secretsUseCase "github.com/allisson/vault/internal/secrets/usecase"
)

// NoCAS disables the version check of RunPut.
const NoCAS = -1

// secretOutput is the JSON shape of put and get results.
type secretOutput struct {
	Path      string    `json:"path"`
	Version   uint      `json:"version"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunPut stores value at path on behalf of identity. A value of "-" is read from the
// reader, without its trailing newline. cas >= 0 makes the write conditional on the current
// version (0: the path must not exist).
//
// Requirements: the vault must be unsealed.
func RunPut(
	ctx context.Context,
	secretUseCase secretsUseCase.SecretUseCase,
	logger *slog.Logger,
	identity, path, value string,
	cas int,
	format string,
	io IOTuple,
) error {
	plaintext, err := readValue(value, io.Reader)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(plaintext)

	var version uint
	var createdAt, updatedAt time.Time
	if cas >= 0 {
		secret, err := secretUseCase.PutWithVersion(ctx, identity, path, plaintext, uint(cas))
		if err != nil {
			return fmt.Errorf("failed to put secret: %w", err)
		}
		version, createdAt, updatedAt = secret.Version, secret.CreatedAt, secret.UpdatedAt
	} else {
		secret, err := secretUseCase.Put(ctx, identity, path, plaintext)
		if err != nil {
			return fmt.Errorf("failed to put secret: %w", err)
		}
		version, createdAt, updatedAt = secret.Version, secret.CreatedAt, secret.UpdatedAt
	}

	logger.Info("secret stored", slog.String("path", path), slog.Uint64("version", uint64(version)))

	if format == "json" {
		return outputJSON(secretOutput{
			Path:      path,
			Version:   version,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}, io.Writer)
	}

	_, err = fmt.Fprintf(io.Writer, "Stored %s (version %d)\n", path, version)
	return err
}

// RunGet prints the secret stored at path. Text output is the raw value only.
//
// Requirements: the vault must be unsealed.
func RunGet(
	ctx context.Context,
	secretUseCase secretsUseCase.SecretUseCase,
	identity, path string,
	format string,
	io IOTuple,
) error {
	secret, err := secretUseCase.Get(ctx, identity, path)
	if err != nil {
		return fmt.Errorf("failed to get secret: %w", err)
	}
	defer cryptoDomain.Zero(secret.Plaintext)

	if format == "json" {
		return outputJSON(secretOutput{
			Path:      secret.Path,
			Version:   secret.Version,
			Secret:    string(secret.Plaintext),
			CreatedAt: secret.CreatedAt,
			UpdatedAt: secret.UpdatedAt,
		}, io.Writer)
	}

	if _, err := io.Writer.Write(secret.Plaintext); err != nil {
		return err
	}
	_, err = fmt.Fprintln(io.Writer)
	return err
}

// RunDelete removes the secret stored at path. Deleting an absent path succeeds.
func RunDelete(
	ctx context.Context,
	secretUseCase secretsUseCase.SecretUseCase,
	logger *slog.Logger,
	identity, path string,
	io IOTuple,
) error {
	if err := secretUseCase.Delete(ctx, identity, path); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	logger.Info("secret deleted", slog.String("path", path))
	_, err := fmt.Fprintf(io.Writer, "Deleted %s\n", path)
	return err
}

// RunList prints the readable paths starting with prefix, one per line.
func RunList(
	ctx context.Context,
	secretUseCase secretsUseCase.SecretUseCase,
	identity, prefix string,
	format string,
	io IOTuple,
) error {
	paths, err := secretUseCase.List(ctx, identity, prefix)
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}
	return outputLines(paths, format, io.Writer)
}

// RunKeys prints the visible children of path, directories with a trailing "/".
func RunKeys(
	ctx context.Context,
	secretUseCase secretsUseCase.SecretUseCase,
	identity, path string,
	format string,
	io IOTuple,
) error {
	keys, err := secretUseCase.ListKeys(ctx, identity, path)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	return outputLines(keys, format, io.Writer)
}

// readValue returns value as bytes, or the reader content when value is "-".
func readValue(value string, reader io.Reader) ([]byte, error) {
	if value != "-" {
		return []byte(value), nil
	}
	if reader == nil {
		return nil, fmt.Errorf("no input to read the secret from")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	data = bytes.TrimSuffix(data, []byte("\n"))
	return bytes.TrimSuffix(data, []byte("\r")), nil
}

func outputLines(lines []string, format string, writer io.Writer) error {
	if format == "json" {
		if lines == nil {
			lines = []string{}
		}
		return outputJSON(lines, writer)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}
	return nil
}

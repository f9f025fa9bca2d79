// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/vault/internal/app"
	authService "github.com/allisson/vault/internal/auth/service"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// ResolveIdentity returns the caller identity of a CLI invocation: the explicit identity
// when set, else the fingerprint of certPath.
func ResolveIdentity(identity, certPath string) (string, error) {
	if identity != "" {
		return identity, nil
	}
	if certPath == "" {
		return "", fmt.Errorf("--identity or --cert is required (or set VAULT_CERT_PATH)")
	}

	fingerprint, err := authService.FingerprintFile(certPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve identity: %w", err)
	}
	return fingerprint, nil
}

// outputJSON outputs the result in JSON format for machine consumption.
func outputJSON(result any, writer io.Writer) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(writer, string(jsonBytes))
	return err
}

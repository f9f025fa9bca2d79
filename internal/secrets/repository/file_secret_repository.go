// Package repository implements secret persistence for the file and SQLite storage drivers.
//
// Each path holds exactly one record. Saving an existing path overwrites it in place,
// increments its version and keeps the original creation time.
package repository

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	apperrors "github.com/allisson/vault/internal/errors"
	"github.com/allisson/vault/internal/filestore"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

const secretKeyPrefix = "secret."

// Record fields stored under secret.<hex(path)>.
const (
	fieldWrappedDek  = "wrapped_dek"
	fieldDekNonce    = "dek_nonce"
	fieldCiphertext  = "ciphertext"
	fieldSecretNonce = "secret_nonce"
	fieldAlgorithm   = "algorithm"
	fieldVersion     = "version"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

var recordFields = []string{
	fieldWrappedDek,
	fieldDekNonce,
	fieldCiphertext,
	fieldSecretNonce,
	fieldAlgorithm,
	fieldVersion,
	fieldCreatedAt,
	fieldUpdatedAt,
}

// FileSecretRepository stores secrets in a filestore.Store.
type FileSecretRepository struct {
	store  *filestore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewFileSecretRepository creates a FileSecretRepository on top of store.
func NewFileSecretRepository(store *filestore.Store, logger *slog.Logger) *FileSecretRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSecretRepository{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func recordKey(path, field string) string {
	return secretKeyPrefix + hex.EncodeToString([]byte(path)) + "." + field
}

// Get returns the record at path.
func (f *FileSecretRepository) Get(ctx context.Context, path string) (*secretsDomain.Secret, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var secret *secretsDomain.Secret
	err := f.store.View(func(entries map[string]string) error {
		if _, ok := entries[recordKey(path, fieldVersion)]; !ok {
			return secretsDomain.ErrSecretNotFound
		}

		s, err := decodeRecord(path, entries)
		if err != nil {
			return err
		}
		secret = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return secret, nil
}

// Save creates or overwrites the record at secret.Path.
func (f *FileSecretRepository) Save(
	ctx context.Context,
	secret *secretsDomain.Secret,
	expectedVersion *uint,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return f.store.Update(func(entries map[string]string) (bool, error) {
		var current *secretsDomain.Secret
		if _, ok := entries[recordKey(secret.Path, fieldVersion)]; ok {
			s, err := decodeRecord(secret.Path, entries)
			if err != nil {
				return false, err
			}
			current = s
		}

		if err := nextVersion(secret, current, expectedVersion, f.now()); err != nil {
			return false, err
		}

		encodeRecord(secret, entries)
		return true, nil
	})
}

// Delete removes the record at path. Deleting an absent path is a no-op.
func (f *FileSecretRepository) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return f.store.Update(func(entries map[string]string) (bool, error) {
		changed := false
		for _, field := range recordFields {
			key := recordKey(path, field)
			if _, ok := entries[key]; ok {
				delete(entries, key)
				changed = true
			}
		}
		return changed, nil
	})
}

// List returns the sorted stored paths that start with prefix. Records that cannot be
// decoded are logged and skipped.
func (f *FileSecretRepository) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paths []string
	err := f.store.View(func(entries map[string]string) error {
		paths = f.storedPaths(entries)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return secretsDomain.FilterPrefix(paths, prefix), nil
}

// ListKeys returns the immediate children of path.
func (f *FileSecretRepository) ListKeys(ctx context.Context, path string) ([]string, error) {
	dir := secretsDomain.NormalizeDir(path)

	paths, err := f.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	return secretsDomain.ChildKeys(paths, dir), nil
}

func (f *FileSecretRepository) storedPaths(entries map[string]string) []string {
	suffix := "." + fieldVersion

	paths := make([]string, 0)
	for key := range entries {
		if !strings.HasPrefix(key, secretKeyPrefix) || !strings.HasSuffix(key, suffix) {
			continue
		}

		encoded := strings.TrimSuffix(strings.TrimPrefix(key, secretKeyPrefix), suffix)
		raw, err := hex.DecodeString(encoded)
		if err != nil || len(raw) == 0 {
			f.logger.Warn("skipping store key with undecodable path", slog.String("key", key))
			continue
		}

		path := string(raw)
		if _, err := decodeRecord(path, entries); err != nil {
			f.logger.Warn("skipping malformed secret record",
				slog.String("key", key),
				slog.Any("error", err),
			)
			continue
		}
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}

func encodeRecord(secret *secretsDomain.Secret, entries map[string]string) {
	enc := base64.StdEncoding
	entries[recordKey(secret.Path, fieldWrappedDek)] = enc.EncodeToString(secret.WrappedDek.Data)
	entries[recordKey(secret.Path, fieldDekNonce)] = enc.EncodeToString(secret.WrappedDek.Nonce)
	entries[recordKey(secret.Path, fieldCiphertext)] = enc.EncodeToString(secret.Ciphertext.Data)
	entries[recordKey(secret.Path, fieldSecretNonce)] = enc.EncodeToString(secret.Ciphertext.Nonce)
	entries[recordKey(secret.Path, fieldAlgorithm)] = string(secret.Algorithm)
	entries[recordKey(secret.Path, fieldVersion)] = strconv.FormatUint(uint64(secret.Version), 10)
	entries[recordKey(secret.Path, fieldCreatedAt)] = secret.CreatedAt.UTC().Format(time.RFC3339Nano)
	entries[recordKey(secret.Path, fieldUpdatedAt)] = secret.UpdatedAt.UTC().Format(time.RFC3339Nano)
}

func decodeRecord(path string, entries map[string]string) (*secretsDomain.Secret, error) {
	field := func(name string) (string, error) {
		v, ok := entries[recordKey(path, name)]
		if !ok {
			return "", apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: missing %s", path, name)
		}
		return v, nil
	}
	binary := func(name string) ([]byte, error) {
		v, err := field(name)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: malformed %s", path, name)
		}
		return b, nil
	}
	timestamp := func(name string) (time.Time, error) {
		v, err := field(name)
		if err != nil {
			return time.Time{}, err
		}
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: malformed %s", path, name)
		}
		return ts.UTC(), nil
	}

	secret := &secretsDomain.Secret{Path: path}
	var err error

	if secret.WrappedDek.Data, err = binary(fieldWrappedDek); err != nil {
		return nil, err
	}
	if secret.WrappedDek.Nonce, err = binary(fieldDekNonce); err != nil {
		return nil, err
	}
	if secret.Ciphertext.Data, err = binary(fieldCiphertext); err != nil {
		return nil, err
	}
	if secret.Ciphertext.Nonce, err = binary(fieldSecretNonce); err != nil {
		return nil, err
	}

	algorithm, err := field(fieldAlgorithm)
	if err != nil {
		return nil, err
	}
	secret.Algorithm = cryptoDomain.Algorithm(algorithm)

	rawVersion, err := field(fieldVersion)
	if err != nil {
		return nil, err
	}
	version, err := strconv.ParseUint(rawVersion, 10, 32)
	if err != nil {
		return nil, apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: malformed %s", path, fieldVersion)
	}
	secret.Version = uint(version)

	if secret.CreatedAt, err = timestamp(fieldCreatedAt); err != nil {
		return nil, err
	}
	if secret.UpdatedAt, err = timestamp(fieldUpdatedAt); err != nil {
		return nil, err
	}

	if err := secret.Validate(); err != nil {
		return nil, apperrors.Wrap(err, path)
	}
	return secret, nil
}

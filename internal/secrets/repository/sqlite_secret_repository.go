package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/vault/internal/database"
	apperrors "github.com/allisson/vault/internal/errors"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// SQLiteSecretRepository implements Secret persistence for SQLite databases.
type SQLiteSecretRepository struct {
	db        *sql.DB
	txManager database.TxManager
	now       func() time.Time
}

// NewSQLiteSecretRepository creates a new SQLite Secret repository instance.
func NewSQLiteSecretRepository(db *sql.DB, txManager database.TxManager) *SQLiteSecretRepository {
	return &SQLiteSecretRepository{
		db:        db,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get retrieves the record at path.
func (s *SQLiteSecretRepository) Get(ctx context.Context, path string) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT path, wrapped_dek, dek_nonce, ciphertext, secret_nonce, algorithm, version, created_at, updated_at
			  FROM secrets
			  WHERE path = ?`

	var (
		secret    secretsDomain.Secret
		createdAt string
		updatedAt string
	)
	err := querier.QueryRowContext(ctx, query, path).Scan(
		&secret.Path,
		&secret.WrappedDek.Data,
		&secret.WrappedDek.Nonce,
		&secret.Ciphertext.Data,
		&secret.Ciphertext.Nonce,
		&secret.Algorithm,
		&secret.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret by path")
	}

	if secret.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: malformed created_at", path)
	}
	if secret.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, apperrors.Wrapf(secretsDomain.ErrInvalidSecretRecord, "%s: malformed updated_at", path)
	}
	if err := secret.Validate(); err != nil {
		return nil, apperrors.Wrap(err, path)
	}

	return &secret, nil
}

// Save creates or overwrites the record at secret.Path inside a transaction.
func (s *SQLiteSecretRepository) Save(
	ctx context.Context,
	secret *secretsDomain.Secret,
	expectedVersion *uint,
) error {
	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.Get(ctx, secret.Path)
		if err != nil && !errors.Is(err, secretsDomain.ErrSecretNotFound) {
			return err
		}

		if err := nextVersion(secret, current, expectedVersion, s.now()); err != nil {
			return err
		}

		querier := database.GetTx(ctx, s.db)
		query := `INSERT INTO secrets (path, wrapped_dek, dek_nonce, ciphertext, secret_nonce, algorithm, version, created_at, updated_at)
				  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				  ON CONFLICT(path) DO UPDATE SET
					wrapped_dek = excluded.wrapped_dek,
					dek_nonce = excluded.dek_nonce,
					ciphertext = excluded.ciphertext,
					secret_nonce = excluded.secret_nonce,
					algorithm = excluded.algorithm,
					version = excluded.version,
					updated_at = excluded.updated_at`

		_, err = querier.ExecContext(
			ctx,
			query,
			secret.Path,
			secret.WrappedDek.Data,
			secret.WrappedDek.Nonce,
			secret.Ciphertext.Data,
			secret.Ciphertext.Nonce,
			string(secret.Algorithm),
			secret.Version,
			secret.CreatedAt.UTC().Format(time.RFC3339Nano),
			secret.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to save secret")
		}
		return nil
	})
}

// Delete removes the record at path. Deleting an absent path is a no-op.
func (s *SQLiteSecretRepository) Delete(ctx context.Context, path string) error {
	querier := database.GetTx(ctx, s.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE path = ?`, path); err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}
	return nil
}

// List returns the sorted paths that start with prefix.
func (s *SQLiteSecretRepository) List(ctx context.Context, prefix string) ([]string, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT path FROM secrets
			  WHERE substr(path, 1, length(?)) = ?
			  ORDER BY path`

	rows, err := querier.QueryContext(ctx, query, prefix, prefix)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer func() {
		_ = rows.Close()
	}()

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret path")
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secrets")
	}

	return paths, nil
}

// ListKeys returns the immediate children of path.
func (s *SQLiteSecretRepository) ListKeys(ctx context.Context, path string) ([]string, error) {
	dir := secretsDomain.NormalizeDir(path)

	paths, err := s.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	return secretsDomain.ChildKeys(paths, dir), nil
}

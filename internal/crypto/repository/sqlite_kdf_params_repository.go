package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	"github.com/allisson/vault/internal/database"
	apperrors "github.com/allisson/vault/internal/errors"
)

// SQLiteKDFParamsRepository stores KDFParams in the single-row kdf_params table.
type SQLiteKDFParamsRepository struct {
	db        *sql.DB
	txManager database.TxManager
}

// NewSQLiteKDFParamsRepository creates a new SQLite KDFParams repository instance.
func NewSQLiteKDFParamsRepository(db *sql.DB, txManager database.TxManager) *SQLiteKDFParamsRepository {
	return &SQLiteKDFParamsRepository{db: db, txManager: txManager}
}

// LoadKDFParams returns the stored parameters or ErrKDFParamsNotFound.
func (s *SQLiteKDFParamsRepository) LoadKDFParams(ctx context.Context) (*cryptoDomain.KDFParams, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT salt, iterations, canary, canary_nonce, algorithm FROM kdf_params WHERE id = 1`

	var (
		params      cryptoDomain.KDFParams
		canary      []byte
		canaryNonce []byte
		algorithm   string
	)
	err := querier.QueryRowContext(ctx, query).Scan(
		&params.Salt,
		&params.Iterations,
		&canary,
		&canaryNonce,
		&algorithm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKDFParamsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to load kdf params")
	}

	if canary != nil {
		params.Canary = &cryptoDomain.Ciphertext{Data: canary, Nonce: canaryNonce}
		params.Algorithm = cryptoDomain.Algorithm(algorithm)
	}
	return &params, nil
}

// LoadOrCreateKDFParams returns the stored parameters, or persists the result of create
// when the table is empty. Both steps run in one transaction.
func (s *SQLiteKDFParamsRepository) LoadOrCreateKDFParams(
	ctx context.Context,
	create func() (*cryptoDomain.KDFParams, error),
) (*cryptoDomain.KDFParams, bool, error) {
	var (
		params  *cryptoDomain.KDFParams
		created bool
	)

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.LoadKDFParams(ctx)
		if err == nil {
			params = existing
			return nil
		}
		if !errors.Is(err, cryptoDomain.ErrKDFParamsNotFound) {
			return err
		}

		fresh, err := create()
		if err != nil {
			return err
		}

		var canary, canaryNonce []byte
		algorithm := string(fresh.Algorithm)
		if fresh.Canary != nil {
			canary = fresh.Canary.Data
			canaryNonce = fresh.Canary.Nonce
		}

		querier := database.GetTx(ctx, s.db)
		query := `INSERT INTO kdf_params (id, salt, iterations, canary, canary_nonce, algorithm, created_at)
				  VALUES (1, ?, ?, ?, ?, ?, ?)
				  ON CONFLICT(id) DO NOTHING`

		result, err := querier.ExecContext(
			ctx,
			query,
			fresh.Salt,
			fresh.Iterations,
			canary,
			canaryNonce,
			algorithm,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create kdf params")
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return apperrors.Wrap(err, "failed to create kdf params")
		}
		if affected == 1 {
			params = fresh
			created = true
			return nil
		}

		// Another process initialized the store first.
		params, err = s.LoadKDFParams(ctx)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return params, created, nil
}

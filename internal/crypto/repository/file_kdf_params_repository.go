// Package repository persists the master key derivation parameters next to the secrets.
package repository

import (
	"context"
	"encoding/base64"
	"strconv"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	apperrors "github.com/allisson/vault/internal/errors"
	"github.com/allisson/vault/internal/filestore"
)

const (
	keySalt        = "master.salt"
	keyIterations  = "master.iterations"
	keyCanary      = "master.canary"
	keyCanaryNonce = "master.canary_nonce"
	keyAlgorithm   = "master.algorithm"
)

// FileKDFParamsRepository stores KDFParams in the master.* entries of a filestore.Store.
type FileKDFParamsRepository struct {
	store *filestore.Store
}

// NewFileKDFParamsRepository creates a FileKDFParamsRepository on top of store.
func NewFileKDFParamsRepository(store *filestore.Store) *FileKDFParamsRepository {
	return &FileKDFParamsRepository{store: store}
}

// LoadKDFParams returns the stored parameters or ErrKDFParamsNotFound.
func (f *FileKDFParamsRepository) LoadKDFParams(ctx context.Context) (*cryptoDomain.KDFParams, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var params *cryptoDomain.KDFParams
	err := f.store.View(func(entries map[string]string) error {
		p, err := decodeKDFParams(entries)
		if err != nil {
			return err
		}
		params = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}

// LoadOrCreateKDFParams returns the stored parameters, or persists the result of create
// when none exist. The check and the write happen under the store's exclusive lock.
func (f *FileKDFParamsRepository) LoadOrCreateKDFParams(
	ctx context.Context,
	create func() (*cryptoDomain.KDFParams, error),
) (*cryptoDomain.KDFParams, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		params  *cryptoDomain.KDFParams
		created bool
	)
	err := f.store.Update(func(entries map[string]string) (bool, error) {
		existing, err := decodeKDFParams(entries)
		if err == nil {
			params = existing
			return false, nil
		}
		if !apperrors.Is(err, cryptoDomain.ErrKDFParamsNotFound) {
			return false, err
		}

		fresh, err := create()
		if err != nil {
			return false, err
		}
		encodeKDFParams(fresh, entries)
		params = fresh
		created = true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return params, created, nil
}

func encodeKDFParams(p *cryptoDomain.KDFParams, entries map[string]string) {
	enc := base64.StdEncoding
	entries[keySalt] = enc.EncodeToString(p.Salt)
	entries[keyIterations] = strconv.Itoa(p.Iterations)
	if p.Canary != nil {
		entries[keyCanary] = enc.EncodeToString(p.Canary.Data)
		entries[keyCanaryNonce] = enc.EncodeToString(p.Canary.Nonce)
		entries[keyAlgorithm] = string(p.Algorithm)
	}
}

func decodeKDFParams(entries map[string]string) (*cryptoDomain.KDFParams, error) {
	rawSalt, ok := entries[keySalt]
	if !ok {
		return nil, cryptoDomain.ErrKDFParamsNotFound
	}

	enc := base64.StdEncoding
	salt, err := enc.DecodeString(rawSalt)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInvalidKDFParams, "malformed salt")
	}

	iterations, err := strconv.Atoi(entries[keyIterations])
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInvalidKDFParams, "malformed iterations")
	}

	params := &cryptoDomain.KDFParams{Salt: salt, Iterations: iterations}

	if rawCanary, ok := entries[keyCanary]; ok {
		data, err := enc.DecodeString(rawCanary)
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrInvalidKDFParams, "malformed canary")
		}
		nonce, err := enc.DecodeString(entries[keyCanaryNonce])
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrInvalidKDFParams, "malformed canary nonce")
		}
		params.Canary = &cryptoDomain.Ciphertext{Data: data, Nonce: nonce}
		params.Algorithm = cryptoDomain.Algorithm(entries[keyAlgorithm])
	}

	return params, nil
}

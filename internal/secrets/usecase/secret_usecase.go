package usecase

import (
	"context"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
)

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	secretRepo SecretRepository
	policies   PolicyEngine
	masterKeys MasterKeyProvider
	dekService cryptoService.DekService
	engine     cryptoService.CryptoEngine
	algorithm  cryptoDomain.Algorithm
	logger     *slog.Logger
}

// NewSecretUseCase creates a SecretUseCase. algorithm applies to new writes; reads use
// the algorithm recorded with each secret.
func NewSecretUseCase(
	secretRepo SecretRepository,
	policies PolicyEngine,
	masterKeys MasterKeyProvider,
	dekService cryptoService.DekService,
	engine cryptoService.CryptoEngine,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) SecretUseCase {
	return &secretUseCase{
		secretRepo: secretRepo,
		policies:   policies,
		masterKeys: masterKeys,
		dekService: dekService,
		engine:     engine,
		algorithm:  algorithm,
		logger:     logger,
	}
}

// Put encrypts and stores a secret.
func (s *secretUseCase) Put(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
) (*secretsDomain.Secret, error) {
	return s.put(ctx, identity, path, plaintext, nil)
}

// PutWithVersion encrypts and stores a secret if the stored version matches.
func (s *secretUseCase) PutWithVersion(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
	expectedVersion uint,
) (*secretsDomain.Secret, error) {
	return s.put(ctx, identity, path, plaintext, &expectedVersion)
}

func (s *secretUseCase) put(
	ctx context.Context,
	identity, path string,
	plaintext []byte,
	expectedVersion *uint,
) (*secretsDomain.Secret, error) {
	if err := secretsDomain.ValidatePath(path); err != nil {
		return nil, err
	}
	if !s.policies.CanWrite(identity, path) {
		return nil, s.denied(identity, "put", path)
	}

	masterKey, err := s.masterKeys.RequireMasterKey()
	if err != nil {
		return nil, err
	}

	dek, err := s.dekService.GenerateDek()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	ciphertext, err := s.engine.Encrypt(plaintext, dek, []byte(path), s.algorithm)
	if err != nil {
		return nil, err
	}

	wrapped, err := s.dekService.Wrap(dek, masterKey, s.algorithm)
	if err != nil {
		return nil, err
	}

	secret := &secretsDomain.Secret{
		Path:       path,
		WrappedDek: wrapped,
		Ciphertext: ciphertext,
		Algorithm:  s.algorithm,
		Version:    1,
	}
	if err := s.secretRepo.Save(ctx, secret, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.Debug("secret stored",
		slog.String("identity", identity),
		slog.String("path", path),
		slog.Uint64("version", uint64(secret.Version)),
	)
	return secret, nil
}

// Get fetches and decrypts a secret.
func (s *secretUseCase) Get(ctx context.Context, identity, path string) (*secretsDomain.Secret, error) {
	if err := secretsDomain.ValidatePath(path); err != nil {
		return nil, err
	}
	if !s.policies.CanRead(identity, path) {
		return nil, s.denied(identity, "get", path)
	}

	secret, err := s.secretRepo.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	masterKey, err := s.masterKeys.RequireMasterKey()
	if err != nil {
		return nil, err
	}

	dek, err := s.dekService.Unwrap(secret.WrappedDek, masterKey, secret.Algorithm)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dek)

	plaintext, err := s.engine.Decrypt(secret.Ciphertext, dek, []byte(secret.Path), secret.Algorithm)
	if err != nil {
		return nil, err
	}

	secret.Plaintext = plaintext
	return secret, nil
}

// Delete removes a secret.
func (s *secretUseCase) Delete(ctx context.Context, identity, path string) error {
	if err := secretsDomain.ValidatePath(path); err != nil {
		return err
	}
	if !s.policies.CanWrite(identity, path) {
		return s.denied(identity, "delete", path)
	}

	return s.secretRepo.Delete(ctx, path)
}

// List returns the readable paths under prefix.
func (s *secretUseCase) List(ctx context.Context, identity, prefix string) ([]string, error) {
	paths, err := s.secretRepo.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	return s.readable(identity, paths), nil
}

// ListKeys returns the children of path that the identity can see. A leaf is visible when
// readable; a directory when at least one secret below it is readable.
func (s *secretUseCase) ListKeys(ctx context.Context, identity, path string) ([]string, error) {
	dir := secretsDomain.NormalizeDir(path)

	keys, err := s.secretRepo.ListKeys(ctx, dir)
	if err != nil {
		return nil, err
	}

	var visibleDirs map[string]struct{}
	visible := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, "/") {
			if s.policies.CanRead(identity, dir+key) {
				visible = append(visible, key)
			}
			continue
		}

		if visibleDirs == nil {
			all, err := s.secretRepo.List(ctx, dir)
			if err != nil {
				return nil, err
			}
			visibleDirs = make(map[string]struct{})
			for _, child := range secretsDomain.ChildKeys(s.readable(identity, all), dir) {
				visibleDirs[child] = struct{}{}
			}
		}
		if _, ok := visibleDirs[key]; ok {
			visible = append(visible, key)
		}
	}

	return visible, nil
}

func (s *secretUseCase) readable(identity string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if s.policies.CanRead(identity, p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *secretUseCase) denied(identity, operation, path string) error {
	s.logger.Warn("access denied",
		slog.String("identity", identity),
		slog.String("operation", operation),
		slog.String("path", path),
	)
	return authDomain.ErrAccessDenied
}

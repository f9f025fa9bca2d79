// Package http provides HTTP handlers for secret operations.
// Every handler acts on behalf of the caller identity resolved by the identity middleware.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	authHTTP "github.com/allisson/vault/internal/auth/http"
	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
	"github.com/allisson/vault/internal/httputil"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
	"github.com/allisson/vault/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/vault/internal/secrets/usecase"
	customValidation "github.com/allisson/vault/internal/validation"
)

// validatable is implemented by every request DTO.
type validatable interface {
	Validate() error
}

// SecretHandler handles HTTP requests for secret operations.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(secretUseCase secretsUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		logger:        logger,
	}
}

// identity returns the caller identity or writes a 401 response.
func (h *SecretHandler) identity(c *gin.Context) (string, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingIdentity, h.logger)
		return "", false
	}
	return identity, true
}

// bind decodes and validates the JSON body into req. When optional is set an empty body
// is accepted as the zero request.
func (h *SecretHandler) bind(c *gin.Context, req validatable, optional bool) bool {
	if err := c.ShouldBindJSON(req); err != nil && !(optional && errors.Is(err, io.EOF)) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

// PutHandler encrypts and stores a secret.
// POST /api/put {"path", "secret", "cas"?} - Requires write access to path.
// Returns 200 OK with the record metadata (never the value).
func (h *SecretHandler) PutHandler(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req dto.PutSecretRequest
	if !h.bind(c, &req, false) {
		return
	}

	plaintext := []byte(req.Secret)
	defer cryptoDomain.Zero(plaintext)

	var secret *secretsDomain.Secret
	var err error
	if req.CAS != nil {
		secret, err = h.secretUseCase.PutWithVersion(c.Request.Context(), identity, req.Path, plaintext, *req.CAS)
	} else {
		secret, err = h.secretUseCase.Put(c.Request.Context(), identity, req.Path, plaintext)
	}
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToPutResponse(secret))
}

// GetHandler retrieves and decrypts a secret.
// POST /api/get {"path"} - Requires read access to path.
// Returns 200 OK with the plaintext value. SECURITY: Plaintext is zeroed after response.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req dto.PathRequest
	if !h.bind(c, &req, false) {
		return
	}

	secret, err := h.secretUseCase.Get(c.Request.Context(), identity, req.Path)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: Zero plaintext after mapping to response
	defer cryptoDomain.Zero(secret.Plaintext)

	c.JSON(http.StatusOK, dto.MapSecretToGetResponse(secret))
}

// ListHandler lists the readable paths under a prefix.
// POST /api/list?offset=0&limit=50 {"prefix"} - Unreadable paths are omitted silently.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ListSecretsRequest
	if !h.bind(c, &req, true) {
		return
	}

	paths, err := h.secretUseCase.List(c.Request.Context(), identity, req.Prefix)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	page := httputil.Paginate(paths, offset, limit)
	c.JSON(http.StatusOK, dto.MapPathsToListResponse(page, offset, limit, len(paths)))
}

// KeysHandler lists the visible children of a directory.
// POST /api/keys {"path"} - Directories are suffixed with "/".
func (h *SecretHandler) KeysHandler(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req dto.KeysRequest
	if !h.bind(c, &req, true) {
		return
	}

	keys, err := h.secretUseCase.ListKeys(c.Request.Context(), identity, req.Path)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeysToResponse(secretsDomain.NormalizeDir(req.Path), keys))
}

// DeleteHandler removes a secret.
// POST /api/delete {"path"} - Requires write access to path. Deleting an absent path succeeds.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req dto.PathRequest
	if !h.bind(c, &req, false) {
		return
	}

	if err := h.secretUseCase.Delete(c.Request.Context(), identity, req.Path); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusOK})
}

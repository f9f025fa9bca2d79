package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	authService "github.com/allisson/vault/internal/auth/service"
	"github.com/allisson/vault/internal/httputil"
)

// IdentityMiddleware resolves the caller identity for each request.
//
// Resolution order:
//  1. The first verified mTLS peer certificate, fingerprinted with SHA-256.
//  2. defaultIdentity, the fingerprint of the server's configured certificate, when set.
//
// Requests without either are rejected with 401 Unauthorized. The identity is stored in the
// request context and read back with GetIdentity.
func IdentityMiddleware(defaultIdentity string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := defaultIdentity
		source := "default_certificate"

		if tlsState := c.Request.TLS; tlsState != nil && len(tlsState.PeerCertificates) > 0 {
			identity = authService.Fingerprint(tlsState.PeerCertificates[0])
			source = "peer_certificate"
		}

		if identity == "" {
			logger.Debug("identity resolution failed: no client certificate")
			httputil.HandleErrorGin(c, authDomain.ErrMissingIdentity, logger)
			c.Abort()
			return
		}

		logger.Debug("identity resolved",
			slog.String("identity", identity),
			slog.String("source", source),
		)

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/vault/internal/auth/http"
	"github.com/allisson/vault/internal/config"
	"github.com/allisson/vault/internal/metrics"
	secretsHTTP "github.com/allisson/vault/internal/secrets/http"
)

// VaultStatus reports whether the master key is available.
type VaultStatus interface {
	IsSealed() bool
}

// PolicyStatus reports the identities of the active policy set.
type PolicyStatus interface {
	Identities() []string
}

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   *gin.Engine
	vault    VaultStatus
	policies PolicyStatus
	logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	vault VaultStatus,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		vault:  vault,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
//
// ctx bounds background work started by middleware (rate limiter cleanup). defaultIdentity
// is used for requests without a client certificate; empty disables the fallback.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	secretHandler *secretsHTTP.SecretHandler,
	policies PolicyStatus,
	metricsProvider *metrics.Provider,
	defaultIdentity string,
) {
	s.policies = policies

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/api/health", s.apiHealthHandler)

	api := router.Group("/api")
	api.Use(authHTTP.IdentityMiddleware(defaultIdentity, s.logger))
	if cfg.RateLimitEnabled {
		api.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	{
		api.POST("/put", secretHandler.PutHandler)
		api.POST("/get", secretHandler.GetHandler)
		api.POST("/list", secretHandler.ListHandler)
		api.POST("/keys", secretHandler.KeysHandler)
		api.POST("/delete", secretHandler.DeleteHandler)
	}

	s.router = router
}

// ConfigureTLS serves HTTPS with the given configuration. Certificates must be loaded in
// tlsConfig.Certificates.
func (s *Server) ConfigureTLS(tlsConfig *tls.Config) {
	s.server.TLSConfig = tlsConfig
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports 503 until the vault is unsealed.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.vault == nil || s.vault.IsSealed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"vault": "sealed"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"vault": "unsealed"},
	})
}

// apiHealthHandler reports vault status without requiring an identity.
func (s *Server) apiHealthHandler(c *gin.Context) {
	identities := 0
	if s.policies != nil {
		identities = len(s.policies.Identities())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "up",
		"sealed":     s.vault == nil || s.vault.IsSealed(),
		"tls":        s.server.TLSConfig != nil,
		"identities": identities,
	})
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	var err error
	if s.server.TLSConfig != nil {
		s.logger.Info("starting https server",
			slog.String("addr", s.server.Addr),
			slog.Bool("mtls", s.server.TLSConfig.ClientCAs != nil),
		)
		err = s.server.ListenAndServeTLS("", "")
	} else {
		s.logger.Info("starting http server", slog.String("addr", s.server.Addr))
		err = s.server.ListenAndServe()
	}

	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

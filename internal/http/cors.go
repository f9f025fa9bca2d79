package http

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// wildcardOrigin allows every origin. Credentials are never sent to a wildcard.
const wildcardOrigin = "*"

// createCORSMiddleware returns the CORS middleware for the /api routes, or nil when CORS is
// disabled or allowOriginsStr holds no origin. allowOriginsStr is a comma-separated list;
// "*" anywhere in it opens the API to every origin.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(origins, wildcardOrigin) {
		logger.Warn("CORS allows every origin")
		config.AllowAllOrigins = true
		return cors.New(config)
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list, dropping blanks.
func parseOrigins(originsStr string) []string {
	var origins []string
	for part := range strings.SplitSeq(originsStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

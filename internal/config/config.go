// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/vault/internal/crypto/domain"
)

// Storage drivers.
const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the API server will listen on.
	ServerPort int
	// ShutdownTimeout bounds the graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// DataDir is the directory holding the secret store.
	DataDir string
	// StorageDriver selects the secret store backend ("file" or "sqlite").
	StorageDriver string
	// StoreFile is the path of the flat key/value store used by the file driver.
	StoreFile string
	// SQLitePath is the database path used by the sqlite driver.
	SQLitePath string

	// ConfigDir is the directory searched for policies and the default certificate.
	ConfigDir string
	// PoliciesPath is the JSON or YAML policy file.
	PoliciesPath string
	// CertPath is the certificate whose fingerprint is the default caller identity.
	CertPath string
	// AllowDefaultIdentity lets API requests without a client certificate act as CertPath.
	AllowDefaultIdentity bool

	// UnsealPassphrase is the plaintext unseal passphrase.
	UnsealPassphrase string
	// UnsealPassphraseCiphertext is the unseal passphrase encrypted with the KMS key.
	UnsealPassphraseCiphertext string
	// KMSKeyURI is the gocloud.dev secrets URL of the key protecting the passphrase.
	KMSKeyURI string

	// CryptoAlgorithm is the AEAD used for new writes.
	CryptoAlgorithm string
	// KDFIterations is the PBKDF2 iteration count applied when the store is first initialized.
	KDFIterations int

	// TLSCertFile and TLSKeyFile enable HTTPS on the API server.
	TLSCertFile string
	TLSKeyFile  string
	// TLSClientCAFile enables mutual TLS: client certificates are verified against it.
	TLSClientCAFile string

	// RateLimitEnabled indicates whether per-identity rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per identity.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size of the per-identity limiter.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
	// LogFile, when set, sends logs to a size-rotated file instead of stdout.
	LogFile string
	// LogFileMaxSizeMB is the size at which the log file is rotated.
	LogFileMaxSizeMB int
	// LogFileMaxBackups is the number of rotated files kept.
	LogFileMaxBackups int
	// LogFileMaxAgeDays is the age after which rotated files are removed.
	LogFileMaxAgeDays int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	dataDir := env.GetString("VAULT_DATA_DIR", "./data")
	configDir := env.GetString("VAULT_CONFIG_DIR", "./config")

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("VAULT_API_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Storage
		DataDir:       dataDir,
		StorageDriver: env.GetString("VAULT_STORAGE_DRIVER", StorageDriverFile),
		StoreFile:     env.GetString("VAULT_STORE_FILE", filepath.Join(dataDir, "secrets.env")),
		SQLitePath:    env.GetString("VAULT_SQLITE_PATH", filepath.Join(dataDir, "vault.db")),

		// Policies and identity
		ConfigDir:    configDir,
		PoliciesPath: env.GetString("VAULT_POLICIES_PATH", filepath.Join(configDir, "policies.json")),
		CertPath:     env.GetString("VAULT_CERT_PATH", defaultCertPath(configDir)),

		AllowDefaultIdentity: env.GetBool("VAULT_ALLOW_DEFAULT_IDENTITY", false),

		// Unseal
		UnsealPassphrase:           env.GetString("VAULT_UNSEAL_PASSPHRASE", ""),
		UnsealPassphraseCiphertext: env.GetString("VAULT_UNSEAL_PASSPHRASE_CIPHERTEXT", ""),
		KMSKeyURI:                  env.GetString("KMS_KEY_URI", ""),

		// Crypto
		CryptoAlgorithm: env.GetString("VAULT_CRYPTO_ALGORITHM", string(cryptoDomain.AESGCM)),
		KDFIterations:   env.GetInt("VAULT_KDF_ITERATIONS", cryptoDomain.DefaultKDFIterations),

		// TLS
		TLSCertFile:     env.GetString("TLS_CERT_FILE", ""),
		TLSKeyFile:      env.GetString("TLS_KEY_FILE", ""),
		TLSClientCAFile: env.GetString("TLS_CLIENT_CA_FILE", ""),

		// Rate Limiting (per identity)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "vault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Logging
		LogLevel:          env.GetString("LOG_LEVEL", "info"),
		LogFile:           env.GetString("LOG_FILE", ""),
		LogFileMaxSizeMB:  env.GetInt("LOG_FILE_MAX_SIZE_MB", 100),
		LogFileMaxBackups: env.GetInt("LOG_FILE_MAX_BACKUPS", 5),
		LogFileMaxAgeDays: env.GetInt("LOG_FILE_MAX_AGE_DAYS", 30),
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.StorageDriver,
			validation.Required,
			validation.In(StorageDriverFile, StorageDriverSQLite),
		),
		validation.Field(&c.StoreFile, validation.When(c.StorageDriver == StorageDriverFile, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.StorageDriver == StorageDriverSQLite, validation.Required)),
		validation.Field(&c.CryptoAlgorithm,
			validation.Required,
			validation.In(string(cryptoDomain.AESGCM), string(cryptoDomain.ChaCha20)),
		),
		validation.Field(&c.KDFIterations, validation.Min(cryptoDomain.MinKDFIterations)),
		validation.Field(&c.TLSKeyFile, validation.When(c.TLSCertFile != "", validation.Required)),
		validation.Field(&c.TLSCertFile,
			validation.When(c.TLSKeyFile != "" || c.TLSClientCAFile != "", validation.Required),
		),
		validation.Field(&c.KMSKeyURI, validation.When(c.UnsealPassphraseCiphertext != "", validation.Required)),
		validation.Field(&c.RateLimitRequestsPerSec, validation.When(c.RateLimitEnabled, validation.Min(0.001))),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Min(1))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.UnsealPassphrase != "" && c.UnsealPassphraseCiphertext != "" {
		return fmt.Errorf(
			"invalid configuration: VAULT_UNSEAL_PASSPHRASE and VAULT_UNSEAL_PASSPHRASE_CIPHERTEXT are exclusive",
		)
	}
	return nil
}

// IsLoopbackHost reports whether ServerHost only accepts local connections.
func (c *Config) IsLoopbackHost() bool {
	if c.ServerHost == "localhost" {
		return true
	}
	ip := net.ParseIP(c.ServerHost)
	return ip != nil && ip.IsLoopback()
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// defaultCertPath returns configDir/client-cert.pem when it exists, else the first *.pem
// file in configDir that is not named like a private key, else "".
func defaultCertPath(configDir string) string {
	preferred := filepath.Join(configDir, "client-cert.pem")
	if info, err := os.Stat(preferred); err == nil && info.Mode().IsRegular() {
		return preferred
	}

	matches, err := filepath.Glob(filepath.Join(configDir, "*.pem"))
	if err != nil {
		return ""
	}
	for _, match := range matches {
		if strings.Contains(strings.ToLower(filepath.Base(match)), "key") {
			continue
		}
		if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
			return match
		}
	}
	return ""
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}

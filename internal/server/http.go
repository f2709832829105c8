// Package server exposes the résumé and job-posting analyses over HTTP.
package server

import (
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"veracity/internal/config"
	"veracity/internal/engine"
	"veracity/internal/errors"
	"veracity/internal/observability"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Engine        *engine.Engine
	Observability *observability.ObservabilityManager

	// Out receives the startup banner; nil means stdout
	Out io.Writer

	validate *validator.Validate
	Logger   *errors.Logger
}

func (s *Server) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ServerConfigFrom derives the listener settings from the application config
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	rl := cfg.Server.RateLimit
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &rl,
	}
}

// NewServer creates a Server that runs analyses on eng. A nil
// ObservabilityManager disables tracing and metrics.
func NewServer(appCfg *config.Config, cfg ServerConfig, eng *engine.Engine, om *observability.ObservabilityManager, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{}, appCfg, logger)
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Engine:         eng,
		Observability:  om,
		validate:       newValidator(),
		Logger:         logger,
	}
}

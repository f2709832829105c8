package ai

import (
	"context"
	"fmt"

	"veracity/internal/config"
	"veracity/internal/ensemble"
	"veracity/internal/errors"
)

// minAPIKeyLength is the shortest key considered a real credential
const minAPIKeyLength = 10

// Service owns the configured classifier backend, or records why none is available
type Service struct {
	Provider Provider // nil when the classifier is unavailable

	config            config.ClassifierConfig
	unavailableReason string
	logger            *errors.Logger
}

// Health is the classifier part of the service health report
type Health struct {
	Provider         string         `json:"provider"`
	APIAccessible    bool           `json:"api_accessible"`
	ModelReady       bool           `json:"model_ready"`
	CacheEnabled     bool           `json:"cache_enabled"`
	APIKeyConfigured bool           `json:"api_key_configured"`
	Model            *ModelInfo     `json:"model,omitempty"`
	CircuitBreaker   map[string]any `json:"circuit_breaker"`
	Reason           string         `json:"reason,omitempty"`
}

// NewService creates the classifier backend selected by cfg. A disabled
// classifier or a missing API key is not an error: the service reports the
// reason and analysis continues rule-only.
func NewService(ctx context.Context, cfg config.ClassifierConfig, logger *errors.Logger, opts ...ProviderOption) (*Service, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	s := &Service{config: cfg, logger: logger}

	logger.Debug("Initializing classifier service",
		"enabled", cfg.Enabled,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"fallback_model", cfg.FallbackModel,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries,
		"cache_backend", cfg.Cache.Backend,
		"custom_prompt", cfg.SystemPrompt != "")

	switch {
	case !cfg.Enabled:
		s.unavailableReason = ensemble.ReasonDisabled
		logger.Info("AI classifier disabled, using rule-based analysis only")
		return s, nil
	case cfg.APIKey == "":
		s.unavailableReason = ensemble.ReasonMissingAPIKey
		logger.Warn("Classifier API key not configured, using rule-based analysis only", "provider", cfg.Provider)
		return s, nil
	}

	cache, err := NewCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderHuggingFace:
		s.Provider = NewHuggingFaceClassifier(cfg, cache, logger, opts...)
	case config.ProviderGemini:
		s.Provider, err = NewGeminiClassifier(ctx, cfg, cache, logger, opts...)
	default:
		err = errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported classifier provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}

	logger.Info("AI classifier ready", "provider", cfg.Provider, "model", cfg.Model)
	return s, nil
}

// Classifier returns the backend for the ensemble, or nil when unavailable
func (s *Service) Classifier() ensemble.Classifier {
	if s == nil || s.Provider == nil {
		return nil
	}
	return s.Provider
}

// UnavailableReason explains why Classifier returns nil
func (s *Service) UnavailableReason() string {
	return s.unavailableReason
}

// EnsembleOptions wires the classifier, or its absence, into an ensemble analyzer
func (s *Service) EnsembleOptions() []ensemble.Option {
	if c := s.Classifier(); c != nil {
		return []ensemble.Option{ensemble.WithClassifier(c, s.config.Timeout)}
	}
	return []ensemble.Option{ensemble.WithUnavailableReason(s.unavailableReason)}
}

// GetModelInfo returns information about the classifier model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	if s.Provider == nil {
		return &ModelInfo{Name: s.config.Model, Error: s.unavailableReason}
	}
	return s.Provider.GetModelInfo(ctx)
}

// Health probes the classifier and reports its readiness
func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Provider:         s.config.Provider,
		CacheEnabled:     s.config.Cache.Enabled,
		APIKeyConfigured: len(s.config.APIKey) > minAPIKeyLength,
		CircuitBreaker:   map[string]any{"enabled": false},
	}
	if s.Provider == nil {
		h.CacheEnabled = false
		h.Reason = s.unavailableReason
		return h
	}

	info := s.Provider.GetModelInfo(ctx)
	stats := s.Provider.CircuitBreakerStats()
	healthy, _ := stats["overall_healthy"].(bool)

	h.Model = info
	h.APIAccessible = info.Available
	h.ModelReady = info.Available && healthy
	h.CircuitBreaker = stats
	if !info.Available {
		h.Reason = info.Error
	}
	return h
}

// Close releases the backend
func (s *Service) Close() error {
	if s.Provider == nil {
		return nil
	}
	return s.Provider.Close()
}

package ai

import (
	"context"
	"net/http"
	"testing"
	"time"

	"veracity/internal/config"
	"veracity/internal/ensemble"
	"veracity/internal/errors"
)

func TestNewServiceUnavailable(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.ClassifierConfig
		wantReason string
	}{
		{
			name:       "disabled",
			cfg:        config.ClassifierConfig{Enabled: false, Provider: config.ProviderHuggingFace, APIKey: "hf_abcdefghijkl"},
			wantReason: ensemble.ReasonDisabled,
		},
		{
			name:       "missing key",
			cfg:        config.ClassifierConfig{Enabled: true, Provider: config.ProviderGemini},
			wantReason: ensemble.ReasonMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewService(context.Background(), tt.cfg, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Classifier() != nil {
				t.Error("Expected no classifier")
			}
			if s.UnavailableReason() != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, s.UnavailableReason())
			}
			if len(s.EnsembleOptions()) != 1 {
				t.Error("Expected one ensemble option")
			}

			h := s.Health(context.Background())
			if h.APIAccessible || h.ModelReady || h.CacheEnabled || h.Reason != tt.wantReason {
				t.Errorf("Unexpected health: %+v", h)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Unexpected close error: %v", err)
			}
		})
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	_, err := NewService(context.Background(), config.ClassifierConfig{Enabled: true, Provider: "openai", APIKey: "sk-abcdefghijkl"}, nil)
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Expected invalid configuration error, got %v", err)
	}
}

func TestServiceHealthHuggingFace(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondJSON(`[{"label":"Real","score":0.9}]`),
	})
	cfg := testClassifierConfig(srv.URL)
	cfg.Cache = config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory, TTL: time.Hour, MaxEntries: 10}

	s, err := NewService(context.Background(), cfg, errors.NewDiscardLogger(), WithRetryWait(time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, ok := s.Provider.(*HuggingFaceClassifier); !ok {
		t.Fatalf("Expected Hugging Face provider, got %T", s.Provider)
	}
	if s.Classifier() == nil {
		t.Fatal("Expected classifier")
	}

	h := s.Health(context.Background())
	if !h.APIAccessible || !h.ModelReady || !h.CacheEnabled || !h.APIKeyConfigured {
		t.Errorf("Expected healthy classifier, got %+v", h)
	}
	if h.Model == nil || h.Model.Name != detectorModel {
		t.Errorf("Unexpected model info: %+v", h.Model)
	}
	if _, ok := h.CircuitBreaker["ai_operations"]; !ok {
		t.Errorf("Expected breaker stats, got %v", h.CircuitBreaker)
	}
}

func TestServiceHealthDegraded(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondStatus(http.StatusServiceUnavailable),
	})
	cfg := testClassifierConfig(srv.URL)

	s, err := NewService(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	h := s.Health(context.Background())
	if h.APIAccessible || h.ModelReady || h.Reason == "" {
		t.Errorf("Expected degraded classifier, got %+v", h)
	}
}

func TestEnsembleUsesServiceClassifier(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondJSON(`[{"label":"Fake","score":0.8}]`),
	})
	s, err := NewService(context.Background(), testClassifierConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	analyzer, err := ensemble.NewAnalyzer(nil, ensemble.DefaultWeights(), s.EnsembleOptions()...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	detection, err := analyzer.Detect(context.Background(), "I led the migration of our billing system to Go in March 2023, cutting p99 latency from 900ms to 120ms.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !detection.Fusion.AIEnhanced {
		t.Errorf("Expected classifier contribution, got %+v", detection.Fusion)
	}
}

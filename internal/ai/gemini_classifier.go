package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"veracity/internal/config"
	"veracity/internal/errors"
	"veracity/internal/types"
)

const geminiInputLimit = 8000

// geminiVerdict is the structured response requested from Gemini
type geminiVerdict struct {
	AIProbability float64 `json:"ai_probability"`
	Confidence    float64 `json:"confidence"`
}

// TokenUsage represents token usage information from Gemini responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// GeminiClassifier asks a Gemini model for a structured AI-probability verdict
type GeminiClassifier struct {
	client       *genai.Client
	model        string
	temperature  float32
	systemPrompt string
	cache        Cache
	retry        retryPolicy
	breaker      *CircuitBreaker[*types.Classification]
	modelBreaker *CircuitBreaker[*ModelInfo]
	checkTimeout time.Duration
	observer     Observer
	logger       *errors.Logger
}

var _ Provider = (*GeminiClassifier)(nil)

// NewGeminiClassifier creates a Gemini-backed classifier
func NewGeminiClassifier(ctx context.Context, cfg config.ClassifierConfig, cache Cache, logger *errors.Logger, opts ...ProviderOption) (*GeminiClassifier, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	o := applyProviderOptions(opts)

	clientCfg := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "failed to create Gemini client", err)
	}

	return &GeminiClassifier{
		client:       client,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: resolvePrompt(cfg.SystemPrompt),
		cache:        cache,
		retry:        newRetryPolicy(cfg.MaxRetries, o, logger),
		breaker:      NewCircuitBreaker[*types.Classification]("gemini", cfg.CircuitBreaker, logger),
		modelBreaker: newModelBreaker("gemini", cfg.CircuitBreaker, logger),
		checkTimeout: o.checkTimeout,
		observer:     o.observer,
		logger:       logger,
	}, nil
}

// Classify returns the AI-generation likelihood of text
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (*types.Classification, error) {
	key := cacheKey(text, g.model)
	if g.cache != nil {
		if hit, ok := g.cache.Get(ctx, key); ok {
			hit.Cached = true
			g.observer.CacheHit(ctx, config.ProviderGemini)
			return hit, nil
		}
	}

	ctx, span := otel.Tracer("veracity.ai.gemini").Start(ctx, "gemini.classify")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderGemini),
		attribute.String("ai.model", g.model),
		attribute.Float64("ai.temperature", float64(g.temperature)),
		attribute.Int("input.length", len(text)),
	)

	start := time.Now()
	resp, err := g.breaker.Execute(func() (*types.Classification, error) {
		result, err := withRetry(ctx, g.retry, "classify", func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildUserPrompt(truncate(text, geminiInputLimit))), g.generateConfig())
		})
		if err != nil {
			return nil, err
		}

		if usage := extractTokenUsage(result); usage != nil {
			span.SetAttributes(
				attribute.Int64("ai.tokens.input", usage.InputTokens),
				attribute.Int64("ai.tokens.output", usage.OutputTokens),
				attribute.Int64("ai.tokens.total", usage.TotalTokens),
			)
		}

		var verdict geminiVerdict
		if err := json.Unmarshal([]byte(result.Text()), &verdict); err != nil {
			return nil, fmt.Errorf("failed to parse classifier response: %w", err)
		}
		return newClassification(verdict.AIProbability, verdict.Confidence, g.model, MethodGemini), nil
	})
	g.observer.ClassificationCompleted(ctx, config.ProviderGemini, MethodGemini, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		g.logger.LogError(err, "Gemini classification failed", "model", g.model)
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "gemini classification failed", err).
			WithContext("model", g.model)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("ai.probability", resp.AIProbability),
	)
	if g.cache != nil {
		g.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

func (g *GeminiClassifier) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"ai_probability": {Type: genai.TypeNumber},
				"confidence":     {Type: genai.TypeNumber},
			},
			Required: []string{"ai_probability", "confidence"},
		},
	}
	if g.temperature > 0 {
		temperature := g.temperature
		cfg.Temperature = &temperature
	}
	return cfg
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiClassifier) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.model}

	checkCtx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	_, err := g.modelBreaker.Execute(func() (*ModelInfo, error) {
		model, err := g.client.Models.Get(checkCtx, g.model, &genai.GetModelConfig{})
		if err != nil {
			return nil, err
		}
		info.DisplayName = model.DisplayName
		info.Version = model.Version
		return info, nil
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.model,
			"provider", config.ProviderGemini,
			"error", err.Error())
		return info
	}

	info.Available = true
	g.logger.Debug("Model availability check successful",
		"model", g.model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// CircuitBreakerStats returns statistics for both breakers
func (g *GeminiClassifier) CircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close releases the cache connection. The genai client holds no resources in single-shot usage.
func (g *GeminiClassifier) Close() error {
	if g.cache != nil {
		return g.cache.Close()
	}
	return nil
}

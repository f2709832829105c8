package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"veracity/internal/config"
	"veracity/internal/errors"
	"veracity/internal/types"
)

const (
	detectorInputLimit = 2000
	zeroShotInputLimit = 1000
	maxErrorBodyBytes  = 512
	healthProbeText    = "This is a health check for the veracity classifier."
)

// zeroShotLabels are the candidate labels offered to the fallback model
var zeroShotLabels = []string{"human_written", "ai_generated", "computer_generated"}

// Label fragments that mark an AI-generated verdict
var (
	detectorAILabels = []string{"FAKE", "AI", "GENERATED", "MACHINE", "BOT"}
	zeroShotAILabels = []string{"ai", "generated", "computer", "machine", "artificial"}
)

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type detectorRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    inferenceOptions   `json:"options"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// HuggingFaceClassifier classifies text with a hosted detector model and
// falls back to zero-shot classification when the detector fails
type HuggingFaceClassifier struct {
	client        *retryablehttp.Client
	baseURL       string
	apiKey        string
	model         string
	fallbackModel string
	cache         Cache
	breaker       *CircuitBreaker[*types.Classification]
	modelBreaker  *CircuitBreaker[*ModelInfo]
	checkTimeout  time.Duration
	observer      Observer
	logger        *errors.Logger
}

var _ Provider = (*HuggingFaceClassifier)(nil)

// NewHuggingFaceClassifier creates a classifier for the Hugging Face inference API
func NewHuggingFaceClassifier(cfg config.ClassifierConfig, cache Cache, logger *errors.Logger, opts ...ProviderOption) *HuggingFaceClassifier {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	o := applyProviderOptions(opts)

	client := retryablehttp.NewClient()
	client.RetryMax = max(cfg.MaxRetries, 0)
	client.RetryWaitMin = o.retryWaitMin
	client.RetryWaitMax = o.retryWaitMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = retryLogger{logger: logger}

	return &HuggingFaceClassifier{
		client:        client,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		cache:         cache,
		breaker:       NewCircuitBreaker[*types.Classification]("huggingface", cfg.CircuitBreaker, logger),
		modelBreaker:  newModelBreaker("huggingface", cfg.CircuitBreaker, logger),
		checkTimeout:  o.checkTimeout,
		observer:      o.observer,
		logger:        logger,
	}
}

// Classify returns the AI-generation likelihood of text. Cached results are
// returned with Cached set.
func (h *HuggingFaceClassifier) Classify(ctx context.Context, text string) (*types.Classification, error) {
	key := cacheKey(text, h.model)
	if h.cache != nil {
		if hit, ok := h.cache.Get(ctx, key); ok {
			hit.Cached = true
			h.observer.CacheHit(ctx, config.ProviderHuggingFace)
			h.logger.Debug("Classifier cache hit", "model", h.model)
			return hit, nil
		}
	}

	ctx, span := otel.Tracer("veracity.ai.huggingface").Start(ctx, "huggingface.classify")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderHuggingFace),
		attribute.String("ai.model", h.model),
		attribute.Int("input.length", len(text)),
	)

	start := time.Now()
	result, err := h.breaker.Execute(func() (*types.Classification, error) {
		return h.classifyWithFallback(ctx, text)
	})
	h.observer.ClassificationCompleted(ctx, config.ProviderHuggingFace, methodOf(result), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "hugging face classification failed", err).
			WithContext("model", h.model)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("ai.method", result.Method),
		attribute.Float64("ai.probability", result.AIProbability),
	)
	if h.cache != nil {
		h.cache.Set(ctx, key, result)
	}
	return result, nil
}

func (h *HuggingFaceClassifier) classifyWithFallback(ctx context.Context, text string) (*types.Classification, error) {
	result, err := h.detect(ctx, text)
	if err == nil {
		return result, nil
	}
	if h.fallbackModel == "" {
		return nil, err
	}

	h.logger.Warn("Detector model failed, trying zero-shot classification",
		"model", h.model,
		"fallback_model", h.fallbackModel,
		"error", err.Error())
	h.observer.FallbackUsed(ctx, config.ProviderHuggingFace)

	result, fallbackErr := h.zeroShot(ctx, text)
	if fallbackErr != nil {
		return nil, fmt.Errorf("detector: %w; zero-shot: %v", err, fallbackErr)
	}
	return result, nil
}

func (h *HuggingFaceClassifier) detect(ctx context.Context, text string) (*types.Classification, error) {
	body := detectorRequest{
		Inputs:  truncate(text, detectorInputLimit),
		Options: inferenceOptions{WaitForModel: true, UseCache: true},
	}
	raw, err := h.post(ctx, h.model, body)
	if err != nil {
		return nil, err
	}
	top, err := parseDetectorResponse(raw)
	if err != nil {
		return nil, err
	}
	return newClassification(detectorProbability(top), top.Score, h.model, MethodHuggingFaceDetector), nil
}

func (h *HuggingFaceClassifier) zeroShot(ctx context.Context, text string) (*types.Classification, error) {
	body := zeroShotRequest{
		Inputs: truncate(text, zeroShotInputLimit),
		Parameters: zeroShotParameters{
			CandidateLabels: zeroShotLabels,
			MultiLabel:      false,
		},
		Options: inferenceOptions{WaitForModel: true, UseCache: true},
	}
	raw, err := h.post(ctx, h.fallbackModel, body)
	if err != nil {
		return nil, err
	}
	var resp zeroShotResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode zero-shot response: %w", err)
	}
	if len(resp.Labels) == 0 || len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("unexpected zero-shot response: %d labels, %d scores", len(resp.Labels), len(resp.Scores))
	}
	return newClassification(zeroShotProbability(resp), resp.Scores[0], h.fallbackModel, MethodHuggingFaceZeroShot), nil
}

func (h *HuggingFaceClassifier) post(ctx context.Context, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", model, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), maxErrorBodyBytes)}
	}
	return raw, nil
}

// parseDetectorResponse accepts both the flat [{label,score}] shape and the
// nested [[{label,score},...]] shape. For the nested shape the highest
// scoring entry wins.
func parseDetectorResponse(raw []byte) (labelScore, error) {
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) == 0 {
			return labelScore{}, fmt.Errorf("empty detector response")
		}
		return flat[0], nil
	}

	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err != nil {
		return labelScore{}, fmt.Errorf("failed to decode detector response: %w", err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return labelScore{}, fmt.Errorf("empty detector response")
	}
	best := nested[0][0]
	for _, ls := range nested[0][1:] {
		if ls.Score > best.Score {
			best = ls
		}
	}
	return best, nil
}

// detectorProbability maps a detector label to an AI probability percentage
func detectorProbability(top labelScore) float64 {
	label := strings.ToUpper(top.Label)
	for _, marker := range detectorAILabels {
		if strings.Contains(label, marker) {
			return top.Score * 100
		}
	}
	return (1 - top.Score) * 100
}

// zeroShotProbability maps ranked zero-shot labels to an AI probability percentage
func zeroShotProbability(resp zeroShotResponse) float64 {
	for i, label := range resp.Labels {
		lower := strings.ToLower(label)
		for _, marker := range zeroShotAILabels {
			if strings.Contains(lower, marker) {
				return resp.Scores[i] * 100
			}
		}
	}
	for i, label := range resp.Labels {
		if strings.Contains(strings.ToLower(label), "human") {
			return (1 - resp.Scores[i]) * 100
		}
	}
	return (1 - resp.Scores[0]) * 100
}

// GetModelInfo sends a small probe to the detector model without waiting
// for a cold model to load
func (h *HuggingFaceClassifier) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: h.model}

	checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	_, err := h.modelBreaker.Execute(func() (*ModelInfo, error) {
		body, err := json.Marshal(detectorRequest{
			Inputs:  healthProbeText,
			Options: inferenceOptions{WaitForModel: false, UseCache: true},
		})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(checkCtx, http.MethodPost, h.baseURL+"/"+h.model, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if h.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.apiKey)
		}
		resp, err := h.client.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
		}
		return info, nil
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		h.logger.Warn("Model availability check failed",
			"model", h.model,
			"provider", config.ProviderHuggingFace,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = h.model
	return info
}

// CircuitBreakerStats returns statistics for both breakers
func (h *HuggingFaceClassifier) CircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    h.breaker.Stats(),
		"model_operations": h.modelBreaker.Stats(),
		"overall_healthy":  h.breaker.IsHealthy() && h.modelBreaker.IsHealthy(),
	}
}

// Close releases the cache connection
func (h *HuggingFaceClassifier) Close() error {
	h.client.HTTPClient.CloseIdleConnections()
	if h.cache != nil {
		return h.cache.Close()
	}
	return nil
}

// retryLogger adapts the application logger to retryablehttp.LeveledLogger
type retryLogger struct {
	logger *errors.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func methodOf(c *types.Classification) string {
	if c == nil {
		return ""
	}
	return c.Method
}

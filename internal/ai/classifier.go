// Package ai holds the external AI-text classifier backends used by the
// ensemble: a Hugging Face inference client and a Gemini client, both
// behind a circuit breaker and a result cache.
package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"veracity/internal/errors"
	"veracity/internal/types"
)

// Classification methods reported by the backends
const (
	MethodHuggingFaceDetector = "huggingface_ai_detector"
	MethodHuggingFaceZeroShot = "huggingface_classification"
	MethodGemini              = "gemini_classification"
)

// Provider is an external AI-text classifier backend
type Provider interface {
	Classify(ctx context.Context, text string) (*types.Classification, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	CircuitBreakerStats() map[string]any
	Close() error
}

// Observer receives classifier events for metrics
type Observer interface {
	ClassificationCompleted(ctx context.Context, provider, method string, duration time.Duration, err error)
	CacheHit(ctx context.Context, provider string)
	FallbackUsed(ctx context.Context, provider string)
}

type noopObserver struct{}

func (noopObserver) ClassificationCompleted(context.Context, string, string, time.Duration, error) {}
func (noopObserver) CacheHit(context.Context, string)                                              {}
func (noopObserver) FallbackUsed(context.Context, string)                                          {}

type providerOptions struct {
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	checkTimeout time.Duration
	observer     Observer
}

// ProviderOption customizes a classifier backend
type ProviderOption func(*providerOptions)

// WithObserver reports classifier events to o
func WithObserver(o Observer) ProviderOption {
	return func(opts *providerOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithRetryWait bounds the backoff between retries
func WithRetryWait(minWait, maxWait time.Duration) ProviderOption {
	return func(opts *providerOptions) {
		opts.retryWaitMin = minWait
		opts.retryWaitMax = maxWait
	}
}

// WithModelCheckTimeout limits how long GetModelInfo may take
func WithModelCheckTimeout(d time.Duration) ProviderOption {
	return func(opts *providerOptions) {
		if d > 0 {
			opts.checkTimeout = d
		}
	}
}

func applyProviderOptions(opts []ProviderOption) providerOptions {
	o := providerOptions{
		retryWaitMin: time.Second,
		retryWaitMax: 30 * time.Second,
		checkTimeout: 10 * time.Second,
		observer:     noopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ModelInfo represents information about the classifier model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// newClassification clamps the AI probability to [0,100] and rounds both
// probabilities to two decimals
func newClassification(aiProbability, confidence float64, model, method string) *types.Classification {
	ai := round2(math.Max(0, math.Min(100, aiProbability)))
	return &types.Classification{
		AIProbability:    ai,
		HumanProbability: round2(100 - ai),
		Confidence:       math.Max(0, math.Min(1, confidence)),
		Model:            model,
		Method:           method,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// truncate returns at most n bytes of s without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8Start(s[n]) {
		n--
	}
	return s[:n]
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// StatusError is a non-2xx response from a classifier endpoint
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier endpoint returned HTTP %d: %s", e.Code, e.Body)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	code := 0
	var apiErr *googleapi.Error
	var statusErr *StatusError
	switch {
	case stderrors.As(err, &apiErr):
		code = apiErr.Code
	case stderrors.As(err, &statusErr):
		code = statusErr.Code
	}
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryPolicy retries transient failures with exponential backoff and jitter
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *errors.Logger
}

func newRetryPolicy(maxRetries int, opts providerOptions, logger *errors.Logger) retryPolicy {
	return retryPolicy{
		maxRetries: max(maxRetries, 0),
		baseDelay:  opts.retryWaitMin,
		maxDelay:   opts.retryWaitMax,
		logger:     logger,
	}
}

// backoff returns the wait before the given retry attempt (1-based)
func (p retryPolicy) backoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt-1))) * p.baseDelay
	jitter := time.Duration(0)
	if limit := int64(float64(base) * 0.1); limit > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(limit)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(base+jitter, p.maxDelay)
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// exhausts the retry budget
func withRetry[T any](ctx context.Context, p retryPolicy, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("Retrying classifier operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", p.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				p.logger.Info("Classifier operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return zero, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

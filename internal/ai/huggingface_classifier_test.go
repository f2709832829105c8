package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"veracity/internal/config"
	"veracity/internal/errors"
)

const (
	detectorModel = "org/detector"
	zeroShotModel = "org/zero-shot"
	sampleText    = "Leveraged cross-functional synergies to drive impactful outcomes across the organization."
)

// inferenceServer fakes the Hugging Face inference API. Handlers are keyed by model path.
type inferenceServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]*atomic.Int32
	bodies   map[string][]byte
}

func newInferenceServer(t *testing.T, handlers map[string]http.HandlerFunc) *inferenceServer {
	t.Helper()
	s := &inferenceServer{
		handlers: handlers,
		calls:    map[string]*atomic.Int32{},
		bodies:   map[string][]byte{},
	}
	for model := range handlers {
		s.calls[model] = &atomic.Int32{}
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := strings.TrimPrefix(r.URL.Path, "/")
		h, ok := s.handlers[model]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer hf_test_key_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		s.mu.Lock()
		s.bodies[model] = raw
		s.mu.Unlock()
		s.calls[model].Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *inferenceServer) callCount(model string) int {
	return int(s.calls[model].Load())
}

func (s *inferenceServer) lastBody(model string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out map[string]any
	_ = json.Unmarshal(s.bodies[model], &out)
	return out
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func respondStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	}
}

func testClassifierConfig(baseURL string) config.ClassifierConfig {
	return config.ClassifierConfig{
		Enabled:       true,
		Provider:      config.ProviderHuggingFace,
		Model:         detectorModel,
		FallbackModel: zeroShotModel,
		APIKey:        "hf_test_key_123",
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		MaxRetries:    2,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
}

func newTestClassifier(cfg config.ClassifierConfig, cache Cache, opts ...ProviderOption) *HuggingFaceClassifier {
	opts = append([]ProviderOption{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	return NewHuggingFaceClassifier(cfg, cache, errors.NewDiscardLogger(), opts...)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHuggingFaceDetectorLabels(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantAI   float64
		wantConf float64
	}{
		{
			name:     "fake label",
			response: `[{"label":"Fake","score":0.91234}]`,
			wantAI:   91.23,
			wantConf: 0.91234,
		},
		{
			name:     "human label",
			response: `[{"label":"Human","score":0.8}]`,
			wantAI:   20,
			wantConf: 0.8,
		},
		{
			name:     "machine generated label",
			response: `[{"label":"LABEL_MACHINE","score":0.6}]`,
			wantAI:   60,
			wantConf: 0.6,
		},
		{
			name:     "nested response picks the best entry",
			response: `[[{"label":"Real","score":0.25},{"label":"Fake","score":0.75}]]`,
			wantAI:   75,
			wantConf: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newInferenceServer(t, map[string]http.HandlerFunc{
				detectorModel: respondJSON(tt.response),
			})
			c := newTestClassifier(testClassifierConfig(srv.URL), nil)

			got, err := c.Classify(context.Background(), sampleText)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !approx(got.AIProbability, tt.wantAI) || !approx(got.HumanProbability, 100-tt.wantAI) {
				t.Errorf("Expected AI %.2f, got %.2f/%.2f", tt.wantAI, got.AIProbability, got.HumanProbability)
			}
			if !approx(got.Confidence, tt.wantConf) {
				t.Errorf("Expected confidence %v, got %v", tt.wantConf, got.Confidence)
			}
			if got.Method != MethodHuggingFaceDetector || got.Model != detectorModel {
				t.Errorf("Unexpected method/model: %s/%s", got.Method, got.Model)
			}
		})
	}
}

func TestHuggingFaceRequestPayload(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondJSON(`[{"label":"Fake","score":0.5}]`),
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), nil)

	long := strings.Repeat("a", 5000)
	if _, err := c.Classify(context.Background(), long); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := srv.lastBody(detectorModel)
	if inputs, _ := body["inputs"].(string); len(inputs) != detectorInputLimit {
		t.Errorf("Expected input truncated to %d bytes, got %d", detectorInputLimit, len(inputs))
	}
	opts, _ := body["options"].(map[string]any)
	if opts["wait_for_model"] != true || opts["use_cache"] != true {
		t.Errorf("Unexpected options: %v", opts)
	}
}

func TestHuggingFaceZeroShotFallback(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondStatus(http.StatusBadRequest),
		zeroShotModel: respondJSON(`{"labels":["ai_generated","human_written","computer_generated"],"scores":[0.7,0.2,0.1]}`),
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), nil)

	got, err := c.Classify(context.Background(), sampleText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(got.AIProbability, 70) {
		t.Errorf("Expected 70, got %v", got.AIProbability)
	}
	if got.Method != MethodHuggingFaceZeroShot || got.Model != zeroShotModel {
		t.Errorf("Unexpected method/model: %s/%s", got.Method, got.Model)
	}

	body := srv.lastBody(zeroShotModel)
	params, _ := body["parameters"].(map[string]any)
	labels, _ := params["candidate_labels"].([]any)
	if len(labels) != 3 || params["multi_label"] != false {
		t.Errorf("Unexpected zero-shot parameters: %v", params)
	}
}

func TestZeroShotProbability(t *testing.T) {
	tests := []struct {
		name string
		resp zeroShotResponse
		want float64
	}{
		{
			name: "first ai label wins",
			resp: zeroShotResponse{Labels: []string{"human_written", "computer_generated"}, Scores: []float64{0.6, 0.4}},
			want: 40,
		},
		{
			name: "human label only",
			resp: zeroShotResponse{Labels: []string{"other", "Human"}, Scores: []float64{0.7, 0.3}},
			want: 70,
		},
		{
			name: "unknown labels",
			resp: zeroShotResponse{Labels: []string{"alpha", "beta"}, Scores: []float64{0.9, 0.1}},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := zeroShotProbability(tt.resp); !approx(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseDetectorResponseErrors(t *testing.T) {
	for _, raw := range []string{`[]`, `[[]]`, `{"error":"loading"}`, `not json`} {
		if _, err := parseDetectorResponse([]byte(raw)); err == nil {
			t.Errorf("Expected error for %s", raw)
		}
	}
}

func TestHuggingFaceRetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				respondStatus(http.StatusServiceUnavailable)(w, r)
				return
			}
			respondJSON(`[{"label":"Fake","score":0.9}]`)(w, r)
		},
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), nil)

	got, err := c.Classify(context.Background(), sampleText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Method != MethodHuggingFaceDetector {
		t.Errorf("Expected detector result after retries, got %s", got.Method)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestHuggingFaceFailureAndBreaker(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondStatus(http.StatusUnauthorized),
		zeroShotModel: respondStatus(http.StatusUnauthorized),
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Classify(ctx, sampleText)
		if !errors.HasCode(err, errors.ErrCodeAIServiceFailed) {
			t.Fatalf("Expected AI service failure, got %v", err)
		}
	}
	if srv.callCount(detectorModel) != 2 || srv.callCount(zeroShotModel) != 2 {
		t.Errorf("Expected no retries on 401, got %d/%d calls",
			srv.callCount(detectorModel), srv.callCount(zeroShotModel))
	}

	_, err := c.Classify(ctx, sampleText)
	if err == nil {
		t.Fatal("Expected open breaker to fail the call")
	}
	if srv.callCount(detectorModel) != 2 {
		t.Error("Expected open breaker to skip the upstream call")
	}

	stats := c.CircuitBreakerStats()
	if healthy, _ := stats["overall_healthy"].(bool); healthy {
		t.Error("Expected unhealthy breaker stats")
	}
}

func TestHuggingFaceCache(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondJSON(`[{"label":"Fake","score":0.66}]`),
	})
	obs := &recordingObserver{}
	cache := newMemoryCache(time.Hour, 10)
	c := newTestClassifier(testClassifierConfig(srv.URL), cache, WithObserver(obs))
	ctx := context.Background()

	first, err := c.Classify(ctx, sampleText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := c.Classify(ctx, sampleText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("Expected only the second result cached, got %v/%v", first.Cached, second.Cached)
	}
	if second.AIProbability != first.AIProbability {
		t.Errorf("Expected identical scores, got %v/%v", first.AIProbability, second.AIProbability)
	}
	if srv.callCount(detectorModel) != 1 {
		t.Errorf("Expected one upstream call, got %d", srv.callCount(detectorModel))
	}
	if obs.cacheHits.Load() != 1 || obs.completed.Load() != 1 {
		t.Errorf("Unexpected observer counts: hits=%d completed=%d", obs.cacheHits.Load(), obs.completed.Load())
	}
}

func TestHuggingFaceCacheSeparatesDocumentsWithSharedHeader(t *testing.T) {
	var calls atomic.Int32
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: func(w http.ResponseWriter, r *http.Request) {
			score := 0.95
			if calls.Add(1) == 1 {
				score = 0.05
			}
			respondJSON(fmt.Sprintf(`[{"label":"Fake","score":%v}]`, score))(w, r)
		},
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), newMemoryCache(time.Hour, 10))
	ctx := context.Background()

	header := strings.Repeat("Jane Doe | Senior Engineer | Berlin | ", 5)
	human, err := c.Classify(ctx, header+"I fixed bugs and drank coffee.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	generated, err := c.Classify(ctx, header+"Leveraged synergistic cutting-edge paradigms to drive innovation.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if generated.Cached {
		t.Error("A different document must not be served from the cache")
	}
	if !approx(human.AIProbability, 5) || !approx(generated.AIProbability, 95) {
		t.Errorf("Expected 5 and 95, got %v and %v", human.AIProbability, generated.AIProbability)
	}
	if srv.callCount(detectorModel) != 2 {
		t.Errorf("Expected two upstream calls, got %d", srv.callCount(detectorModel))
	}
}

func TestHuggingFaceFailuresAreNotCached(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondStatus(http.StatusForbidden),
	})
	cfg := testClassifierConfig(srv.URL)
	cfg.FallbackModel = ""
	cfg.CircuitBreaker.Enabled = false
	cache := newMemoryCache(time.Hour, 10)
	c := newTestClassifier(cfg, cache)

	if _, err := c.Classify(context.Background(), sampleText); err == nil {
		t.Fatal("Expected error")
	}
	if cache.Len() != 0 {
		t.Error("Expected failure not to be cached")
	}
}

func TestHuggingFaceGetModelInfo(t *testing.T) {
	srv := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondJSON(`[{"label":"Real","score":0.99}]`),
	})
	c := newTestClassifier(testClassifierConfig(srv.URL), nil)

	info := c.GetModelInfo(context.Background())
	if !info.Available || info.Name != detectorModel {
		t.Errorf("Expected available model, got %+v", info)
	}
	opts, _ := srv.lastBody(detectorModel)["options"].(map[string]any)
	if opts["wait_for_model"] != false {
		t.Errorf("Expected health probe not to wait for the model, got %v", opts)
	}

	down := newInferenceServer(t, map[string]http.HandlerFunc{
		detectorModel: respondStatus(http.StatusServiceUnavailable),
	})
	info = newTestClassifier(testClassifierConfig(down.URL), nil).GetModelInfo(context.Background())
	if info.Available || info.Error == "" {
		t.Errorf("Expected unavailable model with error, got %+v", info)
	}
}

type recordingObserver struct {
	completed atomic.Int32
	cacheHits atomic.Int32
	fallbacks atomic.Int32
}

func (o *recordingObserver) ClassificationCompleted(context.Context, string, string, time.Duration, error) {
	o.completed.Add(1)
}

func (o *recordingObserver) CacheHit(context.Context, string) { o.cacheHits.Add(1) }

func (o *recordingObserver) FallbackUsed(context.Context, string) { o.fallbacks.Add(1) }

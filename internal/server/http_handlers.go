package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"veracity/internal/ensemble"
	"veracity/internal/errors"
	"veracity/internal/types"
)

const (
	codeRequestTooLarge = "REQUEST_TOO_LARGE"
	codeInternal        = "INTERNAL_ERROR"
	codeTimeout         = "TIMEOUT"

	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// healthHandler reports service and classifier readiness. It always answers
// 200 so that a classifier outage does not take the service out of rotation.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	h := s.Engine.Health(r.Context())

	healthy := h.ModelReady || h.Reason == ensemble.ReasonDisabled
	response := map[string]any{
		"status":             "healthy",
		"service":            "veracity",
		"version":            s.Version,
		"overall_status":     s.Engine.OverallStatus(h),
		"provider":           h.Provider,
		"api_accessible":     h.APIAccessible,
		"model_ready":        h.ModelReady,
		"cache_enabled":      h.CacheEnabled,
		"api_key_configured": h.APIKeyConfigured,
		"circuit_breaker":    h.CircuitBreaker,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	}
	if h.Model != nil {
		response["model"] = h.Model
	}
	if h.Reason != "" {
		response["reason"] = h.Reason
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
	}
	if !healthy {
		response["status"] = "degraded"
	}

	writeJSON(w, http.StatusOK, response)
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)
	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	certStatus["time_to_expiry"] = timeToExpiry.String()

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"], certStatus["status"] = false, "expired"
	case timeToExpiry <= certCriticalThreshold:
		certStatus["healthy"], certStatus["status"] = false, "critical"
	case timeToExpiry <= certWarningThreshold:
		certStatus["healthy"], certStatus["status"] = true, "warning"
	default:
		certStatus["healthy"], certStatus["status"] = true, "ok"
	}

	autoReload := map[string]any{"enabled": s.TLSConfig.AutoReload.Enabled}
	if s.TLSConfig.AutoReload.Enabled {
		autoReload["file_watcher_enabled"] = s.TLSConfig.AutoReload.FileWatcher.Enabled
		autoReload["vault_watcher_enabled"] = s.TLSConfig.AutoReload.VaultWatcher.Enabled
		if fw := s.CertificateManager.fileWatcher; fw != nil {
			autoReload["file_watcher_running"] = fw.IsRunning()
			autoReload["watched_files"] = fw.GetWatchedFiles()
		}
		if vw := s.CertificateManager.vaultWatcher; vw != nil {
			autoReload["vault_watcher_status"] = vw.Status()
		}
	}
	certStatus["auto_reload"] = autoReload
	certStatus["reloads"] = s.CertificateManager.GetMetrics()

	return certStatus
}

// statsHandler reports rate limiter and classifier circuit breaker state
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "veracity",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"circuit_breaker": s.Engine.CircuitBreakerStats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses a JSON body into v and applies its validate tags
func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := parseJSONRequest(r, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag()))
			}
			return errors.NewValidationError(errors.ErrCodeInvalidRequest, strings.Join(msgs, "; "), err)
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid request", err)
	}
	return nil
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(codeRequestTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to parse JSON", err)
	}
	return nil
}

// httpStatus maps an error to its response status
func httpStatus(err error) int {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
	if appErr.Code == codeRequestTooLarge {
		return http.StatusRequestEntityTooLarge
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeIO:
		return http.StatusBadRequest
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork, errors.ErrorTypeVerification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with the status its type maps to. Messages of
// internal errors are not exposed.
func writeAppError(w http.ResponseWriter, err error) {
	status := httpStatus(err)

	var appErr *errors.AppError
	switch {
	case errors.As(err, &appErr) && status != http.StatusInternalServerError:
		writeErrorResponse(w, http.StatusText(status), appErr.Code, appErr.Message, status)
	case errors.As(err, &appErr):
		writeErrorResponse(w, http.StatusText(status), appErr.Code, "", status)
	case status == http.StatusGatewayTimeout:
		writeErrorResponse(w, http.StatusText(status), codeTimeout, "analysis timed out", status)
	default:
		writeErrorResponse(w, http.StatusText(status), codeInternal, "", status)
	}
}

// writeResult encodes one of the analysis result variants
func writeResult(w http.ResponseWriter, result types.AnalysisResult) {
	switch result.(type) {
	case *types.ResumeAnalysisResult, *types.JobAnalysisResult:
		writeJSON(w, http.StatusOK, result)
	default:
		writeAppError(w, errors.NewInternalError(codeInternal, fmt.Sprintf("unsupported result type %T", result), nil))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, title, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: title, Code: code, Message: message})
}

package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"veracity/internal/errors"
	"veracity/internal/jobs"
	"veracity/internal/types"
	"veracity/internal/utils"
)

const tracerName = "veracity.api"

// analyzeResumeHandler scores the résumé text in the request body
func (s *Server) analyzeResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze_resume")
	defer span.End()

	var req types.AnalyzeResumeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeAppError(w, err)
		return
	}
	span.SetAttributes(
		attribute.Int("request.text_length", len(req.Text)),
		attribute.String("operation", "analyze_resume"),
	)

	result, err := s.Engine.AnalyzeResume(ctx, req.Text, requestFileInfo(req))
	if err != nil {
		span.RecordError(err)
		writeAppError(w, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("trust.score", result.TrustScore.OverallTrustScore),
	)
	writeResult(w, result)
}

// analyzeJobHandler verifies the job posting given as text, URL or structured content
func (s *Server) analyzeJobHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze_job")
	defer span.End()

	var req types.AnalyzeJobRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeAppError(w, err)
		return
	}
	if n := countSources(req); n != 1 {
		err := errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"exactly one of text, url or content is required", nil)
		span.RecordError(err)
		writeAppError(w, err)
		return
	}
	span.SetAttributes(
		attribute.Bool("request.has_url", req.URL != ""),
		attribute.String("operation", "analyze_job"),
	)

	result, err := s.Engine.AnalyzeJob(ctx, jobs.Input{
		Text:             req.Text,
		URL:              req.URL,
		Content:          req.Content,
		ExtractionMethod: req.ExtractionMethod,
	})
	if err != nil {
		span.RecordError(err)
		writeAppError(w, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("analysis.id", result.AnalysisID),
		attribute.Float64("trust.score", result.TrustScore.OverallTrustScore),
	)
	writeResult(w, result)
}

// countSources counts the populated job sources. Whitespace-only text still
// counts so that it reaches the engine and fails as empty input.
func countSources(req types.AnalyzeJobRequest) int {
	n := 0
	if req.Text != "" {
		n++
	}
	if req.URL != "" {
		n++
	}
	if req.Content != nil {
		n++
	}
	return n
}

func requestFileInfo(req types.AnalyzeResumeRequest) *types.FileInfo {
	if req.Filename == "" {
		return nil
	}
	return &types.FileInfo{
		Filename:  req.Filename,
		Size:      req.FileSize,
		SizeHuman: utils.FormatFileSize(req.FileSize),
	}
}

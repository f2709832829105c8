package jobs

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"veracity/internal/errors"
	"veracity/internal/trust"
	"veracity/internal/types"
)

// Input types reported in job results
const (
	InputTypeText    = "text"
	InputTypeURL     = "url"
	InputTypeContent = "content"
)

// Input is one job posting to analyse. Exactly one of Text, URL or Content is used.
type Input struct {
	Text             string
	URL              string
	Content          *types.JobContent
	ExtractionMethod string
}

// Settings selects which verification steps run and how they reach the network
type Settings struct {
	CompanyVerificationEnabled bool
	WebIntelligenceEnabled     bool
	Options                    Options
	Weights                    map[string]float64
}

// DefaultSettings enables every step with default probe options
func DefaultSettings() Settings {
	return Settings{
		CompanyVerificationEnabled: true,
		WebIntelligenceEnabled:     true,
		Options:                    DefaultOptions(),
	}
}

// Option configures an Analyzer
type Option func(*deps)

type deps struct {
	resolver Resolver
	client   *http.Client
}

// WithResolver replaces the DNS resolver used by company verification
func WithResolver(r Resolver) Option {
	return func(d *deps) { d.resolver = r }
}

// WithHTTPClient replaces the HTTP client used for every outbound probe
func WithHTTPClient(c *http.Client) Option {
	return func(d *deps) { d.client = c }
}

// Analyzer runs the job-posting verification pipeline
type Analyzer struct {
	fetcher *Fetcher
	content *ContentAnalyzer
	company *CompanyVerifier
	web     *WebIntelligenceGatherer
	trust   *trust.JobCalculator
	logger  *errors.Logger
	now     func() time.Time
}

// NewAnalyzer wires the pipeline. Invalid trust weights are an
// InvalidConfiguration error.
func NewAnalyzer(detector Detector, settings Settings, logger *errors.Logger, opts ...Option) (*Analyzer, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	d := &deps{}
	for _, opt := range opts {
		opt(d)
	}

	calc, err := trust.NewJobCalculator(settings.Weights)
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(settings.Options, d.client)
	a := &Analyzer{
		fetcher: fetcher,
		content: NewContentAnalyzer(detector, logger),
		trust:   calc,
		logger:  logger,
		now:     time.Now,
	}
	if settings.CompanyVerificationEnabled {
		a.company = NewCompanyVerifier(d.resolver, fetcher, settings.Options.RDAPURL, logger)
	}
	if settings.WebIntelligenceEnabled {
		a.web = NewWebIntelligenceGatherer(fetcher, logger)
	}
	return a, nil
}

// Analyze verifies one posting. Step failures are recorded in the result;
// only unusable input and cancellation are returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*types.JobAnalysisResult, error) {
	start := a.now()
	ctx, span := otel.Tracer("veracity.jobs").Start(ctx, "jobs.analyze")
	defer span.End()

	content, inputType, err := a.loadContent(ctx, in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("input.type", inputType))

	result := types.NewJobAnalysisResult(uuid.NewString(), inputType, start.UTC().Format(time.RFC3339))
	result.JobContent = content
	result.ProcessingDetails.ContentExtractionSuccessful = true

	analysis, err := a.content.Analyze(ctx, &content)
	if err != nil {
		return nil, err
	}
	result.ContentAnalysis = analysis
	result.ProcessingDetails.ContentAnalysisSuccessful = analysis.Success
	if !analysis.Success {
		recordFailure(result, "content_analysis", errors.NewPartialVerificationFailure("content_analysis", fmt.Errorf("%s", analysis.Error)))
	}

	domain := content.Domain
	if domain == "" {
		domain = DomainFromContact(content.ContactInfo)
	}

	var (
		company           types.CompanyVerification
		web               types.WebIntelligence
		companyErr, webErr error
		companyRan, webRan bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if a.company != nil && content.CompanyName != "" {
		companyRan = true
		g.Go(func() error {
			company, companyErr = a.company.Verify(gctx, content.CompanyName, domain)
			return nil
		})
	}
	if a.web != nil {
		webRan = true
		g.Go(func() error {
			web, webErr = a.web.Gather(gctx, content.CompanyName, domain, content.SourceURL)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var companyPtr *types.CompanyVerification
	switch {
	case companyRan:
		companyPtr = &company
		result.CompanyVerification = companyPtr
		result.ProcessingDetails.CompanyVerificationSuccessful = company.Success
		if companyErr != nil {
			recordFailure(result, StepCompanyVerification, companyErr)
		}
	case a.company != nil:
		result.Warnings = append(result.Warnings, "Company name not found in posting; company verification skipped")
	}

	var webPtr *types.WebIntelligence
	if webRan {
		webPtr = &web
		result.WebIntelligence = webPtr
		result.ProcessingDetails.WebIntelligenceSuccessful = web.Success
		if webErr != nil {
			recordFailure(result, StepWebIntelligence, webErr)
		}
	}

	source := trust.SourceInfo{ExtractionMethod: content.ExtractionMethod}
	switch {
	case webPtr != nil:
		source.DomainCredibility = web.SourceURLAnalysis.DomainCredibility
		source.IsLegitimateJobBoard = web.SourceURLAnalysis.IsLegitimateJobBoard
	case content.SourceURL != "":
		s := AnalyzeSourceURL(content.SourceURL)
		source.DomainCredibility = s.DomainCredibility
		source.IsLegitimateJobBoard = s.IsLegitimateJobBoard
	}

	result.RedFlagAnalysis = CompileRedFlags(analysis, companyPtr, webPtr)
	result.TrustScore = a.trust.Calculate(trust.JobComponents{
		Content:         &result.JobContent,
		ContentAnalysis: &result.ContentAnalysis,
		Company:         companyPtr,
		Web:             webPtr,
		Source:          source,
		RedFlags:        &result.RedFlagAnalysis,
	})
	result.ProcessingDetails.TrustCalculationSuccessful = true

	if len(result.Warnings) > 0 {
		result.Status = types.StatusCompletedWithWarnings
	}
	result.ProcessingTimeSeconds = round2(a.now().Sub(start).Seconds())

	span.SetAttributes(
		attribute.Float64("trust.overall", result.TrustScore.OverallTrustScore),
		attribute.Int("warnings", len(result.Warnings)),
	)
	a.logger.Info("Job analysis completed",
		"analysis_id", result.AnalysisID,
		"status", result.Status,
		"trust_score", result.TrustScore.OverallTrustScore,
		"duration_seconds", result.ProcessingTimeSeconds)
	return result, nil
}

// loadContent turns the input into a JobContent record
func (a *Analyzer) loadContent(ctx context.Context, in Input) (types.JobContent, string, error) {
	switch {
	case in.Content != nil:
		content := *in.Content
		content.Normalize()
		if in.ExtractionMethod != "" {
			content.ExtractionMethod = in.ExtractionMethod
		}
		if strings.TrimSpace(content.RawText) == "" {
			content.RawText = composeRawText(&content)
		}
		if strings.TrimSpace(content.RawText) == "" {
			return types.JobContent{}, "", errors.NewEmptyInputError()
		}
		return content, InputTypeContent, nil

	case in.URL != "":
		text, err := a.fetcher.FetchPosting(ctx, in.URL)
		if err != nil {
			return types.JobContent{}, "", err
		}
		if strings.TrimSpace(text) == "" {
			return types.JobContent{}, "", errors.NewEmptyInputError()
		}
		content := ExtractContent(text, types.ExtractionWebScraping)
		content.SourceURL = in.URL
		if host := hostOf(in.URL); !IsLegitimateJobBoard(host) {
			content.Domain = host
		}
		return content, InputTypeURL, nil

	default:
		if strings.TrimSpace(in.Text) == "" {
			return types.JobContent{}, "", errors.NewEmptyInputError()
		}
		return ExtractContent(in.Text, in.ExtractionMethod), InputTypeText, nil
	}
}

// composeRawText rebuilds posting text from structured fields
func composeRawText(c *types.JobContent) string {
	var parts []string
	for _, s := range []string{c.JobTitle, c.CompanyName, c.Location, c.JobDescription} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(c.Requirements) > 0 {
		parts = append(parts, "Requirements:\n"+strings.Join(c.Requirements, "\n"))
	}
	if c.ApplicationMethod != "" {
		parts = append(parts, c.ApplicationMethod)
	}
	return strings.Join(parts, "\n\n")
}

func recordFailure(result *types.JobAnalysisResult, step string, err error) {
	result.Errors = append(result.Errors, err.Error())
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("%s did not complete; its weight was redistributed across the remaining components", step))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

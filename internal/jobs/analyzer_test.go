package jobs

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"veracity/internal/errors"
	"veracity/internal/types"
)

func TestAnalyzeScamPostingWithDeadDomain(t *testing.T) {
	a, err := NewAnalyzer(nil, DefaultSettings(), nil,
		WithResolver(acmeResolver()),
		WithHTTPClient(offlineClient()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := a.Analyze(context.Background(), Input{Text: scamPosting})
	if err != nil {
		t.Fatalf("Step failures must not fail the analysis: %v", err)
	}

	if result.Status != types.StatusCompletedWithWarnings {
		t.Errorf("Expected status %q, got %q", types.StatusCompletedWithWarnings, result.Status)
	}
	if result.InputType != InputTypeText || result.AnalysisID == "" {
		t.Errorf("Unexpected identity fields %q/%q", result.InputType, result.AnalysisID)
	}
	if result.CompanyVerification == nil || result.CompanyVerification.Success {
		t.Fatalf("Expected failed company verification, got %+v", result.CompanyVerification)
	}
	if len(result.Errors) != 1 || len(result.Warnings) != 1 {
		t.Errorf("Expected one error and one warning, got %v / %v", result.Errors, result.Warnings)
	}

	d := result.ProcessingDetails
	if !d.ContentExtractionSuccessful || !d.ContentAnalysisSuccessful || d.CompanyVerificationSuccessful ||
		!d.WebIntelligenceSuccessful || !d.TrustCalculationSuccessful {
		t.Errorf("Unexpected processing details %+v", d)
	}

	company := result.TrustScore.ComponentBreakdown[types.ComponentCompanyLegitimacy]
	if company.Success || company.Weight != 0 || company.Contribution != 0 {
		t.Errorf("Expected company component excluded, got %+v", company)
	}
	content := result.TrustScore.ComponentBreakdown[types.ComponentContentAuthenticity]
	if math.Abs(content.Weight-0.4) > 1e-9 {
		t.Errorf("Expected content weight redistributed to 0.4, got %v", content.Weight)
	}

	flags := result.RedFlagAnalysis
	if len(flags.ContentRedFlags) == 0 {
		t.Error("Expected content red flags")
	}
	if !slices.Contains(flags.CompanyRedFlags, "Company domain does not resolve") {
		t.Errorf("Expected resolution red flag, got %v", flags.CompanyRedFlags)
	}
	if !slices.Contains(flags.ScamPatternMatches, "financial_scam: western union") {
		t.Errorf("Expected scam pattern match, got %v", flags.ScamPatternMatches)
	}
	if result.TrustScore.OverallTrustScore >= 60 {
		t.Errorf("Expected a low trust score, got %v", result.TrustScore.OverallTrustScore)
	}
}

func TestAnalyzeLegitimatePosting(t *testing.T) {
	srv := companySite(t)
	settings := DefaultSettings()
	settings.Options.RDAPURL = "http://rdap.test"
	a, err := NewAnalyzer(nil, settings, nil,
		WithResolver(acmeResolver()),
		WithHTTPClient(routedClient(srv)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := a.Analyze(context.Background(), Input{Text: backendPosting})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Status != types.StatusCompleted {
		t.Errorf("Expected completed, got %q with warnings %v", result.Status, result.Warnings)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
	for name, c := range result.TrustScore.ComponentBreakdown {
		if !c.Success {
			t.Errorf("Expected component %s to succeed", name)
		}
	}
	if result.TrustScore.OverallTrustScore < 50 {
		t.Errorf("Expected a reasonable trust score, got %v", result.TrustScore.OverallTrustScore)
	}
}

func TestAnalyzeMissingCompanyName(t *testing.T) {
	settings := DefaultSettings()
	settings.WebIntelligenceEnabled = false
	a, err := NewAnalyzer(nil, settings, nil, WithHTTPClient(offlineClient()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := a.Analyze(context.Background(), Input{Text: "looking for help with simple tasks, message me for details"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.CompanyVerification != nil {
		t.Error("Expected company verification skipped")
	}
	if result.WebIntelligence != nil {
		t.Error("Expected web intelligence disabled")
	}
	if result.Status != types.StatusCompletedWithWarnings || len(result.Warnings) != 1 {
		t.Errorf("Expected a single skip warning, got %q %v", result.Status, result.Warnings)
	}
}

func TestAnalyzeStructuredContent(t *testing.T) {
	settings := Settings{Options: DefaultOptions()}
	a, err := NewAnalyzer(nil, settings, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	content := &types.JobContent{
		JobTitle:       "Payroll Specialist",
		CompanyName:    "Contoso Ltd",
		JobDescription: "Process payroll for three hundred employees.",
		Requirements:   []string{"3 years of experience with payroll software"},
	}
	result, err := a.Analyze(context.Background(), Input{Content: content, ExtractionMethod: types.ExtractionPDFText})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.InputType != InputTypeContent {
		t.Errorf("Expected input type content, got %q", result.InputType)
	}
	if result.JobContent.RawText == "" {
		t.Error("Expected raw text rebuilt from fields")
	}
	if result.JobContent.ExtractionMethod != types.ExtractionPDFText {
		t.Errorf("Expected extraction method override, got %q", result.JobContent.ExtractionMethod)
	}
}

func TestAnalyzeFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>\n<h1>Job Title: Site Reliability Engineer</h1>\n<p>Company: Contoso Ltd</p>\n</body></html>")
	}))
	defer srv.Close()

	settings := Settings{Options: DefaultOptions()}
	a, err := NewAnalyzer(nil, settings, nil, WithHTTPClient(routedClient(srv)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := a.Analyze(context.Background(), Input{URL: "http://careers.contoso.com/jobs/42"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c := result.JobContent
	if result.InputType != InputTypeURL || c.ExtractionMethod != types.ExtractionWebScraping {
		t.Errorf("Unexpected input type %q / method %q", result.InputType, c.ExtractionMethod)
	}
	if c.JobTitle != "Site Reliability Engineer" || c.CompanyName != "Contoso Ltd" {
		t.Errorf("Unexpected extraction %q / %q", c.JobTitle, c.CompanyName)
	}
	if c.Domain != "careers.contoso.com" || c.SourceURL != "http://careers.contoso.com/jobs/42" {
		t.Errorf("Unexpected domain %q / source %q", c.Domain, c.SourceURL)
	}
}

func TestAnalyzeRejectsUnusableInput(t *testing.T) {
	a, err := NewAnalyzer(nil, Settings{}, nil, WithHTTPClient(offlineClient()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name string
		in   Input
		code string
	}{
		{"blank text", Input{Text: "  \n "}, errors.ErrCodeEmptyInput},
		{"empty content", Input{Content: &types.JobContent{}}, errors.ErrCodeEmptyInput},
		{"bad url", Input{URL: "ftp://jobs.example.com/1"}, errors.ErrCodeInvalidRequest},
		{"unreachable url", Input{URL: "https://jobs.example.com/1"}, errors.ErrCodeFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), tt.in)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestNewAnalyzerRejectsBadWeights(t *testing.T) {
	settings := DefaultSettings()
	settings.Weights = map[string]float64{types.ComponentContentAuthenticity: 2}
	if _, err := NewAnalyzer(nil, settings, nil); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Expected invalid configuration error, got %v", err)
	}
}

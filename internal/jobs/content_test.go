package jobs

import (
	"context"
	"math"
	"slices"
	"strings"
	"testing"

	"veracity/internal/ensemble"
	"veracity/internal/types"
)

const backendPosting = `Job Title: Senior Backend Engineer
Company: Acme Analytics Inc
Location: Austin, TX
Salary: $120,000 - $150,000 per year
Posted: 03/15/2026

Job Description: Acme Analytics builds data pipelines for regional hospitals. You will design and operate Go services that ingest clinical events, expose reporting APIs and keep our PostgreSQL clusters healthy. You will work with product managers and data scientists, review code, mentor two junior engineers and take part in a weekly on-call rotation shared by the platform team across three offices.

Requirements:
- 5 years of experience with Go
- Bachelor degree in computer science
- Experience with PostgreSQL and Kafka

Apply: Send your resume to jobs@acme-analytics.com
Website: https://www.acme-analytics.com/about.`

const scamPosting = `Job Title: Data Entry Clerk
Company: Global Wealth Partners LLC
Location: Remote

URGENT HIRING!!! Make money fast with guaranteed income. Pay upfront fee for your starter kit via western union. Act now, limited time, apply now!

Contact: recruiter@ghost-hiring.com`

func TestExtractContentLabelledPosting(t *testing.T) {
	c := ExtractContent(backendPosting, "")

	if c.JobTitle != "Senior Backend Engineer" {
		t.Errorf("Expected title 'Senior Backend Engineer', got %q", c.JobTitle)
	}
	if c.CompanyName != "Acme Analytics Inc" {
		t.Errorf("Expected company 'Acme Analytics Inc', got %q", c.CompanyName)
	}
	if c.Location != "Austin, TX" {
		t.Errorf("Expected location 'Austin, TX', got %q", c.Location)
	}
	if !c.SalaryRange.Found || c.SalaryRange.MinSalary == nil || *c.SalaryRange.MinSalary != 120000 {
		t.Fatalf("Expected min salary 120000, got %+v", c.SalaryRange)
	}
	if c.SalaryRange.MaxSalary == nil || *c.SalaryRange.MaxSalary != 150000 {
		t.Errorf("Expected max salary 150000, got %+v", c.SalaryRange.MaxSalary)
	}
	if c.SalaryRange.Period != "year" || c.SalaryRange.IsSuspicious {
		t.Errorf("Expected a realistic yearly salary, got %+v", c.SalaryRange)
	}
	if !strings.HasPrefix(c.JobDescription, "Acme Analytics builds data pipelines") {
		t.Errorf("Unexpected description %q", c.JobDescription)
	}
	want := []string{
		"5 years of experience with Go",
		"Bachelor degree in computer science",
		"Experience with PostgreSQL and Kafka",
	}
	if !slices.Equal(c.Requirements, want) {
		t.Errorf("Expected requirements %v, got %v", want, c.Requirements)
	}
	if c.ContactInfo.Email != "jobs@acme-analytics.com" {
		t.Errorf("Expected email jobs@acme-analytics.com, got %q", c.ContactInfo.Email)
	}
	if c.ContactInfo.Website != "https://www.acme-analytics.com/about" {
		t.Errorf("Expected trailing punctuation trimmed from website, got %q", c.ContactInfo.Website)
	}
	if c.Domain != "acme-analytics.com" {
		t.Errorf("Expected domain acme-analytics.com, got %q", c.Domain)
	}
	if c.ApplicationMethod != "Send your resume to jobs@acme-analytics.com" {
		t.Errorf("Unexpected application method %q", c.ApplicationMethod)
	}
	if c.PostingDate != "03/15/2026" {
		t.Errorf("Expected posting date 03/15/2026, got %q", c.PostingDate)
	}
	if len(c.RedFlagKeywords) != 0 {
		t.Errorf("Expected no red-flag keywords, got %v", c.RedFlagKeywords)
	}
	if c.ExtractionMethod != types.ExtractionPlainText {
		t.Errorf("Expected default extraction method, got %q", c.ExtractionMethod)
	}
}

func TestExtractContentFallbacks(t *testing.T) {
	text := "Backend Developer\nWork at Northwind Traders on payments.\nPay: $45 per hour"
	c := ExtractContent(text, types.ExtractionOCRImage)

	if c.JobTitle != "Backend Developer" {
		t.Errorf("Expected keyword title, got %q", c.JobTitle)
	}
	if c.CompanyName != "Northwind Traders" {
		t.Errorf("Expected company from 'at' phrase, got %q", c.CompanyName)
	}
	if c.SalaryRange.MinSalary == nil || *c.SalaryRange.MinSalary != 45 || c.SalaryRange.MaxSalary != nil {
		t.Errorf("Expected single hourly salary of 45, got %+v", c.SalaryRange)
	}
	if c.SalaryRange.Period != "hour" {
		t.Errorf("Expected period hour, got %q", c.SalaryRange.Period)
	}
	if c.ApplicationMethod != applicationFallback {
		t.Errorf("Expected %q, got %q", applicationFallback, c.ApplicationMethod)
	}
	if c.Requirements == nil || len(c.Requirements) != 0 {
		t.Errorf("Expected empty non-nil requirements, got %#v", c.Requirements)
	}
	if c.ExtractionMethod != types.ExtractionOCRImage {
		t.Errorf("Expected extraction method to be kept, got %q", c.ExtractionMethod)
	}
}

func TestExtractSalarySuspicious(t *testing.T) {
	s := extractSalary("Earn $250,000 - $400,000 a year from day one")
	if !s.IsSuspicious {
		t.Errorf("Expected salary above %d to be suspicious, got %+v", SuspiciousSalaryFloor, s)
	}
	if s.Period != "year" {
		t.Errorf("Expected period year, got %q", s.Period)
	}
}

func TestExtractSalaryOverflowIsSuspicious(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"range", "Earn $99,999,999,999,999,999,999 - $100,000,000,000,000,000,000 per month"},
		{"single", "Pay: $99,999,999,999,999,999,999 a year"},
		{"plain", "99,999,999,999,999,999,999 to 100,000,000,000,000,000,000 per week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := extractSalary(tt.text)
			if !s.Found || s.MinSalary == nil {
				t.Fatalf("Expected a parsed salary, got %+v", s)
			}
			if *s.MinSalary != math.MaxInt {
				t.Errorf("Expected the amount to saturate at %d, got %d", math.MaxInt, *s.MinSalary)
			}
			if !s.IsSuspicious {
				t.Errorf("Expected an out-of-range salary to be suspicious, got %+v", s)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"120,000", 120000, true},
		{"45.50", 45, true},
		{"", 0, false},
		{"9,223,372,036,854,775,808", math.MaxInt, true},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseAmount(%q): expected (%d, %v), got (%d, %v)", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestRedFlagKeywordsWholeWords(t *testing.T) {
	found := detectRedFlagKeywords(scamPosting)
	for _, kw := range []string{"make money fast", "guaranteed income", "pay upfront fee", "starter kit", "western union", "urgent hiring", "act now"} {
		if !slices.Contains(found, kw) {
			t.Errorf("Expected keyword %q in %v", kw, found)
		}
	}

	if got := detectRedFlagKeywords("Our team uses mlmodels for ranking"); len(got) != 0 {
		t.Errorf("Expected no match inside a longer word, got %v", got)
	}
}

func TestDomainFromContact(t *testing.T) {
	tests := []struct {
		name    string
		contact types.ContactInfo
		want    string
	}{
		{"company email", types.ContactInfo{Email: "hr@Acme.COM"}, "acme.com"},
		{"free mail falls back to website", types.ContactInfo{Email: "jane@gmail.com", Website: "https://www.acme.com/jobs"}, "acme.com"},
		{"free mail only", types.ContactInfo{Email: "jane@yahoo.com"}, ""},
		{"nothing", types.ContactInfo{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainFromContact(tt.contact); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetectUrgency(t *testing.T) {
	tests := []struct {
		text     string
		level    string
		pressure bool
	}{
		{"We review applications monthly.", "low", false},
		{"Apply today to join the team.", "moderate", false},
		{"Urgent hiring! Act now, apply now, limited positions.", "high", true},
	}

	for _, tt := range tests {
		u := detectUrgency(tt.text)
		if u.UrgencyLevel != tt.level || u.PressureTacticsDetected != tt.pressure {
			t.Errorf("detectUrgency(%q) = %s/%v, expected %s/%v", tt.text, u.UrgencyLevel, u.PressureTacticsDetected, tt.level, tt.pressure)
		}
	}
}

func TestDetectRedFlagCategories(t *testing.T) {
	d := detectRedFlags(scamPosting)

	if len(d.CriticalRedFlags) != 3 {
		t.Errorf("Expected 3 critical red flags, got %v", d.CriticalRedFlags)
	}
	if d.TotalRedFlags != len(d.CriticalRedFlags)+len(d.WarningRedFlags) {
		t.Errorf("Total %d does not match flag lists", d.TotalRedFlags)
	}
	if !slices.Contains(d.CriticalRedFlags, "Financial scam indicator: western union") {
		t.Errorf("Expected western union flagged as financial scam, got %v", d.CriticalRedFlags)
	}
	if len(d.RedFlagCategories) != len(redFlagCategories) {
		t.Errorf("Expected every category present, got %v", d.RedFlagCategories)
	}
}

func TestAssessQuality(t *testing.T) {
	c := ExtractContent(backendPosting, "")
	q := assessQuality(&c)

	if q.CompletenessScore != 100 {
		t.Errorf("Expected completeness 100, got %v", q.CompletenessScore)
	}
	if q.ProfessionalismScore != 100 {
		t.Errorf("Expected professionalism 100, got %v", q.ProfessionalismScore)
	}
	if math.Abs(q.OverallQualityScore-91) > 1e-9 {
		t.Errorf("Expected overall quality 91, got %v", q.OverallQualityScore)
	}
	if len(q.QualityIssues) != 0 {
		t.Errorf("Expected no quality issues, got %v", q.QualityIssues)
	}
}

type fakeDetector struct {
	detection *ensemble.Detection
	err       error
}

func (f *fakeDetector) Detect(ctx context.Context, _ string) (*ensemble.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detection, nil
}

func TestContentAnalyzerPenalisesGeneratedText(t *testing.T) {
	c := ExtractContent(backendPosting, "")

	plain, err := NewContentAnalyzer(nil, nil).Analyze(context.Background(), &c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !plain.Success {
		t.Fatalf("Expected success without a detector, got %+v", plain)
	}

	detector := &fakeDetector{detection: &ensemble.Detection{
		Fusion:          ensemble.Fusion{Probability: 85, RuleProbability: 60, AIEnhanced: true},
		ConfidenceLevel: "high",
	}}
	generated, err := NewContentAnalyzer(detector, nil).Analyze(context.Background(), &c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if generated.AIDetection.AIProbability != 85 || !generated.AIDetection.AIEnhanced {
		t.Errorf("Expected fused detection copied, got %+v", generated.AIDetection)
	}
	if diff := plain.OverallContentScore - generated.OverallContentScore; math.Abs(diff-20) > 1e-9 {
		t.Errorf("Expected a 20 point penalty, got %v (%v vs %v)", diff, plain.OverallContentScore, generated.OverallContentScore)
	}
}

func TestContentAnalyzerDetectorFailure(t *testing.T) {
	c := ExtractContent(backendPosting, "")

	failing := &fakeDetector{err: context.DeadlineExceeded}
	result, err := NewContentAnalyzer(failing, nil).Analyze(context.Background(), &c)
	if err != nil {
		t.Fatalf("Expected detector failure to be recorded, got error %v", err)
	}
	if result.Success || result.Error == "" {
		t.Errorf("Expected unsuccessful analysis with error, got %+v", result)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewContentAnalyzer(&fakeDetector{err: context.Canceled}, nil).Analyze(ctx, &c); err == nil {
		t.Error("Expected cancellation to be returned")
	}
}

func TestCompileRedFlags(t *testing.T) {
	c := ExtractContent(scamPosting, "")
	analysis, err := NewContentAnalyzer(nil, nil).Analyze(context.Background(), &c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	company := &types.CompanyVerification{RedFlags: []string{"Company domain does not resolve"}}

	flags := CompileRedFlags(analysis, company, nil)

	if len(flags.ContentRedFlags) != analysis.RedFlagDetection.TotalRedFlags {
		t.Errorf("Expected %d content flags, got %v", analysis.RedFlagDetection.TotalRedFlags, flags.ContentRedFlags)
	}
	if !slices.Equal(flags.CompanyRedFlags, company.RedFlags) {
		t.Errorf("Expected company flags copied, got %v", flags.CompanyRedFlags)
	}
	if flags.WebRedFlags == nil || len(flags.WebRedFlags) != 0 {
		t.Errorf("Expected empty web flags, got %#v", flags.WebRedFlags)
	}
	if !slices.Contains(flags.ScamPatternMatches, "financial_scam: western union") {
		t.Errorf("Expected scam pattern match, got %v", flags.ScamPatternMatches)
	}
}

package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"veracity/internal/errors"
	"veracity/internal/types"
)

// StepWebIntelligence names the web step in errors and warnings
const StepWebIntelligence = "web_intelligence"

// Analysis methods reported for heuristic estimates
const (
	MethodHeuristicEstimation = "heuristic_estimation"
	MethodPatternEstimation   = "pattern_based_estimation"
)

var careersPaths = []string{"/careers", "/jobs", "/career", "/employment", "/join-us", "/opportunities"}

// WebIntelligenceGatherer estimates the web footprint of a hiring company
type WebIntelligenceGatherer struct {
	fetcher *Fetcher
	logger  *errors.Logger
	now     func() time.Time
}

func NewWebIntelligenceGatherer(fetcher *Fetcher, logger *errors.Logger) *WebIntelligenceGatherer {
	if fetcher == nil {
		fetcher = NewFetcher(DefaultOptions(), nil)
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &WebIntelligenceGatherer{fetcher: fetcher, logger: logger, now: time.Now}
}

// Gather analyses the company domain, name-based presence estimates and the
// source URL. An unreachable company site is recorded in domain_analysis and
// is not a failure; a cancelled context is.
func (w *WebIntelligenceGatherer) Gather(ctx context.Context, name, domain, sourceURL string) (types.WebIntelligence, error) {
	ctx, span := otel.Tracer("veracity.jobs").Start(ctx, "jobs.web_intelligence")
	defer span.End()

	if name == "" {
		name = "Unknown Company"
	}
	result := types.WebIntelligence{
		CompanyName:         name,
		Success:             true,
		SocialMediaPresence: estimateSocialMedia(name),
		ReviewAnalysis:      estimateReviews(name),
		JobBoardPresence:    estimateJobBoards(name),
		CredibilityFactors:  []string{},
		WarningSigns:        []string{},
		AnalysisTimestamp:   w.now().UTC().Format(time.RFC3339),
	}

	if domain == "" {
		result.DomainAnalysis = types.WebDomainAnalysis{
			SuspiciousElements: []string{},
			Note:               "No domain provided for analysis",
		}
	} else {
		result.DomainAnalysis = w.analyzeDomain(ctx, domain)
	}

	if sourceURL == "" {
		result.SourceURLAnalysis = types.SourceURLAnalysis{
			CredibilityFactors: []string{},
			WarningSigns:       []string{},
		}
	} else {
		result.SourceURLAnalysis = AnalyzeSourceURL(sourceURL)
	}

	if err := ctx.Err(); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, errors.NewPartialVerificationFailure(StepWebIntelligence, err)
	}

	result.OverallWebCredibility = webCredibility(&result)
	result.CredibilityFactors, result.WarningSigns = webInsights(&result)
	span.SetAttributes(attribute.Float64("web.credibility", result.OverallWebCredibility))
	return result, nil
}

func (w *WebIntelligenceGatherer) analyzeDomain(ctx context.Context, domain string) types.WebDomainAnalysis {
	a := types.WebDomainAnalysis{
		Domain:             domain,
		SuspiciousElements: []string{},
	}

	page, err := probeSite(ctx, w.fetcher, domain)
	if err != nil {
		w.logger.Debug("Company site not reachable", "domain", domain, "error", err.Error())
		a.Error = err.Error()
		return a
	}
	if page.StatusCode != http.StatusOK {
		a.Note = fmt.Sprintf("Company site returned HTTP status %d", page.StatusCode)
		return a
	}

	a.IsAccessible = true
	a.HasSSL = page.Secure
	quality, err := analyzePageQuality(page.Body)
	if err != nil {
		a.Error = err.Error()
		return a
	}
	a.ProfessionalDesign = quality.professionalDesign
	a.ContactInfoPresent = quality.contactInfoPresent
	a.ContentQualityScore = quality.contentQualityScore
	a.SuspiciousElements = quality.suspiciousElements
	a.CareersPageExists = w.hasCareersPage(ctx, page.URL)
	return a
}

func (w *WebIntelligenceGatherer) hasCareersPage(ctx context.Context, base string) bool {
	baseURL, err := url.Parse(base)
	if err != nil {
		return false
	}
	for _, path := range careersPaths {
		if ctx.Err() != nil {
			return false
		}
		page, err := w.fetcher.Get(ctx, baseURL.ResolveReference(&url.URL{Path: path}).String())
		if err == nil && page.StatusCode == http.StatusOK {
			return true
		}
	}
	return false
}

func estimateSocialMedia(name string) types.SocialMediaPresence {
	lower := strings.ToLower(name)
	indicators := 0
	for _, ok := range []bool{
		containsAny(lower, shortCorporateSuffixes),
		len(strings.Fields(name)) >= 2,
		!containsAny(lower, scamNamePhrases),
		len(name) > 5,
	} {
		if ok {
			indicators++
		}
	}

	s := types.SocialMediaPresence{AnalysisMethod: MethodHeuristicEstimation}
	if indicators >= 3 {
		s.EstimatedLinkedinPresence = true
		s.EstimatedFacebookPresence = true
		s.EstimatedTwitterPresence = true
		s.SocialMediaScore = 100
	}
	return s
}

func estimateReviews(name string) types.ReviewAnalysis {
	lower := strings.ToLower(name)
	likelihood := fraction([]bool{
		containsAny(lower, []string{"inc", "corp", "llc", "ltd"}),
		containsAny(lower, []string{"tech", "software", "consulting", "services"}),
		len(strings.Fields(name)) <= 4,
		!containsAny(lower, []string{"home business", "easy", "quick", "fast"}),
	})

	r := types.ReviewAnalysis{
		ReputationIndicators: []string{},
		WarningIndicators:    []string{},
		AnalysisMethod:       MethodPatternEstimation,
	}
	var rating float64
	switch {
	case likelihood >= 0.7:
		r.ReviewAvailability = "likely_available"
		rating = 3.5 + (likelihood-0.7)*5
		r.ReviewCountEstimate = int(likelihood * 100)
		r.ReputationIndicators = append(r.ReputationIndicators, "Professional company name", "Industry recognition likely")
	case likelihood >= 0.4:
		r.ReviewAvailability = "possibly_available"
		rating = 2.5 + likelihood*2
		r.ReviewCountEstimate = int(likelihood * 50)
	default:
		r.ReviewAvailability = "unlikely"
		rating = likelihood * 3
		r.WarningIndicators = append(r.WarningIndicators, "Company name has suspicious characteristics")
	}
	rating = round2(rating)
	r.EstimatedRating = &rating
	return r
}

func estimateJobBoards(name string) types.JobBoardPresence {
	lower := strings.ToLower(name)
	presence := fraction([]bool{
		containsAny(lower, shortCorporateSuffixes),
		containsAny(lower, []string{"group", "systems", "solutions", "technologies"}),
		len(name) >= 5,
		!containsAny(lower, []string{"home business", "easy money", "work from home", "be your own boss"}),
	})

	j := types.JobBoardPresence{
		LikelyOnMajorBoards:   presence >= 0.6,
		EstimatedJobCount:     int(presence * 25),
		BoardCredibilityScore: presence * 100,
	}
	switch {
	case presence >= 0.8:
		j.PresenceIndicators = []string{"Professional company profile", "Multiple job listings likely"}
	case presence >= 0.5:
		j.PresenceIndicators = []string{"Some professional indicators"}
	default:
		j.PresenceIndicators = []string{"Limited professional presence indicators"}
	}
	return j
}

// webCredibility is a point sum over the web checks, capped at 100
func webCredibility(w *types.WebIntelligence) float64 {
	score := 0.0

	if d := w.DomainAnalysis; d.Error == "" {
		if d.IsAccessible {
			score += 12
		}
		if d.HasSSL {
			score += 8
		}
		if d.ProfessionalDesign {
			score += 10
		}
		if d.CareersPageExists {
			score += 5
		}
	}

	score += w.SocialMediaPresence.SocialMediaScore / 100 * 20

	switch w.ReviewAnalysis.ReviewAvailability {
	case "likely_available":
		score += 15
	case "possibly_available":
		score += 10
	}
	if r := w.ReviewAnalysis.EstimatedRating; r != nil && *r > 3.5 {
		score += 5
	}

	if w.JobBoardPresence.LikelyOnMajorBoards {
		score += 10
	}
	score += w.JobBoardPresence.BoardCredibilityScore / 100 * 5

	if s := w.SourceURLAnalysis; s.Error == "" {
		if s.IsLegitimateJobBoard {
			score += 8
		} else {
			score += s.DomainCredibility / 100 * 2
		}
	}

	return min(score, 100)
}

func webInsights(w *types.WebIntelligence) (factors, warnings []string) {
	factors, warnings = []string{}, []string{}

	d := w.DomainAnalysis
	if d.ProfessionalDesign {
		factors = append(factors, "Company website shows professional design")
	}
	if d.CareersPageExists {
		factors = append(factors, "Company has dedicated careers section")
	}
	if len(d.SuspiciousElements) > 0 {
		warnings = append(warnings, "Website contains suspicious keywords: "+strings.Join(d.SuspiciousElements, ", "))
	}

	if w.SocialMediaPresence.EstimatedLinkedinPresence {
		factors = append(factors, "Company likely has LinkedIn presence")
	}
	warnings = append(warnings, w.ReviewAnalysis.WarningIndicators...)

	factors = append(factors, w.SourceURLAnalysis.CredibilityFactors...)
	warnings = append(warnings, w.SourceURLAnalysis.WarningSigns...)
	return factors, warnings
}

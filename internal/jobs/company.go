package jobs

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"veracity/internal/errors"
	"veracity/internal/types"
)

// StepCompanyVerification names the company step in errors and warnings
const StepCompanyVerification = "company_verification"

// CompanyVerifier checks whether the hiring company looks legitimate
type CompanyVerifier struct {
	resolver Resolver
	fetcher  *Fetcher
	rdapURL  string
	logger   *errors.Logger
	now      func() time.Time
}

// NewCompanyVerifier creates a verifier. A nil resolver selects net.DefaultResolver.
func NewCompanyVerifier(resolver Resolver, fetcher *Fetcher, rdapURL string, logger *errors.Logger) *CompanyVerifier {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if fetcher == nil {
		fetcher = NewFetcher(DefaultOptions(), nil)
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &CompanyVerifier{
		resolver: resolver,
		fetcher:  fetcher,
		rdapURL:  rdapURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Verify runs every company check. The result is always populated; a
// PartialVerificationFailure error accompanies a result with success=false.
func (v *CompanyVerifier) Verify(ctx context.Context, name, domain string) (types.CompanyVerification, error) {
	ctx, span := otel.Tracer("veracity.jobs").Start(ctx, "jobs.company_verification")
	defer span.End()
	span.SetAttributes(attribute.String("company.domain", domain))

	result := types.CompanyVerification{
		CompanyName:       name,
		CompanyDomain:     domain,
		Success:           true,
		RedFlags:          []string{},
		GreenFlags:        []string{},
		AnalysisTimestamp: v.now().UTC().Format(time.RFC3339),
		VerificationDetails: types.VerificationDetails{
			OnlinePresence:   analyzeOnlinePresence(name),
			BusinessPatterns: analyzeBusinessPatterns(name),
			NameQuality:      analyzeNameQuality(name),
		},
	}
	details := &result.VerificationDetails

	if domain == "" {
		details.DomainAnalysis = &types.DomainAnalysis{
			Nameservers: []string{},
			Addresses:   []string{},
			Note:        "No domain provided for analysis",
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			details.DomainAnalysis = v.checkDomain(gctx, domain)
			return nil
		})
		g.Go(func() error {
			details.DomainReputation = v.checkReputation(gctx, domain)
			return nil
		})
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, errors.NewPartialVerificationFailure(StepCompanyVerification, err)
	}

	result.OverallLegitimacyScore = legitimacyScore(details)
	result.RedFlags, result.GreenFlags = companyFlags(details)

	if da := details.DomainAnalysis; domain != "" && da.Error != "" {
		result.Success = false
		result.Error = da.Error
		result.RedFlags = append(result.RedFlags, "Company domain does not resolve")
		span.SetAttributes(attribute.Bool("company.resolved", false))
		return result, errors.NewPartialVerificationFailure(StepCompanyVerification, fmt.Errorf("%s", da.Error))
	}

	span.SetAttributes(attribute.Float64("company.legitimacy", result.OverallLegitimacyScore))
	v.logger.Debug("Company verification completed",
		"company", name,
		"legitimacy_score", result.OverallLegitimacyScore)
	return result, nil
}

// legitimacyScore is a point sum over the company checks, capped at 100
func legitimacyScore(d *types.VerificationDetails) float64 {
	score := 0.0

	if da := d.DomainAnalysis; da != nil && da.Error == "" {
		if da.IsRegistered {
			score += 15
		}
		if da.AgeDays != nil {
			switch age := *da.AgeDays; {
			case age > 1095:
				score += 15
			case age > 365:
				score += 10
			case age > 90:
				score += 5
			}
		}
		if !da.IsSuspicious {
			score += 5
		}
	}

	if rep := d.DomainReputation; rep != nil && rep.Error == "" {
		score += rep.ReputationScore / 100 * 10
	}

	p := d.OnlinePresence
	score += p.SocialMediaPresenceScore / 100 * 15
	if p.SearchResultsEstimated > 100 {
		score += 5
	}
	if p.SearchResultsEstimated > 500 {
		score += 5
	}

	b := d.BusinessPatterns
	if !b.AppearsGeneric {
		score += 5
	}
	if len(b.CommonScamPatterns) == 0 {
		score += 5
	}
	score += min(float64(len(b.LegitimacyIndicators))*2, 5)

	score += d.NameQuality.OverallQuality / 100 * 15

	return min(score, 100)
}

func companyFlags(d *types.VerificationDetails) (red, green []string) {
	red, green = []string{}, []string{}

	if da := d.DomainAnalysis; da != nil && da.Error == "" {
		if da.IsSuspicious {
			red = append(red, "Domain is very new (less than 30 days old)")
		}
		if da.AgeDays != nil {
			switch age := *da.AgeDays; {
			case age > 1095:
				green = append(green, "Domain is well-established (3+ years old)")
			case age > 365:
				green = append(green, "Domain has reasonable age (1+ years)")
			}
		}
		if da.Registrar != "" {
			green = append(green, "Domain registered with "+da.Registrar)
		}
	}

	if rep := d.DomainReputation; rep != nil && rep.Error == "" {
		if rep.SSLCertificate {
			green = append(green, "Website uses SSL certificate")
		} else {
			red = append(red, "Website does not use SSL certificate")
		}
		if rep.SuspiciousRedirects {
			red = append(red, "Website has suspicious redirect chains")
		}
	}

	b := d.BusinessPatterns
	if len(b.CommonScamPatterns) > 0 {
		red = append(red, "Contains scam-related keywords: "+strings.Join(firstN(b.CommonScamPatterns, 3), ", "))
	}
	if len(b.LegitimacyIndicators) > 0 {
		green = append(green, "Contains professional keywords: "+strings.Join(firstN(b.LegitimacyIndicators, 3), ", "))
	}
	if b.BusinessTypeLikelihood == "suspicious" {
		red = append(red, "Business name suggests potentially fraudulent activity")
	}

	q := d.NameQuality
	switch {
	case q.OverallQuality < 30:
		red = append(red, "Company name appears unprofessional or incomplete")
	case q.OverallQuality > 70:
		green = append(green, "Company name appears professional and complete")
	}
	red = append(red, firstN(q.QualityIssues, 2)...)

	if d.OnlinePresence.HasLinkedinLikelihood {
		green = append(green, "Likely has professional LinkedIn presence")
	}
	red = append(red, firstN(d.OnlinePresence.SuspiciousIndicators, 2)...)

	return red, green
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package jobs

import (
	"net/url"
	"regexp"
	"strings"

	"veracity/internal/types"
)

// legitimateJobBoards are well-known job sites
var legitimateJobBoards = []string{
	"indeed.com", "linkedin.com", "glassdoor.com", "monster.com",
	"careerbuilder.com", "ziprecruiter.com", "simplyhired.com",
	"dice.com", "craigslist.org", "upwork.com", "freelancer.com",
}

var (
	urlShorteners = []string{"bit.ly", "tinyurl", "goo.gl"}
	ipHostPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+`)
)

// IsLegitimateJobBoard reports whether host belongs to a known job site
func IsLegitimateJobBoard(host string) bool {
	host = strings.ToLower(host)
	for _, board := range legitimateJobBoards {
		if host == board || strings.HasSuffix(host, "."+board) {
			return true
		}
	}
	return false
}

// AnalyzeSourceURL rates the URL a posting was published at
func AnalyzeSourceURL(rawURL string) types.SourceURLAnalysis {
	a := types.SourceURLAnalysis{
		SourceURL:          rawURL,
		CredibilityFactors: []string{},
		WarningSigns:       []string{},
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if err == nil {
			a.Error = "source URL has no host"
		} else {
			a.Error = err.Error()
		}
		return a
	}

	host := strings.ToLower(u.Hostname())
	https := u.Scheme == "https"
	a.IsLegitimateJobBoard = IsLegitimateJobBoard(host)
	a.URLStructureQuality = fraction([]bool{
		https,
		len(u.Path) > 1,
		!containsAny(host, urlShorteners),
		strings.Contains(host, "."),
		len(host) > 4,
	}) * 100
	a.SecurityIndicators = types.URLSecurityIndicators{
		UsesHTTPS:               https,
		HasSuspiciousSubdomains: len(strings.Split(u.Host, ".")) > 3,
		ContainsIPAddress:       ipHostPattern.MatchString(u.Host),
	}

	switch {
	case a.IsLegitimateJobBoard:
		a.DomainCredibility = 90
		a.CredibilityFactors = append(a.CredibilityFactors, "Posted on legitimate job board")
	case https:
		a.DomainCredibility = 60
		a.CredibilityFactors = append(a.CredibilityFactors, "Uses secure HTTPS connection")
	default:
		a.DomainCredibility = 30
		a.WarningSigns = append(a.WarningSigns, "Uses insecure HTTP connection")
	}
	if a.SecurityIndicators.ContainsIPAddress {
		a.WarningSigns = append(a.WarningSigns, "URL contains IP address instead of domain name")
		a.DomainCredibility -= 20
	}
	return a
}

package jobs

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"veracity/internal/errors"
	"veracity/internal/types"
)

var (
	titleLabelPattern   = regexp.MustCompile(`(?i)(?:job title|position|role):[ \t]*([^\n]+)`)
	titleKeywordPattern = regexp.MustCompile(`(?im)^[ \t]*((?:software|senior|junior|lead|principal|data|marketing|sales|customer|project|product|business|operations|human resources|hr|finance|accounting|graphic|web|mobile|backend|frontend|fullstack|devops|qa|quality assurance|analyst|manager|director|coordinator|specialist|engineer|developer|designer|architect|consultant|intern|entry level)\s+[^\n]{1,100})`)

	companyLabelPattern  = regexp.MustCompile(`(?i)(?:company|employer|organization):[ \t]*([^\n]+)`)
	companyAtPattern     = regexp.MustCompile(`(?:\bat|@)\s+([A-Z][A-Za-z&.]*(?:[ \t]+[A-Z][A-Za-z&.]*){0,4})`)
	companySuffixPattern = regexp.MustCompile(`\b([A-Z][A-Za-z&.]*(?:[ \t]+[A-Z][A-Za-z&.]*){0,4}[ \t]+(?:Inc|LLC|Corp|Ltd|Company|Co|Group|Solutions|Technologies|Systems|Services)\b\.?)`)

	salaryRangePattern  = regexp.MustCompile(`(?i)\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:-|–|to)\s*\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:per\s+|/\s*|a\s+)?(hour|day|week|month|year|annually)?`)
	salarySinglePattern = regexp.MustCompile(`(?i)\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:per\s+|/\s*|a\s+)?(hour|day|week|month|year|annually)`)
	salaryPlainPattern  = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*(?:-|–|to)\s*(\d{1,3}(?:,\d{3})*)\s*(?:per\s+|/\s*|a\s+)?(hour|day|week|month|year|annually)`)

	locationLabelPattern  = regexp.MustCompile(`(?i)(?:location|based in|located in):[ \t]*([^\n]+)`)
	locationCityPattern   = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:[ \t][A-Z][a-zA-Z]+)*,[ \t]+[A-Z]{2}(?:[ \t]+\d{5})?)\b`)
	locationRemotePattern = regexp.MustCompile(`(?i)\b(?:remote|work from home|telecommute|virtual)\b`)

	descriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)(?:job description|description|responsibilities|duties):\s*(.*?)(?:\n[ \t]*\n|\nrequirements|\napply|\z)`),
		regexp.MustCompile(`(?is)(?:about the role|role description):\s*(.*?)(?:\n[ \t]*\n|\nrequirements|\napply|\z)`),
	}
	requirementsPattern = regexp.MustCompile(`(?is)(?:requirements|qualifications|skills):\s*(.*?)(?:\n[ \t]*\n|\napply|\ncontact|\z)`)
	requirementSplit    = regexp.MustCompile(`[•\n]|(?:^|\s)[-*]\s`)

	emailPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern   = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	websitePattern = regexp.MustCompile(`https?://[^\s]+`)

	applyLabelPattern = regexp.MustCompile(`(?i)(?:how to apply|apply|application):[ \t]*([^\n]+)`)
	applyVerbPattern  = regexp.MustCompile(`(?i)(?:send|email|contact|apply)[^\n]*?(?:resume|cv|application)`)

	postingDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:posted|date):\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:posted|date):\s*([A-Za-z]+ \d{1,2}, \d{4})`),
	}
)

// SuspiciousSalaryFloor is the minimum salary above which a posting is flagged
const SuspiciousSalaryFloor = 200000

const (
	maxRequirements     = 10
	applicationFallback = "Not specified"
)

var companyFalsePositives = []string{"job", "position", "role", "apply", "click", "here"}

// redFlagKeywords are phrases common in fraudulent postings
var redFlagKeywords = []string{
	"easy money", "make money fast", "work from home", "no experience needed",
	"guaranteed income", "unlimited earning potential", "be your own boss",
	"financial freedom", "pyramid", "mlm", "multi-level marketing",
	"pay upfront fee", "training fee", "starter kit", "investment required",
	"wire transfer", "western union", "money gram", "cash advance",
	"urgent hiring", "immediate start", "no interview required",
	"too good to be true", "act now", "limited time offer",
}

var redFlagPatterns = compilePhrases(redFlagKeywords)

// freeMailDomains identify the mail provider, not the employer
var freeMailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"live.com":       true,
	"aol.com":        true,
	"icloud.com":     true,
	"proton.me":      true,
	"protonmail.com": true,
}

// ExtractContent parses a plain-text posting into a JobContent record.
// Fields that cannot be found are left empty; lists are never nil.
func ExtractContent(text, method string) types.JobContent {
	if method == "" {
		method = types.ExtractionPlainText
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	content := types.JobContent{
		JobTitle:          extractTitle(text),
		CompanyName:       extractCompany(text),
		SalaryRange:       extractSalary(text),
		Location:          extractLocation(text),
		JobDescription:    extractDescription(text),
		Requirements:      extractRequirements(text),
		ContactInfo:       extractContact(text),
		ApplicationMethod: extractApplicationMethod(text),
		PostingDate:       extractPostingDate(text),
		RedFlagKeywords:   detectRedFlagKeywords(text),
		ExtractionMethod:  method,
		RawText:           text,
	}
	content.Domain = DomainFromContact(content.ContactInfo)
	return content
}

func extractTitle(text string) string {
	if m := titleLabelPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := titleKeywordPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if len(line) > 5 && len(line) < 100 &&
			!strings.HasPrefix(lower, "http") &&
			!strings.HasPrefix(lower, "www") &&
			!strings.HasPrefix(lower, "email") {
			return line
		}
	}
	return ""
}

func extractCompany(text string) string {
	for _, p := range []*regexp.Regexp{companyLabelPattern, companySuffixPattern, companyAtPattern} {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			company := strings.Trim(strings.TrimSpace(m[1]), ",")
			if len(company) > 2 && !containsAny(strings.ToLower(company), companyFalsePositives) {
				return company
			}
		}
	}
	return ""
}

func extractSalary(text string) types.SalaryRange {
	salary := types.SalaryRange{}

	if m := salaryRangePattern.FindStringSubmatch(text); m != nil {
		fillSalary(&salary, m[0], m[1], m[2], m[3])
	} else if m := salarySinglePattern.FindStringSubmatch(text); m != nil {
		fillSalary(&salary, m[0], m[1], "", m[2])
	} else if m := salaryPlainPattern.FindStringSubmatch(text); m != nil {
		fillSalary(&salary, m[0], m[1], m[2], m[3])
	}
	return salary
}

func fillSalary(s *types.SalaryRange, raw, low, high, period string) {
	s.Found = true
	s.RawText = strings.TrimSpace(raw)
	s.Period = strings.ToLower(period)
	if v, ok := parseAmount(low); ok {
		s.MinSalary = &v
		s.IsSuspicious = v > SuspiciousSalaryFloor
	}
	if v, ok := parseAmount(high); ok {
		s.MaxSalary = &v
	}
}

// parseAmount reads a matched dollar amount. Amounts too large for an int
// saturate at math.MaxInt so they still count as suspicious.
func parseAmount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

func extractLocation(text string) string {
	if m := locationLabelPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := locationCityPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := locationRemotePattern.FindString(text); m != "" {
		return m
	}
	return ""
}

func extractDescription(text string) string {
	for _, p := range descriptionPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if desc := strings.TrimSpace(m[1]); desc != "" {
				return desc
			}
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		if len(para) > 100 {
			return strings.TrimSpace(para)
		}
	}

	runes := []rune(text)
	if len(runes) > 500 {
		return string(runes[:500]) + "..."
	}
	return text
}

func extractRequirements(text string) []string {
	requirements := []string{}
	m := requirementsPattern.FindStringSubmatch(text)
	if m == nil {
		return requirements
	}
	for _, item := range requirementSplit.Split(m[1], -1) {
		item = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(item), "•-*"))
		if len(item) <= 10 {
			continue
		}
		requirements = append(requirements, item)
		if len(requirements) == maxRequirements {
			break
		}
	}
	return requirements
}

func extractContact(text string) types.ContactInfo {
	return types.ContactInfo{
		Email:   emailPattern.FindString(text),
		Phone:   phonePattern.FindString(text),
		Website: strings.TrimRight(websitePattern.FindString(text), ".,;:)]\"'"),
	}
}

func extractApplicationMethod(text string) string {
	if m := applyLabelPattern.FindStringSubmatch(text); m != nil {
		if method := strings.TrimSpace(m[1]); method != "" {
			return method
		}
	}
	if m := applyVerbPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return applicationFallback
}

func extractPostingDate(text string) string {
	for _, p := range postingDatePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func detectRedFlagKeywords(text string) []string {
	found := []string{}
	for i, p := range redFlagPatterns {
		if p.MatchString(text) {
			found = append(found, redFlagKeywords[i])
		}
	}
	return found
}

// DomainFromContact picks the employer domain from contact details. Free
// mail providers are skipped in favour of the website host.
func DomainFromContact(contact types.ContactInfo) string {
	if at := strings.LastIndexByte(contact.Email, '@'); at >= 0 {
		domain := strings.ToLower(contact.Email[at+1:])
		if domain != "" && !freeMailDomains[domain] {
			return domain
		}
	}
	if contact.Website != "" {
		return hostOf(contact.Website)
	}
	return ""
}

// hostOf returns the lower-cased host of a URL or bare domain, without a
// leading "www."
func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Host
	} else if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// compilePhrases builds case-insensitive whole-word matchers for phrases
func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// matchedPhrases returns the phrases that occur in lower as plain substrings
func matchedPhrases(lower string, phrases []string) []string {
	found := []string{}
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}

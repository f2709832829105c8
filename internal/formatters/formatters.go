package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"veracity/internal/types"
)

// Data type keys used by the registry
const (
	TypeAny          = "any"
	TypeResumeResult = "ResumeAnalysisResult"
	TypeJobResult    = "JobAnalysisResult"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeResumeResult, &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", TypeResumeResult, &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeJobResult, &JobTextFormatter{})
	registry.RegisterFormatter("markdown", TypeJobResult, &JobMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.ResumeAnalysisResult, types.ResumeAnalysisResult:
		return TypeResumeResult
	case *types.JobAnalysisResult, types.JobAnalysisResult:
		return TypeJobResult
	default:
		return TypeAny
	}
}

func asResumeResult(data any) (*types.ResumeAnalysisResult, error) {
	switch r := data.(type) {
	case *types.ResumeAnalysisResult:
		if r == nil {
			return nil, fmt.Errorf("nil ResumeAnalysisResult")
		}
		return r, nil
	case types.ResumeAnalysisResult:
		return &r, nil
	}
	return nil, fmt.Errorf("expected ResumeAnalysisResult, got %T", data)
}

func asJobResult(data any) (*types.JobAnalysisResult, error) {
	switch r := data.(type) {
	case *types.JobAnalysisResult:
		if r == nil {
			return nil, fmt.Errorf("nil JobAnalysisResult")
		}
		return r, nil
	case types.JobAnalysisResult:
		return &r, nil
	}
	return nil, fmt.Errorf("expected JobAnalysisResult, got %T", data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// ResumeTextFormatter renders a résumé result as plain text
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	result, err := asResumeResult(data)
	if err != nil {
		return "", err
	}
	a := result.Analysis
	t := result.TrustScore

	var output strings.Builder

	output.WriteString("=== RESUME AUTHENTICITY ===\n")
	if result.FileInfo != nil {
		output.WriteString(fmt.Sprintf("File: %s (%s)\n", result.FileInfo.Filename, result.FileInfo.SizeHuman))
	}
	output.WriteString(fmt.Sprintf("AI Probability: %.1f%% (%s)\n", a.AIProbability, a.ConfidenceLevel))
	output.WriteString(fmt.Sprintf("Rule-based Probability: %.1f%%\n", a.RuleBasedProbability))
	output.WriteString(fmt.Sprintf("Method: %s\n", a.AnalysisMethod))
	output.WriteString(fmt.Sprintf("Overall Confidence: %s\n\n", a.OverallConfidence))

	output.WriteString("=== TRUST SCORE ===\n")
	output.WriteString(fmt.Sprintf("Score: %.1f/100 (%s)\n", t.OverallTrustScore, t.TrustLevel))
	output.WriteString(fmt.Sprintf("AI Verification: %s\n", t.Components.AIVerification))
	output.WriteString(fmt.Sprintf("Recommendation: %s\n\n", t.Recommendation))

	output.WriteString("=== AI PATTERNS ===\n")
	writePatterns(&output, a.AIPatterns, "%-24s %.1f\n")
	output.WriteString("\n")

	output.WriteString("=== TEXT STATISTICS ===\n")
	s := a.TextStatistics
	output.WriteString(fmt.Sprintf("Words: %d, Sentences: %d, Avg sentence length: %.1f\n",
		s.WordCount, s.SentenceCount, s.AvgSentenceLength))
	output.WriteString(fmt.Sprintf("Flesch reading ease: %.1f, Flesch-Kincaid grade: %.1f, ARI: %.1f\n\n",
		s.FleschReadingEase, s.FleschKincaidGrade, s.AutomatedReadabilityIndex))

	if len(a.KeywordAnalysis.AIBuzzwordsFound) > 0 {
		output.WriteString("Buzzwords: ")
		output.WriteString(strings.Join(a.KeywordAnalysis.AIBuzzwordsFound, ", "))
		output.WriteString("\n\n")
	}

	if len(a.SuspiciousSections) > 0 {
		output.WriteString("=== SUSPICIOUS SECTIONS ===\n")
		for _, section := range a.SuspiciousSections {
			output.WriteString(fmt.Sprintf("[%d] %s\n    %s\n", section.SentenceNumber, section.Text,
				strings.Join(section.Reasons, "; ")))
		}
		output.WriteString("\n")
	}

	writeList(&output, "=== RECOMMENDATIONS ===\n", a.Recommendations, "- %s\n")
	writeList(&output, "=== NEXT STEPS ===\n", t.NextSteps, "- %s\n")

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return TypeResumeResult
}

// ResumeMarkdownFormatter renders a résumé result as markdown
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	result, err := asResumeResult(data)
	if err != nil {
		return "", err
	}
	a := result.Analysis
	t := result.TrustScore

	var output strings.Builder

	output.WriteString("# Résumé Authenticity Report\n\n")
	if result.FileInfo != nil {
		output.WriteString(fmt.Sprintf("**File:** %s (%s)\n\n", result.FileInfo.Filename, result.FileInfo.SizeHuman))
	}
	output.WriteString(fmt.Sprintf("**Trust Score:** %.1f/100 (%s)\n\n", t.OverallTrustScore, t.TrustLevel))
	output.WriteString(fmt.Sprintf("**AI Probability:** %.1f%% (%s confidence)\n\n", a.AIProbability, a.ConfidenceLevel))
	output.WriteString(fmt.Sprintf("**Method:** %s\n\n", a.AnalysisMethod))
	output.WriteString(fmt.Sprintf("> %s\n\n", t.Recommendation))

	if a.EnsembleInsights != nil {
		in := a.EnsembleInsights
		output.WriteString("## Ensemble\n\n")
		output.WriteString("| Rule-based | Classifier | Difference | Consensus | Reliability |\n")
		output.WriteString("|---|---|---|---|---|\n")
		output.WriteString(fmt.Sprintf("| %.1f | %.1f | %.1f | %s | %s |\n\n",
			in.RuleBasedScore, in.AIModelScore, in.ScoreDifference, in.MethodConsensus, in.ReliabilityIndicator))
	}

	output.WriteString("## AI Patterns\n\n")
	output.WriteString("| Pattern | Score |\n|---|---|\n")
	writePatterns(&output, a.AIPatterns, "| %s | %.1f |\n")
	output.WriteString("\n")

	if len(a.SuspiciousSections) > 0 {
		output.WriteString("## Suspicious Sections\n\n")
		for _, section := range a.SuspiciousSections {
			output.WriteString(fmt.Sprintf("%d. *%s*  \n   %s\n", section.SentenceNumber, section.Text,
				strings.Join(section.Reasons, "; ")))
		}
		output.WriteString("\n")
	}

	writeList(&output, "## Recommendations\n\n", a.Recommendations, "- %s\n")
	writeList(&output, "## Next Steps\n\n", t.NextSteps, "- %s\n")

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return TypeResumeResult
}

// JobTextFormatter renders a job result as plain text
type JobTextFormatter struct{}

func (jtf *JobTextFormatter) Format(data any) (string, error) {
	result, err := asJobResult(data)
	if err != nil {
		return "", err
	}
	c := result.JobContent
	t := result.TrustScore

	var output strings.Builder

	output.WriteString("=== JOB POSTING ===\n")
	output.WriteString(fmt.Sprintf("Title: %s\n", orUnknown(c.JobTitle)))
	output.WriteString(fmt.Sprintf("Company: %s\n", orUnknown(c.CompanyName)))
	if c.Location != "" {
		output.WriteString(fmt.Sprintf("Location: %s\n", c.Location))
	}
	if c.SalaryRange.Found {
		output.WriteString(fmt.Sprintf("Salary: %s\n", c.SalaryRange.RawText))
	}
	output.WriteString(fmt.Sprintf("Input: %s, Status: %s\n\n", result.InputType, result.Status))

	output.WriteString("=== TRUST SCORE ===\n")
	output.WriteString(fmt.Sprintf("Score: %.1f/100 (%s)\n", t.OverallTrustScore, t.TrustLevel))
	output.WriteString(fmt.Sprintf("Risk: %s\n", t.RiskAssessment))
	output.WriteString(fmt.Sprintf("%s\n\n", t.AnalysisSummary))

	output.WriteString("=== COMPONENTS ===\n")
	for _, name := range componentNames(t.ComponentBreakdown) {
		cs := t.ComponentBreakdown[name]
		output.WriteString(fmt.Sprintf("%-22s score %5.1f  weight %.2f  %s\n", name, cs.Score, cs.Weight, stepLabel(cs.Success)))
	}
	output.WriteString("\n")

	if result.RedFlagAnalysis.Total() > 0 {
		output.WriteString("=== RED FLAGS ===\n")
		for _, flag := range allRedFlags(result.RedFlagAnalysis) {
			output.WriteString(fmt.Sprintf("! %s\n", flag))
		}
		output.WriteString("\n")
	}

	writeList(&output, "=== RECOMMENDATIONS ===\n", t.Recommendations, "- %s\n")
	writeList(&output, "=== NEXT STEPS ===\n", t.NextSteps, "- %s\n")
	writeList(&output, "=== WARNINGS ===\n", result.Warnings, "- %s\n")

	return output.String(), nil
}

func (jtf *JobTextFormatter) SupportedType() string {
	return TypeJobResult
}

// JobMarkdownFormatter renders a job result as markdown
type JobMarkdownFormatter struct{}

func (jmf *JobMarkdownFormatter) Format(data any) (string, error) {
	result, err := asJobResult(data)
	if err != nil {
		return "", err
	}
	c := result.JobContent
	t := result.TrustScore

	var output strings.Builder

	output.WriteString("# Job Posting Verification Report\n\n")
	output.WriteString(fmt.Sprintf("**%s** at **%s**\n\n", orUnknown(c.JobTitle), orUnknown(c.CompanyName)))
	output.WriteString(fmt.Sprintf("**Trust Score:** %.1f/100 (%s)\n\n", t.OverallTrustScore, t.TrustLevel))
	output.WriteString(fmt.Sprintf("**Risk:** %s\n\n", t.RiskAssessment))
	output.WriteString(fmt.Sprintf("> %s\n\n", t.AnalysisSummary))

	output.WriteString("## Components\n\n")
	output.WriteString("| Component | Score | Weight | Contribution | Status |\n")
	output.WriteString("|---|---|---|---|---|\n")
	for _, name := range componentNames(t.ComponentBreakdown) {
		cs := t.ComponentBreakdown[name]
		output.WriteString(fmt.Sprintf("| %s | %.1f | %.2f | %.1f | %s |\n",
			name, cs.Score, cs.Weight, cs.Contribution, stepLabel(cs.Success)))
	}
	output.WriteString("\n")

	if cv := result.CompanyVerification; cv != nil {
		output.WriteString("## Company\n\n")
		output.WriteString(fmt.Sprintf("**Legitimacy:** %.1f/100\n\n", cv.OverallLegitimacyScore))
		writeList(&output, "### Green Flags\n", cv.GreenFlags, "- %s\n")
	}

	if result.RedFlagAnalysis.Total() > 0 {
		output.WriteString("## Red Flags\n\n")
		for _, flag := range allRedFlags(result.RedFlagAnalysis) {
			output.WriteString(fmt.Sprintf("- %s\n", flag))
		}
		output.WriteString("\n")
	}

	if len(t.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, recommendation := range t.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
		output.WriteString("\n")
	}
	writeList(&output, "## Next Steps\n\n", t.NextSteps, "- %s\n")
	writeList(&output, "## Warnings\n\n", result.Warnings, "- %s\n")

	return output.String(), nil
}

func (jmf *JobMarkdownFormatter) SupportedType() string {
	return TypeJobResult
}

func writePatterns(output *strings.Builder, p types.AIPatterns, row string) {
	rows := []struct {
		name  string
		score float64
	}{
		{"Repetitive structures", p.RepetitiveStructures},
		{"Perfect grammar", p.PerfectGrammarScore},
		{"Buzzword density", p.BuzzwordDensity},
		{"Sentence uniformity", p.SentenceUniformity},
		{"Transition overuse", p.TransitionOveruse},
	}
	for _, r := range rows {
		output.WriteString(fmt.Sprintf(row, r.name, r.score))
	}
}

func writeList(output *strings.Builder, heading string, items []string, row string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(heading)
	for _, item := range items {
		output.WriteString(fmt.Sprintf(row, item))
	}
	output.WriteString("\n")
}

func componentNames(breakdown map[string]types.ComponentScore) []string {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func allRedFlags(r types.RedFlagAnalysis) []string {
	flags := make([]string, 0, r.Total())
	flags = append(flags, r.ContentRedFlags...)
	flags = append(flags, r.CompanyRedFlags...)
	flags = append(flags, r.WebRedFlags...)
	flags = append(flags, r.ScamPatternMatches...)
	return flags
}

func stepLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

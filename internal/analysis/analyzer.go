package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"veracity/internal/errors"
	"veracity/internal/lexicon"
	"veracity/internal/types"
)

// Result is the complete rule-based analysis of one document
type Result struct {
	TextStatistics     types.TextStatistics
	Patterns           types.AIPatterns
	Keywords           types.KeywordAnalysis
	SuspiciousSections []types.SuspiciousSection
	Score              RuleScore
}

// Analyzer runs the rule-based analyses against a shared lexicon
type Analyzer struct {
	lexicon *lexicon.Lexicon
	logger  *errors.Logger
}

// NewAnalyzer creates an analyzer. A nil lexicon selects the built-in tables.
func NewAnalyzer(lex *lexicon.Lexicon, logger *errors.Logger) *Analyzer {
	if lex == nil {
		lex = lexicon.Default()
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &Analyzer{lexicon: lex, logger: logger}
}

// Lexicon returns the rule tables used by the analyzer
func (a *Analyzer) Lexicon() *lexicon.Lexicon {
	return a.lexicon
}

// Analyze tokenizes text once, runs the four independent analyses
// concurrently and scores the joined result. A cancelled context discards
// all partial results.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	doc, err := Tokenize(text)
	if err != nil {
		return nil, err
	}

	var (
		stats    types.TextStatistics
		patterns types.AIPatterns
		keywords types.KeywordAnalysis
		sections []types.SuspiciousSection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		stats = TextStatistics(doc)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		patterns = DetectPatterns(doc, a.lexicon)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		keywords = AnalyzeKeywords(doc, a.lexicon)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		sections = FindSuspiciousSections(doc, a.lexicon)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := Score(patterns, keywords, stats.SentenceCount, a.lexicon)
	a.logger.Debug("Rule-based analysis completed",
		"words", stats.WordCount,
		"sentences", stats.SentenceCount,
		"rule_probability", score.Probability,
		"suspicious_sections", len(sections))

	return &Result{
		TextStatistics:     stats,
		Patterns:           patterns,
		Keywords:           keywords,
		SuspiciousSections: sections,
		Score:              score,
	}, nil
}

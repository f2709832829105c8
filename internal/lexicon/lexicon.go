// Package lexicon holds the immutable rule tables used by the heuristic
// analyzers: buzzwords, adjectives, transition phrases, pattern weights and
// confidence thresholds. A Lexicon is built once and shared read-only.
package lexicon

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"veracity/internal/errors"
)

// Weights are the per-pattern weights of the rule-based scorer
type Weights struct {
	RepetitiveStructures float64 `mapstructure:"repetitive_structures" json:"repetitive_structures"`
	PerfectGrammar       float64 `mapstructure:"perfect_grammar" json:"perfect_grammar"`
	BuzzwordDensity      float64 `mapstructure:"buzzword_density" json:"buzzword_density"`
	SentenceUniformity   float64 `mapstructure:"sentence_uniformity" json:"sentence_uniformity"`
	TransitionOveruse    float64 `mapstructure:"transition_overuse" json:"transition_overuse"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.RepetitiveStructures + w.PerfectGrammar + w.BuzzwordDensity + w.SentenceUniformity + w.TransitionOveruse
}

// Validate checks that every weight is non-negative and that they sum to 1
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"repetitive_structures": w.RepetitiveStructures,
		"perfect_grammar":       w.PerfectGrammar,
		"buzzword_density":      w.BuzzwordDensity,
		"sentence_uniformity":   w.SentenceUniformity,
		"transition_overuse":    w.TransitionOveruse,
	} {
		if v < 0 {
			return errors.NewInvalidConfigurationError(fmt.Sprintf("pattern weight %s must not be negative", name), nil)
		}
	}
	if math.Abs(w.Sum()-1) > 1e-9 {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("pattern weights must sum to 1, got %.4f", w.Sum()), nil)
	}
	return nil
}

// Thresholds are the confidence bucket boundaries
type Thresholds struct {
	Moderate float64 `mapstructure:"moderate" json:"moderate"`
	High     float64 `mapstructure:"high" json:"high"`
}

// Confidence bucket labels
const (
	ConfidenceLow      = "Low AI indicators"
	ConfidenceModerate = "Moderate AI indicators"
	ConfidenceHigh     = "High AI indicators"
)

// Bucket maps a 0-100 score to its confidence label
func (t Thresholds) Bucket(score float64) string {
	switch {
	case score >= t.High:
		return ConfidenceHigh
	case score >= t.Moderate:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}

// Lexicon is an immutable set of rule tables
type Lexicon struct {
	buzzwords   map[string]struct{}
	buzzPhrases [][]string
	adjectives  map[string]struct{}
	transitions [][]string
	weights     Weights
	thresholds  Thresholds
}

// Default returns the built-in lexicon
func Default() *Lexicon {
	lex, err := build(defaultBuzzwords, defaultAdjectives, defaultTransitions, DefaultWeights, DefaultThresholds)
	if err != nil {
		panic(fmt.Sprintf("built-in lexicon is invalid: %v", err))
	}
	return lex
}

func build(buzzwords, adjectives, transitions []string, weights Weights, thresholds Thresholds) (*Lexicon, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if thresholds.Moderate <= 0 || thresholds.High <= thresholds.Moderate || thresholds.High > 100 {
		return nil, errors.NewInvalidConfigurationError(
			fmt.Sprintf("thresholds must satisfy 0 < moderate < high <= 100, got %.1f/%.1f", thresholds.Moderate, thresholds.High), nil)
	}

	lex := &Lexicon{
		buzzwords:  make(map[string]struct{}),
		adjectives: make(map[string]struct{}),
		weights:    weights,
		thresholds: thresholds,
	}
	for _, term := range buzzwords {
		words := splitTerm(term)
		switch len(words) {
		case 0:
			continue
		case 1:
			lex.buzzwords[words[0]] = struct{}{}
		default:
			lex.buzzPhrases = append(lex.buzzPhrases, words)
		}
	}
	for _, adj := range adjectives {
		if words := splitTerm(adj); len(words) == 1 {
			lex.adjectives[words[0]] = struct{}{}
		}
	}
	for _, tr := range transitions {
		if words := splitTerm(tr); len(words) > 0 {
			lex.transitions = append(lex.transitions, words)
		}
	}

	// Longest phrases first so "proven track record" wins over "track record".
	sort.SliceStable(lex.buzzPhrases, func(i, j int) bool { return len(lex.buzzPhrases[i]) > len(lex.buzzPhrases[j]) })
	sort.SliceStable(lex.transitions, func(i, j int) bool { return len(lex.transitions[i]) > len(lex.transitions[j]) })
	return lex, nil
}

func splitTerm(term string) []string {
	return strings.Fields(strings.ToLower(strings.ReplaceAll(term, "’", "'")))
}

// IsBuzzword reports whether a single lowercase token is a buzzword
func (l *Lexicon) IsBuzzword(token string) bool {
	_, ok := l.buzzwords[token]
	return ok
}

// IsAdjective reports whether a lowercase token is a listed adjective
func (l *Lexicon) IsAdjective(token string) bool {
	_, ok := l.adjectives[token]
	return ok
}

// BuzzPhrases returns the multi-word buzzword phrases, longest first.
// The returned slices are shared and must not be modified.
func (l *Lexicon) BuzzPhrases() [][]string { return l.buzzPhrases }

// Transitions returns the transition phrases, longest first.
// The returned slices are shared and must not be modified.
func (l *Lexicon) Transitions() [][]string { return l.transitions }

func (l *Lexicon) Weights() Weights       { return l.weights }
func (l *Lexicon) Thresholds() Thresholds { return l.thresholds }

// MatchPhrase returns the length of the longest phrase in phrases that starts
// at words[i], or 0 if none does.
func MatchPhrase(words []string, i int, phrases [][]string) int {
	for _, phrase := range phrases {
		if i+len(phrase) > len(words) {
			continue
		}
		matched := true
		for k, w := range phrase {
			if words[i+k] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(phrase)
		}
	}
	return 0
}

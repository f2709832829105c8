package analysis

import (
	"veracity/internal/lexicon"
	"veracity/internal/types"
)

const (
	keywordBoostMinDistinct = 3
	keywordBoostPerHit      = 4.0
	keywordBoostMax         = 20.0
)

// RuleScore is the rule-based probability with the inputs that produced it
type RuleScore struct {
	Probability      float64
	ConfidenceLevel  string
	EffectiveWeights lexicon.Weights
	KeywordBoost     float64
}

// Score combines pattern scores and keyword analysis into a 0-100 probability.
//
// Repetition and uniformity need at least two sentences to be observed. When
// they cannot be, their weight is shared proportionally among the remaining
// patterns so the effective weights still sum to 1.
func Score(patterns types.AIPatterns, keywords types.KeywordAnalysis, sentenceCount int, lex *lexicon.Lexicon) RuleScore {
	w := EffectiveWeights(lex.Weights(), sentenceCount)

	prob := w.RepetitiveStructures*patterns.RepetitiveStructures +
		w.PerfectGrammar*patterns.PerfectGrammarScore +
		w.BuzzwordDensity*patterns.BuzzwordDensity +
		w.SentenceUniformity*patterns.SentenceUniformity +
		w.TransitionOveruse*patterns.TransitionOveruse

	boost := 0.0
	if len(keywords.AIBuzzwordsFound) >= keywordBoostMinDistinct {
		boost = min(keywordBoostMax, float64(keywords.BuzzwordCount)*keywordBoostPerHit)
	}

	prob = round2(clamp(prob+boost, 0, 100))
	return RuleScore{
		Probability:      prob,
		ConfidenceLevel:  lex.Thresholds().Bucket(prob),
		EffectiveWeights: w,
		KeywordBoost:     boost,
	}
}

// EffectiveWeights returns the weights applied for a document with the given
// number of sentences
func EffectiveWeights(base lexicon.Weights, sentenceCount int) lexicon.Weights {
	if sentenceCount >= 2 {
		return base
	}
	observed := base.PerfectGrammar + base.BuzzwordDensity + base.TransitionOveruse
	if observed == 0 {
		return base
	}
	return lexicon.Weights{
		PerfectGrammar:    base.PerfectGrammar / observed,
		BuzzwordDensity:   base.BuzzwordDensity / observed,
		TransitionOveruse: base.TransitionOveruse / observed,
	}
}

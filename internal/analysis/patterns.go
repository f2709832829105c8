package analysis

import (
	"math"
	"strings"

	"veracity/internal/lexicon"
	"veracity/internal/types"
)

const (
	runOnWordLimit   = 40
	fragmentMinWords = 3
	longWordLetters  = 7
	longWordTarget   = 0.35
	uniformityDampen = 8.0
	buzzwordScale    = 500.0
)

var contractionSuffixes = []string{"n't", "'re", "'ve", "'ll", "'d", "'m"}

var contractionWords = map[string]struct{}{
	"it's": {}, "that's": {}, "there's": {}, "what's": {}, "let's": {},
	"he's": {}, "she's": {}, "who's": {}, "here's": {},
}

// DetectPatterns computes the five AI-pattern scores for a document
func DetectPatterns(doc *Document, lex *lexicon.Lexicon) types.AIPatterns {
	return types.AIPatterns{
		RepetitiveStructures: round2(repetitiveStructures(doc)),
		PerfectGrammarScore:  round2(perfectGrammar(doc)),
		BuzzwordDensity:      round2(buzzwordDensity(doc, lex)),
		SentenceUniformity:   round2(sentenceUniformity(doc)),
		TransitionOveruse:    round2(transitionOveruse(doc, lex)),
	}
}

// repetitiveStructures scores the share of sentences that reuse an earlier
// opening bigram or duplicate an earlier sentence outright.
func repetitiveStructures(doc *Document) float64 {
	n := len(doc.Sentences)
	if n < 2 {
		return 0
	}

	openers := make(map[string]struct{}, n)
	bodies := make(map[string]struct{}, n)
	repeats := 0
	for _, s := range doc.Sentences {
		opener := openingBigram(s.Words)
		body := normalizedSentence(s)
		_, seenOpener := openers[opener]
		_, seenBody := bodies[body]
		if seenOpener || seenBody {
			repeats++
		}
		openers[opener] = struct{}{}
		bodies[body] = struct{}{}
	}
	return clamp(100*float64(repeats)/float64(n-1), 0, 100)
}

func openingBigram(words []string) string {
	if len(words) < 2 {
		return strings.Join(words, " ")
	}
	return words[0] + " " + words[1]
}

func normalizedSentence(s Sentence) string {
	return strings.Join(s.Words, " ")
}

// perfectGrammar averages six mechanical-polish signals
func perfectGrammar(doc *Document) float64 {
	n := float64(len(doc.Sentences))
	if n == 0 || len(doc.Words) == 0 {
		return 0
	}

	var capitalized, terminated, withinLength, complete float64
	for _, s := range doc.Sentences {
		if startsCapitalized(s.Text) {
			capitalized++
		}
		if endsWithTerminator(s.Text) {
			terminated++
		}
		if len(s.Words) <= runOnWordLimit {
			withinLength++
		}
		if len(s.Words) >= fragmentMinWords {
			complete++
		}
	}

	contractions, long := 0, 0
	for _, w := range doc.Words {
		if isContraction(w) {
			contractions++
		}
		if countLetters(w) >= longWordLetters {
			long++
		}
	}

	signals := []float64{
		math.Max(0, 1-float64(contractions)/n),
		capitalized / n,
		terminated / n,
		withinLength / n,
		complete / n,
		math.Min(1, float64(long)/float64(len(doc.Words))/longWordTarget),
	}

	sum := 0.0
	for _, s := range signals {
		sum += s
	}
	return clamp(100*sum/float64(len(signals)), 0, 100)
}

func isContraction(word string) bool {
	if !strings.Contains(word, "'") {
		return false
	}
	if _, ok := contractionWords[word]; ok {
		return true
	}
	for _, suffix := range contractionSuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

func buzzwordDensity(doc *Document, lex *lexicon.Lexicon) float64 {
	if len(doc.Words) == 0 {
		return 0
	}
	hits := 0
	for _, s := range doc.Sentences {
		hits += len(buzzwordHits(s.Words, lex))
	}
	return clamp(float64(hits)/float64(len(doc.Words))*buzzwordScale, 0, 100)
}

// buzzwordHits returns every buzzword occurrence in words, in order.
// Phrases are matched before single terms and consume their words.
func buzzwordHits(words []string, lex *lexicon.Lexicon) []string {
	var hits []string
	for i := 0; i < len(words); i++ {
		if n := lexicon.MatchPhrase(words, i, lex.BuzzPhrases()); n > 0 {
			hits = append(hits, strings.Join(words[i:i+n], " "))
			i += n - 1
			continue
		}
		if lex.IsBuzzword(words[i]) {
			hits = append(hits, words[i])
		}
	}
	return hits
}

// sentenceUniformity is 100·(1 − CV) of sentence lengths. Documents whose
// average sentence is shorter than eight words are damped proportionally.
func sentenceUniformity(doc *Document) float64 {
	n := len(doc.Sentences)
	if n < 2 {
		return 0
	}

	lengths := make([]float64, n)
	mean := 0.0
	for i, s := range doc.Sentences {
		lengths[i] = float64(len(s.Words))
		mean += lengths[i]
	}
	mean /= float64(n)
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	cv := math.Sqrt(variance/float64(n)) / mean

	score := 100 * (1 - math.Min(cv, 1))
	if mean < uniformityDampen {
		score *= mean / uniformityDampen
	}
	return clamp(score, 0, 100)
}

func transitionOveruse(doc *Document, lex *lexicon.Lexicon) float64 {
	if len(doc.Sentences) == 0 {
		return 0
	}
	count := 0
	for _, s := range doc.Sentences {
		count += len(transitionHits(s.Words, lex))
	}
	return clamp(100*float64(count)/float64(len(doc.Sentences)), 0, 100)
}

func transitionHits(words []string, lex *lexicon.Lexicon) []string {
	var hits []string
	for i := 0; i < len(words); i++ {
		if n := lexicon.MatchPhrase(words, i, lex.Transitions()); n > 0 {
			hits = append(hits, strings.Join(words[i:i+n], " "))
			i += n - 1
		}
	}
	return hits
}

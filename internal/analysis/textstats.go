package analysis

import (
	"math"
	"strings"
	"unicode"

	"veracity/internal/types"
)

// ComputeTextStatistics tokenizes text and returns its readability metrics
func ComputeTextStatistics(text string) (types.TextStatistics, error) {
	doc, err := Tokenize(text)
	if err != nil {
		return types.TextStatistics{}, err
	}
	return TextStatistics(doc), nil
}

// TextStatistics computes readability metrics for a tokenized document.
// Readability and perplexity are internal proxies, not reference implementations.
func TextStatistics(doc *Document) types.TextStatistics {
	sentences := len(doc.Sentences)
	words := len(doc.Words)
	stats := types.TextStatistics{
		SentenceCount: sentences,
		WordCount:     words,
	}
	if sentences == 0 || words == 0 {
		return stats
	}

	syllables, chars := 0, 0
	for _, w := range doc.Words {
		syllables += countSyllables(w)
		chars += countLetters(w)
	}

	wps := float64(words) / float64(sentences)
	spw := float64(syllables) / float64(words)
	cpw := float64(chars) / float64(words)

	stats.AvgSentenceLength = wps
	stats.FleschReadingEase = round2(206.835 - 1.015*wps - 84.6*spw)
	stats.FleschKincaidGrade = round2(0.39*wps + 11.8*spw - 15.59)
	stats.AutomatedReadabilityIndex = round2(4.71*cpw + 0.5*wps - 21.43)
	stats.PerplexityScore = round2(perplexityProxy(doc.Words))
	return stats
}

// perplexityProxy blends vocabulary variety with bigram novelty. Higher
// values mean more varied, more human-like text.
func perplexityProxy(words []string) float64 {
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	ttr := float64(len(unique)) / float64(len(words))

	repetition := 0.0
	if len(words) > 1 {
		seen := make(map[string]struct{}, len(words)-1)
		repeated := 0
		for i := 1; i < len(words); i++ {
			key := words[i-1] + " " + words[i]
			if _, ok := seen[key]; ok {
				repeated++
				continue
			}
			seen[key] = struct{}{}
		}
		repetition = float64(repeated) / float64(len(words)-1)
	}

	return clamp(100*(0.6*ttr+0.4*(1-repetition)), 0, 100)
}

// countSyllables estimates syllables by counting vowel groups, dropping a
// silent final e. Every word has at least one syllable.
func countSyllables(word string) int {
	total := 0
	for _, part := range strings.FieldsFunc(word, func(r rune) bool { return r == '-' }) {
		total += syllablesInPart(part)
	}
	if total < 1 {
		return 1
	}
	return total
}

func syllablesInPart(part string) int {
	var letters []rune
	for _, r := range strings.ToLower(part) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(letters)
	if n > 2 && letters[n-1] == 'e' && letters[n-2] != 'l' && !isVowel(letters[n-2]) && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func countLetters(word string) int {
	n := 0
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package analysis

import (
	"math"
	"strings"

	"veracity/internal/lexicon"
	"veracity/internal/types"
)

const (
	excessiveAdjectiveThreshold = 2
	adjectiveMinLength          = 5
)

var adjectiveSuffixes = []string{"ive", "ous", "ful", "able", "ible", "ic", "al", "ent", "ant", "less"}

// Nouns and function words that the suffix heuristic would otherwise catch
var adjectiveStopList = map[string]struct{}{
	"student": {}, "event": {}, "percent": {}, "talent": {}, "content": {}, "agent": {},
	"parent": {}, "patient": {}, "client": {}, "assistant": {}, "consultant": {},
	"applicant": {}, "participant": {}, "accountant": {}, "restaurant": {}, "grant": {},
	"plant": {}, "giant": {}, "hospital": {}, "capital": {}, "signal": {}, "total": {},
	"proposal": {}, "approval": {}, "manual": {}, "portal": {}, "journal": {},
	"animal": {}, "arrival": {}, "rental": {}, "referral": {}, "terminal": {},
	"material": {}, "potential": {}, "individual": {}, "music": {}, "logic": {},
	"topic": {}, "traffic": {}, "graphic": {}, "clinic": {}, "mechanic": {},
	"table": {}, "cable": {}, "unless": {}, "nevertheless": {}, "initiative": {},
	"executive": {}, "representative": {}, "objective": {}, "detective": {},
	"festival": {}, "interval": {}, "principal": {}, "tutorial": {}, "rival": {},
}

// AnalyzeKeywords matches buzzwords and counts adjective usage
func AnalyzeKeywords(doc *Document, lex *lexicon.Lexicon) types.KeywordAnalysis {
	ka := types.NewKeywordAnalysis()
	if len(doc.Words) == 0 {
		return ka
	}

	seen := make(map[string]struct{})
	for _, s := range doc.Sentences {
		for _, hit := range buzzwordHits(s.Words, lex) {
			ka.BuzzwordCount++
			if _, ok := seen[hit]; !ok {
				seen[hit] = struct{}{}
				ka.AIBuzzwordsFound = append(ka.AIBuzzwordsFound, hit)
			}
		}
	}

	counts := make(map[string]int)
	var order []string
	adjectives := 0
	for _, w := range doc.Words {
		if !isAdjective(w, lex) {
			continue
		}
		adjectives++
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	for _, w := range order {
		if counts[w] >= excessiveAdjectiveThreshold {
			ka.ExcessiveAdjectives = append(ka.ExcessiveAdjectives, w)
		}
	}

	ka.AdjectiveRatio = math.Round(float64(adjectives)/float64(len(doc.Words))*10000) / 10000
	return ka
}

func isAdjective(word string, lex *lexicon.Lexicon) bool {
	if lex.IsAdjective(word) {
		return true
	}
	if len(word) < adjectiveMinLength || strings.HasSuffix(word, "ment") {
		return false
	}
	if _, stop := adjectiveStopList[word]; stop {
		return false
	}
	for _, suffix := range adjectiveSuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

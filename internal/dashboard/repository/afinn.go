package repository

import (
	"strings"
	"unicode"
)

// afinn is a subset of the AFINN-165 word list, scored -5..5, extended with the
// market vocabulary that shows up in social posts.
var afinn = map[string]int{
	// positive
	"advantage": 2, "amazing": 4, "awesome": 4, "beautiful": 3, "benefit": 2,
	"best": 3, "better": 2, "boost": 1, "breakthrough": 3, "bullish": 2,
	"confident": 2, "considering": 1, "excellent": 3, "exciting": 3, "gain": 2,
	"gains": 2, "good": 3, "great": 3, "growth": 2, "happy": 3,
	"improve": 2, "improved": 2, "improvement": 2, "increased": 1, "innovative": 2,
	"love": 3, "outperforming": 2, "opportunity": 2, "optimistic": 2, "partnership": 1,
	"positive": 2, "profit": 2, "profits": 2, "promising": 3, "rally": 2,
	"revolutionize": 2, "stable": 2, "steady": 1, "strong": 2, "strength": 2,
	"success": 2, "successful": 3, "support": 2, "surge": 2, "sustainable": 2,
	"upgrade": 1, "win": 4, "winner": 4, "worth": 2,

	// negative
	"bad": -3, "bearish": -2, "caution": -2, "challenges": -1, "concerning": -2,
	"crash": -2, "decline": -1, "declining": -1, "decreases": -1, "downside": -1,
	"downtrend": -2, "dump": -2, "fail": -2, "failed": -2, "fear": -2,
	"falling": -1, "fraud": -4, "lose": -3, "loss": -3, "losses": -3,
	"negative": -2, "panic": -3, "poor": -2, "pressure": -1, "risk": -2,
	"risky": -2, "scam": -2, "sold": -1, "terrible": -3, "uncertainty": -1,
	"volatile": -1, "weak": -2, "weakness": -2, "worried": -3, "worse": -3,
	"worst": -3,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "dont": {}, "don't": {}, "cant": {}, "can't": {},
	"cannot": {}, "isnt": {}, "isn't": {}, "wont": {}, "won't": {}, "without": {},
}

// sentimentResult is the lexicon score of a text.
type sentimentResult struct {
	Score       int
	Comparative float64
	Tokens      []string
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// analyzeSentiment sums lexicon scores over the tokens of text, flipping the sign
// of a scored word that directly follows a negator. Comparative is the score per
// token.
func analyzeSentiment(text string) sentimentResult {
	tokens := tokenize(text)
	res := sentimentResult{Tokens: tokens}
	for i, tok := range tokens {
		score, ok := afinn[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if _, neg := negators[tokens[i-1]]; neg {
				score = -score
			}
		}
		res.Score += score
	}
	if len(tokens) > 0 {
		res.Comparative = float64(res.Score) / float64(len(tokens))
	}
	return res
}

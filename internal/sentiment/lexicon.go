package sentiment

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/utafrali/reputation/internal/domain"
)

// normalizationAlpha controls how fast the summed word scores approach ±1.
const normalizationAlpha = 15.0

// MaxKeywords caps the keywords extracted from one review.
const MaxKeywords = 8

var wordScores = map[string]float64{
	"amazing": 3, "awesome": 3, "best": 3, "excellent": 3, "fantastic": 3, "outstanding": 3, "perfect": 3,
	"wonderful": 3, "love": 3, "loved": 3, "delicious": 2.5, "great": 2.5, "superb": 3,
	"friendly": 2, "good": 2, "helpful": 2, "nice": 2, "clean": 1.5, "fast": 1.5, "fresh": 1.5,
	"recommend": 2, "pleasant": 2, "polite": 1.5, "quick": 1.5, "cozy": 1.5, "happy": 2, "enjoyed": 2,
	"fine": 0.5, "ok": 0.3, "okay": 0.3, "decent": 1,
	"awful": -3, "horrible": -3, "terrible": -3, "worst": -3, "disgusting": -3, "hate": -3, "hated": -3,
	"bad": -2.5, "poor": -2, "rude": -2.5, "dirty": -2, "slow": -1.5, "cold": -1, "expensive": -1.5,
	"overpriced": -2, "disappointing": -2, "disappointed": -2, "bland": -1.5, "noisy": -1, "broken": -2,
	"never": -0.5, "wait": -0.5, "waited": -1, "mediocre": -1, "unfriendly": -2, "avoid": -2.5,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true, "don't": true,
	"didn't": true, "aren't": true, "weren't": true, "hardly": true, "cannot": true, "can't": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "super": 1.4, "incredibly": 1.5, "quite": 1.1,
	"slightly": 0.6, "somewhat": 0.7, "bit": 0.7,
}

// categoryTerms maps a review aspect to the words that mention it.
var categoryTerms = map[string][]string{
	"service":     {"service", "staff", "waiter", "waitress", "server", "employee", "manager", "support"},
	"food":        {"food", "meal", "dish", "coffee", "taste", "menu", "breakfast", "lunch", "dinner", "drink"},
	"price":       {"price", "prices", "value", "cost", "expensive", "cheap", "overpriced", "bill"},
	"cleanliness": {"clean", "dirty", "hygiene", "bathroom", "toilet", "smell"},
	"ambiance":    {"ambiance", "atmosphere", "music", "decor", "noisy", "quiet", "cozy", "vibe"},
	"speed":       {"fast", "slow", "quick", "wait", "waited", "delay", "late"},
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"it": true, "its": true, "this": true, "that": true, "to": true, "of": true, "in": true, "on": true,
	"for": true, "with": true, "at": true, "my": true, "we": true, "i": true, "you": true, "they": true,
	"our": true, "me": true, "be": true, "but": true, "or": true, "so": true, "very": true, "really": true,
	"had": true, "have": true, "has": true, "there": true, "here": true, "from": true, "as": true, "by": true,
	"all": true, "just": true, "too": true, "also": true, "if": true, "will": true, "would": true, "not": true,
	"no": true, "again": true, "place": true, "us": true, "them": true, "he": true, "she": true, "what": true,
}

// LexiconAnalyzer scores text with a fixed word list. It needs no network
// and never fails.
type LexiconAnalyzer struct{}

// NewLexiconAnalyzer creates a lexicon analyzer.
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

// Analyze scores text per sentence, dampening or flipping word scores that
// follow intensifiers or negators.
func (a *LexiconAnalyzer) Analyze(_ context.Context, text string) (*Analysis, error) {
	var total, magnitude float64
	categorySums := make(map[string]float64)
	categoryHits := make(map[string]int)

	for _, sentence := range splitSentences(text) {
		tokens := tokenize(sentence)
		var sentenceScore float64
		for i, tok := range tokens {
			score, ok := wordScores[tok]
			if !ok {
				continue
			}
			if i > 0 {
				if mult, ok := intensifiers[tokens[i-1]]; ok {
					score *= mult
				}
			}
			if negatedAt(tokens, i) {
				score *= -0.75
			}
			sentenceScore += score
			magnitude += math.Abs(score)
		}
		total += sentenceScore

		for category, terms := range categoryTerms {
			if containsAny(tokens, terms) {
				categorySums[category] += sentenceScore
				categoryHits[category]++
			}
		}
	}

	s := domain.Sentiment{
		Score:     normalize(total),
		Magnitude: round(magnitude/3, 3),
	}
	if len(categoryHits) > 0 {
		s.Categories = make(map[string]float64, len(categoryHits))
		for category, hits := range categoryHits {
			s.Categories[category] = normalize(categorySums[category] / float64(hits))
		}
	}

	return &Analysis{Sentiment: s, Keywords: extractKeywords(text, MaxKeywords)}, nil
}

// negatedAt reports whether one of the three tokens before i negates it.
func negatedAt(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}

func normalize(score float64) float64 {
	if score == 0 {
		return 0
	}
	return round(score/math.Sqrt(score*score+normalizationAlpha), 4)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	})
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func containsAny(tokens, terms []string) bool {
	for _, tok := range tokens {
		for _, term := range terms {
			if tok == term {
				return true
			}
		}
	}
	return false
}

// extractKeywords ranks non-stopword tokens by frequency. Relevance is the
// count relative to the most frequent keyword.
func extractKeywords(text string, limit int) []domain.Keyword {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		tok = strings.Trim(tok, "'")
		if len(tok) < 3 || stopwords[tok] || negators[tok] {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 {
		return []domain.Keyword{}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > limit {
		words = words[:limit]
	}

	top := float64(counts[words[0]])
	out := make([]domain.Keyword, 0, len(words))
	for _, w := range words {
		out = append(out, domain.Keyword{Word: w, Relevance: round(float64(counts[w])/top, 3)})
	}
	return out
}

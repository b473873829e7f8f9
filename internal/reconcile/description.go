package reconcile

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// neutralDescriptionScore is used when either side has nothing to compare.
const neutralDescriptionScore = 0.3

// Banking noise removed before descriptions are compared, applied in order.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(pos|ach|wire|xfer|transfer|debit|credit|card|purchase)\b`),
	regexp.MustCompile(`\b\d{4,}\b`),
	regexp.MustCompile(`[#*]+\d+`),
}

// NormalizeDescription lowercases text, strips banking noise tokens and
// collapses whitespace.
func NormalizeDescription(text string) string {
	if text == "" {
		return ""
	}

	result := strings.ToLower(text)
	for _, p := range noisePatterns {
		result = p.ReplaceAllString(result, " ")
	}

	return strings.Join(strings.Fields(result), " ")
}

// DescriptionSimilarity scores two raw descriptions in [0,1]. It averages a
// character sequence ratio with the share of whole words the two have in common.
func DescriptionSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return neutralDescriptionScore
	}

	normA := NormalizeDescription(a)
	normB := NormalizeDescription(b)
	if normA == "" || normB == "" {
		return neutralDescriptionScore
	}

	ratio := difflib.NewMatcher(splitRunes(normA), splitRunes(normB)).Ratio()

	wordsA := wordSet(normA)
	wordsB := wordSet(normB)
	common := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			common++
		}
	}
	overlap := float64(common) / float64(max(len(wordsA), len(wordsB)))

	return (ratio + overlap) / 2
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

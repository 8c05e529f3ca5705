// Package lexicon splits free text into word-like tokens and classifies them
// against the fixed skill and education keyword sets used for scoring.
package lexicon

import (
	"iter"
	"math"
	"regexp"
	"slices"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z][a-z+\-#]*`)

var skills = map[string]struct{}{
	"python":     {},
	"java":       {},
	"javascript": {},
	"typescript": {},
	"react":      {},
	"node":       {},
	"node.js":    {},
	"nextjs":     {},
	"next":       {},
	"sql":        {},
	"mongodb":    {},
	"docker":     {},
	"kubernetes": {},
	"aws":        {},
	"azure":      {},
	"gcp":        {},
	"ml":         {},
	"machine":    {},
	"learning":   {},
	"nlp":        {},
	"data":       {},
	"analysis":   {},
	"django":     {},
	"flask":      {},
	"rest":       {},
	"api":        {},
}

// EducationMarkers are matched as case-insensitive substrings of the raw text.
var EducationMarkers = []string{
	"bachelor",
	"master",
	"b.tech",
	"b.e",
	"bsc",
	"msc",
	"phd",
	"degree",
}

// Tokens yields lowercase tokens of text in order of appearance.
// The sequence can be ranged over any number of times.
func Tokens(text string) iter.Seq[string] {
	lower := strings.ToLower(text)
	return func(yield func(string) bool) {
		for _, loc := range tokenRe.FindAllStringIndex(lower, -1) {
			if !yield(lower[loc[0]:loc[1]]) {
				return
			}
		}
	}
}

// Tokenize collects Tokens into a slice.
func Tokenize(text string) []string {
	return slices.Collect(Tokens(text))
}

// IsSkill reports whether token belongs to the skill lexicon.
func IsSkill(token string) bool {
	_, ok := skills[token]
	return ok
}

// SkillTokens keeps the tokens found in the skill lexicon, preserving order and duplicates.
func SkillTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsSkill(t) {
			out = append(out, t)
		}
	}
	return out
}

// Skills returns the lexicon terms in sorted order.
func Skills() []string {
	out := make([]string, 0, len(skills))
	for s := range skills {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Ratio returns numerator/denominator clamped to [0, 1], or 0 when the
// denominator is not positive or the quotient is not a number.
func Ratio(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	q := numerator / denominator
	if math.IsNaN(q) {
		return 0
	}
	return min(1, max(0, q))
}

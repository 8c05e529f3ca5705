package encoder

import (
	"context"
	"math"

	"github.com/spigell/resume-scorer/internal/lexicon"
)

// Local is a bag-of-words encoder. It needs no model and no network.
type Local struct{}

func (Local) Similarity(_ context.Context, a, b string) (float64, error) {
	fa := frequencies(a)
	fb := frequencies(b)
	if len(fa) == 0 || len(fb) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for token, x := range fa {
		normA += x * x
		if y, ok := fb[token]; ok {
			dot += x * y
		}
	}
	for _, y := range fb {
		normB += y * y
	}

	return clampUnit(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

func frequencies(text string) map[string]float64 {
	out := make(map[string]float64)
	for token := range lexicon.Tokens(text) {
		out[token]++
	}
	return out
}

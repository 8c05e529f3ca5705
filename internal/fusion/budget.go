package fusion

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	budgetEncoding = "cl100k_base"
	// used when the encoding cannot be loaded
	approxRunesPerToken = 4
)

var loadEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	return tiktoken.GetEncoding(budgetEncoding)
})

// tokenBudget caps how much of each document is embedded in the prompt.
type tokenBudget struct {
	limit    int
	encoding func() (*tiktoken.Tiktoken, error)
}

func newTokenBudget(limit int) *tokenBudget {
	return &tokenBudget{limit: limit, encoding: loadEncoding}
}

// Clip returns text unchanged when it fits, otherwise its longest token prefix
// that does. A non-positive limit disables clipping.
func (b *tokenBudget) Clip(text string) (string, bool) {
	if b == nil || b.limit <= 0 {
		return text, false
	}

	enc, err := b.encoding()
	if err != nil {
		return clipRunes(text, b.limit*approxRunesPerToken)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= b.limit {
		return text, false
	}
	return enc.Decode(tokens[:b.limit]), true
}

func clipRunes(text string, limit int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}

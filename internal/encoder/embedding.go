package encoder

import (
	"context"
	"fmt"
)

// Embedding computes similarity from vectors produced by an Embedder.
type Embedding struct {
	embedder Embedder
	cache    *Cache
}

func NewEmbedding(embedder Embedder, cache *Cache) *Embedding {
	return &Embedding{embedder: embedder, cache: cache}
}

func (e *Embedding) Similarity(ctx context.Context, a, b string) (float64, error) {
	vectors, err := e.vectors(ctx, a, b)
	if err != nil {
		return 0, err
	}
	return Cosine(vectors[0], vectors[1]), nil
}

// vectors resolves every text from the cache first and embeds the rest in one call.
func (e *Embedding) vectors(ctx context.Context, texts ...string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var slots []int
	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	embedded, err := e.embedder.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(missing))
	}

	for i, v := range embedded {
		out[slots[i]] = v
		e.cache.Put(missing[i], v)
	}
	return out, nil
}

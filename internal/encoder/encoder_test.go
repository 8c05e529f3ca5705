package encoder

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float32
		expect float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expect: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expect: 0},
		{name: "opposite", a: []float32{1, 1}, b: []float32{-1, -1}, expect: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 2}, expect: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 2}, expect: 0},
		{name: "empty", expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-6 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestLocalSimilarity(t *testing.T) {
	ctx := context.Background()
	enc := Local{}

	same, err := enc.Similarity(ctx, "Go engineer with Kubernetes", "go ENGINEER with kubernetes")
	if err != nil || math.Abs(same-1) > 1e-9 {
		t.Fatalf("expected identical texts to score 1, got %v (%v)", same, err)
	}

	none, _ := enc.Similarity(ctx, "python django", "plumbing welding")
	if none != 0 {
		t.Fatalf("expected disjoint texts to score 0, got %v", none)
	}

	partial, _ := enc.Similarity(ctx, "python react aws", "python react")
	if partial <= 0 || partial >= 1 {
		t.Fatalf("expected partial overlap in (0, 1), got %v", partial)
	}

	again, _ := enc.Similarity(ctx, "python react aws", "python react")
	if again != partial {
		t.Fatalf("expected deterministic score, got %v then %v", partial, again)
	}

	empty, _ := enc.Similarity(ctx, "", "python")
	if empty != 0 {
		t.Fatalf("expected empty text to score 0, got %v", empty)
	}
}

type countingEmbedder struct {
	calls atomic.Int32
	texts [][]string
	mu    sync.Mutex
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.texts = append(c.texts, texts)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, []float32{float32(len(text)), 1})
	}
	return out, nil
}

func TestEmbeddingUsesCache(t *testing.T) {
	embedder := &countingEmbedder{}
	enc := NewEmbedding(embedder, NewCache(8))
	ctx := context.Background()

	first, err := enc.Similarity(ctx, "resume text", "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := enc.Similarity(ctx, "resume text", "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("expected deterministic similarity")
	}
	if embedder.calls.Load() != 1 {
		t.Fatalf("expected one embed call, got %d", embedder.calls.Load())
	}

	if _, err := enc.Similarity(ctx, "resume text", "another job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := embedder.texts[len(embedder.texts)-1]; len(last) != 1 || last[0] != "another job" {
		t.Fatalf("expected only the uncached text to be embedded, got %q", last)
	}
}

func TestEmbeddingPropagatesErrors(t *testing.T) {
	enc := NewEmbedding(&countingEmbedder{err: errors.New("unavailable")}, nil)
	if _, err := enc.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(2)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("a", []float32{3})
	c.Put("c", []float32{4})

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	if v, ok := c.Get("c"); !ok || v[0] != 4 {
		t.Fatalf("expected newest entry present")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	disabled := NewCache(0)
	disabled.Put("x", []float32{1})
	if _, ok := disabled.Get("x"); ok || disabled.Len() != 0 {
		t.Fatalf("expected nil cache to store nothing")
	}
}

func TestLazyInitializesOnce(t *testing.T) {
	var inits atomic.Int32
	lazy := NewLazy(func(context.Context) (Encoder, error) {
		inits.Add(1)
		return Local{}, nil
	})

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Similarity(context.Background(), "go", "go"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if inits.Load() != 1 {
		t.Fatalf("expected a single initialization, got %d", inits.Load())
	}
}

func TestLazyRemembersFailure(t *testing.T) {
	lazy := NewLazy(func(context.Context) (Encoder, error) {
		return nil, errors.New("no model")
	})
	for range 2 {
		if _, err := lazy.Similarity(context.Background(), "a", "b"); err == nil {
			t.Fatalf("expected init error")
		}
	}
}

func TestNewProviders(t *testing.T) {
	ctx := context.Background()

	local := New(Config{}, nil)
	if got, err := local.Similarity(ctx, "go", "go"); err != nil || got != 1 {
		t.Fatalf("expected local default, got %v (%v)", got, err)
	}

	unknown := New(Config{Provider: "word2vec"}, nil)
	if _, err := unknown.Similarity(ctx, "a", "b"); err == nil {
		t.Fatalf("expected unsupported provider error")
	}

	gemini := New(Config{Provider: ProviderGemini}, nil)
	if _, err := gemini.Similarity(ctx, "a", "b"); err == nil {
		t.Fatalf("expected gemini without key to fail")
	}
}

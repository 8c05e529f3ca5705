package encoder

import (
	"context"
	"sync"
)

// Lazy builds its encoder on first use. Concurrent first callers wait for a
// single initialization and share its result, including a failure.
type Lazy struct {
	once sync.Once
	init func(ctx context.Context) (Encoder, error)
	enc  Encoder
	err  error
}

func NewLazy(init func(ctx context.Context) (Encoder, error)) *Lazy {
	return &Lazy{init: init}
}

func (l *Lazy) Similarity(ctx context.Context, a, b string) (float64, error) {
	enc, err := l.get(ctx)
	if err != nil {
		return 0, err
	}
	return enc.Similarity(ctx, a, b)
}

func (l *Lazy) get(ctx context.Context) (Encoder, error) {
	l.once.Do(func() {
		l.enc, l.err = l.init(context.WithoutCancel(ctx))
	})
	return l.enc, l.err
}

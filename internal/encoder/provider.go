package encoder

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-scorer/internal/ai/gemini"
	"github.com/spigell/resume-scorer/internal/logger"
	"go.uber.org/zap"
)

const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	CacheSize  int
	MaxRetries int
	Timeout    time.Duration
}

// New returns a lazily initialized encoder for cfg.Provider. Unknown providers
// are reported on first use.
func New(cfg Config, log *zap.Logger) *Lazy {
	return NewLazy(func(ctx context.Context) (Encoder, error) {
		return build(ctx, cfg, log)
	})
}

func build(ctx context.Context, cfg Config, log *zap.Logger) (Encoder, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	log = logger.WithFields(logger.WithComponent(log, "encoder"), zap.String("encoder_provider", provider))

	switch provider {
	case "", ProviderLocal:
		log.Debug("using local bag-of-words encoder")
		return Local{}, nil
	case ProviderOpenAI:
		client := &http.Client{Timeout: cfg.Timeout}
		o := NewOpenAI(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.MaxRetries, client, log)
		log.Info("using openai compatible embeddings", zap.String("encoder_model", o.Model()))
		return NewEmbedding(o, NewCache(cfg.CacheSize)), nil
	case ProviderGemini:
		e, err := gemini.NewEmbedder(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		log.Info("using gemini embeddings", zap.String("encoder_model", e.Model()))
		return NewEmbedding(e, NewCache(cfg.CacheSize)), nil
	}

	return nil, fmt.Errorf("unsupported encoder provider %q", cfg.Provider)
}

package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/ai/gemini"
	"github.com/spigell/resume-scorer/internal/logger"
	"go.uber.org/zap"
)

const (
	KindOllama      = "ollama"
	KindLlamaCPP    = "llamacpp"
	KindHuggingFace = "huggingface"
	KindGemini      = "gemini"
)

type defaults struct {
	baseURL string
	model   string
}

var known = map[string]defaults{
	KindOllama:      {baseURL: "http://localhost:11434", model: "llama3.2"},
	KindLlamaCPP:    {baseURL: "http://localhost:8080", model: "default"},
	KindHuggingFace: {baseURL: "http://localhost:5000", model: "microsoft/DialoGPT-medium"},
	KindGemini:      {model: gemini.DefaultModel},
}

// Config selects and parameterizes an oracle.
type Config struct {
	Kind    string
	BaseURL string
	Model   string
	// APIKey is used by hosted kinds only.
	APIKey string
	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration
	Options ai.Options
}

// Kinds lists the supported oracle kinds.
func Kinds() []string {
	return []string{KindOllama, KindLlamaCPP, KindHuggingFace, KindGemini}
}

// Normalize fills empty fields with the defaults of the configured kind.
func Normalize(cfg Config) (Config, error) {
	cfg.Kind = strings.ToLower(strings.TrimSpace(cfg.Kind))
	if cfg.Kind == "" {
		cfg.Kind = KindOllama
	}

	d, ok := known[cfg.Kind]
	if !ok {
		return cfg, fmt.Errorf("unsupported llm server type %q (expected one of %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = d.baseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = d.model
	}
	return cfg, nil
}

// New builds the oracle for cfg.Kind.
func New(ctx context.Context, cfg Config, log *zap.Logger) (ai.Oracle, error) {
	cfg, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}

	log = logger.WithCommonFields(log, cfg.Kind, cfg.Model)
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}

	switch cfg.Kind {
	case KindOllama:
		o, err := NewOllama(cfg.BaseURL, cfg.Model, cfg.Options, httpClient, log)
		if err != nil {
			return nil, err
		}
		return o, nil
	case KindLlamaCPP:
		return NewLlamaCPP(cfg.BaseURL, cfg.Model, cfg.Options, httpClient, log), nil
	case KindHuggingFace:
		return NewHuggingFace(cfg.BaseURL, cfg.Model, cfg.Options, httpClient, log), nil
	case KindGemini:
		g, err := gemini.NewGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Options)
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	return nil, fmt.Errorf("unsupported llm server type %q", cfg.Kind)
}

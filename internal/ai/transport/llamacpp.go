package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// LlamaCPP talks to the llama.cpp server completion API.
type LlamaCPP struct {
	client *Client
	model  string
	opts   ai.Options
}

func NewLlamaCPP(baseURL, model string, opts ai.Options, httpClient *http.Client, logger *zap.Logger) *LlamaCPP {
	return &LlamaCPP{
		client: NewClient(baseURL, httpClient, logger),
		model:  model,
		opts:   opts,
	}
}

func (l *LlamaCPP) Name() string  { return KindLlamaCPP }
func (l *LlamaCPP) Model() string { return l.model }

func (l *LlamaCPP) Probe(ctx context.Context) error {
	return l.client.getStatus(ctx, "/health")
}

func (l *LlamaCPP) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"prompt":      prompt,
		"n_predict":   l.opts.MaxTokens,
		"temperature": l.opts.SamplingTemperature(),
		"top_p":       l.opts.TopP,
		"stop":        []string{"</s>"},
	}

	data, err := l.client.postJSON(ctx, "/completion", payload)
	if err != nil {
		return "", fmt.Errorf("llamacpp completion: %w", err)
	}

	content := gjson.GetBytes(data, "content")
	if content.Type != gjson.String {
		return "", errors.New("llamacpp completion: response has no content")
	}
	return content.String(), nil
}

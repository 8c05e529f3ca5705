package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// Ollama generates through langchaingo and probes the tags endpoint directly.
type Ollama struct {
	client *Client
	llm    llms.Model
	model  string
	opts   ai.Options
}

func NewOllama(baseURL, model string, opts ai.Options, httpClient *http.Client, logger *zap.Logger) (*Ollama, error) {
	client := NewClient(baseURL, httpClient, logger)

	llm, err := ollama.New(
		ollama.WithServerURL(client.BaseURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(client.HTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &Ollama{client: client, llm: llm, model: model, opts: opts}, nil
}

func (o *Ollama) Name() string  { return KindOllama }
func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Probe(ctx context.Context) error {
	return o.client.getStatus(ctx, "/api/tags")
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt,
		llms.WithTemperature(o.opts.SamplingTemperature()),
		llms.WithTopP(o.opts.TopP),
		llms.WithMaxTokens(o.opts.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text, nil
}

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

// HuggingFace talks to a text-generation server exposing POST /generate.
type HuggingFace struct {
	client *Client
	model  string
	opts   ai.Options
}

func NewHuggingFace(baseURL, model string, opts ai.Options, httpClient *http.Client, logger *zap.Logger) *HuggingFace {
	return &HuggingFace{
		client: NewClient(baseURL, httpClient, logger),
		model:  model,
		opts:   opts,
	}
}

func (h *HuggingFace) Name() string  { return KindHuggingFace }
func (h *HuggingFace) Model() string { return h.model }

func (h *HuggingFace) Probe(ctx context.Context) error {
	return h.client.getStatus(ctx, "/")
}

func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"temperature":      h.opts.SamplingTemperature(),
			"max_new_tokens":   h.opts.MaxTokens,
			"return_full_text": false,
		},
	}

	data, err := h.client.postJSON(ctx, "/generate", payload)
	if err != nil {
		return "", fmt.Errorf("huggingface generate: %w", err)
	}

	// Inference API answers with a list, text-generation-inference with an object.
	for _, path := range []string{"0.generated_text", "generated_text"} {
		if text := gjson.GetBytes(data, path); text.Type == gjson.String {
			return text.String(), nil
		}
	}
	return "", errors.New("huggingface generate: response has no generated_text")
}

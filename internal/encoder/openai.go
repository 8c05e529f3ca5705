package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "text-embedding-3-small"
)

// OpenAI calls an OpenAI compatible /embeddings endpoint. Client errors are
// final; rate limits, server errors and transport failures are retried.
type OpenAI struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewOpenAI(baseURL, model, apiKey string, maxRetries int, httpClient *http.Client, logger *zap.Logger) *OpenAI {
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAI{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		newBackOff: func() backoff.BackOff {
			expo := backoff.NewExponentialBackOff()
			expo.InitialInterval = 250 * time.Millisecond
			expo.MaxInterval = 5 * time.Second
			return backoff.WithMaxRetries(expo, uint64(max(0, maxRetries)))
		},
	}
}

func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if o.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+o.apiKey)
		}

		resp, err := o.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			o.logger.Warn("embeddings rate limited", zap.Int("attempt", attempt))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("embed status %d: %s", resp.StatusCode, snippet(resp.Body)))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			o.logger.Warn("embeddings server error", zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode embeddings: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(o.newBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d vectors, got %d", len(texts), len(out.Data))
	}
	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })

	vectors := make([][]float32, 0, len(out.Data))
	for _, d := range out.Data {
		if len(d.Embedding) == 0 {
			return nil, errors.New("openai embeddings: empty vector")
		}
		vectors = append(vectors, d.Embedding)
	}
	return vectors, nil
}

func snippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}

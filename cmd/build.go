package cmd

import (
	"context"
	"fmt"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/ai/transport"
	"github.com/spigell/resume-scorer/internal/analyzer"
	"github.com/spigell/resume-scorer/internal/encoder"
	"github.com/spigell/resume-scorer/internal/fusion"
	"github.com/spigell/resume-scorer/internal/httpserver"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/secrets"
	"github.com/spigell/resume-scorer/internal/textextract"
	"go.uber.org/zap"
)

// pipeline is everything a command needs to score documents.
type pipeline struct {
	analyzer *analyzer.Analyzer
	llm      httpserver.LLMInfo
}

// buildPipeline wires encoder, oracle, fuser and loader from config. m may be nil.
func buildPipeline(ctx context.Context, cfg *Config, m *metrics.Metrics, log *zap.Logger) (*pipeline, error) {
	encoderKey, err := secrets.Load(secrets.Source{
		Name:     "encoder api key",
		Value:    cfg.Encoder.APIKey,
		File:     cfg.Encoder.APIKeyFile,
		Required: cfg.Encoder.Provider == encoder.ProviderGemini,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set encoder.api-key-file or ENCODER_API_KEY_FILE)", err)
	}

	enc := encoder.New(encoder.Config{
		Provider:   cfg.Encoder.Provider,
		Model:      cfg.Encoder.Model,
		BaseURL:    cfg.Encoder.BaseURL,
		APIKey:     encoderKey,
		CacheSize:  cfg.Encoder.CacheSize,
		MaxRetries: cfg.Encoder.MaxRetries,
		Timeout:    cfg.Encoder.Timeout,
	}, log)

	var fuserOpts []fusion.Option
	var recorder analyzer.Recorder
	if m != nil {
		fuserOpts = append(fuserOpts, fusion.WithRecorder(m))
		recorder = m
	}

	info := httpserver.LLMInfo{Enabled: cfg.LLM.Enabled}
	var oracle ai.Oracle
	if cfg.LLM.Enabled {
		oracle, info, err = buildOracle(ctx, cfg.LLM, log)
		if err != nil {
			return nil, err
		}
	}

	fuser := fusion.New(oracle, fusion.Config{
		ProbeTimeout:      cfg.Fusion.ProbeTimeout,
		GenerateTimeout:   cfg.LLM.Timeout,
		ProbeCacheTTL:     cfg.Fusion.ProbeCacheTTL,
		MaxDocumentTokens: cfg.Fusion.MaxDocumentTokens,
		MaxLogLength:      cfg.Fusion.MaxLogLength,
	}, log, fuserOpts...)

	a, err := analyzer.New(analyzer.Deps{
		Encoder:  enc,
		Fuser:    fuser,
		Loader:   textextract.NewLoader(log, cfg.Server.MaxUploadMB<<20),
		Recorder: recorder,
	}, analyzer.Config{
		LLMEnabled:     cfg.LLM.Enabled,
		EncoderTimeout: cfg.Encoder.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	return &pipeline{analyzer: a, llm: info}, nil
}

func buildOracle(ctx context.Context, cfg LLMConfig, log *zap.Logger) (ai.Oracle, httpserver.LLMInfo, error) {
	tcfg, err := transport.Normalize(transport.Config{
		Kind:    cfg.ServerType,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Options: ai.Options{
			Temperature: ai.Float(cfg.Temperature),
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
		},
	})
	if err != nil {
		return nil, httpserver.LLMInfo{}, err
	}

	tcfg.APIKey, err = secrets.Load(secrets.Source{
		Name:     tcfg.Kind + " api key",
		Value:    cfg.APIKey,
		File:     cfg.APIKeyFile,
		Required: tcfg.Kind == transport.KindGemini,
	})
	if err != nil {
		return nil, httpserver.LLMInfo{}, fmt.Errorf("%w (set llm.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	oracle, err := transport.New(ctx, tcfg, log)
	if err != nil {
		return nil, httpserver.LLMInfo{}, fmt.Errorf("building %s oracle: %w", tcfg.Kind, err)
	}

	info := httpserver.LLMInfo{
		Enabled:    true,
		ServerType: tcfg.Kind,
		BaseURL:    tcfg.BaseURL,
		Model:      tcfg.Model,
	}
	if tcfg.Kind == transport.KindGemini {
		info.BaseURL = ""
	}

	return oracle, info, nil
}

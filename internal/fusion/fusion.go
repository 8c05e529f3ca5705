// Package fusion enriches a traditional assessment with an LLM second opinion.
// Every stage degrades to the unchanged traditional result on failure.
package fusion

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/utils"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeEnhanced     Outcome = "enhanced"
	OutcomeDisabled     Outcome = "disabled"
	OutcomeUnreachable  Outcome = "unreachable"
	OutcomeInvokeFailed Outcome = "invoke_failed"
	OutcomeMalformed    Outcome = "malformed"
)

const (
	StageProbe    = "probe"
	StageGenerate = "generate"

	traditionalWeight = 0.7
	oracleWeight      = 0.3

	defaultProbeTimeout    = 5 * time.Second
	defaultGenerateTimeout = 30 * time.Second
	defaultMaxLogLength    = 200
)

//go:embed prompt.md
var promptTemplate string

type Config struct {
	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	ProbeCacheTTL   time.Duration
	// MaxDocumentTokens caps each document inside the prompt; zero keeps them whole.
	MaxDocumentTokens int
	MaxLogLength      int
}

// Recorder receives fusion telemetry.
type Recorder interface {
	FusionOutcome(outcome string)
	OracleCall(stage string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) FusionOutcome(string)                    {}
func (nopRecorder) OracleCall(string, time.Duration, error) {}

// Result is what Enrich hands back. Analysis is set only for OutcomeEnhanced.
type Result struct {
	Assessment scoring.Assessment
	Analysis   *ai.Analysis
	Outcome    Outcome
}

type Fuser struct {
	oracle   ai.Oracle
	cfg      Config
	logger   *zap.Logger
	probes   *probeCache
	budget   *tokenBudget
	recorder Recorder
	now      func() time.Time
}

type Option func(*Fuser)

func WithRecorder(r Recorder) Option {
	return func(f *Fuser) {
		if r != nil {
			f.recorder = r
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(f *Fuser) { f.now = now }
}

// New builds a Fuser. A nil oracle yields a Fuser that always reports OutcomeDisabled.
func New(oracle ai.Oracle, cfg Config, log *zap.Logger, opts ...Option) *Fuser {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = defaultGenerateTimeout
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	if oracle != nil {
		log = logger.WithCommonFields(log, oracle.Name(), oracle.Model())
	}

	f := &Fuser{
		oracle:   oracle,
		cfg:      cfg,
		logger:   logger.WithComponent(log, "fusion"),
		probes:   &probeCache{ttl: cfg.ProbeCacheTTL},
		budget:   newTokenBudget(cfg.MaxDocumentTokens),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enabled reports whether an oracle is configured.
func (f *Fuser) Enabled() bool {
	return f != nil && f.oracle != nil
}

// Enrich runs probe, invoke, extract and merge. The five sub-scores and the
// skill lists of base are never changed.
func (f *Fuser) Enrich(ctx context.Context, base scoring.Assessment, resumeText, jobText string) Result {
	res := f.enrich(ctx, base, resumeText, jobText)
	if f != nil {
		f.recorder.FusionOutcome(string(res.Outcome))
	}
	return res
}

func (f *Fuser) enrich(ctx context.Context, base scoring.Assessment, resumeText, jobText string) Result {
	fallback := func(o Outcome) Result {
		return Result{Assessment: base, Outcome: o}
	}

	if !f.Enabled() {
		return fallback(OutcomeDisabled)
	}

	if err := f.probe(ctx); err != nil {
		f.logger.Info("llm oracle unavailable, using traditional scoring", zap.Error(err))
		return fallback(OutcomeUnreachable)
	}

	raw, err := f.invoke(ctx, resumeText, jobText)
	if err != nil {
		f.logger.Warn("llm oracle call failed, using traditional scoring", zap.Error(err))
		return fallback(OutcomeInvokeFailed)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		f.logger.Warn("llm oracle returned unusable analysis, using traditional scoring", zap.Error(err))
		return fallback(OutcomeMalformed)
	}
	if dropped := capLists(analysis); dropped > 0 {
		f.logger.Warn("llm analysis lists capped",
			zap.Int("dropped_items", dropped),
			zap.Int("max_items", maxListItems),
		)
	}

	f.logger.Info("llm analysis merged",
		zap.Int("key_strengths", len(analysis.KeyStrengths)),
		zap.Int("improvement_areas", len(analysis.ImprovementAreas)),
		zap.Bool("has_score", analysis.RecommendationScore != nil),
	)

	return Result{
		Assessment: Merge(base, analysis),
		Analysis:   analysis,
		Outcome:    OutcomeEnhanced,
	}
}

func (f *Fuser) probe(ctx context.Context) error {
	if cached, ok := f.probes.lookup(f.now()); ok {
		return cached.err
	}

	pctx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	started := time.Now()
	err := f.oracle.Probe(pctx)
	f.recorder.OracleCall(StageProbe, time.Since(started), err)

	// A cancelled request says nothing about the oracle.
	if ctx.Err() == nil {
		f.probes.store(probeResult{err: err, at: f.now()})
	}
	return err
}

func (f *Fuser) invoke(ctx context.Context, resumeText, jobText string) (string, error) {
	clippedJob, jobClipped := f.budget.Clip(jobText)
	clippedResume, resumeClipped := f.budget.Clip(resumeText)
	if jobClipped || resumeClipped {
		f.logger.Debug("documents clipped to prompt budget",
			zap.Bool("job_clipped", jobClipped),
			zap.Bool("resume_clipped", resumeClipped),
			zap.Int("max_tokens", f.cfg.MaxDocumentTokens),
		)
	}

	prompt := buildPrompt(clippedJob, clippedResume)

	f.logger.Debug("llm generate request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, f.cfg.MaxLogLength)),
	)

	gctx, cancel := context.WithTimeout(ctx, f.cfg.GenerateTimeout)
	defer cancel()

	started := time.Now()
	raw, err := f.oracle.Generate(gctx, prompt)
	f.recorder.OracleCall(StageGenerate, time.Since(started), err)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("oracle returned empty response")
	}

	f.logger.Debug("llm generate response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, f.cfg.MaxLogLength)),
	)

	return raw, nil
}

// Merge folds a parsed analysis into a copy of base.
func Merge(base scoring.Assessment, analysis *ai.Analysis) scoring.Assessment {
	out := base.Clone()
	if analysis == nil {
		return out
	}

	out.Recommendations = append(out.Recommendations, analysis.ImprovementAreas...)
	out.Strengths = append(out.Strengths, analysis.KeyStrengths...)
	if s := analysis.RecommendationScore; s != nil {
		out.Overall = traditionalWeight*base.Overall + oracleWeight*clampScore(*s)
	}
	return out
}

func buildPrompt(jobText, resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "JOB DESCRIPTION:\n{{JOB_DESCRIPTION}}\n\nRESUME:\n{{RESUME}}\n\nRespond only with valid JSON."
	}
	// Single pass, so placeholders inside the documents stay literal.
	return strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", jobText,
		"{{RESUME}}", resumeText,
	).Replace(template)
}

// Package analyzer runs one résumé against one job description end to end.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/encoder"
	"github.com/spigell/resume-scorer/internal/fusion"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/scoring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultEncoderTimeout = 30 * time.Second

// DocumentLoader returns best-effort text for a file, empty on failure.
type DocumentLoader interface {
	LoadText(path string) string
}

// Recorder receives one observation per finished analysis.
type Recorder interface {
	Analysis(method string, overall float64)
}

type Config struct {
	// LLMEnabled is the global switch; a request cannot turn fusion on when it is off.
	LLMEnabled     bool
	EncoderTimeout time.Duration
}

type Deps struct {
	Encoder  encoder.Encoder
	Fuser    *fusion.Fuser
	Loader   DocumentLoader
	Recorder Recorder
}

type Analyzer struct {
	encoder  encoder.Encoder
	fuser    *fusion.Fuser
	loader   DocumentLoader
	recorder Recorder
	cfg      Config
	logger   *zap.Logger
}

func New(deps Deps, cfg Config, log *zap.Logger) (*Analyzer, error) {
	if deps.Encoder == nil {
		return nil, errors.New("encoder is required")
	}
	if cfg.EncoderTimeout <= 0 {
		cfg.EncoderTimeout = defaultEncoderTimeout
	}

	return &Analyzer{
		encoder:  deps.Encoder,
		fuser:    deps.Fuser,
		loader:   deps.Loader,
		recorder: deps.Recorder,
		cfg:      cfg,
		logger:   logger.WithComponent(log, "analyzer"),
	}, nil
}

// LLMEnabled reports whether fusion can run at all.
func (a *Analyzer) LLMEnabled() bool {
	return a.cfg.LLMEnabled && a.fuser.Enabled()
}

// AnalyzeFile loads the résumé from path and analyzes it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, jobText string, useLLM bool) (*scoring.MatchReport, error) {
	if a.loader == nil {
		return nil, fmt.Errorf("%w: no document loader configured", ErrInternal)
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}

	text := a.loader.LoadText(path)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: could not extract text from resume file", ErrAnalysisFailed)
	}

	return a.Analyze(ctx, text, jobText, useLLM)
}

// Analyze scores resumeText against jobText. useLLM is honored only when
// fusion is globally enabled.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobText string, useLLM bool) (*scoring.MatchReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("%w: resume text is required", ErrInvalidInput)
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}

	started := time.Now()
	resume := scoring.NewDocument(resumeText)
	job := scoring.NewDocument(jobText)

	var (
		cosine float64
		scores scoring.SubScores
		skills scoring.SkillMatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		ectx, cancel := context.WithTimeout(gctx, a.cfg.EncoderTimeout)
		defer cancel()

		var err error
		cosine, err = a.encoder.Similarity(ectx, resumeText, jobText)
		if err != nil {
			return fmt.Errorf("%w: semantic encoder: %w", ErrAnalysisFailed, err)
		}
		return nil
	}))
	g.Go(guard(func() error {
		scores, skills = scoring.Lexical(resume, job)
		return nil
	}))

	if err := g.Wait(); err != nil {
		a.logger.Error("analysis failed", zap.Error(err))
		return nil, err
	}

	scores.Semantic = scoring.SemanticScore(cosine)
	assessment := scoring.Aggregate(scores, skills)

	var analysis *ai.Analysis
	outcome := fusion.OutcomeDisabled
	if useLLM && a.LLMEnabled() {
		res := a.fuser.Enrich(ctx, assessment, resumeText, jobText)
		assessment, analysis, outcome = res.Assessment, res.Analysis, res.Outcome
	}

	report := scoring.Assemble(assessment, analysis)
	if a.recorder != nil {
		a.recorder.Analysis(report.AnalysisMethod, report.OverallMatch)
	}

	a.logger.Info("analysis completed",
		zap.Float64("overall", report.OverallMatch),
		zap.String("method", report.AnalysisMethod),
		zap.String("fusion", string(outcome)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &report, nil
}

// guard turns a panic inside fn into ErrInternal.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrInternal, r)
			}
		}()
		return fn()
	}
}

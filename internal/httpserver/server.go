// Package httpserver exposes the analyzer over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/scoring"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadMB = 16
	defaultService     = "AI Resume Analysis Service"
)

// Analyzer is the slice of analyzer.Analyzer the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobText string, useLLM bool) (*scoring.MatchReport, error)
	AnalyzeFile(ctx context.Context, path, jobText string, useLLM bool) (*scoring.MatchReport, error)
	LLMEnabled() bool
}

// LLMInfo is reported by /health.
type LLMInfo struct {
	Enabled    bool   `json:"enabled"`
	ServerType string `json:"serverType,omitempty"`
	BaseURL    string `json:"baseUrl,omitempty"`
	Model      string `json:"model,omitempty"`
}

type Config struct {
	Service     string
	Version     string
	MaxUploadMB int64
	// RateLimitPerMin applies per client IP to POST routes; zero disables it.
	RateLimitPerMin  int
	CORSAllowOrigins []string
	LLM              LLMInfo
}

type Server struct {
	cfg      Config
	analyzer Analyzer
	metrics  *metrics.Metrics
	logger   *zap.Logger

	validateOnce sync.Once
	validate     *validator.Validate
}

// New builds the server. m may be nil, in which case /metrics is not mounted.
func New(cfg Config, a Analyzer, m *metrics.Metrics, log *zap.Logger) *Server {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	if strings.TrimSpace(cfg.Service) == "" {
		cfg.Service = defaultService
	}

	return &Server{
		cfg:      cfg,
		analyzer: a,
		metrics:  m,
		logger:   logger.WithComponent(log, "http"),
	}
}

// Router wires middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID(s.logger))
	r.Use(Recoverer(s.logger))
	r.Use(AccessLog(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins(s.cfg.CORSAllowOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope(codeNotFound, "endpoint not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope(codeNotAllowed, "method not allowed"))
	})

	r.Get("/health", s.HealthHandler())
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(wr chi.Router) {
		if s.cfg.RateLimitPerMin > 0 {
			wr.Use(httprate.Limit(s.cfg.RateLimitPerMin, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusTooManyRequests, envelope(codeRateLimited, "too many requests"))
				}),
			))
		}
		wr.Post("/analyze", s.AnalyzeHandler())
		wr.Post("/analyze-text", s.AnalyzeTextHandler())
	})

	return r
}

func origins(list []string) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

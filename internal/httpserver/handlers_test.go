package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spigell/resume-scorer/internal/analyzer"
	"github.com/spigell/resume-scorer/internal/encoder"
	"github.com/spigell/resume-scorer/internal/httpserver"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/textextract"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jobText = "Looking for a candidate with 3+ years experience in Python, React, and AWS. Bachelor required."

type call struct {
	resume string
	job    string
	useLLM bool
}

type fakeAnalyzer struct {
	err   error
	panic bool
	llm   bool
	calls []call
}

func (f *fakeAnalyzer) Analyze(_ context.Context, resumeText, job string, useLLM bool) (*scoring.MatchReport, error) {
	if f.panic {
		panic("boom")
	}
	f.calls = append(f.calls, call{resume: resumeText, job: job, useLLM: useLLM})
	if f.err != nil {
		return nil, f.err
	}
	r := scoring.Assemble(scoring.Assessment{Overall: 55}, nil)
	return &r, nil
}

func (f *fakeAnalyzer) AnalyzeFile(ctx context.Context, path, job string, useLLM bool) (*scoring.MatchReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Analyze(ctx, string(data), job, useLLM)
}

func (f *fakeAnalyzer) LLMEnabled() bool { return f.llm }

func newRouter(a httpserver.Analyzer, cfg httpserver.Config) http.Handler {
	return httpserver.New(cfg, a, metrics.New(prometheus.NewRegistry()), zap.NewNop()).Router()
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.field, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.content))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.field, p.content))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code, body.Error.Message
}

func TestHealth(t *testing.T) {
	h := newRouter(&fakeAnalyzer{llm: true}, httpserver.Config{
		Version: "1.2.3",
		LLM:     httpserver.LLMInfo{ServerType: "ollama", Model: "llama3.2"},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "AI Resume Analysis Service", body["service"])
	require.Equal(t, "1.2.3", body["version"])
	llm, ok := body["llm"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, llm["enabled"])
	require.Equal(t, "ollama", llm["serverType"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newRouter(&fakeAnalyzer{}, httpserver.Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestAnalyzeText(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantLLM    bool
	}{
		{name: "ok defaults use_llm", body: `{"resumeText":"python dev","jobDescription":"python"}`, wantStatus: http.StatusOK, wantLLM: true},
		{name: "ok without llm", body: `{"resumeText":"python dev","jobDescription":"python","use_llm":false}`, wantStatus: http.StatusOK},
		{name: "missing resume", body: `{"jobDescription":"python"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT"},
		{name: "not json", body: `resume`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT"},
		{name: "invalid input from analyzer", body: `{"resumeText":"  ","jobDescription":"python"}`, err: fmt.Errorf("%w: resume text is required", analyzer.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT"},
		{name: "analysis failed", body: `{"resumeText":"a","jobDescription":"b"}`, err: fmt.Errorf("%w: semantic encoder: timeout", analyzer.ErrAnalysisFailed), wantStatus: http.StatusUnprocessableEntity, wantCode: "ANALYSIS_FAILED"},
		{name: "internal", body: `{"resumeText":"a","jobDescription":"b"}`, err: fmt.Errorf("%w: secret detail", analyzer.ErrInternal), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{err: tt.err}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/analyze-text", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			newRouter(fake, httpserver.Config{}).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				code, msg := decodeError(t, rec)
				require.Equal(t, tt.wantCode, code)
				require.NotContains(t, msg, "secret detail")
				return
			}

			var report scoring.MatchReport
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
			require.Equal(t, 55.0, report.OverallMatch)
			require.Len(t, fake.calls, 1)
			require.Equal(t, tt.wantLLM, fake.calls[0].useLLM)
		})
	}
}

func TestAnalyzeUpload(t *testing.T) {
	tests := []struct {
		name       string
		parts      []part
		wantStatus int
		wantLLM    bool
	}{
		{
			name:       "txt upload",
			parts:      []part{{field: "resume", filename: "cv.txt", content: "python"}, {field: "jobDescription", content: "python"}},
			wantStatus: http.StatusOK,
			wantLLM:    true,
		},
		{
			name:       "use_llm false",
			parts:      []part{{field: "resume", filename: "cv.txt", content: "python"}, {field: "jobDescription", content: "python"}, {field: "use_llm", content: "False"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing file",
			parts:      []part{{field: "jobDescription", content: "python"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing job description",
			parts:      []part{{field: "resume", filename: "cv.txt", content: "python"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "extension not allowed",
			parts:      []part{{field: "resume", filename: "cv.exe", content: "MZ"}, {field: "jobDescription", content: "python"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{}
			rec := httptest.NewRecorder()
			newRouter(fake, httpserver.Config{}).ServeHTTP(rec, multipartRequest(t, tt.parts...))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				code, _ := decodeError(t, rec)
				require.Equal(t, "INVALID_ARGUMENT", code)
				require.Empty(t, fake.calls)
				return
			}
			require.Len(t, fake.calls, 1)
			require.Equal(t, "python", fake.calls[0].resume)
			require.Equal(t, tt.wantLLM, fake.calls[0].useLLM)
		})
	}
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	big := strings.Repeat("A", 1536*1024)
	req := multipartRequest(t, part{field: "resume", filename: "cv.txt", content: big}, part{field: "jobDescription", content: "python"})

	rec := httptest.NewRecorder()
	newRouter(&fakeAnalyzer{}, httpserver.Config{MaxUploadMB: 1}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	code, _ := decodeError(t, rec)
	require.Equal(t, "PAYLOAD_TOO_LARGE", code)
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	h := newRouter(&fakeAnalyzer{}, httpserver.Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := decodeError(t, rec)
	require.Equal(t, "NOT_FOUND", code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze-text", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	code, _ = decodeError(t, rec)
	require.Equal(t, "METHOD_NOT_ALLOWED", code)
}

func TestPanicIsRecovered(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze-text", strings.NewReader(`{"resumeText":"a","jobDescription":"b"}`))
	newRouter(&fakeAnalyzer{panic: true}, httpserver.Config{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	code, _ := decodeError(t, rec)
	require.Equal(t, "INTERNAL", code)
}

func TestRateLimit(t *testing.T) {
	h := newRouter(&fakeAnalyzer{}, httpserver.Config{RateLimitPerMin: 1})

	send := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/analyze-text", strings.NewReader(`{"resumeText":"a","jobDescription":"b"}`))
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusTooManyRequests, send())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code, "read-only routes are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newRouter(&fakeAnalyzer{}, httpserver.Config{})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a, err := analyzer.New(analyzer.Deps{
		Encoder: encoder.Local{},
		Loader:  textextract.NewLoader(zap.NewNop(), 0),
	}, analyzer.Config{}, zap.NewNop())
	require.NoError(t, err)

	req := multipartRequest(t,
		part{field: "resume", filename: "cv.txt", content: "5 years experience in Python and React. Bachelor degree in Computer Science."},
		part{field: "jobDescription", content: jobText},
	)
	rec := httptest.NewRecorder()
	newRouter(a, httpserver.Config{}).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report scoring.MatchReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	require.Equal(t, []string{"python", "react"}, report.MatchedSkills)
	require.Equal(t, []string{"aws"}, report.MissingSkills)
	require.Equal(t, 100.0, report.ExperienceMatch)
	require.Equal(t, 100.0, report.EducationMatch)
	require.Equal(t, scoring.MethodTraditional, report.AnalysisMethod)
	require.Nil(t, report.LLMAnalysis)

	empty := multipartRequest(t,
		part{field: "resume", filename: "cv.txt", content: ""},
		part{field: "jobDescription", content: jobText},
	)
	rec = httptest.NewRecorder()
	newRouter(a, httpserver.Config{}).ServeHTTP(rec, empty)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/resume-scorer/internal/analyzer"
	"go.uber.org/zap"
)

var allowedExtensions = []string{".txt", ".pdf", ".doc", ".docx"}

type healthResponse struct {
	Status  string  `json:"status"`
	Service string  `json:"service"`
	Version string  `json:"version"`
	LLM     LLMInfo `json:"llm"`
}

type analyzeTextRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
	UseLLM         *bool  `json:"use_llm"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		info := s.cfg.LLM
		info.Enabled = s.analyzer.LLMEnabled()
		writeJSON(w, http.StatusOK, healthResponse{
			Status:  "healthy",
			Service: s.cfg.Service,
			Version: s.cfg.Version,
			LLM:     info,
		})
	}
}

// AnalyzeHandler accepts a multipart upload with a "resume" file and a
// "jobDescription" field.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := LoggerFrom(r.Context(), s.logger)
		maxBytes := s.cfg.MaxUploadMB << 20

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if tooLarge(err) {
				writeJSON(w, http.StatusRequestEntityTooLarge, envelope(codePayloadTooLarge,
					fmt.Sprintf("file too large, maximum size is %dMB", s.cfg.MaxUploadMB)))
				return
			}
			writeError(w, fmt.Errorf("%w: malformed multipart form: %v", analyzer.ErrInvalidInput, err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("resume")
		if err != nil {
			writeError(w, fmt.Errorf("%w: no resume file provided", analyzer.ErrInvalidInput))
			return
		}
		defer file.Close()

		if _, ok := r.MultipartForm.Value["jobDescription"]; !ok {
			writeError(w, fmt.Errorf("%w: no job description provided", analyzer.ErrInvalidInput))
			return
		}
		jobText := r.FormValue("jobDescription")

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if header.Filename == "" || !slices.Contains(allowedExtensions, ext) {
			writeError(w, fmt.Errorf("%w: file type not allowed, allowed types: txt, pdf, doc, docx", analyzer.ErrInvalidInput))
			return
		}

		useLLM := true
		if v, ok := r.MultipartForm.Value["use_llm"]; ok && len(v) > 0 {
			useLLM = strings.EqualFold(strings.TrimSpace(v[0]), "true")
		}

		path, err := spool(file, ext)
		if err != nil {
			log.Error("saving upload", zap.Error(err))
			writeError(w, err)
			return
		}
		defer os.Remove(path)

		log.Info("analyzing resume", zap.String("filename", filepath.Base(header.Filename)), zap.Bool("use_llm", useLLM))
		report, err := s.analyzer.AnalyzeFile(r.Context(), path, jobText, useLLM)
		if err != nil {
			s.fail(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// AnalyzeTextHandler accepts {"resumeText", "jobDescription", "use_llm"}.
func (s *Server) AnalyzeTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := LoggerFrom(r.Context(), s.logger)

		var req analyzeTextRequest
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: invalid JSON body", analyzer.ErrInvalidInput))
			return
		}
		if err := s.validator().Struct(req); err != nil {
			writeError(w, fmt.Errorf("%w: %s", analyzer.ErrInvalidInput, describeValidation(err)))
			return
		}

		useLLM := true
		if req.UseLLM != nil {
			useLLM = *req.UseLLM
		}

		report, err := s.analyzer.Analyze(r.Context(), req.ResumeText, req.JobDescription, useLLM)
		if err != nil {
			s.fail(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("analysis failed", zap.Error(err))
	} else {
		log.Warn("analysis rejected", zap.Error(err), zap.Int("status", status))
	}
	writeError(w, err)
}

func (s *Server) validator() *validator.Validate {
	s.validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		s.validate = v
	})
	return s.validate
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) ||
		errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large")
}

// spool copies the upload into a temporary file keeping its extension.
func spool(src io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}

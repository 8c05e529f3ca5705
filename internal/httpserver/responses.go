package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spigell/resume-scorer/internal/analyzer"
)

const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeAnalysisFailed  = "ANALYSIS_FAILED"
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	codeNotFound        = "NOT_FOUND"
	codeNotAllowed      = "METHOD_NOT_ALLOWED"
	codeRateLimited     = "RATE_LIMITED"
	codeInternal        = "INTERNAL"

	internalMessage = "internal server error during analysis"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envelope(code, message string) errorEnvelope {
	return errorEnvelope{Error: apiError{Code: code, Message: message}}
}

func internalEnvelope() errorEnvelope {
	return envelope(codeInternal, internalMessage)
}

// statusFor maps analyzer sentinels to a status and envelope. Internal errors
// never leak their message.
func statusFor(err error) (int, errorEnvelope) {
	switch {
	case errors.Is(err, analyzer.ErrInvalidInput):
		return http.StatusBadRequest, envelope(codeInvalidArgument, err.Error())
	case errors.Is(err, analyzer.ErrAnalysisFailed):
		return http.StatusUnprocessableEntity, envelope(codeAnalysisFailed, err.Error())
	}
	return http.StatusInternalServerError, internalEnvelope()
}

func writeError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	writeJSON(w, status, body)
}

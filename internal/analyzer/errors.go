package analyzer

import "errors"

var (
	// ErrInvalidInput rejects a request before any scoring starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisFailed means a mandatory collaborator could not serve the request.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrInternal is an unexpected failure inside the service.
	ErrInternal = errors.New("internal error")
)

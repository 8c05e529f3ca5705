package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spigell/resume-scorer/internal/metrics"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

type loggerKey struct{}

// LoggerFrom returns the request-scoped logger, falling back to fallback.
func LoggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if lg, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return lg
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}

// RequestID reuses an incoming X-Request-Id or generates one and attaches a
// tagged logger to the request context.
func RequestID(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)

			ctx := context.WithValue(r.Context(), loggerKey{}, log.With(zap.String("request_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recoverer answers a panic with the generic 500 envelope.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					LoggerFrom(r.Context(), log).Error("panic recovered", zap.Any("recover", rec), zap.Stack("stacktrace"))
					writeJSON(w, http.StatusInternalServerError, internalEnvelope())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog writes one entry per request, leveled by status class.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", metrics.RoutePattern(r)),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}

			lg := LoggerFrom(r.Context(), log)
			switch {
			case status >= 500:
				lg.Error("http access", fields...)
			case status >= 400:
				lg.Warn("http access", fields...)
			default:
				lg.Info("http access", fields...)
			}
		})
	}
}

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/infra/logging"
)

const traceHeader = "X-Trace-Id"

// TraceID tags the request context with an incoming X-Trace-Id or a fresh uuid,
// so handler logs and the access log share one id.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get(traceHeader)
		if tid == "" {
			tid = uuid.NewString()
		}
		w.Header().Set(traceHeader, tid)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), tid)))
	})
}

// RequestLog writes one zerolog access record per request. Status and size
// come from chi's WrapResponseWriter.
func RequestLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				ev := logging.With(r.Context(), logger).Info()
				if status >= http.StatusInternalServerError {
					ev = logging.With(r.Context(), logger).Error()
				}
				ev.Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("http_request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

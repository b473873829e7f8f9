package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bankrecon/internal/infrastructure/logger"
)

// RequestLogger writes one access log line per request. It must run after
// chi's RequestID so the id reaches handlers through the context.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				r = r.WithContext(logger.WithRequestID(r.Context(), id))
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			l := logger.FromContext(r.Context(), log)
			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = l.Error()
			case status >= http.StatusBadRequest:
				event = l.Warn()
			default:
				event = l.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Bool("replay", ww.Header().Get(ReplayHeader) == "true").
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

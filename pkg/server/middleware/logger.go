package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger stores a request-scoped logger in the request context and logs one
// line per completed request. It must run after chi's RequestID so the id is
// attached to every line the handlers write.
func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fields := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr)
			if id := chimiddleware.GetReqID(req.Context()); id != "" {
				fields = fields.Str("request_id", id)
			}
			reqLogger := fields.Logger()

			ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req.WithContext(reqLogger.WithContext(req.Context())))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := reqLogger.Info()
			if status >= http.StatusInternalServerError {
				event = reqLogger.Warn()
			}
			event.Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

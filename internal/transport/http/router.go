package httptransport

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"credrelay/internal/platform/privacy"
)

// NewRouter wires the review endpoints with the shared middleware stack.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/requests/pending", h.handlePending)
		r.Post("/requests/{id}/decision", h.handleDecision)
		r.Post("/requests/reject-all", h.handleRejectAll)
		r.Get("/records", h.handleRecords)
	})

	return r
}

// requestLogger logs each request through the shared slog logger so
// review traffic lands in the same stream as everything else.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", privacy.AnonymizeIP(clientIP(r)),
			)
		})
	}
}

// clientIP strips the port from RemoteAddr; RealIP middleware has
// already substituted forwarded addresses where present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

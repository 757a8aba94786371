// Package httpapi exposes the controller over JSON HTTP and a WebSocket
// endpoint for live panel updates.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mapcrown/mapcrown/internal/app"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
	"github.com/mapcrown/mapcrown/internal/push"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Controller *app.Controller
	Sessions   *app.SessionStore
	Push       *push.Gateway

	CookieName     string
	SessionTTL     time.Duration
	OriginPatterns []string
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.CookieName == "" {
		d.CookieName = "mapcrown_session"
	}
	h := &handlers{d: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.session)
		r.Get("/ws", h.websocket)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.NoCache)
			r.Get("/categories", h.categories)
			r.Get("/layers/{category}", h.layer)
			r.Post("/select", h.selectFeature)
			r.Get("/panel", h.panel)
			r.Get("/facts", h.facts)
			r.Post("/facts/next", h.nextFact)
			r.Get("/quiz/question", h.question)
			r.Post("/quiz/answer", h.answer)
			r.Get("/daily", h.daily)
			r.Post("/daily/answer", h.answerDaily)
			r.Get("/daily/export.xlsx", h.exportDaily)
		})
	})
	return r
}

// accessLog logs every request at debug level and records its duration
// under the matched route pattern.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestDurationMs.WithLabelValues(route, strconv.Itoa(status)).Observe(float64(time.Since(start).Milliseconds()))
		logRequest(r, route, status, time.Since(start))
	})
}

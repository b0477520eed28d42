package httpadapter

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/kirillkom/mail-check/internal/core/ports"
	"github.com/kirillkom/mail-check/internal/core/usecase"
	"github.com/kirillkom/mail-check/internal/observability/metrics"
)

type Options struct {
	// Metrics and BreakerStates are optional.
	Metrics       *metrics.HTTPServerMetrics
	BreakerStates func() map[string]string

	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
	MaxUploadBytes   int64

	SessionTTL     time.Duration
	CSRFKey        []byte
	CookieSecure   bool
	TrustedOrigins []string
}

type Router struct {
	gateway   ports.AnalysisGateway
	previewer ports.TextPreviewer
	opts      Options

	sessions  *SessionStore
	templates *template.Template
}

func NewRouter(gateway ports.AnalysisGateway, previewer ports.TextPreviewer, opts Options) (*Router, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 6 << 20
	}
	if len(opts.CSRFKey) == 0 {
		opts.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(opts.CSRFKey); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
	}
	if len(opts.CSRFKey) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(opts.CSRFKey))
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	rt := &Router{
		gateway:   gateway,
		previewer: previewer,
		opts:      opts,
		templates: templates,
	}
	rt.sessions = NewSessionStore(opts.SessionTTL, func(string) *Session {
		return &Session{Controller: usecase.NewSubmissionController(gateway, previewer)}
	})
	if opts.Metrics != nil {
		opts.Metrics.RegisterSessionGauge(rt.sessions.Count)
	}
	return rt, nil
}

// Close stops background session cleanup.
func (rt *Router) Close() {
	rt.sessions.Close()
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	if rt.opts.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.opts.Metrics.Middleware(routePattern, next)
		})
	}
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", rt.healthz)
	if rt.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.trafficControl)

		r.Route("/api", func(r chi.Router) {
			r.Post("/analyze", rt.apiAnalyze)
			r.Post("/feedback", rt.apiFeedback)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limitUIBody)
			r.Use(plaintextMarker)
			r.Use(csrf.Protect(
				rt.opts.CSRFKey,
				csrf.Secure(rt.opts.CookieSecure),
				csrf.Path("/"),
				csrf.HttpOnly(true),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.RequestHeader("X-CSRF-Token"),
				csrf.TrustedOrigins(rt.opts.TrustedOrigins),
				csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
			))

			r.Get("/", rt.index)
			r.Post("/mode", rt.selectMode)
			r.Post("/analyze", rt.analyze)
			r.Post("/reset", rt.reset)
			r.Post("/feedback/open", rt.openFeedback)
			r.Post("/feedback", rt.submitFeedback)
		})
	})

	return r
}

func (rt *Router) trafficControl(next http.Handler) http.Handler {
	limited := backpressureMiddleware(next, rt.opts.MaxInFlight, rt.opts.BackpressureWait)
	return rateLimitMiddleware(limited, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.opts.BreakerStates != nil {
		payload["backend_circuits"] = rt.opts.BreakerStates()
	}
	writeJSON(w, http.StatusOK, payload)
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	reason := "invalid CSRF token"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	http.Error(w, "Forbidden: "+reason, http.StatusForbidden)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app     *app.Controller
	surface *mapview.StateSurface
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	whois   WhoIser
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the reset endpoint open.
func New(a *app.Controller, surface *mapview.StateSurface, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.NewTestManager()
	}
	s := &Server{
		app:     a,
		surface: surface,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/state", s.handleState)
		r.Post("/geolocation", s.handleGeolocation)

		r.Get("/map", s.handleMap)
		r.Post("/map/click", s.handleMapClick)
		r.Put("/form/type", s.handleFormType)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleListWorkouts)
			r.Post("/", s.handleCreateWorkout)
			r.Get("/rows", s.handleRows)
			r.Get("/{id}", s.handleGetWorkout)
			r.Post("/{id}/focus", s.handleFocusWorkout)

			r.Group(func(r chi.Router) {
				if s.apiKey != "" {
					r.Use(APIKeyAuth(s.apiKey))
				}
				r.Delete("/", s.handleReset)
				r.Post("/import", s.handleImport)
			})
		})

		r.Get("/export", s.handleExport)
	})
}

// identity picks the tailnet lookup when a local client is set.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois != nil {
			TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
			return
		}
		dev.ServeHTTP(w, r)
	})
}

// SetTailscale resolves request identities through the tailnet.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// EnableMetrics serves the collectors in g at /metrics.
func (s *Server) EnableMetrics(g prometheus.Gatherer) {
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetFrontend mounts the embedded SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

// MountMCP serves an MCP streamable HTTP handler at /mcp. The API key, if
// set, is required.
func (s *Server) MountMCP(h http.Handler) {
	if s.apiKey != "" {
		h = APIKeyAuth(s.apiKey)(h)
	}
	s.router.Handle("/mcp", h)
}

// Package server exposes a concept map session over HTTP.
//
// One server owns one [session.Session]; the browser front end drives it
// through the JSON API mounted under /api.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/conceptmap/internal/metrics"
	"github.com/matzehuels/conceptmap/pkg/document"
	"github.com/matzehuels/conceptmap/pkg/session"
	"github.com/matzehuels/conceptmap/pkg/view"
)

// maxUploadBytes bounds a single multipart upload.
const maxUploadBytes = 20 << 20

// Options configures a Server.
type Options struct {
	Session     *session.Session
	Views       view.Store
	Logger      *log.Logger
	CORSOrigins []string

	// Metrics and Gatherer are optional; /metrics is only mounted when
	// Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server holds the HTTP handlers.
type Server struct {
	session *session.Session
	docs    *document.Collection
	views   view.Store
	logger  *log.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New creates a server. A nil view store falls back to memory.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	views := opts.Views
	if views == nil {
		views = view.NewMemoryStore()
	}
	return &Server{
		session: opts.Session,
		docs:    document.NewCollection(),
		views:   views,
		logger:  logger,
		metrics: opts.Metrics,
		opts:    opts,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.uploadDocuments)
			r.Get("/", s.listDocuments)
			r.Delete("/", s.clearDocuments)
		})

		r.Post("/generate", s.generate)
		r.Post("/refine", s.refineGlobal)
		r.Post("/undo", s.undo)
		r.Post("/expand-all", s.expandAll)

		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Post("/dive", s.dive)
			r.Post("/refine", s.refineNode)
			r.Post("/expand", s.expand)
			r.Post("/collapse", s.collapse)
		})

		r.Get("/graph", s.getGraph)
		r.Get("/visible", s.getVisible)
		r.Get("/status", s.getStatus)
		r.Get("/render", s.render)

		r.Route("/views", func(r chi.Router) {
			r.Get("/", s.listViews)
			r.Post("/", s.saveView)
			r.Get("/{viewID}", s.getView)
			r.Delete("/{viewID}", s.deleteView)
			r.Post("/{viewID}/load", s.loadView)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, ww.Status(), elapsed)
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// Package api serves the dashboard: the session log, recommendations and
// one shared countdown timer streamed as server-sent events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
	"github.com/pbaille/focusflow/internal/timer"
)

// Advisor is the recommendation side of the dashboard.
type Advisor interface {
	Recommend(ctx context.Context, task domain.TaskContext) domain.SessionRecommendation
	AdaptAfterSession(ctx context.Context, perf domain.PerformanceData, task domain.TaskContext) domain.Adaptation
	WeeklyInsights() domain.WeeklyInsights
}

// Server handles HTTP requests for the dashboard API
type Server struct {
	history domain.SessionLog
	advisor Advisor
	timing  config.Timer
	clock   timer.Clock
	log     *slog.Logger
	now     func() time.Time

	// ctx outlives requests; active timers run under it.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active *timer.Timer
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock sets the clock used by the shared timer and new sittings.
func WithClock(c timer.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// New creates a dashboard server.
func New(history domain.SessionLog, advisor Advisor, timing config.Timer, opts ...Option) *Server {
	s := &Server{
		history: history,
		advisor: advisor,
		timing:  timing,
		clock:   timer.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = observability.OrDefault(s.log)
	s.now = s.clock.Now
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/health", s.health)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.addSession)
		r.Get("/recent", s.recentSessions)
	})
	r.Get("/stats", s.stats)
	r.Get("/insights", s.insights)
	r.Post("/recommend", s.recommend)
	r.Post("/adapt", s.adapt)

	r.Route("/timer", func(r chi.Router) {
		r.Get("/", s.timerStatus)
		r.Post("/", s.startTimer)
		r.Delete("/", s.stopTimer)
		r.Post("/pause", s.pauseTimer)
		r.Post("/resume", s.resumeTimer)
		r.Get("/events", s.timerEvents)
	})
	return r
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dashboard listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close interrupts the shared timer, ending any event streams.
func (s *Server) Close() {
	s.cancel()
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		observability.FromContext(r.Context(), s.log).Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/usecase"
)

const requestTimeout = 30 * time.Second

// Server is the admin HTTP API: login, dispatch triggers, stats and the user export.
type Server struct {
	statsUC    usecase.StatsUseCase
	exportUC   usecase.ExportUseCase
	dispatchUC usecase.DispatchUseCase
	apiKey     string
	auth       *AuthManager
	loc        *time.Location
	log        *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	exportUC usecase.ExportUseCase,
	dispatchUC usecase.DispatchUseCase,
	apiKey string,
	auth *AuthManager,
	loc *time.Location,
	logger *zerolog.Logger,
) *Server {
	if loc == nil {
		loc = time.UTC
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		statsUC:    statsUC,
		exportUC:   exportUC,
		dispatchUC: dispatchUC,
		apiKey:     apiKey,
		auth:       auth,
		loc:        loc,
		log:        &l,
	}
}

// Routes builds the chi router. /health and /metrics stay unauthenticated.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		TraceID,
		RequestLog(s.log),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/broadcasts", s.handleBroadcast)
			r.Post("/reminders", s.handleReminders)
			r.Get("/stats", s.handleStats)
			r.Get("/users/export", s.handleExport)
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("admin http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Package server exposes the chat router over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	config  model.ServerConfig
	handler *Handler
	metrics *Metrics
	http    *http.Server
}

func NewServer(cfg model.ServerConfig, handler *Handler, metrics *Metrics) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		handler: handler,
		metrics: metrics,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(chimiddleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Post("/chat", s.handler.Chat)
	s.router.Post("/api/chat", s.handler.Chat)

	s.router.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handler.CreateSession)
		r.Delete("/{id}", s.handler.ResetSession)
		r.Get("/{id}/cart", s.handler.GetCart)
		r.Delete("/{id}/cart", s.handler.ClearCart)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	if s.config.StaticDir != "" {
		if info, err := os.Stat(s.config.StaticDir); err == nil && info.IsDir() {
			s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
		} else {
			logx.Warn().Str("dir", s.config.StaticDir).Msg("static directory not found, serving API only")
		}
	}
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops; a graceful Shutdown is not an error.
func (s *Server) Start() error {
	logx.Info().Str("address", s.http.Addr).Msg("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logx.Debug().
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// Package httpx is a thin wrapper over chi + stdlib http.Server
package httpx

import (
	"context"
	"net/http"
	"time"

	"tripline/internal/platform/config"
	"tripline/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the listener lifecycle around a chi mux
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *http.Server
}

// NewServer builds a server; opts receive the *chi.Mux so callers can mount routes/mw
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("PORT", ":4000")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr: addr,
		mux:  m,
		srv: &http.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Mux exposes the router for mounting
func (s *Server) Mux() *chi.Mux { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until Shutdown or a listener error
func (s *Server) Run(_ context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

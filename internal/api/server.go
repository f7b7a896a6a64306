// Package api serves the Space Dodge score backend over HTTP: score
// submission, the leaderboard, accounts and tokens, coins and upgrades, and a
// WebSocket feed of newly saved scores.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-dodge/internal/storage"
)

// Server is the HTTP backend.
type Server struct {
	store  *storage.Store
	hub    *Hub
	logger *log.Logger
}

// New creates a server backed by store. A nil logger discards output.
func New(store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		store:  store,
		hub:    NewHub(logger.WithPrefix("live")),
		logger: logger,
	}
}

// Hub returns the live feed hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/scoreSave", s.handleScoreSave)
	mux.HandleFunc("GET /api/scores", s.handleScores)
	mux.Handle("GET /api/scores/live", s.hub)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.Handle("POST /api/logout", s.requireUser(s.handleLogout))
	mux.Handle("GET /api/getUserCoin", s.requireUser(s.handleUserCoin))
	mux.Handle("GET /api/upgrades", s.requireUser(s.handleUpgrades))
	mux.Handle("POST /api/upgrades", s.requireUser(s.handleBuyUpgrade))

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api: cannot listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping API server")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown failed: %w", err)
	}
	return nil
}

// Package api exposes the backtester over HTTP. Each request runs an
// isolated backtest; no portfolio state is shared between requests.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/streaklab/streakback/internal/logger"
	"github.com/streaklab/streakback/pkg/marketdata"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server hosts the analyze endpoint.
type Server struct {
	provider marketdata.Provider
	log      *logger.Logger
	http     *http.Server
}

// NewServer creates a Server bound to addr, running backtests against the
// given price provider.
func NewServer(addr string, provider marketdata.Provider, log *logger.Logger) *Server {
	s := &Server{
		provider: provider,
		log:      log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe starts the HTTP listener and blocks until the context is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

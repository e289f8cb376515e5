package http

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dthai91/edx-platform/internal/platform/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Server owns the HTTP listener lifecycle: Run blocks until the listener
// fails or a termination signal arrives, then drains in-flight requests
// before returning.
type Server struct {
	log     *logger.Logger
	handler http.Handler
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{
		log:     cfg.Log,
		handler: NewRouter(cfg),
	}
}

func (s *Server) Run(address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.log != nil {
		s.log.Info("shutdown signal received, draining requests")
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

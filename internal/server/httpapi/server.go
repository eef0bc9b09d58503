package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/photobridge/authserver/internal/logging"
)

// Server owns the HTTP listener and its graceful shutdown.
type Server struct {
	address string
	logger  logging.Logger
	handler *Handler
}

// NewServer constructs a Server around the given handler.
func NewServer(address string, l logging.Logger, h *Handler) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		handler: h,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.handler.Register(mux)

	srv := &http.Server{
		Addr:              s.address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scylladb/go-log"
)

// Server exposes registered metrics over HTTP at /metrics.
type Server struct {
	server *http.Server
	logger log.Logger
	errCh  chan error
}

// NewServer returns a Server listening on addr once started.
func NewServer(addr string, logger log.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		errCh:  make(chan error, 1),
	}
}

// Start binds the listener and serves requests in the background.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrap(err, "prometheus server start")
	}
	s.logger.Info(ctx, "Starting Prometheus server", "address", l.Addr().String())

	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- errors.Wrap(err, "prometheus server")
		}
		close(s.errCh)
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.server.Shutdown(tctx); err != nil {
		s.logger.Info(ctx, "Closing Prometheus server failed", "error", err)
	}
	if err := <-s.errCh; err != nil {
		s.logger.Error(ctx, "Prometheus server failed", "error", err)
	}
}

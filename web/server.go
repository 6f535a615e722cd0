package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/svcscaffold/observe"
)

// Server runs an HTTP server until its context ends, then shuts it down
// and runs the registered shutdown hooks in reverse order.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          observe.Logger
	hooks           []func(context.Context) error
}

// NewServer creates a Server for handler on addr.
func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger observe.Logger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// OnShutdown registers fn to run after the listener closes.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.hooks = append(s.hooks, fn)
}

// Run listens on the configured address and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "http server listening", observe.Field{Key: "addr", Value: ln.Addr().String()})
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		s.logger.Info(shutdownCtx, "http server shutting down")
		errs := []error{s.srv.Shutdown(shutdownCtx)}
		for i := len(s.hooks) - 1; i >= 0; i-- {
			errs = append(errs, s.hooks[i](shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

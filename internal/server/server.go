// Package server runs the inbound HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fd1az/p2p-arbitrage/internal/logger"
	"github.com/fd1az/p2p-arbitrage/internal/ratelimit"
	"github.com/fd1az/p2p-arbitrage/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerMinute int
	CORSOrigins       []string
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies middleware.TrustedProxies
}

// Server is the HTTP API server.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             logger.LoggerInterface
}

// New wraps mux in the middleware chain. Outermost first: panic recovery,
// request id, tracing, logging, CORS, rate limiting.
func New(cfg Config, mux http.Handler, log logger.LoggerInterface) *Server {
	limiter := ratelimit.NewKeyed(cfg.RequestsPerMinute, 10*time.Minute)

	var h http.Handler = mux
	h = middleware.RateLimit(limiter, cfg.TrustedProxies)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	h = middleware.Logging(log)(h)
	h = otelhttp.NewHandler(h, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	h = middleware.RequestID(h)
	h = middleware.Recover(log)(h)

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer.BaseContext = func(net.Listener) context.Context {
		return context.WithoutCancel(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "api server started", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "api server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}

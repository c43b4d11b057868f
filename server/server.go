// Package server exposes an adapter over HTTP using Echo.
// It accepts adapter requests on a single POST route, runs them through an
// ExecuteFunc and writes the envelope reported through the callback.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/gaborage/adapter-bricks/config"
	"github.com/gaborage/adapter-bricks/logger"
)

// HealthPath is the liveness route. It is never logged.
const HealthPath = "/health"

// Server represents the adapter HTTP bridge.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config
	logger     logger.Logger
	path       string

	mu       sync.Mutex
	listener net.Listener
}

// normalizePath ensures the path starts with "/" and has no trailing "/"
// unless it is the root path.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// New creates the bridge server. Adapter requests posted to cfg.Server.Path
// are handed to execute.
func New(cfg *config.Config, log logger.Logger, execute ExecuteFunc) *Server {
	if log == nil {
		log = logger.Nop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		errorHandler(err, c, log)
	}

	SetupMiddlewares(e, log, cfg)

	s := &Server{
		echo:   e,
		cfg:    cfg,
		logger: log,
		path:   normalizePath(cfg.Server.Path),
		httpServer: &http.Server{
			Handler:      e,
			ReadTimeout:  cfg.Server.Timeout.Read,
			WriteTimeout: cfg.Server.Timeout.Write,
		},
	}

	e.GET(HealthPath, s.healthCheck)
	e.POST(s.path, Bridge(log, execute))

	log.Debug().
		Str("adapter_path", s.path).
		Str("health_path", HealthPath).
		Msg("Server paths configured")

	return s
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Path returns the route adapter requests are accepted on.
func (s *Server) Path() string {
	return s.path
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

// ListenAddr returns the bound address once Start is listening, or nil.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start starts the HTTP server and blocks until it is shut down.
// A graceful shutdown returns http.ErrServerClosed.
func (s *Server) Start() error {
	addr := s.Address()

	s.logger.Info().
		Str("service", s.cfg.App.Name).
		Str("version", s.cfg.App.Version).
		Str("env", s.cfg.App.Env).
		Str("address", addr).
		Str("adapter_path", s.path).
		Msg("Starting server...")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server with the given context.
// A server shut down before Start never begins serving.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run starts the server and shuts it down once ctx is done, waiting at most
// the configured shutdown timeout for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		s.logger.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.Timeout.Shutdown)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

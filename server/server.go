// Package server is the engine's embeddable public entry point: it
// accepts connections on a net.Listener and spawns one conn.Connection
// goroutine per accepted connection, sharing a single Router, middleware
// chain, logger, and metrics registry across all of them.
package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/lzldev/aou-http/internal/config"
	"github.com/lzldev/aou-http/internal/conn"
	"github.com/lzldev/aou-http/internal/metrics"
	"github.com/lzldev/aou-http/internal/middleware"
	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"go.uber.org/zap"
)

// Re-exported so an embedding application only needs to import this one
// package for the common path.
type (
	Request     = reqparse.Request
	Response    = response.Response
	HandlerFunc = router.HandlerFunc
	Middleware  = middleware.Middleware
	Config      = config.ServerConfig
)

// Server owns the listener and the resources shared read-only across
// every connection goroutine it spawns.
type Server struct {
	cfg        Config
	router     *router.Router
	middleware Middleware
	logger     *zap.Logger
	metrics    *metrics.Metrics
	static     *config.StaticHeaders

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closing  chan struct{}
}

// New builds a Server. mw may be nil for no middleware beyond the routed
// handler itself.
func New(cfg Config, r *router.Router, mw Middleware, logger *zap.Logger, m *metrics.Metrics) *Server {
	return &Server{
		cfg:        cfg,
		router:     r,
		middleware: mw,
		logger:     logger,
		metrics:    m,
		static:     config.NewStaticHeaders(cfg.StaticHeaders),
		closing:    make(chan struct{}),
	}
}

// StaticHeaders exposes the server's atomically swappable static-header
// map, for wiring into config.WatchStaticHeaders.
func (s *Server) StaticHeaders() *config.StaticHeaders {
	return s.static
}

// ListenAndServe binds cfg.BindHost:cfg.BindPort and accepts connections
// until Shutdown is called or Accept returns a fatal error.
func (s *Server) ListenAndServe() error {
	addr := net.JoinHostPort(s.cfg.BindHost, strconv.Itoa(s.cfg.BindPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	select {
	case <-s.closing:
		ln.Close()
		return nil
	default:
	}

	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))

	var sem chan struct{}
	if s.cfg.MaxConnections > 0 {
		sem = make(chan struct{}, s.cfg.MaxConnections)
	}

	connID := 0
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}

		if sem != nil {
			sem <- struct{}{}
		}
		connID++
		id := strconv.Itoa(connID)

		s.wg.Add(1)
		go func(nc net.Conn, id string) {
			defer s.wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			c := conn.New(nc, conn.Options{
				ReadTimeout:      s.cfg.ReadTimeout,
				KeepAliveTimeout: s.cfg.KeepAliveTimeout,
				ReadBufferSize:   s.cfg.ReadBufferSize,
				Router:           s.router,
				Middleware:       s.middleware,
				StaticHeaders:    s.static.Get,
				Logger:           s.logger,
				Metrics:          s.metrics,
			}, id)
			c.Serve()
		}(nc, id)
	}
}

// Shutdown stops accepting new connections and waits, up to ctx's
// deadline, for in-flight connections to finish their current request.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.closing)

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

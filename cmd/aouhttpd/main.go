// Command aouhttpd is a small demo binary wiring the engine's packages
// together into a runnable server: a handful of routes, the recovery and
// access-log middleware, structured logging, and Prometheus metrics on a
// second listener.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lzldev/aou-http/internal/bufpool"
	"github.com/lzldev/aou-http/internal/config"
	"github.com/lzldev/aou-http/internal/logging"
	"github.com/lzldev/aou-http/internal/metrics"
	"github.com/lzldev/aou-http/internal/middleware"
	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"github.com/lzldev/aou-http/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(
		config.WithBind("0.0.0.0", 8080),
	)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.StaticHeadersFile != "" {
		headers, err := config.LoadHeadersFile(cfg.StaticHeadersFile)
		if err != nil {
			logger.Warn("static headers file failed to load", zap.Error(err))
		} else {
			cfg.StaticHeaders = headers
		}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	pool := bufpool.New()

	r := buildRoutes(pool)
	mw := middleware.Chain(middleware.Recovery(logger), middleware.AccessLog(logger))

	srv := server.New(cfg, r, mw, logger, m)

	if cfg.StaticHeadersFile != "" {
		stop, err := config.WatchStaticHeaders(cfg.StaticHeadersFile, srv.StaticHeaders(), config.LoadHeadersFile, logger)
		if err != nil {
			logger.Warn("static headers watch failed to start", zap.Error(err))
		} else {
			defer stop()
		}
	}

	if cfg.MetricsEnabled {
		metricsSrv := &http.Server{
			Addr:    "0.0.0.0:9090",
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
		defer metricsSrv.Close()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	logger.Info("server started",
		zap.String("bind_host", cfg.BindHost),
		zap.Int("bind_port", cfg.BindPort),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("server stopped unexpectedly", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server gracefully stopped")
}

func buildRoutes(pool *bufpool.Pool) *router.Router {
	r := router.New()

	mustInsert(r, "/", "GET", func(req *reqparse.Request) (*response.Response, error) {
		return response.Text(200, "aou-http is running"), nil
	})

	mustInsert(r, "/healthz", "GET", func(req *reqparse.Request) (*response.Response, error) {
		return response.Text(200, "ok"), nil
	})

	mustInsert(r, "/echo/:word", "GET", func(req *reqparse.Request) (*response.Response, error) {
		buf := pool.Get(bufpool.Size2KB)
		defer pool.Put(buf)
		buf.WriteString(req.Params["word"])
		return response.Text(200, buf.String()), nil
	})

	mustInsert(r, "/panic", "GET", func(req *reqparse.Request) (*response.Response, error) {
		panic("demo panic")
	})

	return r
}

func mustInsert(r *router.Router, pattern, method string, h router.HandlerFunc) {
	if err := r.Insert(pattern, method, h); err != nil {
		panic(err)
	}
}

// Package config builds the engine's ServerConfig from compiled-in
// defaults, AOUHTTP_* environment variables, and functional options
// applied in that order, and can hot-reload a static-headers file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ServerConfig is every knob the connection orchestrator, response
// writer, and metrics layer read at startup (and, for StaticHeaders, for
// the lifetime of the process if StaticHeadersFile enables hot reload).
type ServerConfig struct {
	BindHost string
	BindPort int

	ReadTimeout      time.Duration
	KeepAliveTimeout time.Duration

	StaticHeaders     map[string]string
	StaticHeadersFile string

	MaxConnections int
	ReadBufferSize int
	MetricsEnabled bool
	LogLevel       string
}

// Default returns the engine's compiled-in defaults.
func Default() ServerConfig {
	return ServerConfig{
		BindHost:         "0.0.0.0",
		BindPort:         8080,
		ReadTimeout:      5 * time.Millisecond,
		KeepAliveTimeout: 200 * time.Millisecond,
		StaticHeaders:    map[string]string{},
		MaxConnections:   0,
		ReadBufferSize:   4096,
		MetricsEnabled:   true,
		LogLevel:         "info",
	}
}

// Option mutates a ServerConfig being built by Load.
type Option func(*ServerConfig)

// WithBind sets the listen address.
func WithBind(host string, port int) Option {
	return func(c *ServerConfig) { c.BindHost = host; c.BindPort = port }
}

// WithTimeouts sets the two-timeout dichotomy's durations.
func WithTimeouts(read, keepAlive time.Duration) Option {
	return func(c *ServerConfig) { c.ReadTimeout = read; c.KeepAliveTimeout = keepAlive }
}

// WithStaticHeaders replaces the static-header map every response is
// merged against.
func WithStaticHeaders(headers map[string]string) Option {
	return func(c *ServerConfig) { c.StaticHeaders = headers }
}

// WithStaticHeadersFile enables hot-reloading the static-header map from
// a file WatchStaticHeaders watches.
func WithStaticHeadersFile(path string) Option {
	return func(c *ServerConfig) { c.StaticHeadersFile = path }
}

// WithMaxConnections bounds concurrent connections; 0 means unlimited.
func WithMaxConnections(n int) Option {
	return func(c *ServerConfig) { c.MaxConnections = n }
}

// WithLogLevel sets the logger's minimum level.
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) { c.LogLevel = level }
}

// Load builds a ServerConfig from defaults, then AOUHTTP_* environment
// variables, then opts, in that order — each stage may override the
// previous one.
func Load(opts ...Option) (ServerConfig, error) {
	cfg := Default()

	if err := applyEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, nil
}

func applyEnv(c *ServerConfig) error {
	if v, ok := os.LookupEnv("AOUHTTP_BIND_HOST"); ok {
		c.BindHost = v
	}
	if v, ok := os.LookupEnv("AOUHTTP_BIND_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: AOUHTTP_BIND_PORT: %w", err)
		}
		c.BindPort = port
	}
	if v, ok := os.LookupEnv("AOUHTTP_READ_TIMEOUT_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: AOUHTTP_READ_TIMEOUT_MS: %w", err)
		}
		c.ReadTimeout = time.Duration(ms) * time.Millisecond
	}
	if v, ok := os.LookupEnv("AOUHTTP_KEEP_ALIVE_TIMEOUT_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: AOUHTTP_KEEP_ALIVE_TIMEOUT_MS: %w", err)
		}
		c.KeepAliveTimeout = time.Duration(ms) * time.Millisecond
	}
	if v, ok := os.LookupEnv("AOUHTTP_STATIC_HEADERS_FILE"); ok {
		c.StaticHeadersFile = v
	}
	if v, ok := os.LookupEnv("AOUHTTP_MAX_CONNECTIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: AOUHTTP_MAX_CONNECTIONS: %w", err)
		}
		c.MaxConnections = n
	}
	if v, ok := os.LookupEnv("AOUHTTP_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// StaticHeaders is an atomically swappable static-header map, read by the
// response writer on every request and replaced wholesale by
// WatchStaticHeaders on each file change.
type StaticHeaders struct {
	mu      sync.RWMutex
	headers map[string]string
}

// NewStaticHeaders wraps an initial map for concurrent Get/Set access.
func NewStaticHeaders(initial map[string]string) *StaticHeaders {
	if initial == nil {
		initial = map[string]string{}
	}
	return &StaticHeaders{headers: initial}
}

// Get returns the current map. Callers must not mutate it.
func (s *StaticHeaders) Get() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers
}

func (s *StaticHeaders) set(headers map[string]string) {
	s.mu.Lock()
	s.headers = headers
	s.mu.Unlock()
}

// WatchStaticHeaders watches path for writes and reloads it into sh via
// loadFn on each event, until ctx-like stop channel closes. It runs until
// the returned stop function is called or the watcher errors fatally.
func WatchStaticHeaders(path string, sh *StaticHeaders, loadFn func(path string) (map[string]string, error), logger *zap.Logger) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				headers, loadErr := loadFn(path)
				if loadErr != nil {
					logger.Warn("static headers reload failed", zap.String("path", path), zap.Error(loadErr))
					continue
				}
				sh.set(headers)
				logger.Info("static headers reloaded", zap.String("path", path), zap.Int("count", len(headers)))
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("static headers watcher error", zap.Error(watchErr))
			case <-done:
				return
			}
		}
	}()

	return func() error {
		close(done)
		return watcher.Close()
	}, nil
}

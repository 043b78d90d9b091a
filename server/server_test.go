package server

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lzldev/aou-http/internal/config"
	"github.com/lzldev/aou-http/internal/metrics"
	"github.com/lzldev/aou-http/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func testServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()

	r := router.New()
	if err := r.Insert("/ping", "GET", func(req *Request) (*Response, error) {
		return response200(), nil
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	cfg := config.Default()
	cfg.ReadTimeout = 200 * time.Millisecond
	cfg.KeepAliveTimeout = 200 * time.Millisecond

	srv := New(cfg, r, nil, zap.NewNop(), metrics.New(prometheus.NewRegistry()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	return srv, ln
}

func response200() *Response {
	return &Response{Status: 200, Body: []byte("pong")}
}

func TestServeAcceptsAndRespondsToRequests(t *testing.T) {
	srv, ln := testServer(t)

	go srv.Serve(ln)
	defer srv.Shutdown(context.Background())

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte("GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}
}

func TestShutdownStopsAcceptingNewConnections(t *testing.T) {
	srv, ln := testServer(t)
	addr := ln.Addr().String()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("Serve returned error after Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Fatal("expected dial to fail after shutdown")
	}
}

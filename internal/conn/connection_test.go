package conn

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lzldev/aou-http/internal/metrics"
	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestOptions(t *testing.T, r *router.Router) Options {
	t.Helper()
	return Options{
		ReadTimeout:      200 * time.Millisecond,
		KeepAliveTimeout: 200 * time.Millisecond,
		ReadBufferSize:   256,
		Router:           r,
		Logger:           zap.NewNop(),
		Metrics:          metrics.New(prometheus.NewRegistry()),
	}
}

func TestServeHandlesSingleRequestThenCloses(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	r := router.New()
	_ = r.Insert("/hello", "GET", func(req *reqparse.Request) (*response.Response, error) {
		return response.Text(200, "hi"), nil
	})

	opts := newTestOptions(t, r)
	c := New(server, opts, "test-1")

	done := make(chan struct{})
	go func() {
		c.Serve()
		close(done)
	}()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Write([]byte("GET /hello HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 200") {
		t.Fatalf("status line = %q", line)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Connection: close")
	}
}

func TestServeReturns404ForUnmatchedRoute(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	opts := newTestOptions(t, router.New())
	c := New(server, opts, "test-2")

	go c.Serve()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	client.Write([]byte("GET /missing HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))

	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 404") {
		t.Fatalf("status line = %q", line)
	}
}

func TestServeClosesSilentlyOnReadTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	opts := newTestOptions(t, router.New())
	opts.ReadTimeout = 20 * time.Millisecond
	c := New(server, opts, "test-3")

	done := make(chan struct{})
	go func() {
		c.Serve()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not close on read timeout")
	}
}

func TestServeRejectsBadHTTPVersion(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	opts := newTestOptions(t, router.New())
	c := New(server, opts, "test-4")

	go c.Serve()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	client.Write([]byte("GET / HTTP/1.0\r\nHost: x\r\n\r\n"))

	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.HasPrefix(line, "HTTP/1.1 505") {
		t.Fatalf("status line = %q", line)
	}
}

// Package conn runs the per-connection read/parse/dispatch/respond loop:
// the engine's only goroutine-facing entry point once a connection has
// been accepted.
package conn

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/lzldev/aou-http/internal/aouerr"
	"github.com/lzldev/aou-http/internal/metrics"
	"github.com/lzldev/aou-http/internal/middleware"
	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"go.uber.org/zap"
)

// Options configures a Connection's read/dispatch behavior. It is
// constructed once per listener and shared read-only across every
// accepted connection.
type Options struct {
	ReadTimeout      time.Duration
	KeepAliveTimeout time.Duration
	ReadBufferSize   int

	Router     *router.Router
	Middleware middleware.Middleware // pre-composed chain, applied around every matched handler

	// StaticHeaders returns the current static-header map to merge into
	// every response; called fresh on each response so a config watcher
	// can hot-swap it mid-lifetime.
	StaticHeaders func() map[string]string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Connection serves one accepted net.Conn until either side closes it or
// it is aborted as malformed.
type Connection struct {
	conn   net.Conn
	opts   Options
	connID string
}

// New wraps an accepted connection. connID is an opaque identifier used
// only for log correlation.
func New(nc net.Conn, opts Options, connID string) *Connection {
	return &Connection{conn: nc, opts: opts, connID: connID}
}

// Serve runs the read/parse/dispatch/respond loop until the connection
// closes. It always closes the underlying net.Conn before returning.
func (c *Connection) Serve() {
	defer c.conn.Close()

	if c.opts.Metrics != nil {
		c.opts.Metrics.ConnectionsTotal.Inc()
		c.opts.Metrics.ConnectionsActive.Inc()
		defer c.opts.Metrics.ConnectionsActive.Dec()
	}

	c.opts.Logger.Info("connection accepted",
		zap.String("conn_id", c.connID),
		zap.String("remote_addr", c.conn.RemoteAddr().String()),
	)
	defer c.opts.Logger.Info("connection closed", zap.String("conn_id", c.connID))

	w := bufio.NewWriter(c.conn)

	for c.serveOneRequest(w) {
	}
}

// serveOneRequest reads, parses, and responds to exactly one request. It
// returns true if the caller should loop for another request on the same
// connection.
func (c *Connection) serveOneRequest(w *bufio.Writer) bool {
	buf := make([]byte, 0, c.readBufferSize())
	state := reqparse.StartState()
	iteration := 0

	for {
		iteration++
		deadline := c.opts.KeepAliveTimeout
		if iteration == 1 {
			deadline = c.opts.ReadTimeout
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			c.handleTerminal(w, aouerr.IOError(err))
			return false
		}

		n, readErr := c.readMore(&buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			switch {
			case isTimeout(readErr):
				c.handleTerminal(w, aouerr.Timeout())
			default:
				c.handleTerminal(w, aouerr.IOError(readErr))
			}
			return false
		}

		peerClosed := n == 0 && (readErr == nil || errors.Is(readErr, io.EOF))
		if peerClosed && len(buf) == 0 {
			c.handleTerminal(w, aouerr.EOF())
			return false
		}
		// A peer close with bytes already buffered re-parses the same
		// buf/state pair that was just classified Incomplete. That
		// reproduces the identical ReadUntil, which the non-progress guard
		// below turns into "incomplete twice" instead of looping forever on
		// a connection that can never grow its buffer again.

		status := reqparse.Parse(buf, state)

		switch status.Kind {
		case reqparse.StatusSuccess:
			return c.handleSuccess(w, status.Request)

		case reqparse.StatusMalformed:
			statusCode := 400
			if status.Reason == reqparse.ErrInvalidHTTPVersion.Error() {
				statusCode = 505
			}
			c.handleTerminal(w, aouerr.Malformed(statusCode, status.Reason))
			return false

		case reqparse.StatusIncomplete:
			if state.ReadUntil != -1 && status.State.ReadUntil == state.ReadUntil {
				c.handleTerminal(w, aouerr.Malformed(400, "incomplete twice"))
				return false
			}
			buf = status.Buf
			state = status.State
		}
	}
}

// readMore appends whatever bytes are currently available into *buf and
// returns the number of bytes read.
func (c *Connection) readMore(buf *[]byte) (int, error) {
	chunk := make([]byte, c.readBufferSize())
	n, err := c.conn.Read(chunk)
	if n > 0 {
		*buf = append(*buf, chunk[:n]...)
	}
	return n, err
}

func (c *Connection) readBufferSize() int {
	if c.opts.ReadBufferSize > 0 {
		return c.opts.ReadBufferSize
	}
	return 4096
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// handleSuccess dispatches a successfully parsed request to the route
// matcher and middleware chain, writes the response, and reports whether
// the connection should be reused.
func (c *Connection) handleSuccess(w *bufio.Writer, req *reqparse.Request) bool {
	start := time.Now()

	path := req.Path()
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}

	handler, params, found := c.opts.Router.Match(req.MethodString(), path)
	if !found {
		resp := response.Text(404, "Not Found")
		c.writeResponse(w, resp)
		c.recordRequest(resp.Status, time.Since(start))
		return req.KeepAlive()
	}
	req.Params = params

	if c.opts.Middleware != nil {
		handler = c.opts.Middleware(handler)
	}

	resp, err := handler(req)
	if err != nil {
		handlerErr := aouerr.FromHandlerError(err)
		resp = response.Text(handlerErr.Status, handlerErr.Message)
		c.opts.Logger.Error("handler returned an error",
			zap.String("conn_id", c.connID),
			zap.String("method", req.MethodString()),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	if resp == nil {
		resp = response.Text(204, "")
	}

	c.writeResponse(w, resp)
	c.recordRequest(resp.Status, time.Since(start))

	return req.KeepAlive() && err == nil
}

func (c *Connection) writeResponse(w *bufio.Writer, resp *response.Response) {
	var static map[string]string
	if c.opts.StaticHeaders != nil {
		static = c.opts.StaticHeaders()
	}
	if err := response.Write(w, resp, static); err != nil {
		c.opts.Logger.Warn("failed writing response", zap.String("conn_id", c.connID), zap.Error(err))
	}
}

func (c *Connection) recordRequest(status int, duration time.Duration) {
	if c.opts.Metrics == nil {
		return
	}
	c.opts.Metrics.RequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	c.opts.Metrics.RequestDuration.Observe(duration.Seconds())
}

// handleTerminal logs every terminal outcome and, for Malformed ones,
// writes a wire response before the caller closes the connection.
func (c *Connection) handleTerminal(w *bufio.Writer, err *aouerr.Error) {
	fields := []zap.Field{
		zap.String("conn_id", c.connID),
		zap.String("error_kind", err.Kind.String()),
	}
	switch err.Kind {
	case aouerr.KindTimeout, aouerr.KindEOF:
		c.opts.Logger.Info("connection ended", fields...)
	case aouerr.KindMalformed:
		c.opts.Logger.Warn("malformed request", append(fields, zap.String("reason", err.Message))...)
	default:
		c.opts.Logger.Error("connection error", append(fields, zap.Error(err))...)
	}

	if c.opts.Metrics != nil {
		c.opts.Metrics.ParseErrorsTotal.WithLabelValues(err.Kind.String()).Inc()
	}

	if err.Kind != aouerr.KindMalformed {
		return
	}
	c.writeResponse(w, response.Text(err.Status, err.Message))
}

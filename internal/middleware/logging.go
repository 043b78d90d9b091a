package middleware

import (
	"time"

	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"go.uber.org/zap"
)

// AccessLog returns a middleware that emits one structured log line per
// completed request: method, path, status, duration, bytes written.
func AccessLog(logger *zap.Logger) Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(req *reqparse.Request) (*response.Response, error) {
			start := time.Now()
			resp, err := next(req)
			duration := time.Since(start)

			status := 0
			bytes := 0
			if resp != nil {
				status = resp.Status
				bytes = len(resp.Body)
			}

			fields := []zap.Field{
				zap.String("method", req.MethodString()),
				zap.String("path", req.Path()),
				zap.Int("status", status),
				zap.Float64("duration_ms", float64(duration)/float64(time.Millisecond)),
				zap.Int("bytes", bytes),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Warn("request completed with error", fields...)
				return resp, err
			}
			logger.Info("request completed", fields...)
			return resp, err
		}
	}
}

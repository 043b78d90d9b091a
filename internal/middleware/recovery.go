package middleware

import (
	"fmt"

	"github.com/lzldev/aou-http/internal/reqparse"
	"github.com/lzldev/aou-http/internal/response"
	"github.com/lzldev/aou-http/internal/router"
	"go.uber.org/zap"
)

// Recovery converts a panic inside the wrapped handler into a 500
// response instead of tearing down the connection goroutine. It is the
// only place in the engine that recovers from a panic.
func Recovery(logger *zap.Logger) Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(req *reqparse.Request) (resp *response.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.Any("recovered", rec),
						zap.String("method", req.MethodString()),
						zap.String("path", req.Path()),
					)
					resp = response.Text(500, "Internal Server Error")
					err = fmt.Errorf("recovered panic: %v", rec)
				}
			}()
			return next(req)
		}
	}
}

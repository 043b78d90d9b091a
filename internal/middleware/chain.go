// Package middleware composes wrappers around a router.HandlerFunc and
// ships the two reference middlewares the engine always runs: panic
// recovery and access logging.
package middleware

import "github.com/lzldev/aou-http/internal/router"

// Middleware wraps a HandlerFunc to produce another one.
type Middleware func(router.HandlerFunc) router.HandlerFunc

// Chain composes mw outer-to-inner: Chain(a, b, c)(h) calls a, then b, then
// c, then h.
func Chain(mw ...Middleware) Middleware {
	return func(final router.HandlerFunc) router.HandlerFunc {
		handler := final
		for i := len(mw) - 1; i >= 0; i-- {
			handler = mw[i](handler)
		}
		return handler
	}
}

// Package ginctx resolves the dimension context for every gin request and
// stores it on the gin context.
package ginctx

import (
	"github.com/gin-gonic/gin"

	dimensions "github.com/goliatone/go-dimensions"
)

// ContextKey is the gin context key holding the resolved dimensions.Result.
const ContextKey = "dimensions.result"

// TargetHeaderPrefix prefixes response headers carrying target values when
// WithTargetHeaders is enabled, e.g. X-Dimension-Language: de.
const TargetHeaderPrefix = "X-Dimension-"

type middlewareConfig struct {
	targetHeaders bool
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithTargetHeaders writes one response header per target dimension.
func WithTargetHeaders() MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.targetHeaders = true
	}
}

// Middleware resolves each request against resolver before the handler runs.
// A nil resolver disables the middleware.
func Middleware(resolver *dimensions.Resolver, opts ...MiddlewareOption) gin.HandlerFunc {
	cfg := middlewareConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return func(c *gin.Context) {
		if resolver == nil {
			c.Next()
			return
		}
		input := dimensions.InputFromRequest(c.Request)
		result := resolver.ResolveContext(c.Request.Context(), input)
		c.Set(ContextKey, result)
		if cfg.targetHeaders {
			for name, value := range result.TargetDimensions {
				c.Header(TargetHeaderPrefix+name, value)
			}
		}
		c.Next()
	}
}

// FromContext returns the result stored by Middleware.
func FromContext(c *gin.Context) (dimensions.Result, bool) {
	if c == nil {
		return dimensions.Result{}, false
	}
	v, ok := c.Get(ContextKey)
	if !ok {
		return dimensions.Result{}, false
	}
	result, ok := v.(dimensions.Result)
	return result, ok
}

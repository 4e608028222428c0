package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
)

// Timeout returns middleware that gives each request a deadline.
// Handlers must respect ctx.Done(); the deadline cannot stop a handler that
// ignores it. When the deadline has passed and the handler wrote nothing,
// the request is aborted with the timeout error body.
//
// Paths in skipPaths run without a deadline.
func Timeout(timeout time.Duration, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		req := c.Request

		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		c.Request = req.WithContext(ctx)
		c.Next()
		c.Request = req

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		logging.FromContext(req.Context()).Warn("request timeout",
			slog.String("path", req.URL.Path),
			slog.String("method", req.Method),
			slog.Duration("timeout", timeout),
		)

		dto.AbortWithError(c, &domain.TimeoutError{Cause: ctx.Err()})
	}
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
)

// Recovery returns middleware that recovers from panics.
// On panic, it logs the value with its stack trace at ERROR level and
// aborts with the generic internal error body, unless a response has
// already been started.
//
// It must sit inside ErrorTranslation so the internal body is translated.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			// The client is gone; let net/http handle it silently.
			if r == http.ErrAbortHandler { //nolint:errorlint,err113 // sentinel compared by identity
				panic(r)
			}

			logging.FromContext(c.Request.Context()).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			dto.AbortWithError(c, &domain.InternalError{Cause: panicError(r)})
		}()

		c.Next()
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}

	return fmt.Errorf("panic: %v", r)
}

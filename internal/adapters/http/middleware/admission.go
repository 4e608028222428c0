package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
)

// Rejection reasons reported by Admission.
const (
	ReasonRate        = "rate"
	ReasonConcurrency = "concurrency"
)

// AdmissionConfig configures Admission.
type AdmissionConfig struct {
	// MaxConcurrent bounds in-flight requests. Zero disables the limit.
	MaxConcurrent int64

	// Rate is the sustained requests per second. Zero disables the limit.
	Rate float64

	// Burst is the token bucket size. Values below one are raised to one.
	Burst int
}

// Admission returns middleware that sheds load. A request is rejected with
// the overloaded error when the token bucket is empty or when MaxConcurrent
// requests are already in flight. Rejections never wait.
func Admission(cfg AdmissionConfig) gin.HandlerFunc {
	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1))
	}

	var sem *semaphore.Weighted
	if cfg.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}

	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			reject(c, ReasonRate)
			return
		}

		if sem != nil {
			if !sem.TryAcquire(1) {
				reject(c, ReasonConcurrency)
				return
			}
			defer sem.Release(1)
		}

		c.Next()
	}
}

func reject(c *gin.Context, reason string) {
	logging.FromContext(c.Request.Context()).Warn("request shed",
		slog.String("reason", reason),
		slog.String("path", c.Request.URL.Path),
	)

	dto.AbortWithError(c, &domain.OverloadedError{Reason: reason})
}

// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
	"github.com/jsamuelsen/lingo-service/internal/platform/telemetry"
)

// HeaderTraceID carries the OpenTelemetry trace id on error responses.
// Error bodies are rewritten by the translation layer, so the id travels
// in a header instead of the body.
const HeaderTraceID = telemetry.HeaderTraceID

// MapFailure returns the HTTP status and the untranslated error tree for a
// failure. The switch covers every Failure variant.
func MapFailure(f domain.Failure) (int, domain.ErrorNode) {
	switch f := f.(type) {
	case *domain.InvalidBodyError:
		return http.StatusBadRequest, f.Node()
	case *domain.ValidationError:
		return http.StatusBadRequest, f.Node()
	case *domain.BusinessError:
		return businessStatus(f.Status), f.Node()
	case *domain.DependencyError:
		return http.StatusServiceUnavailable, f.Node()
	case *domain.TimeoutError:
		return http.StatusGatewayTimeout, f.Node()
	case *domain.OverloadedError:
		return http.StatusServiceUnavailable, f.Node()
	case *domain.InternalError:
		return http.StatusInternalServerError, f.Node()
	default:
		return http.StatusInternalServerError, domain.InternalErrorNode()
	}
}

// MapError classifies err and maps it like MapFailure.
func MapError(err error) (int, domain.ErrorNode) {
	return MapFailure(domain.Classify(err))
}

// businessStatus keeps business errors inside the client error range.
func businessStatus(status int) int {
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		return http.StatusBadRequest
	}

	return status
}

// RespondWithError writes the error tree for err. Server-side failures are
// logged with their cause since the body only ever carries a generic code.
func RespondWithError(c *gin.Context, err error) {
	status, node := prepare(c, err)
	c.JSON(status, node)
}

// AbortWithError aborts the request chain and writes the error tree for err.
// Use this in middleware when you want to stop further processing.
func AbortWithError(c *gin.Context, err error) {
	status, node := prepare(c, err)
	c.AbortWithStatusJSON(status, node)
}

func prepare(c *gin.Context, err error) (int, domain.ErrorNode) {
	status, node := MapError(err)

	ctx := c.Request.Context()

	var traceID string
	if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
		traceID = span.SpanContext().TraceID().String()
		c.Header(HeaderTraceID, traceID)
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("request failed",
			slog.String("code", node.Code),
			slog.Int("status", status),
			slog.String("error", errorString(err)),
			slog.String("trace_id", traceID),
		)
	}

	if err != nil {
		_ = c.Error(err)
	}

	return status, node
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// BuildInfo describes the running binary and the message catalog it
// serves.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`

	// FallbackLocale and Locales are filled by WithLocales.
	FallbackLocale string   `json:"fallbackLocale,omitempty"`
	Locales        []string `json:"locales,omitempty"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
// version, commit and buildTime are injected with ldflags.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// WithLocales returns a copy of b reporting the catalog locales in sorted
// order.
func (b BuildInfo) WithLocales(fallback string, locales []string) BuildInfo {
	b.FallbackLocale = fallback
	b.Locales = slices.Sorted(slices.Values(locales))

	return b
}

// ReadinessTimeout bounds a whole readiness probe.
const ReadinessTimeout = 2 * time.Second

// HealthHandler handles health-related HTTP endpoints. Its routes are
// operational and are not part of the translated API surface.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
}

// livenessResponse is the response structure for /-/live endpoint.
type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles the /-/live endpoint. It returns 200 OK while the
// process runs and never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
	})
}

// readinessResponse is the response structure for /-/ready endpoint.
type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles the /-/ready endpoint.
// Returns 200 OK if all registered health checks (Postgres, Redis) pass
// within ReadinessTimeout, 503 Service Unavailable otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ReadinessTimeout)
	defer cancel()

	result := h.registry.CheckAll(ctx)

	resp := readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// BuildInfoHandler handles the /-/build endpoint.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler serves the Prometheus registry, including the
// errors_translated_total counter. Response compression is left to the
// router.
func MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}),
	)
}

// RegisterHealthRoutes registers the operational routes on rg, which the
// router mounts at /-:
//   - GET /-/live - Liveness probe
//   - GET /-/ready - Readiness probe
//   - GET /-/build - Build and catalog information
//   - GET /-/metrics - Prometheus metrics
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler()))
}

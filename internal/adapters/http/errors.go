package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// Business codes for requests that match no handler.
const (
	CodeRouteNotFound    = "error.route_not_found"
	CodeMethodNotAllowed = "error.method_not_allowed"
)

// NoRoute answers requests for unknown paths with a translatable 404.
func NoRoute(c *gin.Context) {
	dto.RespondWithError(c, domain.NewBusinessError(http.StatusNotFound, CodeRouteNotFound, requestArgs(c)))
}

// NoMethod answers requests whose path exists under another method with a
// translatable 405.
func NoMethod(c *gin.Context) {
	dto.RespondWithError(c, domain.NewBusinessError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, requestArgs(c)))
}

func requestArgs(c *gin.Context) map[string]string {
	return map[string]string{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}
}

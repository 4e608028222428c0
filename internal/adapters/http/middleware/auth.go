package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/domain"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
)

// Business codes reported by the auth middleware.
const (
	CodeUnauthenticated = "error.auth.unauthenticated"
	CodeForbidden       = "error.auth.forbidden"
)

const (
	// ContextKeyClaims is the gin context key for storing extracted claims.
	ContextKeyClaims = "claims"

	// Default header names if not configured.
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims represents user claims extracted from gateway headers.
// The gateway validates the token and passes claims via headers.
type Claims struct {
	Subject string
	Roles   []string
	Scopes  []string
}

// HasRole checks if the user has the specified role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole checks if the user has any of the specified roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}

// HasScope checks if the user has the specified scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// HasAllScopes checks if the user has ALL specified scopes.
func (c *Claims) HasAllScopes(scopes ...string) bool {
	for _, scope := range scopes {
		if !c.HasScope(scope) {
			return false
		}
	}

	return true
}

// ExtractClaims extracts user claims from request headers.
// Header names are configurable via AuthConfig.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader := defaultSubjectHeader
	rolesHeader := defaultRolesHeader
	scopesHeader := defaultScopesHeader

	if cfg != nil {
		subjectHeader = cmp.Or(cfg.SubjectHeader, subjectHeader)
		rolesHeader = cmp.Or(cfg.RolesHeader, rolesHeader)
		scopesHeader = cmp.Or(cfg.ScopesHeader, scopesHeader)
	}

	return &Claims{
		Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
		// Roles are comma separated, scopes space separated as in OAuth2.
		Roles:  splitRoles(c.GetHeader(rolesHeader)),
		Scopes: strings.Fields(c.GetHeader(scopesHeader)),
	}
}

// GetClaims retrieves claims from the gin context.
// Returns nil if claims are not present.
func GetClaims(c *gin.Context) *Claims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		if cl, ok := claims.(*Claims); ok {
			return cl
		}
	}

	return nil
}

// RequireAuth returns middleware that requires a subject header.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if claims.Subject == "" {
			dto.AbortWithError(c, domain.NewBusinessError(http.StatusUnauthorized, CodeUnauthenticated, nil))
			return
		}

		c.Next()
	}
}

// RequireRole returns middleware that requires one of the given roles.
func RequireRole(cfg *config.AuthConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if !claims.HasAnyRole(roles...) {
			forbid(c, "role", strings.Join(roles, ", "))
			return
		}

		c.Next()
	}
}

// RequireScopes returns middleware that requires ALL specified scopes.
func RequireScopes(cfg *config.AuthConfig, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if !claims.HasAllScopes(scopes...) {
			forbid(c, "scope", strings.Join(scopes, " "))
			return
		}

		c.Next()
	}
}

func getOrExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}

// forbid aborts with a 403 naming what was missing, e.g. {kind: role, required: admin}.
func forbid(c *gin.Context, kind, required string) {
	dto.AbortWithError(c, domain.NewBusinessError(http.StatusForbidden, CodeForbidden, map[string]string{
		"kind":     kind,
		"required": required,
	}))
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

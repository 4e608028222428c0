package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/lingo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/lingo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/lingo-service/internal/app"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
)

// UserHandler handles the users API. Every failure is written as an
// untranslated error tree; the translation layer localizes it.
type UserHandler struct {
	service *app.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service *app.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// CreateUser handles POST /api/v1/users.
//
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} i18n.TranslatedError
// @Failure 503 {object} i18n.TranslatedError
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserFromDomain(user))
}

// GetUser handles GET /api/v1/users/:id.
//
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} i18n.TranslatedError
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	var param dto.UserIDParam
	if err := dto.BindURIAndValidate(c, &param); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), param.UUID())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserFromDomain(user))
}

// UpdateUser handles PUT /api/v1/users/:id.
//
// @Summary Rename a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "User"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} i18n.TranslatedError
// @Failure 404 {object} i18n.TranslatedError
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var param dto.UserIDParam
	if err := dto.BindURIAndValidate(c, &param); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), param.UUID(), req.Name)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserFromDomain(user))
}

// DeleteUser handles DELETE /api/v1/users/:id. Deleting an unknown id
// succeeds with zero affected rows.
//
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.DeleteUserResponse
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	var param dto.UserIDParam
	if err := dto.BindURIAndValidate(c, &param); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	rows, err := h.service.Delete(c.Request.Context(), param.UUID())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteUserResponse{AffectedRows: rows})
}

// RegisterUserRoutes registers the users API on the given group. With auth
// enabled, writes need an authenticated subject and deletes additionally
// need the admin role.
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authCfg *config.AuthConfig) {
	users := rg.Group("/users")
	users.GET("/:id", h.GetUser)

	writes := users.Group("")
	admin := users.Group("")

	if authCfg != nil && authCfg.Enabled {
		writes.Use(middleware.RequireAuth(authCfg))
		admin.Use(middleware.RequireAuth(authCfg), middleware.RequireRole(authCfg, authCfg.AdminRole))
	}

	writes.POST("", h.CreateUser)
	writes.PUT("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)
}

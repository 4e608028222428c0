package domain

import (
	"net/http"

	"github.com/google/uuid"
)

// Business codes owned by the users feature.
const (
	CodeNameLimit    = "error.business.name_limit"
	CodeUserNotFound = "error.business.user_not_found"
)

// User is a registered user.
type User struct {
	ID   uuid.UUID
	Name string
}

// NewUserNotFoundError creates the business error for an unknown user id.
func NewUserNotFoundError(id uuid.UUID) *BusinessError {
	return NewBusinessError(http.StatusNotFound, CodeUserNotFound, map[string]string{
		"id": id.String(),
	})
}

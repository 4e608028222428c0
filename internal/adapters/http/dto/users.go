package dto

import (
	"github.com/google/uuid"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Name string `json:"name" validate:"min=1,max=10" errcode:"error.business.name_limit"`
}

// UpdateUserRequest is the body of PUT /api/v1/users/:id.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"min=1,max=10" errcode:"error.business.name_limit"`
}

// UserIDParam binds the :id path parameter.
type UserIDParam struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}

// UUID returns the parsed id. Call only after validation succeeded.
func (p UserIDParam) UUID() uuid.UUID {
	return uuid.MustParse(p.ID)
}

// UserResponse is the representation of a user.
type UserResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DeleteUserResponse reports how many users a delete removed.
type DeleteUserResponse struct {
	AffectedRows int64 `json:"affected_rows"`
}

// UserFromDomain converts a domain user to its response form.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name}
}

// GreetingQuery binds the query of GET /api/v1/demo/i18n.
type GreetingQuery struct {
	Name string `form:"name" json:"name" validate:"omitempty,max=64"`
}

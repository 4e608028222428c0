package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// MockUserCache is a mock of ports.UserCache.
type MockUserCache struct {
	mock.Mock
}

// NewMockUserCache creates a mock whose expectations are asserted when the
// test ends.
func NewMockUserCache(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserCache {
	m := &MockUserCache{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Get implements ports.UserCache.
func (m *MockUserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, bool, error) {
	args := m.Called(ctx, id)

	user, _ := args.Get(0).(*domain.User)

	return user, args.Bool(1), args.Error(2)
}

// Set implements ports.UserCache.
func (m *MockUserCache) Set(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

// Delete implements ports.UserCache.
func (m *MockUserCache) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

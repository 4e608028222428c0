// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

// MockUserRepository is a mock of ports.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock whose expectations are asserted
// when the test ends.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserRepository {
	m := &MockUserRepository{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Create implements ports.UserRepository.
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

// Get implements ports.UserRepository.
func (m *MockUserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)

	user, _ := args.Get(0).(*domain.User)

	return user, args.Error(1)
}

// Update implements ports.UserRepository.
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (int64, error) {
	args := m.Called(ctx, user)

	return args.Get(0).(int64), args.Error(1)
}

// Delete implements ports.UserRepository.
func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(int64), args.Error(1)
}

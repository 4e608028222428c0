package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// MockHealthRegistry is a mock of ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

// NewMockHealthRegistry creates a mock whose expectations are asserted when
// the test ends.
func NewMockHealthRegistry(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Register implements ports.HealthRegistry.
func (m *MockHealthRegistry) Register(checker ports.HealthChecker) error {
	args := m.Called(checker)

	return args.Error(0)
}

// CheckAll implements ports.HealthRegistry.
func (m *MockHealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	args := m.Called(ctx)

	result, _ := args.Get(0).(*ports.HealthResult)

	return result
}

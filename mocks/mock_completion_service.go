package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"BillAnalyzer/internal/domain"
)

// MockCompletionService is a mock implementation of ports.CompletionService.
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) CompleteStructured(ctx context.Context, req domain.CompletionRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

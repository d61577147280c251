package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"BillAnalyzer/internal/domain"
)

// MockBillResolver is a mock implementation of ports.BillResolver.
type MockBillResolver struct {
	mock.Mock
}

func (m *MockBillResolver) Resolve(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.BillReference), args.Error(1)
}

func (m *MockBillResolver) ResolveAndExtract(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, domain.BillDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.BillReference), args.Get(1).(domain.BillDetails), args.Error(2)
}

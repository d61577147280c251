package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDocumentFetcher is a mock implementation of ports.DocumentFetcher.
type MockDocumentFetcher struct {
	mock.Mock
}

func (m *MockDocumentFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

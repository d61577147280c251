package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"BillAnalyzer/internal/domain"
)

// MockBillAnalyzer is a mock implementation of ports.BillAnalyzer.
type MockBillAnalyzer struct {
	mock.Mock
}

func (m *MockBillAnalyzer) Analyze(ctx context.Context, pdfReference string) (domain.AnalysisResult, error) {
	args := m.Called(ctx, pdfReference)
	return args.Get(0).(domain.AnalysisResult), args.Error(1)
}

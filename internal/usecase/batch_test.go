package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/ports"
	"BillAnalyzer/internal/usecase"
	"BillAnalyzer/mocks"
)

type progressRecorder struct {
	mu    sync.Mutex
	calls [][2]int
}

func (p *progressRecorder) Report(processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, [2]int{processed, total})
}

var _ ports.ProgressReporter = (*progressRecorder)(nil)

func TestBatch_ContinuesPastFailures(t *testing.T) {
	found := domain.BillIdentifier{Number: "100", Year: "2021"}
	missing := domain.BillIdentifier{Number: "999999", Year: "2021"}

	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, found).Return(domain.BillReference{InternalID: "1"}, sampleDetails("/100.pdf"), nil)
	r.On("ResolveAndExtract", mock.Anything, missing).Return(domain.BillReference{}, domain.BillDetails{}, domain.ErrNotFound)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, "/100.pdf").Return(sampleAnalysis(), nil)

	progress := &progressRecorder{}
	rows, err := usecase.NewBatch(newPipeline(t, r, a), 1, nil).
		Run(context.Background(), []domain.BillIdentifier{found, missing}, progress)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, found, rows[0].Identifier)
	assert.True(t, rows[0].Succeeded())
	assert.Equal(t, "Favorável.", rows[0].Analysis.VoteRecommendation)

	assert.Equal(t, missing, rows[1].Identifier)
	assert.Nil(t, rows[1].Analysis)
	assert.ErrorIs(t, rows[1].Err, domain.ErrNotFound)

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress.calls)
}

func TestBatch_SequentialOrder(t *testing.T) {
	ids := []domain.BillIdentifier{{Number: "1", Year: "2020"}, {Number: "2", Year: "2020"}, {Number: "3", Year: "2020"}}

	var (
		mu    sync.Mutex
		order []string
	)
	r := new(mocks.MockBillResolver)
	for _, id := range ids {
		r.On("ResolveAndExtract", mock.Anything, id).
			Run(func(args mock.Arguments) {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, args.Get(1).(domain.BillIdentifier).Number)
			}).
			Return(domain.BillReference{}, domain.BillDetails{}, domain.ErrNotFound)
	}

	rows, err := usecase.NewBatch(newPipeline(t, r, new(mocks.MockBillAnalyzer)), 1, nil).Run(context.Background(), ids, nil)

	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "2", "3"}, order)
}

func TestBatch_ConcurrentKeepsInputOrder(t *testing.T) {
	var ids []domain.BillIdentifier
	r := new(mocks.MockBillResolver)
	a := new(mocks.MockBillAnalyzer)
	for _, n := range []string{"10", "11", "12", "13", "14", "15"} {
		id := domain.BillIdentifier{Number: n, Year: "2023"}
		ids = append(ids, id)
		pdf := "/" + n + ".pdf"
		r.On("ResolveAndExtract", mock.Anything, id).Return(domain.BillReference{InternalID: n}, sampleDetails(pdf), nil)
		res := sampleAnalysis()
		res.MeritAssessment = n
		a.On("Analyze", mock.Anything, pdf).Return(res, nil)
	}

	progress := &progressRecorder{}
	rows, err := usecase.NewBatch(newPipeline(t, r, a), 4, nil).Run(context.Background(), ids, progress)

	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, ids[i], row.Identifier)
		require.NotNil(t, row.Analysis)
		assert.Equal(t, ids[i].Number, row.Analysis.MeritAssessment)
	}
	require.Len(t, progress.calls, len(ids))
	for i, c := range progress.calls {
		assert.Equal(t, [2]int{i + 1, len(ids)}, c, "progress is monotonic")
	}
}

func TestBatch_EmptyIdentifierRecordedOnRow(t *testing.T) {
	r := new(mocks.MockBillResolver)
	rows, err := usecase.NewBatch(newPipeline(t, r, new(mocks.MockBillAnalyzer)), 1, nil).
		Run(context.Background(), []domain.BillIdentifier{{Number: "", Year: "2020"}}, nil)

	require.NoError(t, err)
	assert.ErrorIs(t, rows[0].Err, domain.ErrMalformedInput)
	r.AssertNotCalled(t, "ResolveAndExtract", mock.Anything, mock.Anything)
}

func TestBatch_ConfigurationErrorAborts(t *testing.T) {
	first := domain.BillIdentifier{Number: "1", Year: "2020"}
	second := domain.BillIdentifier{Number: "2", Year: "2020"}

	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, first).Return(domain.BillReference{InternalID: "1"}, sampleDetails("/1.pdf"), nil)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, "/1.pdf").Return(domain.AnalysisResult{}, domain.ErrConfiguration)

	_, err := usecase.NewBatch(newPipeline(t, r, a), 1, nil).
		Run(context.Background(), []domain.BillIdentifier{first, second}, nil)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	r.AssertNotCalled(t, "ResolveAndExtract", mock.Anything, second)
}

func TestBatch_Empty(t *testing.T) {
	rows, err := usecase.NewBatch(newPipeline(t, new(mocks.MockBillResolver), new(mocks.MockBillAnalyzer)), 1, nil).
		Run(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/export"
	"github.com/Piyushkr001/revix/internal/scoring"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

func newTestReportService() (*ReportService, *mockAnalysisRepository, *mockReportRepository, *mockEvents) {
	analyses := new(mockAnalysisRepository)
	reports := new(mockReportRepository)
	events := new(mockEvents)
	svc := NewReportService(analyses, reports, events, nil, newTestLogger())
	svc.now = fixedClock
	return svc, analyses, reports, events
}

func thirtyDayRange() domain.DateRange {
	from := fixedNow.Add(-30 * 24 * time.Hour)
	to := fixedNow
	return domain.DateRange{From: &from, To: &to}
}

// --- Generate ---

func TestGenerate_DefaultPresetAndTitle(t *testing.T) {
	svc, analyses, reports, events := newTestReportService()
	ctx := context.Background()
	dr := thirtyDayRange()

	analyses.On("Stats", mock.Anything, "user_1", dr).Return(&domain.AnalysisStats{
		Total:      2,
		AvgScore:   ptr(7.333333),
		BestScore:  ptr(9),
		WorstScore: ptr(6),
	}, nil)
	analyses.On("SentimentCounts", mock.Anything, "user_1", dr).Return(domain.SentimentCounts{Positive: 1, Neutral: 1}, nil)
	analyses.On("TopProducts", mock.Anything, "user_1", dr, domain.MaxReportProducts).Return([]domain.ProductStat{
		{ProductName: "Kettle", Count: 1, AvgScore: ptr(9.0)},
		{ProductName: "Toaster", Count: 1, AvgScore: ptr(5.556)},
	}, nil)
	reports.On("Create", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(nil)
	events.On("PublishReportGenerated", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(nil)

	r, err := svc.Generate(ctx, "user_1", &GenerateReportInput{Title: "   "})

	require.NoError(t, err)
	assert.Equal(t, domain.Preset30d, r.Preset)
	assert.Equal(t, "Report (30D)", r.Title)
	assert.Equal(t, dr.From, r.DateFrom)
	assert.Equal(t, 2, r.KPIs.TotalAnalyses)
	assert.Equal(t, 7.33, *r.KPIs.AvgScore10)
	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, scoring.SentimentPositive, r.TopProducts[0].SentimentMode)
	assert.Equal(t, 5.56, *r.TopProducts[1].AvgScore10)
	assert.Equal(t, scoring.SentimentNeutral, r.TopProducts[1].SentimentMode)
	assert.Equal(t, fixedNow, r.CreatedAt)
	analyses.AssertExpectations(t)
	reports.AssertExpectations(t)
}

func TestGenerate_AllPresetHasNoBounds(t *testing.T) {
	svc, analyses, reports, events := newTestReportService()
	ctx := context.Background()

	analyses.On("Stats", mock.Anything, "user_1", domain.DateRange{}).Return(&domain.AnalysisStats{}, nil)
	analyses.On("SentimentCounts", mock.Anything, "user_1", domain.DateRange{}).Return(domain.SentimentCounts{}, nil)
	analyses.On("TopProducts", mock.Anything, "user_1", domain.DateRange{}, domain.MaxReportProducts).Return(nil, nil)
	reports.On("Create", mock.Anything, mock.Anything).Return(nil)
	events.On("PublishReportGenerated", mock.Anything, mock.Anything).Return(nil)

	r, err := svc.Generate(ctx, "user_1", &GenerateReportInput{Preset: "all", Title: "Lifetime"})

	require.NoError(t, err)
	assert.Equal(t, "Lifetime", r.Title)
	assert.Nil(t, r.DateFrom)
	assert.Nil(t, r.DateTo)
	assert.Nil(t, r.KPIs.AvgScore10)
	assert.NotNil(t, r.TopProducts)
	assert.Empty(t, r.TopProducts)
}

func TestGenerate_InvalidPreset(t *testing.T) {
	svc, analyses, _, _ := newTestReportService()

	_, err := svc.Generate(context.Background(), "user_1", &GenerateReportInput{Preset: "1y"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	analyses.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_CreateError(t *testing.T) {
	svc, analyses, reports, events := newTestReportService()
	ctx := context.Background()

	analyses.On("Stats", mock.Anything, "user_1", mock.Anything).Return(&domain.AnalysisStats{}, nil)
	analyses.On("SentimentCounts", mock.Anything, "user_1", mock.Anything).Return(domain.SentimentCounts{}, nil)
	analyses.On("TopProducts", mock.Anything, "user_1", mock.Anything, mock.Anything).Return(nil, nil)
	reports.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Generate(ctx, "user_1", &GenerateReportInput{Preset: "7d"})

	require.Error(t, err)
	events.AssertNotCalled(t, "PublishReportGenerated", mock.Anything, mock.Anything)
}

// --- List / Export ---

func TestList_UsesFixedLimit(t *testing.T) {
	svc, _, reports, _ := newTestReportService()
	ctx := context.Background()

	reports.On("List", mock.Anything, "user_1", ReportListLimit).Return([]domain.Report{{ID: "r-1"}}, nil)

	out, err := svc.List(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestExport_RendersWorkbook(t *testing.T) {
	svc, _, reports, _ := newTestReportService()
	ctx := context.Background()

	reports.On("GetByID", mock.Anything, "user_1", "r-1").Return(&domain.Report{
		ID:          "r-1",
		Title:       "Q1 Review",
		Preset:      domain.Preset90d,
		TopProducts: []domain.ReportProduct{{ProductName: "Kettle", Count: 2}},
		CreatedAt:   fixedNow,
	}, nil)

	out, err := svc.Export(ctx, "user_1", "r-1")

	require.NoError(t, err)
	assert.Equal(t, "revix-q1-review-2025-03-31.xlsx", out.Filename)
	assert.Equal(t, export.ContentType, out.ContentType)
	assert.NotEmpty(t, out.Data)
}

func TestExport_NotFound(t *testing.T) {
	svc, _, reports, _ := newTestReportService()
	ctx := context.Background()

	reports.On("GetByID", mock.Anything, "user_1", "r-9").Return(nil, apperrors.NotFound("report", "r-9"))

	_, err := svc.Export(ctx, "user_1", "r-9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/export"
	"github.com/Piyushkr001/revix/internal/repository"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/tracing"
)

// ReportListLimit caps the report list.
const ReportListLimit = 20

// GenerateReportInput holds the parameters of a report snapshot.
type GenerateReportInput struct {
	Preset   string
	DateFrom string
	DateTo   string
	Title    string
}

// ExportedReport is a rendered snapshot ready for download.
type ExportedReport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService generates and serves immutable report snapshots.
type ReportService struct {
	analyses repository.AnalysisRepository
	reports  repository.ReportRepository
	events   EventPublisher
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(
	analyses repository.AnalysisRepository,
	reports repository.ReportRepository,
	events EventPublisher,
	metrics *Metrics,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		analyses: analyses,
		reports:  reports,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		now:      utcNow,
	}
}

// Generate computes KPIs, sentiment counts and top products over the preset
// range and stores them as a snapshot.
func (s *ReportService) Generate(ctx context.Context, userID string, input *GenerateReportInput) (_ *domain.Report, err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "report.Generate", attribute.String("report.preset", input.Preset))
	defer func() { end(err) }()

	preset := domain.DefaultPreset
	if p := strings.TrimSpace(input.Preset); p != "" {
		preset = domain.Preset(p)
	}
	if !preset.Valid() {
		return nil, apperrors.InvalidInput("preset must be one of: 7d, 30d, 90d, all, custom")
	}

	now := s.now()
	dr := preset.Range(now, input.DateFrom, input.DateTo)

	stats, err := s.analyses.Stats(ctx, userID, dr)
	if err != nil {
		return nil, fmt.Errorf("report kpis: %w", err)
	}
	sentiment, err := s.analyses.SentimentCounts(ctx, userID, dr)
	if err != nil {
		return nil, fmt.Errorf("report sentiment: %w", err)
	}
	top, err := s.analyses.TopProducts(ctx, userID, dr, domain.MaxReportProducts)
	if err != nil {
		return nil, fmt.Errorf("report top products: %w", err)
	}

	products := make([]domain.ReportProduct, 0, len(top))
	for _, p := range top {
		products = append(products, domain.NewReportProduct(p))
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = domain.DefaultReportTitle(preset)
	}

	r := &domain.Report{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    title,
		Preset:   preset,
		DateFrom: dr.From,
		DateTo:   dr.To,
		KPIs: domain.ReportKPIs{
			TotalAnalyses:  stats.Total,
			AvgScore10:     domain.Round2Ptr(stats.AvgScore),
			BestScore10:    stats.BestScore,
			WorstScore10:   stats.WorstScore,
			LastActivityAt: stats.LastActivityAt,
		},
		Sentiment:   sentiment,
		TopProducts: products,
		CreatedAt:   now,
	}

	if err := s.reports.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	s.metrics.reportGenerated()

	s.logger.InfoContext(ctx, "report generated",
		slog.String("report_id", r.ID),
		slog.String("preset", string(r.Preset)),
		slog.Int("total_analyses", r.KPIs.TotalAnalyses),
	)

	if err := s.events.PublishReportGenerated(ctx, r); err != nil {
		logPublishError(ctx, s.logger, "report.generated", r.ID, err)
	}
	return r, nil
}

// List returns the caller's newest snapshots.
func (s *ReportService) List(ctx context.Context, userID string) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx, userID, ReportListLimit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Get returns one of the caller's snapshots.
func (s *ReportService) Get(ctx context.Context, userID, id string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, userID, id)
}

// Export renders one of the caller's snapshots as an XLSX workbook.
func (s *ReportService) Export(ctx context.Context, userID, id string) (*ExportedReport, error) {
	r, err := s.reports.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := export.ReportXLSX(r)
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	return &ExportedReport{
		Filename:    export.Filename(r),
		ContentType: export.ContentType,
		Data:        data,
	}, nil
}

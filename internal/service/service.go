package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/scoring"
)

// EventPublisher emits domain events after a write has been committed.
// Publishing failures never fail the request.
type EventPublisher interface {
	PublishAnalysisCreated(ctx context.Context, a *domain.Analysis) error
	PublishReportGenerated(ctx context.Context, r *domain.Report) error
	PublishTicketCreated(ctx context.Context, t *domain.SupportTicket) error
	PublishUserDeactivated(ctx context.Context, userID string) error
}

// tracerName names the spans around multi-query operations.
const tracerName = "revix/service"

func utcNow() time.Time {
	return time.Now().UTC()
}

// Metrics holds the business counters exported by the services.
type Metrics struct {
	AnalysesScored   *prometheus.CounterVec
	ReportsGenerated prometheus.Counter
}

// NewMetrics registers the service counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revix_analyses_scored_total",
			Help: "Analyses scored and stored, by sentiment.",
		}, []string{"sentiment"}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revix_reports_generated_total",
			Help: "Report snapshots generated.",
		}),
	}
	reg.MustRegister(m.AnalysesScored, m.ReportsGenerated)
	return m
}

func (m *Metrics) analysisScored(s scoring.Sentiment) {
	if m == nil {
		return
	}
	m.AnalysesScored.WithLabelValues(string(s)).Inc()
}

func (m *Metrics) reportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

func logPublishError(ctx context.Context, logger *slog.Logger, event, id string, err error) {
	logger.WarnContext(ctx, "failed to publish event",
		slog.String("event", event),
		slog.String("aggregate_id", id),
		slog.String("error", err.Error()),
	)
}

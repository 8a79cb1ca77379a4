package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Piyushkr001/revix/internal/domain"
	pkgkafka "github.com/Piyushkr001/revix/pkg/kafka"
	"github.com/Piyushkr001/revix/pkg/logger"
)

// Kafka topics for Revix domain events.
var (
	TopicAnalysisCreated = pkgkafka.Topic("analysis", "created")
	TopicReportGenerated = pkgkafka.Topic("report", "generated")
	TopicTicketCreated   = pkgkafka.Topic("ticket", "created")
	TopicUserDeactivated = pkgkafka.Topic("user", "deactivated")
)

// Aggregate types.
const (
	AggregateTypeAnalysis = "analysis"
	AggregateTypeReport   = "report"
	AggregateTypeTicket   = "support_ticket"
	AggregateTypeUser     = "user"
)

// SourceAPI identifies events emitted by the API process.
const SourceAPI = "revix-api"

// AnalysisCreatedData is the payload for an analysis.created event. The
// review text itself is not published.
type AnalysisCreatedData struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	ProductName string   `json:"product_name"`
	ReviewCount int      `json:"review_count"`
	Score10     int      `json:"score10"`
	Sentiment   string   `json:"sentiment"`
	Keywords    []string `json:"keywords"`
}

// ReportGeneratedData is the payload for a report.generated event.
type ReportGeneratedData struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Preset        string `json:"preset"`
	TotalAnalyses int    `json:"total_analyses"`
}

// TicketCreatedData is the payload for a ticket.created event.
type TicketCreatedData struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// UserDeactivatedData is the payload for a user.deactivated event.
type UserDeactivatedData struct {
	UserID string `json:"user_id"`
}

// Publisher is the part of pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes Revix domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType, userID string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	evt.WithUserID(userID)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishAnalysisCreated publishes an analysis.created event.
func (p *Producer) PublishAnalysisCreated(ctx context.Context, a *domain.Analysis) error {
	return p.publish(ctx, TopicAnalysisCreated, a.ID, AggregateTypeAnalysis, a.UserID, AnalysisCreatedData{
		ID:          a.ID,
		Source:      string(a.Source),
		ProductName: a.ProductName,
		ReviewCount: a.ReviewCount,
		Score10:     a.Score10,
		Sentiment:   string(a.Sentiment),
		Keywords:    a.Keywords,
	})
}

// PublishReportGenerated publishes a report.generated event.
func (p *Producer) PublishReportGenerated(ctx context.Context, r *domain.Report) error {
	return p.publish(ctx, TopicReportGenerated, r.ID, AggregateTypeReport, r.UserID, ReportGeneratedData{
		ID:            r.ID,
		Title:         r.Title,
		Preset:        string(r.Preset),
		TotalAnalyses: r.KPIs.TotalAnalyses,
	})
}

// PublishTicketCreated publishes a ticket.created event.
func (p *Producer) PublishTicketCreated(ctx context.Context, t *domain.SupportTicket) error {
	return p.publish(ctx, TopicTicketCreated, t.ID, AggregateTypeTicket, t.UserID, TicketCreatedData{
		ID:       t.ID,
		Subject:  t.Subject,
		Category: string(t.Category),
		Priority: string(t.Priority),
	})
}

// PublishUserDeactivated publishes a user.deactivated event.
func (p *Producer) PublishUserDeactivated(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicUserDeactivated, userID, AggregateTypeUser, userID, UserDeactivatedData{UserID: userID})
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishAnalysisCreated(context.Context, *domain.Analysis) error { return nil }
func (Noop) PublishReportGenerated(context.Context, *domain.Report) error { return nil }
func (Noop) PublishTicketCreated(context.Context, *domain.SupportTicket) error { return nil }
func (Noop) PublishUserDeactivated(context.Context, string) error { return nil }

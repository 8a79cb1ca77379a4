package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// Support ticket limits.
const (
	TicketListLimit     = 50
	MinTicketSubjectLen = 3
	MinTicketMessageLen = 10
)

// CreateTicketInput holds a support request.
type CreateTicketInput struct {
	Subject  string
	Message  string
	Category string
	Priority string
	Meta     domain.TicketMeta
}

// SupportService stores and lists support tickets.
type SupportService struct {
	tickets  repository.SupportRepository
	users    repository.UserRepository
	profiles ProfileResolver
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewSupportService creates a new support service.
func NewSupportService(
	tickets repository.SupportRepository,
	users repository.UserRepository,
	profiles ProfileResolver,
	events EventPublisher,
	logger *slog.Logger,
) *SupportService {
	return &SupportService{
		tickets:  tickets,
		users:    users,
		profiles: profiles,
		events:   events,
		logger:   logger,
		now:      utcNow,
	}
}

// List returns the caller's tickets, newest first.
func (s *SupportService) List(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	tickets, err := s.tickets.ListByUser(ctx, userID, TicketListLimit)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// Create opens a ticket. The caller's mirror row is created first when it
// does not exist yet.
func (s *SupportService) Create(ctx context.Context, p *middleware.Principal, input *CreateTicketInput) (*domain.SupportTicket, error) {
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	if utf8.RuneCountInString(subject) < MinTicketSubjectLen {
		return nil, apperrors.InvalidInput("Subject is too short")
	}
	if utf8.RuneCountInString(message) < MinTicketMessageLen {
		return nil, apperrors.InvalidInput("Message is too short")
	}

	now := s.now()
	if err := s.users.EnsureExists(ctx, s.profiles.Resolve(ctx, p).ToUser(now)); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	t := &domain.SupportTicket{
		ID:        uuid.New().String(),
		UserID:    p.UserID,
		Subject:   subject,
		Message:   message,
		Category:  domain.ParseCategory(input.Category),
		Priority:  domain.ParsePriority(input.Priority),
		Status:    domain.TicketStatusOpen,
		Meta:      input.Meta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.InfoContext(ctx, "support ticket created",
		slog.String("ticket_id", t.ID),
		slog.String("category", string(t.Category)),
		slog.String("priority", string(t.Priority)),
	)

	if err := s.events.PublishTicketCreated(ctx, t); err != nil {
		logPublishError(ctx, s.logger, "ticket.created", t.ID, err)
	}
	return t, nil
}

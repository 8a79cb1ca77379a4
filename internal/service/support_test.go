package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Piyushkr001/revix/internal/domain"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

func newTestSupportService() (*SupportService, *mockSupportRepository, *mockUserRepository, *mockEvents) {
	tickets := new(mockSupportRepository)
	users := new(mockUserRepository)
	events := new(mockEvents)
	svc := NewSupportService(tickets, users, &fakeResolver{}, events, newTestLogger())
	svc.now = fixedClock
	return svc, tickets, users, events
}

func TestSupportCreate_EnsuresUserAndDefaults(t *testing.T) {
	svc, tickets, users, events := newTestSupportService()
	ctx := context.Background()
	p := &middleware.Principal{UserID: "user_1", Email: "ada@example.com"}

	users.On("EnsureExists", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user_1" && u.Email == "ada@example.com"
	})).Return(nil)
	tickets.On("Create", ctx, mock.AnythingOfType("*domain.SupportTicket")).Return(nil)
	events.On("PublishTicketCreated", ctx, mock.AnythingOfType("*domain.SupportTicket")).Return(nil)

	tk, err := svc.Create(ctx, p, &CreateTicketInput{
		Subject:  "  Export broken  ",
		Message:  "  The XLSX download is empty.  ",
		Category: "nonsense",
		Meta:     domain.TicketMeta{Page: "/reports"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Export broken", tk.Subject)
	assert.Equal(t, "The XLSX download is empty.", tk.Message)
	assert.Equal(t, domain.CategoryGeneral, tk.Category)
	assert.Equal(t, domain.PriorityMedium, tk.Priority)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
	assert.Equal(t, "/reports", tk.Meta.Page)
	users.AssertExpectations(t)
	tickets.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestSupportCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		message string
		msg     string
	}{
		{"short subject", " ab ", strings.Repeat("m", 20), "Subject is too short"},
		{"short message", "Help", "  too short ", "Message is too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tickets, users, _ := newTestSupportService()

			_, err := svc.Create(context.Background(), &middleware.Principal{UserID: "user_1"},
				&CreateTicketInput{Subject: tt.subject, Message: tt.message})

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.msg, appErr.Message)
			users.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything)
			tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSupportCreate_EnsureUserError(t *testing.T) {
	svc, tickets, users, _ := newTestSupportService()
	ctx := context.Background()

	users.On("EnsureExists", ctx, mock.Anything).Return(errors.New("timeout"))

	_, err := svc.Create(ctx, &middleware.Principal{UserID: "user_1"},
		&CreateTicketInput{Subject: "Help me", Message: "Something went wrong here."})

	require.Error(t, err)
	tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSupportList(t *testing.T) {
	svc, tickets, _, _ := newTestSupportService()
	ctx := context.Background()

	tickets.On("ListByUser", ctx, "user_1", TicketListLimit).Return([]domain.SupportTicket{{ID: "t-1"}}, nil)

	out, err := svc.List(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

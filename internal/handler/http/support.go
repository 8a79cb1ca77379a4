package http

import (
	"log/slog"
	"net/http"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/pkg/httputil"
)

// SupportHandler handles support ticket endpoints.
type SupportHandler struct {
	service SupportService
	logger  *slog.Logger
}

// NewSupportHandler creates a new support HTTP handler.
func NewSupportHandler(svc SupportService, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateTicketRequest is the JSON body of POST /api/support. Unknown
// categories and priorities fall back to general and medium.
type CreateTicketRequest struct {
	Subject  string            `json:"subject" validate:"max=200"`
	Message  string            `json:"message" validate:"max=5000"`
	Category string            `json:"category"`
	Priority string            `json:"priority"`
	Meta     domain.TicketMeta `json:"meta"`
}

// List handles GET /api/support
func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	tickets, err := h.service.List(r.Context(), p.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, tickets)
}

// Create handles POST /api/support
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req CreateTicketRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	ticket, err := h.service.Create(r.Context(), p, &service.CreateTicketInput{
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
		Priority: req.Priority,
		Meta:     req.Meta,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, ticket)
}

package domain

import (
	"strings"
	"time"
)

// TicketCategory classifies a support request.
type TicketCategory string

const (
	CategoryGeneral   TicketCategory = "general"
	CategoryTechnical TicketCategory = "technical"
	CategoryAccount   TicketCategory = "account"
	CategoryBilling   TicketCategory = "billing"
	CategoryFeedback  TicketCategory = "feedback"
)

// ParseCategory maps unknown values to CategoryGeneral.
func ParseCategory(s string) TicketCategory {
	switch c := TicketCategory(strings.TrimSpace(s)); c {
	case CategoryGeneral, CategoryTechnical, CategoryAccount, CategoryBilling, CategoryFeedback:
		return c
	}
	return CategoryGeneral
}

// TicketPriority orders support requests.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// ParsePriority maps unknown values to PriorityMedium.
func ParsePriority(s string) TicketPriority {
	switch p := TicketPriority(strings.TrimSpace(s)); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p
	}
	return PriorityMedium
}

// TicketStatusOpen is the status of every new ticket.
const TicketStatusOpen = "open"

// TicketMeta is client context captured with a ticket.
type TicketMeta struct {
	Page       string `json:"page,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	AppVersion string `json:"appVersion,omitempty"`
}

// SupportTicket is a user-submitted support request.
type SupportTicket struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Category  TicketCategory `json:"category"`
	Priority  TicketPriority `json:"priority"`
	Status    string         `json:"status"`
	Meta      TicketMeta     `json:"meta"`
	IsDeleted bool           `json:"isDeleted"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

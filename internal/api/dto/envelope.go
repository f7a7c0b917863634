package dto

import (
	"github.com/spec-kit/ticket-console/internal/domain"
)

// Envelope is the wrapper every JSON endpoint of the ticket service responds with.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Detail  string         `json:"detail,omitempty"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage is a successful envelope without data.
func OKMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Failure builds the envelope rendered for a DomainError.
func Failure(code, message string, details map[string]any) Envelope {
	return Envelope{Success: false, Detail: message, Error: code, Details: details}
}

// TicketPage is the data of list-shaped ticket responses.
type TicketPage struct {
	Tickets []domain.Ticket `json:"tickets"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	HasMore bool            `json:"has_more"`
}

// NewTicketPage computes has_more from the window and total.
func NewTicketPage(tickets []domain.Ticket, total, limit, offset int) TicketPage {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return TicketPage{
		Tickets: tickets,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(tickets) < total,
	}
}

// SearchResult is the data of the keyword search response.
type SearchResult struct {
	Tickets []domain.Ticket `json:"tickets"`
}

// AnswerAssistRequest is the body of an assistance answer.
type AnswerAssistRequest struct {
	Answer string `json:"answer"`
}

package service

import (
	"context"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// TicketGateway is the remote surface the ticket store drives. *gateway.Client implements it.
type TicketGateway interface {
	ListTickets(ctx context.Context, filters domain.TicketListFilters) (domain.TicketPage, error)
	SearchTickets(ctx context.Context, keyword string) ([]domain.Ticket, error)
	FilterTickets(ctx context.Context, payload domain.TicketFilterPayload) (domain.TicketPage, error)
	ListArchivedTickets(ctx context.Context, q domain.ArchivedTicketQuery) (domain.TicketPage, error)
	GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error)

	CreateManualTicket(ctx context.Context, payload domain.CreateManualTicketPayload) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, ticketID string, payload domain.UpdateTicketPayload) (domain.Ticket, error)
	AssignTicket(ctx context.Context, ticketID string, payload domain.AssignTicketPayload) (domain.Ticket, error)
	ReopenTicket(ctx context.Context, ticketID string, payload domain.ReopenTicketPayload) (domain.Ticket, error)
	ArchiveTicket(ctx context.Context, ticketID string, payload domain.ArchiveTicketPayload) (domain.Ticket, error)
	AddComment(ctx context.Context, ticketID string, payload domain.TicketCommentPayload) (domain.Comment, error)
	DeleteComment(ctx context.Context, ticketID, commentID string) error

	BatchAssign(ctx context.Context, req domain.BatchAssignRequest) (domain.BatchResult, error)
	BatchClose(ctx context.Context, req domain.BatchCloseRequest) (domain.BatchResult, error)
	BatchPriority(ctx context.Context, req domain.BatchPriorityRequest) (domain.BatchResult, error)

	SLASummary(ctx context.Context) (domain.SLASummary, error)
	SLAAlerts(ctx context.Context) (domain.SLAAlerts, error)
	ExportTickets(ctx context.Context, req domain.ExportRequest) (domain.ExportFile, error)
	RecommendAssignment(ctx context.Context, payload domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error)
}

// TemplateGateway is the remote surface of the template store.
type TemplateGateway interface {
	ListTemplates(ctx context.Context) ([]domain.TicketTemplate, error)
	CreateTemplate(ctx context.Context, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error)
	UpdateTemplate(ctx context.Context, templateID string, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error)
	DeleteTemplate(ctx context.Context, templateID string) error
	RenderTemplate(ctx context.Context, templateID string, req domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error)
}

// AssistGateway is the remote surface of the assist inbox.
type AssistGateway interface {
	ListAssistRequests(ctx context.Context, status domain.AssistStatus) (domain.AssistInbox, error)
	AnswerAssistRequest(ctx context.Context, requestID, answer string) (domain.AssistRequest, error)
}

// TransferGateway is the remote surface of the transfer store.
type TransferGateway interface {
	ListPendingTransfers(ctx context.Context) ([]domain.TransferRequest, error)
	RespondTransfer(ctx context.Context, requestID string, resp domain.TransferResponse) error
	TransferHistory(ctx context.Context, sessionName string) ([]domain.TransferHistoryRecord, error)
}

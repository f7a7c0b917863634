package service

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/ticket-console/internal/domain"
)

var errNotStubbed = errors.New("not stubbed")

// fakeGateway implements every gateway interface with overridable funcs and a call log.
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	listTickets   func(domain.TicketListFilters) (domain.TicketPage, error)
	searchTickets func(string) ([]domain.Ticket, error)
	filterTickets func(domain.TicketFilterPayload) (domain.TicketPage, error)
	listArchived  func(domain.ArchivedTicketQuery) (domain.TicketPage, error)
	getTicket     func(string) (domain.Ticket, error)
	mutate        func(op, id string) (domain.Ticket, error)
	addComment    func(string, domain.TicketCommentPayload) (domain.Comment, error)
	deleteComment func(string, string) error
	batch         func(op string, ids []string) (domain.BatchResult, error)
	slaSummary    func() (domain.SLASummary, error)
	slaAlerts     func() (domain.SLAAlerts, error)
	export        func(domain.ExportRequest) (domain.ExportFile, error)
	recommend     func(domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error)

	listTemplates  func() ([]domain.TicketTemplate, error)
	saveTemplate   func(id string, p domain.TicketTemplatePayload) (domain.TicketTemplate, error)
	deleteTemplate func(string) error
	renderTemplate func(string, domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error)

	listAssist   func(domain.AssistStatus) (domain.AssistInbox, error)
	answerAssist func(string, string) (domain.AssistRequest, error)

	listPending     func() ([]domain.TransferRequest, error)
	respondTransfer func(string, domain.TransferResponse) error
	transferHistory func(string) ([]domain.TransferHistoryRecord, error)
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeGateway) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) count(name string) int {
	n := 0
	for _, c := range f.callLog() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) ListTickets(_ context.Context, filters domain.TicketListFilters) (domain.TicketPage, error) {
	f.record("list")
	if f.listTickets == nil {
		return domain.TicketPage{}, errNotStubbed
	}
	return f.listTickets(filters)
}

func (f *fakeGateway) SearchTickets(_ context.Context, keyword string) ([]domain.Ticket, error) {
	f.record("search")
	if f.searchTickets == nil {
		return nil, errNotStubbed
	}
	return f.searchTickets(keyword)
}

func (f *fakeGateway) FilterTickets(_ context.Context, payload domain.TicketFilterPayload) (domain.TicketPage, error) {
	f.record("filter")
	if f.filterTickets == nil {
		return domain.TicketPage{}, errNotStubbed
	}
	return f.filterTickets(payload)
}

func (f *fakeGateway) ListArchivedTickets(_ context.Context, q domain.ArchivedTicketQuery) (domain.TicketPage, error) {
	f.record("archived")
	if f.listArchived == nil {
		return domain.TicketPage{}, errNotStubbed
	}
	return f.listArchived(q)
}

func (f *fakeGateway) GetTicket(_ context.Context, id string) (domain.Ticket, error) {
	f.record("get")
	if f.getTicket == nil {
		return domain.Ticket{}, errNotStubbed
	}
	return f.getTicket(id)
}

func (f *fakeGateway) mutation(op, id string) (domain.Ticket, error) {
	f.record(op)
	if f.mutate == nil {
		return domain.Ticket{}, errNotStubbed
	}
	return f.mutate(op, id)
}

func (f *fakeGateway) CreateManualTicket(_ context.Context, _ domain.CreateManualTicketPayload) (domain.Ticket, error) {
	return f.mutation("create", "")
}

func (f *fakeGateway) UpdateTicket(_ context.Context, id string, _ domain.UpdateTicketPayload) (domain.Ticket, error) {
	return f.mutation("update", id)
}

func (f *fakeGateway) AssignTicket(_ context.Context, id string, _ domain.AssignTicketPayload) (domain.Ticket, error) {
	return f.mutation("assign", id)
}

func (f *fakeGateway) ReopenTicket(_ context.Context, id string, _ domain.ReopenTicketPayload) (domain.Ticket, error) {
	return f.mutation("reopen", id)
}

func (f *fakeGateway) ArchiveTicket(_ context.Context, id string, _ domain.ArchiveTicketPayload) (domain.Ticket, error) {
	return f.mutation("archive", id)
}

func (f *fakeGateway) AddComment(_ context.Context, id string, p domain.TicketCommentPayload) (domain.Comment, error) {
	f.record("add_comment")
	if f.addComment == nil {
		return domain.Comment{}, errNotStubbed
	}
	return f.addComment(id, p)
}

func (f *fakeGateway) DeleteComment(_ context.Context, id, commentID string) error {
	f.record("delete_comment")
	if f.deleteComment == nil {
		return errNotStubbed
	}
	return f.deleteComment(id, commentID)
}

func (f *fakeGateway) runBatch(op string, ids []string) (domain.BatchResult, error) {
	f.record(op)
	if f.batch == nil {
		return domain.BatchResult{}, errNotStubbed
	}
	return f.batch(op, ids)
}

func (f *fakeGateway) BatchAssign(_ context.Context, req domain.BatchAssignRequest) (domain.BatchResult, error) {
	return f.runBatch("batch_assign", req.TicketIDs)
}

func (f *fakeGateway) BatchClose(_ context.Context, req domain.BatchCloseRequest) (domain.BatchResult, error) {
	return f.runBatch("batch_close", req.TicketIDs)
}

func (f *fakeGateway) BatchPriority(_ context.Context, req domain.BatchPriorityRequest) (domain.BatchResult, error) {
	return f.runBatch("batch_priority", req.TicketIDs)
}

func (f *fakeGateway) SLASummary(context.Context) (domain.SLASummary, error) {
	f.record("sla_summary")
	if f.slaSummary == nil {
		return domain.SLASummary{}, errNotStubbed
	}
	return f.slaSummary()
}

func (f *fakeGateway) SLAAlerts(context.Context) (domain.SLAAlerts, error) {
	f.record("sla_alerts")
	if f.slaAlerts == nil {
		return domain.SLAAlerts{}, errNotStubbed
	}
	return f.slaAlerts()
}

func (f *fakeGateway) ExportTickets(_ context.Context, req domain.ExportRequest) (domain.ExportFile, error) {
	f.record("export")
	if f.export == nil {
		return domain.ExportFile{}, errNotStubbed
	}
	return f.export(req)
}

func (f *fakeGateway) RecommendAssignment(_ context.Context, p domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error) {
	f.record("recommend")
	if f.recommend == nil {
		return domain.SmartAssignRecommendation{}, errNotStubbed
	}
	return f.recommend(p)
}

func (f *fakeGateway) ListTemplates(context.Context) ([]domain.TicketTemplate, error) {
	f.record("list_templates")
	if f.listTemplates == nil {
		return nil, errNotStubbed
	}
	return f.listTemplates()
}

func (f *fakeGateway) CreateTemplate(_ context.Context, p domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	f.record("create_template")
	if f.saveTemplate == nil {
		return domain.TicketTemplate{}, errNotStubbed
	}
	return f.saveTemplate("", p)
}

func (f *fakeGateway) UpdateTemplate(_ context.Context, id string, p domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	f.record("update_template")
	if f.saveTemplate == nil {
		return domain.TicketTemplate{}, errNotStubbed
	}
	return f.saveTemplate(id, p)
}

func (f *fakeGateway) DeleteTemplate(_ context.Context, id string) error {
	f.record("delete_template")
	if f.deleteTemplate == nil {
		return errNotStubbed
	}
	return f.deleteTemplate(id)
}

func (f *fakeGateway) RenderTemplate(_ context.Context, id string, req domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error) {
	f.record("render_template")
	if f.renderTemplate == nil {
		return domain.RenderTemplateResponse{}, errNotStubbed
	}
	return f.renderTemplate(id, req)
}

func (f *fakeGateway) ListAssistRequests(_ context.Context, status domain.AssistStatus) (domain.AssistInbox, error) {
	f.record("list_assist")
	if f.listAssist == nil {
		return domain.AssistInbox{}, errNotStubbed
	}
	return f.listAssist(status)
}

func (f *fakeGateway) AnswerAssistRequest(_ context.Context, id, answer string) (domain.AssistRequest, error) {
	f.record("answer_assist")
	if f.answerAssist == nil {
		return domain.AssistRequest{}, errNotStubbed
	}
	return f.answerAssist(id, answer)
}

func (f *fakeGateway) ListPendingTransfers(context.Context) ([]domain.TransferRequest, error) {
	f.record("list_pending")
	if f.listPending == nil {
		return nil, errNotStubbed
	}
	return f.listPending()
}

func (f *fakeGateway) RespondTransfer(_ context.Context, id string, resp domain.TransferResponse) error {
	f.record("respond_transfer")
	if f.respondTransfer == nil {
		return errNotStubbed
	}
	return f.respondTransfer(id, resp)
}

func (f *fakeGateway) TransferHistory(_ context.Context, name string) ([]domain.TransferHistoryRecord, error) {
	f.record("transfer_history")
	if f.transferHistory == nil {
		return nil, errNotStubbed
	}
	return f.transferHistory(name)
}

func tk(id string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		TicketID: id,
		Title:    "ticket " + id,
		Status:   status,
		Priority: domain.TicketPriorityMedium,
		Comments: []domain.Comment{},
	}
}

func ticketIDs(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.TicketID)
	}
	return out
}

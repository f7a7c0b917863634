package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/backend"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// TicketsHandler serves the /api/tickets endpoints.
type TicketsHandler struct {
	desk *backend.TicketDesk
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(desk *backend.TicketDesk) *TicketsHandler {
	return &TicketsHandler{desk: desk}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", repository.DefaultListLimit),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(priority)}
	}
	if agentID := c.Query("assigned_agent_id"); agentID != "" {
		filter.AssignedAgentIDs = []string{agentID}
	}
	return h.page(c, filter)
}

// SearchTickets GET /api/tickets/search.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	tickets, err := h.desk.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.SearchResult{Tickets: tickets}))
}

// FilterTickets POST /api/tickets/filter.
func (h *TicketsHandler) FilterTickets(c *fiber.Ctx) error {
	var req domain.TicketFilterPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.page(c, filterFromPayload(req))
}

// ListArchived GET /api/tickets/archived.
func (h *TicketsHandler) ListArchived(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Archived:      true,
		CustomerEmail: c.Query("customer_email"),
		Limit:         c.QueryInt("limit", repository.DefaultListLimit),
		Offset:        c.QueryInt("offset", 0),
	}
	var err error
	if filter.UpdatedFrom, err = parseDay(c.Query("start_date"), 0); err != nil {
		return err
	}
	if filter.UpdatedTo, err = parseDay(c.Query("end_date"), 24*time.Hour); err != nil {
		return err
	}
	return h.page(c, filter)
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.desk.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(ticket))
}

// CreateManual POST /api/tickets/manual.
func (h *TicketsHandler) CreateManual(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	var req domain.CreateManualTicketPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.desk.CreateManual(c.UserContext(), agent, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(ticket))
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req domain.UpdateTicketPayload
	return h.mutate(c, &req, func(agent domain.Agent, id string) (*domain.Ticket, error) {
		return h.desk.Update(c.UserContext(), agent, id, req)
	})
}

// AssignTicket POST /api/tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req domain.AssignTicketPayload
	return h.mutate(c, &req, func(agent domain.Agent, id string) (*domain.Ticket, error) {
		return h.desk.Assign(c.UserContext(), agent, id, req)
	})
}

// ReopenTicket POST /api/tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	var req domain.ReopenTicketPayload
	return h.mutate(c, &req, func(agent domain.Agent, id string) (*domain.Ticket, error) {
		return h.desk.Reopen(c.UserContext(), agent, id, req)
	})
}

// ArchiveTicket POST /api/tickets/:id/archive.
func (h *TicketsHandler) ArchiveTicket(c *fiber.Ctx) error {
	var req domain.ArchiveTicketPayload
	return h.mutate(c, &req, func(agent domain.Agent, id string) (*domain.Ticket, error) {
		return h.desk.Archive(c.UserContext(), agent, id, req)
	})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	var req domain.TicketCommentPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.desk.AddComment(c.UserContext(), agent, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(comment))
}

// DeleteComment DELETE /api/tickets/:id/comments/:comment_id.
func (h *TicketsHandler) DeleteComment(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	if err := h.desk.DeleteComment(c.UserContext(), agent, c.Params("id"), c.Params("comment_id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("comment deleted"))
}

// BatchAssign POST /api/tickets/batch/assign.
func (h *TicketsHandler) BatchAssign(c *fiber.Ctx) error {
	var req domain.BatchAssignRequest
	return h.batch(c, &req, func(agent domain.Agent) (domain.BatchResult, error) {
		return h.desk.BatchAssign(c.UserContext(), agent, req)
	})
}

// BatchClose POST /api/tickets/batch/close.
func (h *TicketsHandler) BatchClose(c *fiber.Ctx) error {
	var req domain.BatchCloseRequest
	return h.batch(c, &req, func(agent domain.Agent) (domain.BatchResult, error) {
		return h.desk.BatchClose(c.UserContext(), agent, req)
	})
}

// BatchPriority POST /api/tickets/batch/priority.
func (h *TicketsHandler) BatchPriority(c *fiber.Ctx) error {
	var req domain.BatchPriorityRequest
	return h.batch(c, &req, func(agent domain.Agent) (domain.BatchResult, error) {
		return h.desk.BatchPriority(c.UserContext(), agent, req)
	})
}

// SLASummary GET /api/tickets/sla-summary.
func (h *TicketsHandler) SLASummary(c *fiber.Ctx) error {
	summary, err := h.desk.SLASummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(summary))
}

// SLAAlerts GET /api/tickets/sla-alerts.
func (h *TicketsHandler) SLAAlerts(c *fiber.Ctx) error {
	alerts, err := h.desk.SLAAlerts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(alerts))
}

// Recommend POST /api/tickets/assign/recommend. An empty roster is a
// successful response without data.
func (h *TicketsHandler) Recommend(c *fiber.Ctx) error {
	var req domain.SmartAssignPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rec, err := h.desk.Recommend(c.UserContext(), req)
	if errors.Is(err, backend.ErrNoAgentAvailable) {
		return c.JSON(dto.OKMessage(err.Error()))
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(rec))
}

// Export POST /api/tickets/export. The response body is the raw document.
func (h *TicketsHandler) Export(c *fiber.Ctx) error {
	var req struct {
		Format  domain.ExportFormat        `json:"format"`
		Filters domain.TicketFilterPayload `json:"filters"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doc, err := h.desk.Export(c.UserContext(), req.Format, filterFromPayload(req.Filters))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	if doc.Disposition != "" {
		c.Set(fiber.HeaderContentDisposition, doc.Disposition)
	}
	return c.Send(doc.Data)
}

func (h *TicketsHandler) page(c *fiber.Ctx, filter repository.TicketFilter) error {
	if filter.Limit <= 0 {
		filter.Limit = repository.DefaultListLimit
	}
	tickets, total, err := h.desk.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewTicketPage(tickets, total, filter.Limit, filter.Offset)))
}

func (h *TicketsHandler) mutate(c *fiber.Ctx, req any, apply func(domain.Agent, string) (*domain.Ticket, error)) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := apply(agent, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(ticket))
}

func (h *TicketsHandler) batch(c *fiber.Ctx, req any, apply func(domain.Agent) (domain.BatchResult, error)) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := apply(agent)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(result))
}

func filterFromPayload(p domain.TicketFilterPayload) repository.TicketFilter {
	filter := repository.TicketFilter{
		Statuses:         p.Statuses,
		Priorities:       p.Priorities,
		TicketTypes:      p.TicketTypes,
		AssignedAgentIDs: p.AssignedAgentIDs,
		Assigned:         p.Assigned,
		Keyword:          strings.TrimSpace(p.Keyword),
		Tags:             p.Tags,
		Categories:       p.Categories,
		CreatedFrom:      p.CreatedStart,
		CreatedTo:        p.CreatedEnd,
		UpdatedFrom:      p.UpdatedStart,
		UpdatedTo:        p.UpdatedEnd,
		SortBy:           p.SortBy,
		Limit:            p.Limit,
		Offset:           p.Offset,
	}
	if p.SortDesc != nil {
		filter.SortAsc = !*p.SortDesc
	}
	return filter
}

// parseDay reads a YYYY-MM-DD date and shifts it by offset.
func parseDay(value string, offset time.Duration) (*domain.UnixTime, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, apperrors.NewValidationError("dates must be YYYY-MM-DD", map[string]any{"value": value})
	}
	ts := domain.NewUnixTime(day.Add(offset))
	return &ts, nil
}

func agentOf(c *fiber.Ctx) (domain.Agent, error) {
	agent, ok := auth.AgentFromContext(c)
	if !ok || agent == nil {
		return domain.Agent{}, apperrors.NewUnauthorized("agent required")
	}
	return *agent, nil
}

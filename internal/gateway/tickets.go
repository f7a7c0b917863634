package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// ListTickets fetches one page of tickets. Zero-valued filters are not sent.
func (c *Client) ListTickets(ctx context.Context, filters domain.TicketListFilters) (domain.TicketPage, error) {
	query := url.Values{}
	setQuery(query, "status", string(filters.Status))
	setQuery(query, "priority", string(filters.Priority))
	setQuery(query, "assigned_agent_id", filters.AssignedAgentID)
	setQueryInt(query, "limit", filters.Limit)
	setQueryInt(query, "offset", filters.Offset)

	var page domain.TicketPage
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/tickets",
		Path:   "/api/tickets",
		Query:  query,
	}, &page)
	return page, err
}

// SearchTickets runs a keyword search. The caller trims the query.
// Results are read from data.tickets, then from a top-level tickets field.
func (c *Client) SearchTickets(ctx context.Context, keyword string) ([]domain.Ticket, error) {
	const route = "/api/tickets/search"
	var result struct {
		Tickets []domain.Ticket `json:"tickets"`
	}
	env, err := c.call(ctx, request{
		Method: http.MethodGet,
		Route:  route,
		Path:   route,
		Query:  url.Values{"query": []string{keyword}},
	})
	if err != nil {
		return nil, err
	}
	if err := env.decode(route, &result); err != nil {
		return nil, err
	}
	if len(result.Tickets) == 0 {
		if err := env.decodeField(route, env.Tickets, &result.Tickets); err != nil {
			return nil, err
		}
	}
	if result.Tickets == nil {
		result.Tickets = []domain.Ticket{}
	}
	return result.Tickets, nil
}

// FilterTickets runs the advanced filter.
func (c *Client) FilterTickets(ctx context.Context, payload domain.TicketFilterPayload) (domain.TicketPage, error) {
	var page domain.TicketPage
	err := c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/tickets/filter",
		Path:   "/api/tickets/filter",
		Body:   payload,
	}, &page)
	return page, err
}

// ListArchivedTickets fetches one page of archived tickets.
func (c *Client) ListArchivedTickets(ctx context.Context, q domain.ArchivedTicketQuery) (domain.TicketPage, error) {
	query := url.Values{}
	setQuery(query, "customer_email", q.CustomerEmail)
	setQuery(query, "start_date", q.StartDate)
	setQuery(query, "end_date", q.EndDate)
	setQueryInt(query, "limit", q.Limit)
	setQueryInt(query, "offset", q.Offset)

	var page domain.TicketPage
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/tickets/archived",
		Path:   "/api/tickets/archived",
		Query:  query,
	}, &page)
	return page, err
}

// GetTicket fetches one ticket with its history and comments.
func (c *Client) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodGet, "/api/tickets/{id}", "/api/tickets/"+segment(ticketID), nil)
}

// CreateManualTicket creates a ticket outside of a chat session.
func (c *Client) CreateManualTicket(ctx context.Context, payload domain.CreateManualTicketPayload) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodPost, "/api/tickets/manual", "/api/tickets/manual", payload)
}

// UpdateTicket patches a ticket.
func (c *Client) UpdateTicket(ctx context.Context, ticketID string, payload domain.UpdateTicketPayload) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodPatch, "/api/tickets/{id}", "/api/tickets/"+segment(ticketID), payload)
}

// AssignTicket hands a ticket to an agent.
func (c *Client) AssignTicket(ctx context.Context, ticketID string, payload domain.AssignTicketPayload) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodPost, "/api/tickets/{id}/assign", "/api/tickets/"+segment(ticketID)+"/assign", payload)
}

// ReopenTicket moves a resolved or closed ticket back to in_progress.
func (c *Client) ReopenTicket(ctx context.Context, ticketID string, payload domain.ReopenTicketPayload) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodPost, "/api/tickets/{id}/reopen", "/api/tickets/"+segment(ticketID)+"/reopen", payload)
}

// ArchiveTicket archives a ticket.
func (c *Client) ArchiveTicket(ctx context.Context, ticketID string, payload domain.ArchiveTicketPayload) (domain.Ticket, error) {
	return c.ticketCall(ctx, http.MethodPost, "/api/tickets/{id}/archive", "/api/tickets/"+segment(ticketID)+"/archive", payload)
}

// AddComment posts a comment and returns it as stored by the server.
func (c *Client) AddComment(ctx context.Context, ticketID string, payload domain.TicketCommentPayload) (domain.Comment, error) {
	var comment domain.Comment
	err := c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/tickets/{id}/comments",
		Path:   "/api/tickets/" + segment(ticketID) + "/comments",
		Body:   payload,
	}, &comment)
	return comment, err
}

// DeleteComment removes a comment from a ticket.
func (c *Client) DeleteComment(ctx context.Context, ticketID, commentID string) error {
	return c.callInto(ctx, request{
		Method: http.MethodDelete,
		Route:  "/api/tickets/{id}/comments/{comment_id}",
		Path:   "/api/tickets/" + segment(ticketID) + "/comments/" + segment(commentID),
	}, nil)
}

// BatchAssign assigns several tickets to one agent.
func (c *Client) BatchAssign(ctx context.Context, req domain.BatchAssignRequest) (domain.BatchResult, error) {
	return c.batchCall(ctx, "/api/tickets/batch/assign", req)
}

// BatchClose closes several tickets.
func (c *Client) BatchClose(ctx context.Context, req domain.BatchCloseRequest) (domain.BatchResult, error) {
	return c.batchCall(ctx, "/api/tickets/batch/close", req)
}

// BatchPriority changes the priority of several tickets.
func (c *Client) BatchPriority(ctx context.Context, req domain.BatchPriorityRequest) (domain.BatchResult, error) {
	return c.batchCall(ctx, "/api/tickets/batch/priority", req)
}

// SLASummary fetches the aggregated SLA figures.
func (c *Client) SLASummary(ctx context.Context) (domain.SLASummary, error) {
	var summary domain.SLASummary
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/tickets/sla-summary",
		Path:   "/api/tickets/sla-summary",
	}, &summary)
	return summary, err
}

// SLAAlerts fetches tickets breaching their SLA targets.
func (c *Client) SLAAlerts(ctx context.Context) (domain.SLAAlerts, error) {
	var alerts domain.SLAAlerts
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/tickets/sla-alerts",
		Path:   "/api/tickets/sla-alerts",
	}, &alerts)
	return alerts, err
}

// errNoAgentAvailable is the message used when the recommender returns no agent.
const errNoAgentAvailable = "no agent available"

// RecommendAssignment asks the server which agent should take a ticket.
func (c *Client) RecommendAssignment(ctx context.Context, payload domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error) {
	r := request{
		Method: http.MethodPost,
		Route:  "/api/tickets/assign/recommend",
		Path:   "/api/tickets/assign/recommend",
		Body:   payload,
	}
	env, err := c.call(ctx, r)
	if err != nil {
		return domain.SmartAssignRecommendation{}, err
	}
	if !env.hasData() {
		message := messageText(env.Message)
		if message == "" {
			message = errNoAgentAvailable
		}
		return domain.SmartAssignRecommendation{}, apperrors.NewRemoteError(env.status, message, "")
	}
	var rec domain.SmartAssignRecommendation
	if err := env.decode(r.Route, &rec); err != nil {
		return domain.SmartAssignRecommendation{}, err
	}
	return rec, nil
}

func (c *Client) ticketCall(ctx context.Context, method, route, path string, body any) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := c.callInto(ctx, request{Method: method, Route: route, Path: path, Body: body}, &ticket)
	return ticket, err
}

func (c *Client) batchCall(ctx context.Context, path string, body any) (domain.BatchResult, error) {
	var result domain.BatchResult
	err := c.callInto(ctx, request{Method: http.MethodPost, Route: path, Path: path, Body: body}, &result)
	if result.Failed == nil {
		result.Failed = []domain.BatchFailure{}
	}
	return result, err
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setQueryInt(q url.Values, key string, value int) {
	if value != 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

// Package backend holds the business rules of the in-memory ticket service
// used for local development and end-to-end tests of the console.
package backend

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// TicketDesk coordinates ticket workflows of the fake backend.
type TicketDesk struct {
	tickets repository.TicketRepository
	roster  []RosterAgent
	logger  *zap.Logger
	now     func() time.Time
}

// DeskDependencies bundles collaborators for the desk.
type DeskDependencies struct {
	TicketRepo repository.TicketRepository
	// Roster lists the agents the assignment recommender can choose from.
	Roster []RosterAgent
	Logger *zap.Logger
	Now    func() time.Time
}

// NewTicketDesk constructs the desk.
func NewTicketDesk(deps DeskDependencies) *TicketDesk {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketDesk{
		tickets: deps.TicketRepo,
		roster:  slices.Clone(deps.Roster),
		logger:  observability.OrNop(deps.Logger),
		now:     now,
	}
}

// List returns one page of tickets and the total match count.
func (d *TicketDesk) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	return d.tickets.List(ctx, filter)
}

// Search returns every non-archived ticket matching keyword.
func (d *TicketDesk) Search(ctx context.Context, keyword string) ([]domain.Ticket, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, apperrors.NewValidationError("query required", nil)
	}
	all, err := d.tickets.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0)
	for _, t := range all {
		if t.Status != domain.TicketStatusArchived && repository.MatchesKeyword(t, keyword) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns one ticket.
func (d *TicketDesk) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return d.tickets.GetByID(ctx, id)
}

// CreateManual creates a ticket on behalf of agent.
func (d *TicketDesk) CreateManual(ctx context.Context, agent domain.Agent, p domain.CreateManualTicketPayload) (*domain.Ticket, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	now := domain.NewUnixTime(d.now())
	ticket := &domain.Ticket{
		Title:         title,
		Description:   strings.TrimSpace(p.Description),
		TicketType:    p.TicketType,
		Status:        domain.TicketStatusPending,
		Priority:      p.Priority,
		CreatedBy:     agent.ID,
		CreatedByName: optional(agent.Name),
		Customer:      &p.Customer,
		Metadata:      maps.Clone(p.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ticket.TicketType == "" {
		ticket.TicketType = domain.TicketTypeAfterSale
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	ticket.History = []domain.StatusHistory{d.historyEntry(nil, domain.TicketStatusPending, agent.ID, "created", "")}
	if p.AssignedAgentID != "" {
		d.assign(ticket, agent, p.AssignedAgentID, p.AssignedAgentName, "")
	}
	if err := d.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	d.logger.Info("ticket created", zap.String("ticket_id", ticket.TicketID), zap.String("agent_id", agent.ID))
	return ticket, nil
}

// Update patches status, priority, assignee and metadata.
func (d *TicketDesk) Update(ctx context.Context, agent domain.Agent, id string, p domain.UpdateTicketPayload) (*domain.Ticket, error) {
	return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		if p.Status != nil && *p.Status != t.Status {
			if err := d.transition(t, *p.Status, agent.ID, p.ChangeReason, p.Note); err != nil {
				return err
			}
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.AssignedAgentID != nil {
			d.assign(t, agent, *p.AssignedAgentID, deref(p.AssignedAgentName), p.Note)
		}
		if t.Metadata == nil {
			t.Metadata = map[string]any{}
		}
		maps.Copy(t.Metadata, p.MetadataUpdates)
		t.UpdatedAt = domain.NewUnixTime(d.now())
		return nil
	})
}

// Assign hands a ticket to another agent.
func (d *TicketDesk) Assign(ctx context.Context, agent domain.Agent, id string, p domain.AssignTicketPayload) (*domain.Ticket, error) {
	if strings.TrimSpace(p.AgentID) == "" {
		return nil, apperrors.NewValidationError("agent_id required", nil)
	}
	return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		if t.Status == domain.TicketStatusArchived {
			return apperrors.NewConflict("archived tickets cannot be assigned", map[string]any{"ticket_id": id})
		}
		d.assign(t, agent, p.AgentID, p.AgentName, p.Note)
		t.UpdatedAt = domain.NewUnixTime(d.now())
		return nil
	})
}

// Reopen moves a resolved or closed ticket back to in_progress.
func (d *TicketDesk) Reopen(ctx context.Context, agent domain.Agent, id string, p domain.ReopenTicketPayload) (*domain.Ticket, error) {
	if strings.TrimSpace(p.Reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		if t.Status != domain.TicketStatusResolved && t.Status != domain.TicketStatusClosed {
			return apperrors.NewConflict("ticket cannot be reopened in current status", map[string]any{"status": t.Status})
		}
		if err := d.transition(t, domain.TicketStatusInProgress, agent.ID, p.Reason, p.Comment); err != nil {
			return err
		}
		now := domain.NewUnixTime(d.now())
		t.ReopenedCount++
		t.ReopenedAt = &now
		t.ReopenedBy = optional(agent.ID)
		t.ClosedAt = nil
		t.ResolvedAt = nil
		t.UpdatedAt = now
		return nil
	})
}

// Archive archives a resolved or closed ticket.
func (d *TicketDesk) Archive(ctx context.Context, agent domain.Agent, id string, p domain.ArchiveTicketPayload) (*domain.Ticket, error) {
	return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		if err := d.transition(t, domain.TicketStatusArchived, agent.ID, p.Reason, ""); err != nil {
			return err
		}
		now := domain.NewUnixTime(d.now())
		t.ArchivedAt = &now
		t.UpdatedAt = now
		return nil
	})
}

// AddComment appends a comment. A public reply by an agent starts the first response clock.
func (d *TicketDesk) AddComment(ctx context.Context, agent domain.Agent, id string, p domain.TicketCommentPayload) (domain.Comment, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return domain.Comment{}, apperrors.NewValidationError("content required", nil)
	}
	commentType := p.CommentType
	if commentType == "" {
		commentType = domain.CommentTypeInternal
	}
	comment := domain.Comment{
		CommentID:   uuid.NewString(),
		Content:     content,
		AuthorID:    agent.ID,
		AuthorName:  optional(agent.Name),
		CommentType: commentType,
		CreatedAt:   domain.NewUnixTime(d.now()),
	}
	_, err := d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		t.Comments = append(t.Comments, comment)
		if commentType == domain.CommentTypePublic && t.FirstResponseAt == nil {
			at := comment.CreatedAt
			t.FirstResponseAt = &at
		}
		t.UpdatedAt = comment.CreatedAt
		return nil
	})
	if err != nil {
		return domain.Comment{}, err
	}
	if p.NotifyAgentID != "" {
		d.logger.Info("comment notification", zap.String("ticket_id", id), zap.String("notify_agent_id", p.NotifyAgentID))
	}
	return comment, nil
}

// DeleteComment removes a comment. Only its author or an admin may remove it.
func (d *TicketDesk) DeleteComment(ctx context.Context, agent domain.Agent, id, commentID string) error {
	_, err := d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
		i := slices.IndexFunc(t.Comments, func(c domain.Comment) bool { return c.CommentID == commentID })
		if i < 0 {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		if t.Comments[i].AuthorID != agent.ID && agent.Role != domain.AgentRoleAdmin {
			return apperrors.NewDomainError("FORBIDDEN", "only the author can delete a comment", 403, nil)
		}
		t.Comments = slices.Delete(t.Comments, i, i+1)
		t.UpdatedAt = domain.NewUnixTime(d.now())
		return nil
	})
	return err
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:         {domain.TicketStatusInProgress, domain.TicketStatusWaitingCustomer, domain.TicketStatusWaitingVendor, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress:      {domain.TicketStatusPending, domain.TicketStatusWaitingCustomer, domain.TicketStatusWaitingVendor, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaitingCustomer: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaitingVendor:   {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:        {domain.TicketStatusInProgress, domain.TicketStatusClosed, domain.TicketStatusArchived},
	domain.TicketStatusClosed:          {domain.TicketStatusInProgress, domain.TicketStatusArchived},
	domain.TicketStatusArchived:        {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	return slices.Contains(allowedTransitions[current], next)
}

// transition applies a status change and appends the history entry.
func (d *TicketDesk) transition(t *domain.Ticket, next domain.TicketStatus, actorID, reason, comment string) error {
	if !isValidTransition(t.Status, next) {
		return apperrors.NewConflict("invalid status transition", map[string]any{"from": t.Status, "to": next})
	}
	from := t.Status
	t.History = append(t.History, d.historyEntry(&from, next, actorID, reason, comment))
	t.Status = next
	now := domain.NewUnixTime(d.now())
	switch next {
	case domain.TicketStatusResolved:
		t.ResolvedAt = &now
	case domain.TicketStatusClosed:
		t.ClosedAt = &now
		if t.ResolvedAt == nil {
			t.ResolvedAt = &now
		}
	}
	return nil
}

func (d *TicketDesk) historyEntry(from *domain.TicketStatus, to domain.TicketStatus, actorID, reason, comment string) domain.StatusHistory {
	return domain.StatusHistory{
		HistoryID:    uuid.NewString(),
		FromStatus:   from,
		ToStatus:     to,
		ChangedBy:    actorID,
		ChangeReason: optional(reason),
		Comment:      optional(comment),
		ChangedAt:    domain.NewUnixTime(d.now()),
	}
}

func (d *TicketDesk) assign(t *domain.Ticket, actor domain.Agent, agentID, agentName, note string) {
	if agentName == "" {
		agentName = d.rosterName(agentID)
	}
	t.AssignedAgentID = optional(agentID)
	t.AssignedAgentName = optional(agentName)
	t.Assignments = append(t.Assignments, domain.AssignmentRecord{
		AgentID:    optional(agentID),
		AgentName:  optional(agentName),
		AssignedBy: optional(actor.ID),
		Note:       optional(note),
		AssignedAt: domain.NewUnixTime(d.now()),
	})
	if t.Status == domain.TicketStatusPending && agentID != "" {
		from := t.Status
		t.History = append(t.History, d.historyEntry(&from, domain.TicketStatusInProgress, actor.ID, "assigned", ""))
		t.Status = domain.TicketStatusInProgress
	}
}

func (d *TicketDesk) rosterName(agentID string) string {
	for _, a := range d.roster {
		if a.ID == agentID {
			return a.Name
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// DefaultListLimit is applied when a filter has no limit.
const DefaultListLimit = 20

// TicketFilter captures list and advanced-filter parameters.
type TicketFilter struct {
	Statuses         []domain.TicketStatus
	Priorities       []domain.TicketPriority
	TicketTypes      []domain.TicketType
	AssignedAgentIDs []string
	// Assigned is "assigned", "unassigned" or empty.
	Assigned      string
	Keyword       string
	Tags          []string
	Categories    []string
	CustomerEmail string
	CreatedFrom   *domain.UnixTime
	CreatedTo     *domain.UnixTime
	UpdatedFrom   *domain.UnixTime
	UpdatedTo     *domain.UnixTime
	// Archived selects archived tickets only when true and excludes them otherwise.
	Archived bool
	SortBy   domain.TicketSortField
	SortAsc  bool
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// Mutate applies fn to the stored ticket atomically and saves it unless fn fails.
	Mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	All(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
}

// NewTicketRepository instantiates an in-memory repository.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.TicketID == "" {
		ticket.TicketID = "TKT-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if _, exists := r.tickets[ticket.TicketID]; exists {
		return apperrors.NewConflict("ticket already exists", map[string]any{"ticket_id": ticket.TicketID})
	}
	normalize(ticket)
	stored := ticket.Clone()
	r.tickets[ticket.TicketID] = &stored
	r.order = append(r.order, ticket.TicketID)
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	out := stored.Clone()
	return &out, nil
}

func (r *ticketRepository) Mutate(_ context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	working := stored.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.TicketID = id
	normalize(&working)
	saved := working.Clone()
	r.tickets[id] = &saved
	return &working, nil
}

func (r *ticketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	r.mu.RLock()
	matched := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		t := r.tickets[id]
		if filter.matches(t) {
			matched = append(matched, t.Clone())
		}
	}
	r.mu.RUnlock()

	sortTickets(matched, filter.SortBy, filter.SortAsc)

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	start := min(max(filter.Offset, 0), total)
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

func (r *ticketRepository) All(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tickets[id].Clone())
	}
	return out, nil
}

func normalize(t *domain.Ticket) {
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	if t.History == nil {
		t.History = []domain.StatusHistory{}
	}
	if t.Assignments == nil {
		t.Assignments = []domain.AssignmentRecord{}
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
}

func (f TicketFilter) matches(t *domain.Ticket) bool {
	if (t.Status == domain.TicketStatusArchived) != f.Archived {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, t.Priority) {
		return false
	}
	if len(f.TicketTypes) > 0 && !slices.Contains(f.TicketTypes, t.TicketType) {
		return false
	}
	assignee := deref(t.AssignedAgentID)
	if len(f.AssignedAgentIDs) > 0 && !slices.Contains(f.AssignedAgentIDs, assignee) {
		return false
	}
	switch f.Assigned {
	case "assigned":
		if assignee == "" {
			return false
		}
	case "unassigned":
		if assignee != "" {
			return false
		}
	}
	if f.CustomerEmail != "" {
		if t.Customer == nil || !strings.EqualFold(deref(t.Customer.Email), f.CustomerEmail) {
			return false
		}
	}
	if f.Keyword != "" && !MatchesKeyword(*t, f.Keyword) {
		return false
	}
	if len(f.Tags) > 0 && !overlaps(metadataStrings(t.Metadata, "tags"), f.Tags) {
		return false
	}
	if len(f.Categories) > 0 && !overlaps(metadataStrings(t.Metadata, "category"), f.Categories) {
		return false
	}
	return within(t.CreatedAt, f.CreatedFrom, f.CreatedTo) && within(t.UpdatedAt, f.UpdatedFrom, f.UpdatedTo)
}

// MatchesKeyword reports whether keyword occurs in the ticket's id, title,
// description or customer fields, ignoring case.
func MatchesKeyword(t domain.Ticket, keyword string) bool {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return true
	}
	fields := []string{t.TicketID, t.Title, t.Description, deref(t.SessionName)}
	if t.Customer != nil {
		fields = append(fields, deref(t.Customer.Name), deref(t.Customer.Email), deref(t.Customer.Phone))
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

var priorityRank = map[domain.TicketPriority]int{
	domain.TicketPriorityLow:    0,
	domain.TicketPriorityMedium: 1,
	domain.TicketPriorityHigh:   2,
	domain.TicketPriorityUrgent: 3,
}

func sortTickets(tickets []domain.Ticket, by domain.TicketSortField, asc bool) {
	key := func(t domain.Ticket) float64 {
		switch by {
		case domain.SortByCreatedAt:
			return float64(t.CreatedAt)
		case domain.SortByPriority:
			return float64(priorityRank[t.Priority])
		case domain.SortByResolvedAt:
			return optTime(t.ResolvedAt)
		case domain.SortByFirstResponseAt:
			return optTime(t.FirstResponseAt)
		case domain.SortByReopenedAt:
			return optTime(t.ReopenedAt)
		default:
			return float64(t.UpdatedAt)
		}
	}
	slices.SortStableFunc(tickets, func(a, b domain.Ticket) int {
		if by == domain.SortByStatus {
			c := strings.Compare(string(a.Status), string(b.Status))
			if !asc {
				c = -c
			}
			return c
		}
		ka, kb := key(a), key(b)
		var c int
		switch {
		case ka < kb:
			c = -1
		case ka > kb:
			c = 1
		}
		if !asc {
			c = -c
		}
		return c
	})
}

func optTime(t *domain.UnixTime) float64 {
	if t == nil {
		return 0
	}
	return float64(*t)
}

func within(t domain.UnixTime, from, to *domain.UnixTime) bool {
	if from != nil && t < *from {
		return false
	}
	if to != nil && t > *to {
		return false
	}
	return true
}

func metadataStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

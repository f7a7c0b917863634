package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/repository"
)

// DefaultRoster is the agent roster of the development backend.
var DefaultRoster = []RosterAgent{
	{ID: "agent-ann", Name: "Ann", Skills: []string{"billing", "refund"}},
	{ID: "agent-bo", Name: "Bo", Skills: []string{"shipping", "logistics"}},
	{ID: "agent-cy", Name: "Cy", Skills: []string{"vip", "complaint"}},
}

// Seed fills the repositories with a small working set for agent.
func Seed(ctx context.Context, now time.Time, agent domain.Agent, tickets repository.TicketRepository, templates repository.TemplateRepository, sessions repository.SessionRepository) error {
	at := func(ago time.Duration) domain.UnixTime { return domain.NewUnixTime(now.Add(-ago)) }
	str := func(s string) *string { return &s }

	samples := []domain.Ticket{
		{
			TicketID:    "TKT-1001",
			Title:       "Refund not received",
			Description: "Order 4411 was cancelled two weeks ago",
			TicketType:  domain.TicketTypeAfterSale,
			Status:      domain.TicketStatusPending,
			Priority:    domain.TicketPriorityHigh,
			CreatedBy:   agent.ID,
			Customer:    &domain.CustomerInfo{Name: str("Dana"), Email: str("dana@example.com")},
			Metadata:    map[string]any{"tags": []any{"refund"}, "category": "billing"},
			CreatedAt:   at(3 * time.Hour),
			UpdatedAt:   at(3 * time.Hour),
		},
		{
			TicketID:          "TKT-1002",
			Title:             "Parcel stuck in customs",
			Description:       "Tracking has not moved for five days",
			TicketType:        domain.TicketTypeAfterSale,
			Status:            domain.TicketStatusInProgress,
			Priority:          domain.TicketPriorityMedium,
			CreatedBy:         agent.ID,
			AssignedAgentID:   str(agent.ID),
			AssignedAgentName: str(agent.Name),
			Customer:          &domain.CustomerInfo{Name: str("Eli"), Email: str("eli@example.com"), Country: str("DE")},
			Metadata:          map[string]any{"category": "shipping"},
			FirstResponseAt:   ptr(at(29 * time.Hour)),
			CreatedAt:         at(30 * time.Hour),
			UpdatedAt:         at(2 * time.Hour),
		},
		{
			TicketID:        "TKT-1003",
			Title:           "Bulk pricing question",
			Description:     "Wants a quote for 500 units",
			TicketType:      domain.TicketTypePreSale,
			Status:          domain.TicketStatusResolved,
			Priority:        domain.TicketPriorityLow,
			CreatedBy:       agent.ID,
			Customer:        &domain.CustomerInfo{Email: str("procurement@example.org")},
			FirstResponseAt: ptr(at(71 * time.Hour)),
			ResolvedAt:      ptr(at(48 * time.Hour)),
			CreatedAt:       at(72 * time.Hour),
			UpdatedAt:       at(48 * time.Hour),
		},
	}
	for i := range samples {
		if err := tickets.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}

	if _, err := templates.Create(ctx, domain.TicketTemplate{
		ID:        "tpl-greeting",
		Name:      "Greeting",
		Category:  "general",
		Content:   "Hi {{customer_name}}, thanks for contacting us about {{ticket_id}}.",
		Variables: []string{"customer_name", "ticket_id"},
		CreatedBy: agent.ID,
		CreatedAt: at(time.Hour),
		UpdatedAt: at(time.Hour),
	}); err != nil {
		return err
	}

	if err := sessions.AddAssistRequest(ctx, domain.AssistRequest{
		ID:          uuid.NewString(),
		SessionName: "session-42",
		Requester:   "agent-bo",
		Assistant:   agent.ID,
		Question:    "Can we refund shipping on a partial return?",
		Status:      domain.AssistStatusPending,
		CreatedAt:   at(20 * time.Minute),
	}); err != nil {
		return err
	}
	return sessions.AddTransferRequest(ctx, domain.TransferRequest{
		ID:            uuid.NewString(),
		SessionName:   "session-42",
		FromAgentID:   "agent-bo",
		FromAgentName: "Bo",
		ToAgentID:     agent.ID,
		ToAgentName:   agent.Name,
		Reason:        "billing expertise",
		Status:        "pending",
		CreatedAt:     at(10 * time.Minute),
	})
}

func ptr[T any](v T) *T { return &v }

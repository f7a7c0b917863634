package backend

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// BatchAssign assigns every listed ticket it can and reports the rest as failures.
func (d *TicketDesk) BatchAssign(ctx context.Context, agent domain.Agent, req domain.BatchAssignRequest) (domain.BatchResult, error) {
	if req.TargetAgentID == "" {
		return domain.BatchResult{}, apperrors.NewValidationError("target_agent_id required", nil)
	}
	return d.batch(ctx, req.TicketIDs, func(id string) (*domain.Ticket, error) {
		return d.Assign(ctx, agent, id, domain.AssignTicketPayload{AgentID: req.TargetAgentID, AgentName: req.TargetAgentName, Note: req.Note})
	})
}

// BatchClose closes every listed ticket it can.
func (d *TicketDesk) BatchClose(ctx context.Context, agent domain.Agent, req domain.BatchCloseRequest) (domain.BatchResult, error) {
	return d.batch(ctx, req.TicketIDs, func(id string) (*domain.Ticket, error) {
		return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
			if t.Status == domain.TicketStatusClosed {
				return apperrors.NewConflict("ticket already closed", nil)
			}
			if err := d.transition(t, domain.TicketStatusClosed, agent.ID, req.CloseReason, req.Comment); err != nil {
				return err
			}
			t.UpdatedAt = domain.NewUnixTime(d.now())
			return nil
		})
	})
}

// BatchPriority changes the priority of every listed ticket it can. Admins only.
func (d *TicketDesk) BatchPriority(ctx context.Context, agent domain.Agent, req domain.BatchPriorityRequest) (domain.BatchResult, error) {
	if agent.Role != domain.AgentRoleAdmin {
		return domain.BatchResult{}, apperrors.NewDomainError("FORBIDDEN", "admins only", 403, nil)
	}
	if _, ok := slaTargets[req.Priority]; !ok {
		return domain.BatchResult{}, apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}
	return d.batch(ctx, req.TicketIDs, func(id string) (*domain.Ticket, error) {
		return d.tickets.Mutate(ctx, id, func(t *domain.Ticket) error {
			if t.Status == domain.TicketStatusArchived {
				return apperrors.NewConflict("archived tickets are read-only", nil)
			}
			t.Priority = req.Priority
			t.UpdatedAt = domain.NewUnixTime(d.now())
			return nil
		})
	})
}

func (d *TicketDesk) batch(_ context.Context, ids []string, apply func(id string) (*domain.Ticket, error)) (domain.BatchResult, error) {
	if len(ids) == 0 {
		return domain.BatchResult{}, apperrors.NewValidationError("ticket_ids required", nil)
	}
	result := domain.BatchResult{Failed: []domain.BatchFailure{}, Tickets: []domain.Ticket{}}
	for _, id := range ids {
		ticket, err := apply(id)
		if err != nil {
			result.Failed = append(result.Failed, domain.BatchFailure{TicketID: id, Error: failureText(err)})
			continue
		}
		result.Succeeded++
		result.Tickets = append(result.Tickets, *ticket)
	}
	if len(result.Failed) > 0 {
		d.logger.Info("batch partially applied", zap.Int("succeeded", result.Succeeded), zap.Int("failed", len(result.Failed)))
	}
	return result, nil
}

func failureText(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

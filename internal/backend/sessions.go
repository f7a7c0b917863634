package backend

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// SessionDesk serves colleague assistance and session transfer requests.
type SessionDesk struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionDesk constructs the desk.
func NewSessionDesk(sessions repository.SessionRepository, logger *zap.Logger, now func() time.Time) *SessionDesk {
	if now == nil {
		now = time.Now
	}
	return &SessionDesk{sessions: sessions, logger: observability.OrNop(logger), now: now}
}

// AssistInbox splits the requests agent asked and was asked. An empty status
// or AssistStatusAll returns requests of every status.
func (s *SessionDesk) AssistInbox(ctx context.Context, agent domain.Agent, status domain.AssistStatus) (domain.AssistInbox, error) {
	all, err := s.sessions.AssistRequests(ctx)
	if err != nil {
		return domain.AssistInbox{}, err
	}
	inbox := domain.AssistInbox{Received: []domain.AssistRequest{}, Sent: []domain.AssistRequest{}}
	for _, req := range all {
		if status != "" && status != domain.AssistStatusAll && req.Status != status {
			continue
		}
		switch agent.ID {
		case req.Assistant:
			inbox.Received = append(inbox.Received, req)
		case req.Requester:
			inbox.Sent = append(inbox.Sent, req)
		}
	}
	return inbox, nil
}

// AnswerAssist answers a pending request addressed to agent.
func (s *SessionDesk) AnswerAssist(ctx context.Context, agent domain.Agent, id, answer string) (domain.AssistRequest, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return domain.AssistRequest{}, apperrors.NewValidationError("answer required", nil)
	}
	return s.sessions.UpdateAssistRequest(ctx, id, func(req *domain.AssistRequest) error {
		if req.Assistant != agent.ID {
			return apperrors.NewDomainError("FORBIDDEN", "request is addressed to another agent", 403, nil)
		}
		if req.Status != domain.AssistStatusPending {
			return apperrors.NewConflict("request already answered", map[string]any{"request_id": id})
		}
		now := domain.NewUnixTime(s.now())
		req.Answer = &answer
		req.Status = domain.AssistStatusAnswered
		req.AnsweredAt = &now
		return nil
	})
}

// PendingTransfers lists transfer requests waiting on agent.
func (s *SessionDesk) PendingTransfers(ctx context.Context, agent domain.Agent) ([]domain.TransferRequest, error) {
	all, err := s.sessions.TransferRequests(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.TransferRequest{}
	for _, req := range all {
		if req.ToAgentID == agent.ID {
			out = append(out, req)
		}
	}
	return out, nil
}

// RespondTransfer accepts or declines a transfer addressed to agent and records the decision.
func (s *SessionDesk) RespondTransfer(ctx context.Context, agent domain.Agent, id string, resp domain.TransferResponse) (domain.TransferHistoryRecord, error) {
	var decision domain.TransferDecision
	switch resp.Action {
	case domain.TransferActionAccept:
		decision = domain.TransferDecisionAccepted
	case domain.TransferActionDecline:
		decision = domain.TransferDecisionDeclined
	default:
		return domain.TransferHistoryRecord{}, apperrors.NewValidationError("action must be accept or decline", map[string]any{"action": resp.Action})
	}
	record, err := s.sessions.ResolveTransfer(ctx, id, func(req domain.TransferRequest) (domain.TransferHistoryRecord, error) {
		if req.ToAgentID != agent.ID {
			return domain.TransferHistoryRecord{}, apperrors.NewDomainError("FORBIDDEN", "transfer is addressed to another agent", 403, nil)
		}
		now := domain.NewUnixTime(s.now())
		return domain.TransferHistoryRecord{
			ID:            req.ID,
			SessionName:   req.SessionName,
			FromAgent:     req.FromAgentID,
			FromAgentName: req.FromAgentName,
			ToAgent:       req.ToAgentID,
			ToAgentName:   req.ToAgentName,
			Reason:        req.Reason,
			Note:          req.Note,
			TransferredAt: req.CreatedAt,
			Accepted:      decision == domain.TransferDecisionAccepted,
			Decision:      decision,
			RespondedAt:   &now,
			ResponseNote:  resp.ResponseNote,
		}, nil
	})
	if err != nil {
		return domain.TransferHistoryRecord{}, err
	}
	s.logger.Info("transfer answered",
		zap.String("request_id", id),
		zap.String("session_name", record.SessionName),
		zap.String("decision", string(decision)))
	return record, nil
}

// TransferHistory lists completed transfers of a session.
func (s *SessionDesk) TransferHistory(ctx context.Context, sessionName string) ([]domain.TransferHistoryRecord, error) {
	return s.sessions.TransferHistory(ctx, sessionName)
}

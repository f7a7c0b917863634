package service

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
)

// AssistStore mirrors the colleague assistance requests of the agent.
type AssistStore struct {
	gateway AssistGateway
	logger  *zap.Logger
	query   *queryTracker

	mu       sync.RWMutex
	received []domain.AssistRequest
	sent     []domain.AssistRequest
}

// NewAssistStore constructs the store.
func NewAssistStore(gateway AssistGateway, logger *zap.Logger) *AssistStore {
	return &AssistStore{
		gateway: gateway,
		logger:  observability.OrNop(logger).Named("assist"),
		query:   newQueryTracker("failed to load assist requests", nil),
	}
}

// Received returns requests other agents sent to this one.
func (s *AssistStore) Received() []domain.AssistRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.received)
}

// Sent returns requests this agent sent.
func (s *AssistStore) Sent() []domain.AssistRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sent)
}

// PendingCount counts received requests still waiting for an answer.
func (s *AssistStore) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.received {
		if r.Status == domain.AssistStatusPending {
			n++
		}
	}
	return n
}

// State returns the fetch query state.
func (s *AssistStore) State() QueryState { return s.query.state() }

// FetchRequests replaces both directions of the inbox. AssistStatusAll fetches every status.
func (s *AssistStore) FetchRequests(ctx context.Context, status domain.AssistStatus) (inbox domain.AssistInbox, err error) {
	defer s.query.begin()(&err)

	inbox, err = s.gateway.ListAssistRequests(ctx, status)
	if err != nil {
		return domain.AssistInbox{}, err
	}
	s.mu.Lock()
	s.received = slices.Clone(inbox.Received)
	s.sent = slices.Clone(inbox.Sent)
	s.mu.Unlock()
	return inbox, nil
}

// AnswerRequest replies to a received request. The inbox is refreshed by the next fetch.
func (s *AssistStore) AnswerRequest(ctx context.Context, requestID, answer string) (domain.AssistRequest, error) {
	answered, err := s.gateway.AnswerAssistRequest(ctx, requestID, answer)
	if err != nil {
		return domain.AssistRequest{}, err
	}
	s.logger.Debug("assist request answered", zap.String("request_id", requestID))
	return answered, nil
}

// Clear empties the inbox.
func (s *AssistStore) Clear() {
	s.mu.Lock()
	s.received = nil
	s.sent = nil
	s.mu.Unlock()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// TransferStore tracks session transfer requests and per-session transfer history.
type TransferStore struct {
	gateway TransferGateway
	logger  *zap.Logger

	pendingQuery *queryTracker
	historyQuery *queryTracker

	mu      sync.RWMutex
	pending []domain.TransferRequest
	history []domain.TransferHistoryRecord
}

// NewTransferStore constructs the store.
func NewTransferStore(gateway TransferGateway, logger *zap.Logger) *TransferStore {
	return &TransferStore{
		gateway:      gateway,
		logger:       observability.OrNop(logger).Named("transfers"),
		pendingQuery: newQueryTracker("failed to load transfer requests", nil),
		historyQuery: newQueryTracker("failed to load transfer history", nil),
	}
}

// Pending returns transfer requests waiting on the agent.
func (s *TransferStore) Pending() []domain.TransferRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pending)
}

// History returns the last fetched transfer history.
func (s *TransferStore) History() []domain.TransferHistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

func (s *TransferStore) PendingState() QueryState { return s.pendingQuery.state() }
func (s *TransferStore) HistoryState() QueryState { return s.historyQuery.state() }

// FetchPending replaces the pending transfer list. A missing credential empties it.
func (s *TransferStore) FetchPending(ctx context.Context) (pending []domain.TransferRequest, err error) {
	defer s.pendingQuery.begin()(&err)

	pending, err = s.gateway.ListPendingTransfers(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			s.setPending(nil)
		}
		s.logger.Warn("fetch pending transfers", zap.Error(err))
		return nil, err
	}
	s.setPending(pending)
	return pending, nil
}

// Respond accepts or declines a transfer, then refreshes the pending list.
func (s *TransferStore) Respond(ctx context.Context, requestID string, action domain.TransferAction, note string) error {
	switch action {
	case domain.TransferActionAccept, domain.TransferActionDecline:
	default:
		return fmt.Errorf("unknown transfer action %q", action)
	}
	if err := s.gateway.RespondTransfer(ctx, requestID, domain.TransferResponse{Action: action, ResponseNote: note}); err != nil {
		s.logger.Warn("respond to transfer", zap.String("request_id", requestID), zap.Error(err))
		return err
	}
	if _, err := s.FetchPending(ctx); err != nil {
		return fmt.Errorf("refresh pending transfers: %w", err)
	}
	return nil
}

// FetchHistory loads the transfer history of a session. An empty name clears
// the history without any call. Any failure clears it too.
func (s *TransferStore) FetchHistory(ctx context.Context, sessionName string) (history []domain.TransferHistoryRecord, err error) {
	if sessionName == "" {
		s.ClearHistory()
		return []domain.TransferHistoryRecord{}, nil
	}

	defer s.historyQuery.begin()(&err)

	history, err = s.gateway.TransferHistory(ctx, sessionName)
	if err != nil {
		s.ClearHistory()
		s.logger.Warn("fetch transfer history", zap.String("session_name", sessionName), zap.Error(err))
		return nil, err
	}
	s.mu.Lock()
	s.history = slices.Clone(history)
	s.mu.Unlock()
	return history, nil
}

// ClearHistory empties the transfer history.
func (s *TransferStore) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

func (s *TransferStore) setPending(pending []domain.TransferRequest) {
	s.mu.Lock()
	s.pending = slices.Clone(pending)
	s.mu.Unlock()
}

package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// SessionRepository stores assistance and transfer requests between agents.
type SessionRepository interface {
	AddAssistRequest(ctx context.Context, req domain.AssistRequest) error
	AssistRequests(ctx context.Context) ([]domain.AssistRequest, error)
	UpdateAssistRequest(ctx context.Context, id string, fn func(*domain.AssistRequest) error) (domain.AssistRequest, error)

	AddTransferRequest(ctx context.Context, req domain.TransferRequest) error
	TransferRequests(ctx context.Context) ([]domain.TransferRequest, error)
	// ResolveTransfer removes a pending transfer and records its outcome in the session history.
	ResolveTransfer(ctx context.Context, id string, fn func(domain.TransferRequest) (domain.TransferHistoryRecord, error)) (domain.TransferHistoryRecord, error)
	TransferHistory(ctx context.Context, sessionName string) ([]domain.TransferHistoryRecord, error)
}

type sessionRepository struct {
	mu        sync.RWMutex
	assists   []domain.AssistRequest
	transfers []domain.TransferRequest
	history   map[string][]domain.TransferHistoryRecord
}

// NewSessionRepository instantiates an in-memory session repository.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{history: make(map[string][]domain.TransferHistoryRecord)}
}

func (r *sessionRepository) AddAssistRequest(_ context.Context, req domain.AssistRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assists = append(r.assists, req)
	return nil
}

func (r *sessionRepository) AssistRequests(_ context.Context) ([]domain.AssistRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AssistRequest, len(r.assists))
	copy(out, r.assists)
	return out, nil
}

func (r *sessionRepository) UpdateAssistRequest(_ context.Context, id string, fn func(*domain.AssistRequest) error) (domain.AssistRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.assists {
		if r.assists[i].ID != id {
			continue
		}
		working := r.assists[i]
		if err := fn(&working); err != nil {
			return domain.AssistRequest{}, err
		}
		r.assists[i] = working
		return working, nil
	}
	return domain.AssistRequest{}, apperrors.NewNotFound("assist request", map[string]any{"request_id": id})
}

func (r *sessionRepository) AddTransferRequest(_ context.Context, req domain.TransferRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, req)
	return nil
}

func (r *sessionRepository) TransferRequests(_ context.Context) ([]domain.TransferRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TransferRequest, len(r.transfers))
	copy(out, r.transfers)
	return out, nil
}

func (r *sessionRepository) ResolveTransfer(_ context.Context, id string, fn func(domain.TransferRequest) (domain.TransferHistoryRecord, error)) (domain.TransferHistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, req := range r.transfers {
		if req.ID != id {
			continue
		}
		record, err := fn(req)
		if err != nil {
			return domain.TransferHistoryRecord{}, err
		}
		r.transfers = append(r.transfers[:i], r.transfers[i+1:]...)
		r.history[req.SessionName] = append(r.history[req.SessionName], record)
		return record, nil
	}
	return domain.TransferHistoryRecord{}, apperrors.NewNotFound("transfer request", map[string]any{"request_id": id})
}

func (r *sessionRepository) TransferHistory(_ context.Context, sessionName string) ([]domain.TransferHistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.history[sessionName]
	out := make([]domain.TransferHistoryRecord, len(records))
	copy(out, records)
	return out, nil
}

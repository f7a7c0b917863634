package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// ErrEmptyBatch is returned before any call when a batch names no tickets.
var ErrEmptyBatch = errors.New("select at least one ticket")

// BatchAssign assigns several tickets to one agent.
// Per-ticket failures are reported in the result, not as an error.
func (s *TicketStore) BatchAssign(ctx context.Context, req domain.BatchAssignRequest) (domain.BatchResult, error) {
	if len(req.TicketIDs) == 0 {
		return domain.BatchResult{}, ErrEmptyBatch
	}
	result, err := s.gateway.BatchAssign(ctx, req)
	return s.mergeBatch("assign", result, err)
}

// BatchClose closes several tickets.
func (s *TicketStore) BatchClose(ctx context.Context, req domain.BatchCloseRequest) (domain.BatchResult, error) {
	if len(req.TicketIDs) == 0 {
		return domain.BatchResult{}, ErrEmptyBatch
	}
	result, err := s.gateway.BatchClose(ctx, req)
	return s.mergeBatch("close", result, err)
}

// BatchPriority changes the priority of several tickets.
func (s *TicketStore) BatchPriority(ctx context.Context, req domain.BatchPriorityRequest) (domain.BatchResult, error) {
	if len(req.TicketIDs) == 0 {
		return domain.BatchResult{}, ErrEmptyBatch
	}
	result, err := s.gateway.BatchPriority(ctx, req)
	return s.mergeBatch("priority", result, err)
}

// mergeBatch upserts every returned ticket. Tickets that failed keep their cached value.
func (s *TicketStore) mergeBatch(op string, result domain.BatchResult, err error) (domain.BatchResult, error) {
	if err != nil {
		return domain.BatchResult{}, err
	}
	s.cache.UpsertMany(result.Tickets)
	if len(result.Failed) > 0 {
		s.logger.Warn("batch partially applied",
			zap.String("op", op),
			zap.Int("succeeded", result.Succeeded),
			zap.Int("failed", len(result.Failed)),
			zap.Strings("failed_ids", result.FailedIDs()))
	}
	return result, nil
}

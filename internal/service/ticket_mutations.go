package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// CreateManualTicket creates a ticket and prepends it to the mirror.
func (s *TicketStore) CreateManualTicket(ctx context.Context, payload domain.CreateManualTicketPayload) (domain.Ticket, error) {
	return s.upsertResult(s.gateway.CreateManualTicket(ctx, payload))
}

// UpdateTicket patches a ticket and upserts the server's value.
func (s *TicketStore) UpdateTicket(ctx context.Context, ticketID string, payload domain.UpdateTicketPayload) (domain.Ticket, error) {
	return s.upsertResult(s.gateway.UpdateTicket(ctx, ticketID, payload))
}

// AssignTicket hands a ticket to an agent and upserts the server's value.
func (s *TicketStore) AssignTicket(ctx context.Context, ticketID string, payload domain.AssignTicketPayload) (domain.Ticket, error) {
	return s.upsertResult(s.gateway.AssignTicket(ctx, ticketID, payload))
}

// ReopenTicket reopens a ticket and upserts the server's value.
func (s *TicketStore) ReopenTicket(ctx context.Context, ticketID string, payload domain.ReopenTicketPayload) (domain.Ticket, error) {
	return s.upsertResult(s.gateway.ReopenTicket(ctx, ticketID, payload))
}

// ArchiveTicket archives a ticket and upserts the server's value.
func (s *TicketStore) ArchiveTicket(ctx context.Context, ticketID string, payload domain.ArchiveTicketPayload) (domain.Ticket, error) {
	return s.upsertResult(s.gateway.ArchiveTicket(ctx, ticketID, payload))
}

// AddComment posts a comment in two phases. When the ticket is open in the
// detail slot the comment is appended locally first; the ticket is then
// re-fetched silently and the server value overwrites the local one.
// If only the re-fetch fails, the stored comment is returned along with the error.
func (s *TicketStore) AddComment(ctx context.Context, ticketID string, payload domain.TicketCommentPayload) (domain.Comment, error) {
	comment, err := s.gateway.AddComment(ctx, ticketID, payload)
	if err != nil {
		return domain.Comment{}, err
	}

	s.cache.UpdateCurrent(ticketID, func(t *domain.Ticket) {
		t.Comments = append(t.Comments, comment)
	})

	if _, err := s.FetchTicketByID(ctx, ticketID, Silent()); err != nil {
		s.logger.Warn("reconcile ticket after comment",
			zap.String("ticket_id", ticketID),
			zap.String("comment_id", comment.CommentID),
			zap.Error(err))
		return comment, fmt.Errorf("refresh ticket %s: %w", ticketID, err)
	}
	return comment, nil
}

// DeleteComment removes a comment on the server and from the open ticket. Nothing is re-fetched.
func (s *TicketStore) DeleteComment(ctx context.Context, ticketID, commentID string) error {
	if err := s.gateway.DeleteComment(ctx, ticketID, commentID); err != nil {
		return err
	}
	s.cache.UpdateCurrent(ticketID, func(t *domain.Ticket) {
		t.Comments = slices.DeleteFunc(t.Comments, func(c domain.Comment) bool {
			return c.CommentID == commentID
		})
	})
	return nil
}

// RemoveTicket drops a ticket from the mirror without any remote call.
func (s *TicketStore) RemoveTicket(ticketID string) {
	s.cache.Evict(ticketID)
}

// ClearCurrent closes the detail view.
func (s *TicketStore) ClearCurrent() {
	s.cache.ClearCurrent()
}

func (s *TicketStore) upsertResult(ticket domain.Ticket, err error) (domain.Ticket, error) {
	if err != nil {
		return domain.Ticket{}, err
	}
	s.cache.Upsert(ticket)
	return ticket, nil
}

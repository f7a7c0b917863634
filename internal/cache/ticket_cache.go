// Package cache holds the in-memory mirror of server-side tickets.
//
// TicketCache is the only writer of the mirrored ticket collection. List-shaped
// fetches replace it wholesale, single-ticket results are upserted, and the
// current-detail slot is kept identical to the list entry with the same id.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
)

// DefaultPageLimit is the page size reported before the first fetch.
const DefaultPageLimit = 20

// TicketCache is an ordered ticket sequence plus pagination cursors and one current ticket.
type TicketCache struct {
	mu         sync.RWMutex
	tickets    []domain.Ticket
	page       domain.Pagination
	current    *domain.Ticket
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// Option configures a TicketCache.
type Option func(*TicketCache)

// WithLogger records subscriber failures at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *TicketCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs an empty cache. dispatcher may be nil.
func New(dispatcher events.Dispatcher, opts ...Option) *TicketCache {
	c := &TicketCache{
		page:       domain.Pagination{Limit: DefaultPageLimit},
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the cached tickets in server order.
func (c *TicketCache) List() []domain.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Ticket, len(c.tickets))
	for i := range c.tickets {
		out[i] = c.tickets[i].Clone()
	}
	return out
}

// Len returns the number of cached tickets.
func (c *TicketCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

// Get returns the cached ticket with id.
func (c *TicketCache) Get(id string) (domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.tickets[i].Clone(), true
	}
	return domain.Ticket{}, false
}

// Pagination returns the cursor state of the last wholesale replace.
func (c *TicketCache) Pagination() domain.Pagination {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Current returns the ticket open in the detail view.
func (c *TicketCache) Current() (domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return domain.Ticket{}, false
	}
	return c.current.Clone(), true
}

// Upsert replaces the ticket with the same id in place, or prepends it when absent.
// The current ticket is replaced too when its id matches.
func (c *TicketCache) Upsert(ticket domain.Ticket) {
	c.mu.Lock()
	inserted, position := c.upsertLocked(ticket.Clone())
	c.mu.Unlock()

	c.publish(events.EventTicketUpserted, ticket.TicketID, events.TicketUpsertedPayload{Inserted: inserted, Position: position})
}

// UpsertMany upserts each ticket in order.
func (c *TicketCache) UpsertMany(tickets []domain.Ticket) {
	for i := range tickets {
		c.Upsert(tickets[i])
	}
}

// ReplaceAll discards the cached sequence and pagination in favor of a fresh fetch.
// A current ticket that appears in the fresh sequence takes the fresh value;
// one that does not is left alone.
func (c *TicketCache) ReplaceAll(tickets []domain.Ticket, page domain.Pagination) {
	fresh := make([]domain.Ticket, len(tickets))
	for i := range tickets {
		fresh[i] = tickets[i].Clone()
	}

	c.mu.Lock()
	c.tickets = fresh
	c.page = page
	var refreshed string
	if c.current != nil {
		if i := c.indexOf(c.current.TicketID); i >= 0 {
			cur := fresh[i].Clone()
			c.current = &cur
			refreshed = cur.TicketID
		}
	}
	c.mu.Unlock()

	c.publish(events.EventTicketsReplaced, "", events.TicketsReplacedPayload{Count: len(fresh), Total: page.Total, HasMore: page.HasMore})
	if refreshed != "" {
		c.publish(events.EventCurrentChanged, refreshed, events.CurrentChangedPayload{})
	}
}

// Evict removes the ticket from the sequence and clears the current slot if it referenced it.
// Evicting an absent id is a no-op.
func (c *TicketCache) Evict(id string) {
	c.mu.Lock()
	removed := false
	if i := c.indexOf(id); i >= 0 {
		c.tickets = append(c.tickets[:i:i], c.tickets[i+1:]...)
		removed = true
	}
	clearedCurrent := false
	if c.current != nil && c.current.TicketID == id {
		c.current = nil
		clearedCurrent = true
	}
	c.mu.Unlock()

	if removed {
		c.publish(events.EventTicketEvicted, id, nil)
	}
	if clearedCurrent {
		c.publish(events.EventCurrentChanged, id, events.CurrentChangedPayload{Cleared: true})
	}
}

// SetCurrent opens ticket in the detail slot and upserts it into the sequence.
func (c *TicketCache) SetCurrent(ticket domain.Ticket) {
	c.mu.Lock()
	cur := ticket.Clone()
	c.current = &cur
	inserted, position := c.upsertLocked(ticket.Clone())
	c.mu.Unlock()

	c.publish(events.EventCurrentChanged, ticket.TicketID, events.CurrentChangedPayload{})
	c.publish(events.EventTicketUpserted, ticket.TicketID, events.TicketUpsertedPayload{Inserted: inserted, Position: position})
}

// ClearCurrent empties the detail slot.
func (c *TicketCache) ClearCurrent() {
	c.mu.Lock()
	var id string
	if c.current != nil {
		id = c.current.TicketID
	}
	c.current = nil
	c.mu.Unlock()

	if id != "" {
		c.publish(events.EventCurrentChanged, id, events.CurrentChangedPayload{Cleared: true})
	}
}

// UpdateCurrent applies fn to the current ticket when it has the given id.
// A list entry with the same id receives the same new value. It reports whether fn ran.
func (c *TicketCache) UpdateCurrent(id string, fn func(*domain.Ticket)) bool {
	c.mu.Lock()
	if c.current == nil || c.current.TicketID != id {
		c.mu.Unlock()
		return false
	}
	next := c.current.Clone()
	fn(&next)
	next.TicketID = id
	c.current = &next
	if i := c.indexOf(id); i >= 0 {
		c.tickets[i] = next.Clone()
	}
	c.mu.Unlock()

	c.publish(events.EventCurrentChanged, id, events.CurrentChangedPayload{})
	return true
}

func (c *TicketCache) upsertLocked(ticket domain.Ticket) (inserted bool, position int) {
	if i := c.indexOf(ticket.TicketID); i >= 0 {
		c.tickets[i] = ticket
		position = i
	} else {
		c.tickets = append([]domain.Ticket{ticket}, c.tickets...)
		inserted = true
	}
	if c.current != nil && c.current.TicketID == ticket.TicketID {
		cur := ticket.Clone()
		c.current = &cur
	}
	return inserted, position
}

func (c *TicketCache) indexOf(id string) int {
	for i := range c.tickets {
		if c.tickets[i].TicketID == id {
			return i
		}
	}
	return -1
}

func (c *TicketCache) publish(eventType events.EventType, ticketID string, payload interface{}) {
	if c.dispatcher == nil {
		return
	}
	// Subscribers observe the cache; their failures never undo a write.
	err := c.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		c.logger.Debug("cache subscriber failed",
			zap.String("event", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}

package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/observability"
)

// CacheActivity logs ticket cache changes and keeps a running tally per event type.
type CacheActivity struct {
	logger *zap.Logger

	mu     sync.Mutex
	counts map[events.EventType]int
}

// StartCacheActivityWorker subscribes a CacheActivity to dispatcher.
func StartCacheActivityWorker(dispatcher events.Dispatcher, logger *zap.Logger) *CacheActivity {
	w := &CacheActivity{
		logger: observability.OrNop(logger).Named("cache"),
		counts: make(map[events.EventType]int),
	}
	if dispatcher == nil {
		return w
	}
	dispatcher.Subscribe(events.EventTicketUpserted, w.handleUpserted)
	dispatcher.Subscribe(events.EventTicketsReplaced, w.handleReplaced)
	dispatcher.Subscribe(events.EventTicketEvicted, w.handleEvicted)
	dispatcher.Subscribe(events.EventCurrentChanged, w.handleCurrentChanged)
	return w
}

// Counts returns how many events of each type were seen.
func (w *CacheActivity) Counts() map[events.EventType]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[events.EventType]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

func (w *CacheActivity) record(t events.EventType) {
	w.mu.Lock()
	w.counts[t]++
	w.mu.Unlock()
}

func (w *CacheActivity) handleUpserted(_ context.Context, event events.Event) error {
	w.record(event.Type)
	fields := []zap.Field{zap.String("ticket_id", event.TicketID)}
	if p, ok := event.Payload.(events.TicketUpsertedPayload); ok {
		fields = append(fields, zap.Bool("inserted", p.Inserted), zap.Int("position", p.Position))
	}
	w.logger.Debug("TicketUpserted", fields...)
	return nil
}

func (w *CacheActivity) handleReplaced(_ context.Context, event events.Event) error {
	w.record(event.Type)
	if p, ok := event.Payload.(events.TicketsReplacedPayload); ok {
		w.logger.Debug("TicketsReplaced", zap.Int("count", p.Count), zap.Int("total", p.Total), zap.Bool("has_more", p.HasMore))
		return nil
	}
	w.logger.Debug("TicketsReplaced")
	return nil
}

func (w *CacheActivity) handleEvicted(_ context.Context, event events.Event) error {
	w.record(event.Type)
	w.logger.Debug("TicketEvicted", zap.String("ticket_id", event.TicketID))
	return nil
}

func (w *CacheActivity) handleCurrentChanged(_ context.Context, event events.Event) error {
	w.record(event.Type)
	cleared := false
	if p, ok := event.Payload.(events.CurrentChangedPayload); ok {
		cleared = p.Cleared
	}
	w.logger.Debug("CurrentTicketChanged", zap.String("ticket_id", event.TicketID), zap.Bool("cleared", cleared))
	return nil
}

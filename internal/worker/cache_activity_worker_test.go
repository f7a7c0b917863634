package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-console/internal/cache"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
)

func TestCacheActivityCountsAndLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	activity := StartCacheActivityWorker(dispatcher, zap.New(core))
	c := cache.New(dispatcher)

	c.ReplaceAll([]domain.Ticket{{TicketID: "T1"}, {TicketID: "T2"}}, domain.Pagination{Total: 2})
	c.Upsert(domain.Ticket{TicketID: "T3"})
	c.SetCurrent(domain.Ticket{TicketID: "T3"})
	c.Evict("T3")

	assert.Equal(t, map[events.EventType]int{
		events.EventTicketsReplaced: 1,
		events.EventTicketUpserted:  2,
		events.EventCurrentChanged:  2,
		events.EventTicketEvicted:   1,
	}, activity.Counts())

	replaced := logs.FilterMessage("TicketsReplaced").All()
	if assert.Len(t, replaced, 1) {
		assert.EqualValues(t, 2, replaced[0].ContextMap()["count"])
	}
	evicted := logs.FilterMessage("CurrentTicketChanged").FilterField(zap.Bool("cleared", true)).All()
	assert.Len(t, evicted, 1)
}

func TestNilDispatcherIsInert(t *testing.T) {
	activity := StartCacheActivityWorker(nil, nil)
	assert.Empty(t, activity.Counts())
}

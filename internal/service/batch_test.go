package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

func TestBatchCloseMergesPartialSuccess(t *testing.T) {
	locked := tk("T9", domain.TicketStatusInProgress)
	gw := &fakeGateway{batch: func(op string, ids []string) (domain.BatchResult, error) {
		assert.Equal(t, "batch_close", op)
		assert.Equal(t, []string{"T1", "T2", "T3", "T9"}, ids)
		return domain.BatchResult{
			Succeeded: 3,
			Failed:    []domain.BatchFailure{{TicketID: "T9", Error: "locked"}},
			Tickets: []domain.Ticket{
				tk("T1", domain.TicketStatusClosed),
				tk("T2", domain.TicketStatusClosed),
				tk("T3", domain.TicketStatusClosed),
			},
		}, nil
	}}
	store := newStore(gw)
	seed(store,
		tk("T1", domain.TicketStatusInProgress),
		tk("T2", domain.TicketStatusInProgress),
		tk("T3", domain.TicketStatusInProgress),
		locked,
	)

	result, err := store.BatchClose(context.Background(), domain.BatchCloseRequest{TicketIDs: []string{"T1", "T2", "T3", "T9"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, []string{"T9"}, result.FailedIDs())

	for _, id := range []string{"T1", "T2", "T3"} {
		got, ok := store.Cache().Get(id)
		require.True(t, ok)
		assert.Equal(t, domain.TicketStatusClosed, got.Status, id)
	}
	got, _ := store.Cache().Get("T9")
	assert.Equal(t, locked, got)
	assert.Equal(t, []string{"T1", "T2", "T3", "T9"}, ticketIDs(store.Tickets()))
}

func TestBatchReturnsUnseenTicketsPrepended(t *testing.T) {
	gw := &fakeGateway{batch: func(string, []string) (domain.BatchResult, error) {
		return domain.BatchResult{Succeeded: 1, Tickets: []domain.Ticket{tk("NEW", domain.TicketStatusInProgress)}}, nil
	}}
	store := newStore(gw)
	seed(store, tk("T1", ""))

	_, err := store.BatchAssign(context.Background(), domain.BatchAssignRequest{TicketIDs: []string{"NEW"}, TargetAgentID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW", "T1"}, ticketIDs(store.Tickets()))
}

func TestEmptyBatchFailsBeforeAnyCall(t *testing.T) {
	gw := &fakeGateway{}
	store := newStore(gw)
	ctx := context.Background()

	_, err := store.BatchAssign(ctx, domain.BatchAssignRequest{TargetAgentID: "a1"})
	assert.ErrorIs(t, err, ErrEmptyBatch)
	_, err = store.BatchClose(ctx, domain.BatchCloseRequest{TicketIDs: []string{}})
	assert.ErrorIs(t, err, ErrEmptyBatch)
	_, err = store.BatchPriority(ctx, domain.BatchPriorityRequest{Priority: domain.TicketPriorityUrgent})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	assert.Empty(t, gw.callLog())
}

func TestBatchFailureLeavesMirrorAlone(t *testing.T) {
	gw := &fakeGateway{batch: func(string, []string) (domain.BatchResult, error) {
		return domain.BatchResult{}, apperrors.NewRemoteError(403, "admins only", "")
	}}
	store := newStore(gw)
	seed(store, tk("T1", domain.TicketStatusPending))

	_, err := store.BatchPriority(context.Background(), domain.BatchPriorityRequest{TicketIDs: []string{"T1"}, Priority: domain.TicketPriorityHigh})
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "admins only", remote.Message)
	assert.Equal(t, []domain.Ticket{tk("T1", domain.TicketStatusPending)}, store.Tickets())
}

func TestAllFailedBatchIsNotAnError(t *testing.T) {
	gw := &fakeGateway{batch: func(string, []string) (domain.BatchResult, error) {
		return domain.BatchResult{Failed: []domain.BatchFailure{{TicketID: "T1", Error: "locked"}, {TicketID: "T2", Error: "locked"}}}, nil
	}}
	store := newStore(gw)

	result, err := store.BatchClose(context.Background(), domain.BatchCloseRequest{TicketIDs: []string{"T1", "T2"}})
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	assert.Len(t, result.Failed, 2)
}

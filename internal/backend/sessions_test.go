package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/repository"
)

func fixedNow() time.Time { return clock }

func TestRenderFillsFromTicketAndVariables(t *testing.T) {
	ctx := context.Background()
	tickets := repository.NewTicketRepository()
	name := "Dana"
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{TicketID: "T1", Customer: &domain.CustomerInfo{Name: &name}}))
	lib := NewTemplateLibrary(repository.NewTemplateRepository(), tickets, nil, fixedNow)

	tpl, err := lib.Create(ctx, ann, domain.TicketTemplatePayload{
		Name:    "Greeting",
		Content: "Hi {{customer_name}}, ticket {{ ticket_id }} is with {{agent}}. Order {{order}} / {{order}}",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_name", "ticket_id", "agent", "order"}, tpl.Variables)

	out, err := lib.Render(ctx, tpl.ID, domain.RenderTemplateRequest{TicketID: "T1", Variables: map[string]string{"agent": "Ann"}})
	require.NoError(t, err)
	assert.Equal(t, "Hi Dana, ticket T1 is with Ann. Order {{order}} / {{order}}", out.Content)
	assert.Equal(t, []string{"order"}, out.MissingVariables)

	_, err = lib.Render(ctx, tpl.ID, domain.RenderTemplateRequest{TicketID: "T404"})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestTemplateValidation(t *testing.T) {
	lib := NewTemplateLibrary(repository.NewTemplateRepository(), nil, nil, fixedNow)

	_, err := lib.Create(context.Background(), ann, domain.TicketTemplatePayload{Name: "x"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	_, err = lib.Replace(context.Background(), "missing", domain.TicketTemplatePayload{Name: "x", Content: "y"})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestAssistInboxDirections(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository()
	require.NoError(t, repo.AddAssistRequest(ctx, domain.AssistRequest{ID: "in", Requester: "agent-bo", Assistant: ann.ID, Status: domain.AssistStatusPending}))
	require.NoError(t, repo.AddAssistRequest(ctx, domain.AssistRequest{ID: "out", Requester: ann.ID, Assistant: "agent-cy", Status: domain.AssistStatusAnswered}))
	require.NoError(t, repo.AddAssistRequest(ctx, domain.AssistRequest{ID: "other", Requester: "agent-bo", Assistant: "agent-cy", Status: domain.AssistStatusPending}))
	desk := NewSessionDesk(repo, nil, fixedNow)

	inbox, err := desk.AssistInbox(ctx, ann, domain.AssistStatusAll)
	require.NoError(t, err)
	require.Len(t, inbox.Received, 1)
	require.Len(t, inbox.Sent, 1)
	assert.Equal(t, "in", inbox.Received[0].ID)
	assert.Equal(t, "out", inbox.Sent[0].ID)

	inbox, err = desk.AssistInbox(ctx, ann, domain.AssistStatusPending)
	require.NoError(t, err)
	assert.Len(t, inbox.Received, 1)
	assert.Empty(t, inbox.Sent)

	answered, err := desk.AnswerAssist(ctx, ann, "in", "yes, refund it")
	require.NoError(t, err)
	assert.Equal(t, domain.AssistStatusAnswered, answered.Status)
	assert.NotNil(t, answered.AnsweredAt)

	_, err = desk.AnswerAssist(ctx, ann, "in", "again")
	assert.Equal(t, "CONFLICT", domainCode(t, err))
	_, err = desk.AnswerAssist(ctx, ann, "other", "not mine")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestRespondTransferRecordsDecision(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository()
	require.NoError(t, repo.AddTransferRequest(ctx, domain.TransferRequest{ID: "x1", SessionName: "s1", FromAgentID: "agent-bo", ToAgentID: ann.ID}))
	desk := NewSessionDesk(repo, nil, fixedNow)

	_, err := desk.RespondTransfer(ctx, ann, "x1", domain.TransferResponse{Action: "maybe"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = desk.RespondTransfer(ctx, domain.Agent{ID: "agent-cy"}, "x1", domain.TransferResponse{Action: domain.TransferActionAccept})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	record, err := desk.RespondTransfer(ctx, ann, "x1", domain.TransferResponse{Action: domain.TransferActionDecline, ResponseNote: "busy"})
	require.NoError(t, err)
	assert.False(t, record.Accepted)
	assert.Equal(t, domain.TransferDecisionDeclined, record.Decision)

	pending, err := desk.PendingTransfers(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, pending)
	history, err := desk.TransferHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "busy", history[0].ResponseNote)
}

func TestSeedPopulatesEveryRepository(t *testing.T) {
	ctx := context.Background()
	tickets := repository.NewTicketRepository()
	templates := repository.NewTemplateRepository()
	sessions := repository.NewSessionRepository()

	require.NoError(t, Seed(ctx, clock, ann, tickets, templates, sessions))

	all, _ := tickets.All(ctx)
	assert.Len(t, all, 3)
	tpls, _ := templates.List(ctx)
	assert.Len(t, tpls, 1)
	desk := NewSessionDesk(sessions, nil, fixedNow)
	inbox, _ := desk.AssistInbox(ctx, ann, "")
	assert.Len(t, inbox.Received, 1)
	pending, _ := desk.PendingTransfers(ctx, ann)
	assert.Len(t, pending, 1)
}

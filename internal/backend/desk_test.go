package backend

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

var (
	clock = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	ann   = domain.Agent{ID: "agent-ann", Name: "Ann", Role: domain.AgentRoleAgent}
	admin = domain.Agent{ID: "agent-root", Name: "Root", Role: domain.AgentRoleAdmin}
)

func newDesk(t *testing.T, tickets ...domain.Ticket) (*TicketDesk, repository.TicketRepository) {
	t.Helper()
	repo := repository.NewTicketRepository()
	for i := range tickets {
		require.NoError(t, repo.Create(context.Background(), &tickets[i]))
	}
	desk := NewTicketDesk(DeskDependencies{
		TicketRepo: repo,
		Roster:     DefaultRoster,
		Now:        func() time.Time { return clock },
	})
	return desk, repo
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestCreateManualStartsPendingWithHistory(t *testing.T) {
	desk, _ := newDesk(t)

	ticket, err := desk.CreateManual(context.Background(), ann, domain.CreateManualTicketPayload{Title: "  Broken zipper "})
	require.NoError(t, err)
	assert.Equal(t, "Broken zipper", ticket.Title)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.Len(t, ticket.History, 1)
	assert.Nil(t, ticket.History[0].FromStatus)
	assert.Equal(t, domain.NewUnixTime(clock), ticket.CreatedAt)

	_, err = desk.CreateManual(context.Background(), ann, domain.CreateManualTicketPayload{Title: " "})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestAssignMovesPendingToInProgress(t *testing.T) {
	desk, _ := newDesk(t, domain.Ticket{TicketID: "T1", Status: domain.TicketStatusPending})

	ticket, err := desk.Assign(context.Background(), ann, "T1", domain.AssignTicketPayload{AgentID: "agent-bo"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.AssignedAgentName)
	assert.Equal(t, "Bo", *ticket.AssignedAgentName)
	require.Len(t, ticket.Assignments, 1)
	status, _ := ticket.LatestStatus()
	assert.Equal(t, domain.TicketStatusInProgress, status)
}

func TestReopenRules(t *testing.T) {
	desk, _ := newDesk(t,
		domain.Ticket{TicketID: "open", Status: domain.TicketStatusInProgress},
		domain.Ticket{TicketID: "done", Status: domain.TicketStatusClosed},
	)
	ctx := context.Background()

	_, err := desk.Reopen(ctx, ann, "open", domain.ReopenTicketPayload{Reason: "customer replied"})
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	_, err = desk.Reopen(ctx, ann, "done", domain.ReopenTicketPayload{})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	ticket, err := desk.Reopen(ctx, ann, "done", domain.ReopenTicketPayload{Reason: "customer replied"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Equal(t, 1, ticket.ReopenedCount)
	assert.Nil(t, ticket.ClosedAt)
	require.NotNil(t, ticket.ReopenedBy)
	assert.Equal(t, ann.ID, *ticket.ReopenedBy)
}

func TestArchiveOnlyFromFinishedStates(t *testing.T) {
	desk, _ := newDesk(t,
		domain.Ticket{TicketID: "T1", Status: domain.TicketStatusPending},
		domain.Ticket{TicketID: "T2", Status: domain.TicketStatusResolved},
	)
	ctx := context.Background()

	_, err := desk.Archive(ctx, ann, "T1", domain.ArchiveTicketPayload{})
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	ticket, err := desk.Archive(ctx, ann, "T2", domain.ArchiveTicketPayload{Reason: "stale"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusArchived, ticket.Status)
	assert.NotNil(t, ticket.ArchivedAt)

	page, _, _ := desk.List(ctx, repository.TicketFilter{})
	assert.Len(t, page, 1)
}

func TestCommentsSetFirstResponseAndRespectAuthorship(t *testing.T) {
	desk, repo := newDesk(t, domain.Ticket{TicketID: "T1", Status: domain.TicketStatusInProgress})
	ctx := context.Background()

	internal, err := desk.AddComment(ctx, ann, "T1", domain.TicketCommentPayload{Content: "checking warehouse"})
	require.NoError(t, err)
	assert.Equal(t, domain.CommentTypeInternal, internal.CommentType)
	stored, _ := repo.GetByID(ctx, "T1")
	assert.Nil(t, stored.FirstResponseAt)

	_, err = desk.AddComment(ctx, ann, "T1", domain.TicketCommentPayload{Content: "on its way", CommentType: domain.CommentTypePublic})
	require.NoError(t, err)
	stored, _ = repo.GetByID(ctx, "T1")
	assert.NotNil(t, stored.FirstResponseAt)

	other := domain.Agent{ID: "agent-bo"}
	err = desk.DeleteComment(ctx, other, "T1", internal.CommentID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	require.NoError(t, desk.DeleteComment(ctx, ann, "T1", internal.CommentID))
	stored, _ = repo.GetByID(ctx, "T1")
	assert.Len(t, stored.Comments, 1)

	err = desk.DeleteComment(ctx, ann, "T1", internal.CommentID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestBatchCloseReportsPerItemFailures(t *testing.T) {
	desk, _ := newDesk(t,
		domain.Ticket{TicketID: "T1", Status: domain.TicketStatusInProgress},
		domain.Ticket{TicketID: "T2", Status: domain.TicketStatusClosed},
	)

	result, err := desk.BatchClose(context.Background(), ann, domain.BatchCloseRequest{TicketIDs: []string{"T1", "T2", "T404"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []domain.BatchFailure{
		{TicketID: "T2", Error: "ticket already closed"},
		{TicketID: "T404", Error: "ticket not found"},
	}, result.Failed)
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, domain.TicketStatusClosed, result.Tickets[0].Status)
}

func TestBatchPriorityIsAdminOnly(t *testing.T) {
	desk, _ := newDesk(t, domain.Ticket{TicketID: "T1", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow})
	req := domain.BatchPriorityRequest{TicketIDs: []string{"T1"}, Priority: domain.TicketPriorityUrgent}

	_, err := desk.BatchPriority(context.Background(), ann, req)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	result, err := desk.BatchPriority(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, result.Tickets[0].Priority)

	_, err = desk.BatchClose(context.Background(), ann, domain.BatchCloseRequest{})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestSLAFigures(t *testing.T) {
	at := func(ago time.Duration) domain.UnixTime { return domain.NewUnixTime(clock.Add(-ago)) }
	firstResponse := at(50 * time.Minute)
	resolved := at(time.Hour)
	desk, _ := newDesk(t,
		domain.Ticket{TicketID: "late", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityUrgent, CreatedAt: at(5 * time.Hour)},
		domain.Ticket{TicketID: "fresh", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow, CreatedAt: at(time.Hour)},
		domain.Ticket{TicketID: "done", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh, CreatedAt: at(2 * time.Hour), FirstResponseAt: &firstResponse, ResolvedAt: &resolved},
	)

	summary, err := desk.SLASummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTickets)
	assert.Equal(t, 2, summary.OpenTickets)
	assert.Equal(t, 2, summary.PendingTickets)
	require.NotNil(t, summary.AvgFirstResponseSeconds)
	assert.InDelta(t, 70*60, *summary.AvgFirstResponseSeconds, 1)
	require.NotNil(t, summary.AvgResolutionSeconds)
	assert.InDelta(t, 3600, *summary.AvgResolutionSeconds, 1)

	alerts, err := desk.SLAAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts.FirstResponseAlerts, 1)
	assert.Equal(t, "late", alerts.FirstResponseAlerts[0].TicketID)
	require.Len(t, alerts.ResolutionAlerts, 1)
	assert.InDelta(t, 5*3600, alerts.ResolutionAlerts[0].ElapsedSeconds, 1)
}

func TestRecommendPrefersSkillsThenLoad(t *testing.T) {
	bo := "agent-bo"
	desk, _ := newDesk(t,
		domain.Ticket{TicketID: "T1", Status: domain.TicketStatusInProgress, AssignedAgentID: &bo},
	)

	rec, err := desk.Recommend(context.Background(), domain.SmartAssignPayload{Tags: []string{"Refund"}})
	require.NoError(t, err)
	assert.Equal(t, "agent-ann", rec.AgentID)
	assert.Equal(t, []string{"refund"}, rec.MatchedTags)

	rec, err = desk.Recommend(context.Background(), domain.SmartAssignPayload{Category: "shipping"})
	require.NoError(t, err)
	assert.Equal(t, "agent-ann", rec.AgentID, "bo's skill match is cancelled out by an open ticket and ann comes first")

	empty := NewTicketDesk(DeskDependencies{TicketRepo: repository.NewTicketRepository()})
	_, err = empty.Recommend(context.Background(), domain.SmartAssignPayload{})
	assert.ErrorIs(t, err, ErrNoAgentAvailable)
}

func TestExportFormats(t *testing.T) {
	email := "dana@example.com"
	desk, _ := newDesk(t, domain.Ticket{
		TicketID: "T1",
		Title:    "Refund, partial",
		Status:   domain.TicketStatusPending,
		Customer: &domain.CustomerInfo{Email: &email},
	})
	ctx := context.Background()

	csvDoc, err := desk.Export(ctx, domain.ExportFormatCSV, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, "attachment; filename*=UTF-8''tickets_20260302_120000.csv", csvDoc.Disposition)
	records, err := csv.NewReader(bytes.NewReader(csvDoc.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Refund, partial", records[1][1])
	assert.Equal(t, email, records[1][6])

	xlsxDoc, err := desk.Export(ctx, domain.ExportFormatXLSX, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, `attachment; filename="tickets_20260302_120000.xlsx"`, xlsxDoc.Disposition)
	f, err := excelize.OpenReader(bytes.NewReader(xlsxDoc.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T1", rows[1][0])

	pdfDoc, err := desk.Export(ctx, domain.ExportFormatPDF, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, pdfDoc.Disposition)
	assert.True(t, bytes.HasPrefix(pdfDoc.Data, []byte("%PDF-")))

	_, err = desk.Export(ctx, "docx", repository.TicketFilter{})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

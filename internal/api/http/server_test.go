package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-console/internal/api/http/handlers"
	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/backend"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/gateway"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/repository"
	"github.com/spec-kit/ticket-console/internal/service"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

var devAgent = domain.Agent{ID: "agent-ann", Name: "Ann", Role: domain.AgentRoleAdmin}

// appTransport hands requests to fiber in-process.
type appTransport struct {
	app *fiber.App
}

func (t appTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	return t.app.Test(req, -1)
}

type harness struct {
	app     *fiber.App
	metrics *observability.Metrics
	token   string
	tokens  *auth.StaticProvider
	client  *gateway.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	tickets := repository.NewTicketRepository()
	templates := repository.NewTemplateRepository()
	sessions := repository.NewSessionRepository()
	require.NoError(t, backend.Seed(ctx, now, devAgent, tickets, templates, sessions))

	tokenManager := auth.NewTokenManager("test-secret", 5)
	token, _, err := tokenManager.GenerateToken(devAgent)
	require.NoError(t, err)

	metrics := observability.NewMetrics("backend")
	app := NewApp("test", nil, time.Second, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "v0", nil),
		Tickets:        handlers.NewTicketsHandler(backend.NewTicketDesk(backend.DeskDependencies{TicketRepo: tickets, Roster: backend.DefaultRoster})),
		Templates:      handlers.NewTemplatesHandler(backend.NewTemplateLibrary(templates, tickets, nil, nil)),
		Sessions:       handlers.NewSessionsHandler(backend.NewSessionDesk(sessions, nil, nil)),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager),
		Metrics:        metrics,
	})

	provider := auth.NewStaticProvider(token)
	client, err := gateway.New(gateway.Options{
		BaseURL:   "http://backend.test",
		Tokens:    provider,
		Transport: appTransport{app: app},
	})
	require.NoError(t, err)
	return &harness{app: app, metrics: metrics, token: token, tokens: provider, client: client}
}

func (h *harness) raw(t *testing.T, method, path, body string, authed bool) (*nethttp.Response, string) {
	t.Helper()
	req, err := nethttp.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestProtectedRoutesRenderFailureEnvelope(t *testing.T) {
	h := newHarness(t)

	resp, body := h.raw(t, nethttp.MethodGet, "/api/tickets", "", false)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"detail":"missing authorization header","error":"UNAUTHORIZED"}`, body)
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))

	resp, body = h.raw(t, nethttp.MethodGet, "/api/nowhere", "", true)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)

	resp, _ = h.raw(t, nethttp.MethodGet, "/health/live", "", false)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, body = h.raw(t, nethttp.MethodGet, "/metrics", "", false)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ticket_console_backend_requests_total")
	assert.Contains(t, body, `status="401"`)
}

func TestStoreAgainstBackend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := service.NewTicketStore(service.TicketStoreDependencies{
		Gateway:    h.client,
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	page, err := store.FetchTickets(ctx, domain.TicketListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, store.Tickets(), 3)

	found, err := store.SearchTickets(ctx, "customs")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "TKT-1002", found[0].TicketID)

	filtered, err := store.FilterTickets(ctx, domain.TicketFilterPayload{Statuses: []domain.TicketStatus{domain.TicketStatusResolved}})
	require.NoError(t, err)
	require.Len(t, filtered.Tickets, 1)
	assert.Equal(t, "TKT-1003", filtered.Tickets[0].TicketID)

	ticket, err := store.FetchTicketByID(ctx, "TKT-1001")
	require.NoError(t, err)
	assert.Equal(t, "Refund not received", ticket.Title)

	comment, err := store.AddComment(ctx, "TKT-1001", domain.TicketCommentPayload{Content: "refund issued", CommentType: domain.CommentTypePublic})
	require.NoError(t, err)
	current, ok := store.CurrentTicket()
	require.True(t, ok)
	require.Len(t, current.Comments, 1)
	assert.Equal(t, comment.CommentID, current.Comments[0].CommentID)
	assert.NotNil(t, current.FirstResponseAt)

	require.NoError(t, store.DeleteComment(ctx, "TKT-1001", comment.CommentID))
	current, _ = store.CurrentTicket()
	assert.Empty(t, current.Comments)

	_, err = store.ReopenTicket(ctx, "TKT-1001", domain.ReopenTicketPayload{Reason: "again"})
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, nethttp.StatusConflict, remote.StatusCode)
	assert.Equal(t, "ticket cannot be reopened in current status", remote.Message)
	assert.NotEmpty(t, remote.RequestID)

	result, err := store.BatchClose(ctx, domain.BatchCloseRequest{TicketIDs: []string{"TKT-1001", "TKT-404"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []string{"TKT-404"}, result.FailedIDs())
	closed, ok := store.Cache().Get("TKT-1001")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	archived, err := store.ArchiveTicket(ctx, "TKT-1001", domain.ArchiveTicketPayload{Reason: "done"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusArchived, archived.Status)
	archivedPage, err := store.FetchArchivedTickets(ctx, domain.ArchivedTicketQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, archivedPage.Total)

	summary, err := store.FetchSLASummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTickets)

	rec, err := store.RecommendAssignment(ctx, domain.SmartAssignPayload{Tags: []string{"vip"}})
	require.NoError(t, err)
	assert.Equal(t, "agent-cy", rec.AgentID)

	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.RequestCounter("/api/tickets/:id/reopen", nethttp.MethodPost, nethttp.StatusConflict)), 0)
}

func TestExportAgainstBackend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	csvFile, err := h.client.ExportTickets(ctx, domain.ExportRequest{Format: domain.ExportFormatCSV})
	require.NoError(t, err)
	assert.Regexp(t, `^tickets_\d{8}_\d{6}\.csv$`, csvFile.Filename)
	assert.True(t, strings.HasPrefix(string(csvFile.Data), "ticket_id,title"))

	xlsxFile, err := h.client.ExportTickets(ctx, domain.ExportRequest{Format: domain.ExportFormatXLSX})
	require.NoError(t, err)
	assert.Regexp(t, `^tickets_\d{8}_\d{6}\.xlsx$`, xlsxFile.Filename)

	pdfFile, err := h.client.ExportTickets(ctx, domain.ExportRequest{Format: domain.ExportFormatPDF})
	require.NoError(t, err)
	assert.Regexp(t, `^tickets_\d+\.pdf$`, pdfFile.Filename)
	assert.Equal(t, "application/pdf", pdfFile.ContentType)

	_, err = h.client.ExportTickets(ctx, domain.ExportRequest{Format: "docx"})
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "unsupported export format", remote.Message)
}

func TestSessionStoresAgainstBackend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	templates := service.NewTemplateStore(h.client, nil)
	_, err := templates.FetchTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates.Templates(), 1)
	rendered, err := templates.RenderTemplate(ctx, "tpl-greeting", domain.RenderTemplateRequest{TicketID: "TKT-1001"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Dana, thanks for contacting us about TKT-1001.", rendered.Content)
	assert.Empty(t, rendered.MissingVariables)

	assist := service.NewAssistStore(h.client, nil)
	_, err = assist.FetchRequests(ctx, domain.AssistStatusPending)
	require.NoError(t, err)
	require.Equal(t, 1, assist.PendingCount())
	_, err = assist.AnswerRequest(ctx, assist.Received()[0].ID, "yes")
	require.NoError(t, err)
	_, err = assist.FetchRequests(ctx, domain.AssistStatusPending)
	require.NoError(t, err)
	assert.Zero(t, assist.PendingCount())

	transfers := service.NewTransferStore(h.client, nil)
	_, err = transfers.FetchPending(ctx)
	require.NoError(t, err)
	require.Len(t, transfers.Pending(), 1)
	require.NoError(t, transfers.Respond(ctx, transfers.Pending()[0].ID, domain.TransferActionAccept, "on it"))
	assert.Empty(t, transfers.Pending())
	history, err := transfers.FetchHistory(ctx, "session-42")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Accepted)
}

func TestSignedOutConsoleMakesNoCalls(t *testing.T) {
	h := newHarness(t)
	h.tokens.Set("")

	_, err := h.client.ListTickets(context.Background(), domain.TicketListFilters{})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	served, err := testutil.GatherAndCount(h.metrics.Registry(), "ticket_console_backend_requests_total")
	require.NoError(t, err)
	assert.Zero(t, served)
}

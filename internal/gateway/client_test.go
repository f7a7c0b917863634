package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// stubTransport answers every request with respond and records what was sent.
type stubTransport struct {
	mu      sync.Mutex
	reqs    []*http.Request
	bodies  []string
	respond func(*http.Request) (*http.Response, error)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func (s *stubTransport) last() (*http.Request, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs[len(s.reqs)-1], s.bodies[len(s.bodies)-1]
}

func reply(status int, body string, headers ...string) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		h := http.Header{}
		for i := 0; i+1 < len(headers); i += 2 {
			h.Set(headers[i], headers[i+1])
		}
		return &http.Response{
			StatusCode: status,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

func ok(data any) func(*http.Request) (*http.Response, error) {
	raw, err := json.Marshal(map[string]any{"success": true, "data": data})
	if err != nil {
		panic(err)
	}
	return reply(http.StatusOK, string(raw), "Content-Type", "application/json")
}

func newTestClient(t *testing.T, respond func(*http.Request) (*http.Response, error)) (*Client, *stubTransport) {
	t.Helper()
	stub := &stubTransport{respond: respond}
	client, err := New(Options{
		BaseURL:   "http://tickets.test/",
		Tokens:    auth.NewStaticProvider("tok-123"),
		Transport: stub,
	})
	require.NoError(t, err)
	return client, stub
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Tokens: auth.NewStaticProvider("x")})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "http://tickets.test"})
	assert.Error(t, err)
}

func TestMissingCredentialFailsWithoutNetwork(t *testing.T) {
	stub := &stubTransport{respond: ok(nil)}
	client, err := New(Options{
		BaseURL:   "http://tickets.test",
		Tokens:    auth.TokenProviderFunc(func(context.Context) (string, bool) { return "", false }),
		Transport: stub,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.ListTickets(ctx, domain.TicketListFilters{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = client.BatchClose(ctx, domain.BatchCloseRequest{TicketIDs: []string{"T1"}})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = client.ExportTickets(ctx, domain.ExportRequest{Format: domain.ExportFormatCSV})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	err = client.DeleteComment(ctx, "T1", "C1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	assert.Zero(t, stub.calls())
}

func TestListTicketsSendsOnlySetFilters(t *testing.T) {
	page := domain.TicketPage{
		Tickets:    []domain.Ticket{{TicketID: "T2"}, {TicketID: "T1"}},
		Pagination: domain.Pagination{Total: 7, Limit: 2, Offset: 4, HasMore: true},
	}
	client, stub := newTestClient(t, ok(page))

	got, err := client.ListTickets(context.Background(), domain.TicketListFilters{
		Status: domain.TicketStatusPending,
		Limit:  2,
		Offset: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, page, got)

	req, body := stub.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/tickets", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "pending", q.Get("status"))
	assert.Equal(t, "2", q.Get("limit"))
	assert.Equal(t, "4", q.Get("offset"))
	assert.NotContains(t, q, "priority")
	assert.NotContains(t, q, "assigned_agent_id")

	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Empty(t, body)
	_, err = uuid.Parse(req.Header.Get(observability.RequestIDHeader))
	assert.NoError(t, err)
}

func TestJSONBodyCallsCarryContentType(t *testing.T) {
	client, stub := newTestClient(t, ok(domain.TicketPage{}))

	desc := true
	_, err := client.FilterTickets(context.Background(), domain.TicketFilterPayload{
		Statuses: []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusInProgress},
		Keyword:  "refund",
		SortBy:   domain.SortByUpdatedAt,
		SortDesc: &desc,
	})
	require.NoError(t, err)

	req, body := stub.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/tickets/filter", req.URL.Path)
	assert.Contains(t, req.Header.Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"statuses":["pending","in_progress"],"keyword":"refund","sort_by":"updated_at","sort_desc":true}`, body)
}

func TestEachCallGetsItsOwnRequestID(t *testing.T) {
	client, stub := newTestClient(t, ok(domain.Ticket{TicketID: "T1"}))

	_, err := client.GetTicket(context.Background(), "T1")
	require.NoError(t, err)
	first, _ := stub.last()
	_, err = client.GetTicket(context.Background(), "T1")
	require.NoError(t, err)
	second, _ := stub.last()

	assert.NotEqual(t, first.Header.Get(observability.RequestIDHeader), second.Header.Get(observability.RequestIDHeader))
}

func TestEnvelopeFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"success false on 200", 200, `{"success":false,"detail":"ticket locked"}`, "ticket locked"},
		{"detail wins", 400, `{"detail":"bad input","error":"e","message":"m"}`, "bad input"},
		{"error before message", 400, `{"error":"e","message":"m"}`, "e"},
		{"message last", 500, `{"message":"m"}`, "m"},
		{"empty detail skipped", 409, `{"detail":"","error":"conflict"}`, "conflict"},
		{"structured detail", 422, `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"empty body", 502, ``, "HTTP 502"},
		{"html body", 503, `<html>down</html>`, "HTTP 503"},
		{"non json on 200", 200, `ok`, "HTTP 200"},
		{"success flag on error status", 500, `{"success":true,"data":{}}`, "HTTP 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, reply(tc.status, tc.body))

			_, err := client.GetTicket(context.Background(), "T1")
			require.Error(t, err)

			var remote *apperrors.RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tc.status, remote.StatusCode)
			assert.Equal(t, tc.message, remote.Message)
			assert.NotEmpty(t, remote.RequestID)
		})
	}
}

func TestServerRejectedCredentialIsRemote(t *testing.T) {
	client, _ := newTestClient(t, reply(http.StatusUnauthorized, `{"detail":"token expired"}`))

	_, err := client.ListTickets(context.Background(), domain.TicketListFilters{})
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.True(t, remote.Unauthorized())
	assert.NotErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	refused := errors.New("connection refused")
	client, _ := newTestClient(t, func(*http.Request) (*http.Response, error) { return nil, refused })

	_, err := client.SLASummary(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.False(t, apperrors.IsRemote(err))
	assert.ErrorIs(t, err, refused)
}

func TestSearchSendsKeyword(t *testing.T) {
	client, stub := newTestClient(t, ok(map[string]any{"tickets": []domain.Ticket{{TicketID: "T5"}}}))

	got, err := client.SearchTickets(context.Background(), "refund")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T5", got[0].TicketID)

	req, _ := stub.last()
	assert.Equal(t, "/api/tickets/search", req.URL.Path)
	assert.Equal(t, "refund", req.URL.Query().Get("query"))
}

func TestSearchWithoutTicketsReturnsEmpty(t *testing.T) {
	client, _ := newTestClient(t, ok(map[string]any{}))

	got, err := client.SearchTickets(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchReadsTopLevelTickets(t *testing.T) {
	client, _ := newTestClient(t, reply(http.StatusOK,
		`{"success":true,"data":{},"tickets":[{"ticket_id":"T6"},{"ticket_id":"T7"}]}`,
		"Content-Type", "application/json"))

	got, err := client.SearchTickets(context.Background(), "refund")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T6", got[0].TicketID)
}

func TestSearchPrefersNestedTickets(t *testing.T) {
	client, _ := newTestClient(t, reply(http.StatusOK,
		`{"success":true,"data":{"tickets":[{"ticket_id":"T1"}]},"tickets":[{"ticket_id":"T2"}]}`,
		"Content-Type", "application/json"))

	got, err := client.SearchTickets(context.Background(), "refund")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T1", got[0].TicketID)
}

func TestBatchResultDecodes(t *testing.T) {
	result := map[string]any{
		"succeeded": 1,
		"failed":    []map[string]string{{"ticket_id": "T9", "error": "locked"}},
		"tickets":   []domain.Ticket{{TicketID: "T1", Status: domain.TicketStatusClosed}},
	}
	client, stub := newTestClient(t, ok(result))

	got, err := client.BatchClose(context.Background(), domain.BatchCloseRequest{
		TicketIDs:   []string{"T1", "T9"},
		CloseReason: "duplicate",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, []string{"T9"}, got.FailedIDs())
	require.Len(t, got.Tickets, 1)

	req, body := stub.last()
	assert.Equal(t, "/api/tickets/batch/close", req.URL.Path)
	assert.JSONEq(t, `{"ticket_ids":["T1","T9"],"close_reason":"duplicate"}`, body)
}

func TestMutationsHitTheirEndpoints(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		method string
		path   string
		run    func(*Client) error
	}{
		{"create", http.MethodPost, "/api/tickets/manual", func(c *Client) error {
			_, err := c.CreateManualTicket(ctx, domain.CreateManualTicketPayload{Title: "x"})
			return err
		}},
		{"update", http.MethodPatch, "/api/tickets/T1", func(c *Client) error {
			_, err := c.UpdateTicket(ctx, "T1", domain.UpdateTicketPayload{Note: "n"})
			return err
		}},
		{"assign", http.MethodPost, "/api/tickets/T1/assign", func(c *Client) error {
			_, err := c.AssignTicket(ctx, "T1", domain.AssignTicketPayload{AgentID: "a1"})
			return err
		}},
		{"reopen", http.MethodPost, "/api/tickets/T1/reopen", func(c *Client) error {
			_, err := c.ReopenTicket(ctx, "T1", domain.ReopenTicketPayload{Reason: "again"})
			return err
		}},
		{"archive", http.MethodPost, "/api/tickets/T1/archive", func(c *Client) error {
			_, err := c.ArchiveTicket(ctx, "T1", domain.ArchiveTicketPayload{})
			return err
		}},
		{"delete comment", http.MethodDelete, "/api/tickets/T1/comments/C1", func(c *Client) error {
			return c.DeleteComment(ctx, "T1", "C1")
		}},
		{"batch assign", http.MethodPost, "/api/tickets/batch/assign", func(c *Client) error {
			_, err := c.BatchAssign(ctx, domain.BatchAssignRequest{TicketIDs: []string{"T1"}, TargetAgentID: "a1"})
			return err
		}},
		{"batch priority", http.MethodPost, "/api/tickets/batch/priority", func(c *Client) error {
			_, err := c.BatchPriority(ctx, domain.BatchPriorityRequest{TicketIDs: []string{"T1"}, Priority: domain.TicketPriorityHigh})
			return err
		}},
		{"archived", http.MethodGet, "/api/tickets/archived", func(c *Client) error {
			_, err := c.ListArchivedTickets(ctx, domain.ArchivedTicketQuery{CustomerEmail: "a@b.c"})
			return err
		}},
		{"sla alerts", http.MethodGet, "/api/tickets/sla-alerts", func(c *Client) error {
			_, err := c.SLAAlerts(ctx)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, stub := newTestClient(t, ok(map[string]any{"ticket_id": "T1"}))
			require.NoError(t, tc.run(client))
			req, _ := stub.last()
			assert.Equal(t, tc.method, req.Method)
			assert.Equal(t, tc.path, req.URL.Path)
		})
	}
}

func TestRecommendAssignmentWithoutAgent(t *testing.T) {
	client, _ := newTestClient(t, reply(200, `{"success":true,"data":null}`))
	_, err := client.RecommendAssignment(context.Background(), domain.SmartAssignPayload{TicketType: domain.TicketTypeComplaint})
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "no agent available", remote.Message)

	client, _ = newTestClient(t, reply(200, `{"success":true,"data":{},"message":"all agents offline"}`))
	_, err = client.RecommendAssignment(context.Background(), domain.SmartAssignPayload{})
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "all agents offline", remote.Message)
}

func TestRecommendAssignmentDecodes(t *testing.T) {
	client, _ := newTestClient(t, ok(domain.SmartAssignRecommendation{AgentID: "a1", AgentName: "Mei", LoadScore: 0.4}))
	rec, err := client.RecommendAssignment(context.Background(), domain.SmartAssignPayload{Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.AgentID)
	assert.InDelta(t, 0.4, rec.LoadScore, 1e-9)
}

func TestMetricsRecordCalls(t *testing.T) {
	metrics := observability.NewMetrics("gateway")
	stub := &stubTransport{respond: ok(domain.TicketPage{})}
	client, err := New(Options{
		BaseURL:   "http://tickets.test",
		Tokens:    auth.NewStaticProvider("tok"),
		Transport: stub,
		Metrics:   metrics,
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	_, err = client.ListTickets(context.Background(), domain.TicketListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestCounter("/api/tickets", http.MethodGet, 200)))

	stub.respond = reply(404, `{"detail":"ticket not found"}`)
	_, err = client.GetTicket(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorCounter("/api/tickets/{id}", http.MethodGet, "remote")))
}

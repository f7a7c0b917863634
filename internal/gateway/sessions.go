package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// ListAssistRequests fetches assistance requests sent and received by the agent.
// AssistStatusAll and the empty status send no status filter.
func (c *Client) ListAssistRequests(ctx context.Context, status domain.AssistStatus) (domain.AssistInbox, error) {
	query := url.Values{}
	if status != "" && status != domain.AssistStatusAll {
		query.Set("status", string(status))
	}
	var inbox domain.AssistInbox
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/assist-requests",
		Path:   "/api/assist-requests",
		Query:  query,
	}, &inbox)
	if err != nil {
		return domain.AssistInbox{}, err
	}
	if inbox.Received == nil {
		inbox.Received = []domain.AssistRequest{}
	}
	if inbox.Sent == nil {
		inbox.Sent = []domain.AssistRequest{}
	}
	return inbox, nil
}

// AnswerAssistRequest replies to an assistance request.
func (c *Client) AnswerAssistRequest(ctx context.Context, requestID, answer string) (domain.AssistRequest, error) {
	var answered domain.AssistRequest
	err := c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/assist-requests/{id}/answer",
		Path:   "/api/assist-requests/" + segment(requestID) + "/answer",
		Body:   map[string]string{"answer": answer},
	}, &answered)
	return answered, err
}

// ListPendingTransfers fetches transfer requests waiting on the agent.
func (c *Client) ListPendingTransfers(ctx context.Context) ([]domain.TransferRequest, error) {
	var pending []domain.TransferRequest
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/transfer-requests/pending",
		Path:   "/api/transfer-requests/pending",
	}, &pending)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		pending = []domain.TransferRequest{}
	}
	return pending, nil
}

// RespondTransfer accepts or declines a transfer request.
func (c *Client) RespondTransfer(ctx context.Context, requestID string, resp domain.TransferResponse) error {
	return c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/transfer-requests/{id}/respond",
		Path:   "/api/transfer-requests/" + segment(requestID) + "/respond",
		Body:   resp,
	}, nil)
}

// TransferHistory fetches completed transfers of a session.
func (c *Client) TransferHistory(ctx context.Context, sessionName string) ([]domain.TransferHistoryRecord, error) {
	var history []domain.TransferHistoryRecord
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/sessions/{name}/transfer-history",
		Path:   "/api/sessions/" + segment(sessionName) + "/transfer-history",
	}, &history)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.TransferHistoryRecord{}
	}
	return history, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/backend"
	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// SessionsHandler serves assistance and transfer requests between agents.
type SessionsHandler struct {
	desk *backend.SessionDesk
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(desk *backend.SessionDesk) *SessionsHandler {
	return &SessionsHandler{desk: desk}
}

// AssistRequests GET /api/assist-requests.
func (h *SessionsHandler) AssistRequests(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	inbox, err := h.desk.AssistInbox(c.UserContext(), agent, domain.AssistStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(inbox))
}

// AnswerAssist POST /api/assist-requests/:id/answer.
func (h *SessionsHandler) AnswerAssist(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	var req dto.AnswerAssistRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	answered, err := h.desk.AnswerAssist(c.UserContext(), agent, c.Params("id"), req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(answered))
}

// PendingTransfers GET /api/transfer-requests/pending.
func (h *SessionsHandler) PendingTransfers(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	pending, err := h.desk.PendingTransfers(c.UserContext(), agent)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(pending))
}

// RespondTransfer POST /api/transfer-requests/:id/respond.
func (h *SessionsHandler) RespondTransfer(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	var req domain.TransferResponse
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.desk.RespondTransfer(c.UserContext(), agent, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(record))
}

// TransferHistory GET /api/sessions/:name/transfer-history.
func (h *SessionsHandler) TransferHistory(c *fiber.Ctx) error {
	history, err := h.desk.TransferHistory(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(history))
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/backend"
	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// TemplatesHandler serves the /api/templates endpoints.
type TemplatesHandler struct {
	library *backend.TemplateLibrary
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(library *backend.TemplateLibrary) *TemplatesHandler {
	return &TemplatesHandler{library: library}
}

// List GET /api/templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	templates, err := h.library.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(templates))
}

// Create POST /api/templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	agent, err := agentOf(c)
	if err != nil {
		return err
	}
	var req domain.TicketTemplatePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tpl, err := h.library.Create(c.UserContext(), agent, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(tpl))
}

// Replace PUT /api/templates/:id.
func (h *TemplatesHandler) Replace(c *fiber.Ctx) error {
	var req domain.TicketTemplatePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tpl, err := h.library.Replace(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(tpl))
}

// Delete DELETE /api/templates/:id.
func (h *TemplatesHandler) Delete(c *fiber.Ctx) error {
	if err := h.library.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("template deleted"))
}

// Render POST /api/templates/:id/render.
func (h *TemplatesHandler) Render(c *fiber.Ctx) error {
	var req domain.RenderTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	out, err := h.library.Render(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

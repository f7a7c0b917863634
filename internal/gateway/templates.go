package gateway

import (
	"context"
	"net/http"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// ListTemplates fetches every ticket template visible to the agent.
func (c *Client) ListTemplates(ctx context.Context) ([]domain.TicketTemplate, error) {
	var templates []domain.TicketTemplate
	err := c.callInto(ctx, request{
		Method: http.MethodGet,
		Route:  "/api/templates",
		Path:   "/api/templates",
	}, &templates)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.TicketTemplate{}
	}
	return templates, nil
}

// CreateTemplate stores a new template.
func (c *Client) CreateTemplate(ctx context.Context, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	var tpl domain.TicketTemplate
	err := c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/templates",
		Path:   "/api/templates",
		Body:   payload,
	}, &tpl)
	return tpl, err
}

// UpdateTemplate replaces a template.
func (c *Client) UpdateTemplate(ctx context.Context, templateID string, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	var tpl domain.TicketTemplate
	err := c.callInto(ctx, request{
		Method: http.MethodPut,
		Route:  "/api/templates/{id}",
		Path:   "/api/templates/" + segment(templateID),
		Body:   payload,
	}, &tpl)
	return tpl, err
}

// DeleteTemplate removes a template.
func (c *Client) DeleteTemplate(ctx context.Context, templateID string) error {
	return c.callInto(ctx, request{
		Method: http.MethodDelete,
		Route:  "/api/templates/{id}",
		Path:   "/api/templates/" + segment(templateID),
	}, nil)
}

// RenderTemplate fills a template's placeholders server side.
func (c *Client) RenderTemplate(ctx context.Context, templateID string, req domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error) {
	var rendered domain.RenderTemplateResponse
	err := c.callInto(ctx, request{
		Method: http.MethodPost,
		Route:  "/api/templates/{id}/render",
		Path:   "/api/templates/" + segment(templateID) + "/render",
		Body:   req,
	}, &rendered)
	return rendered, err
}

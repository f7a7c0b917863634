package domain

// TicketTemplate is a reusable reply or ticket body with placeholders.
type TicketTemplate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Content   string   `json:"content"`
	Variables []string `json:"variables"`
	CreatedBy string   `json:"created_by,omitempty"`
	CreatedAt UnixTime `json:"created_at"`
	UpdatedAt UnixTime `json:"updated_at"`
}

// TicketTemplatePayload creates or replaces a template.
type TicketTemplatePayload struct {
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Content   string   `json:"content"`
	Variables []string `json:"variables,omitempty"`
}

// RenderTemplateRequest supplies placeholder values for rendering.
type RenderTemplateRequest struct {
	Variables map[string]string `json:"variables"`
	TicketID  string            `json:"ticket_id,omitempty"`
}

// RenderTemplateResponse is the rendered template text.
type RenderTemplateResponse struct {
	Content          string   `json:"content"`
	MissingVariables []string `json:"missing_variables"`
}

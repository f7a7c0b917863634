package backend

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// TemplateLibrary manages reply templates and renders their placeholders.
type TemplateLibrary struct {
	templates repository.TemplateRepository
	tickets   repository.TicketRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewTemplateLibrary constructs the library. tickets may be nil, in which case
// renders never pull values from a ticket.
func NewTemplateLibrary(templates repository.TemplateRepository, tickets repository.TicketRepository, logger *zap.Logger, now func() time.Time) *TemplateLibrary {
	if now == nil {
		now = time.Now
	}
	return &TemplateLibrary{templates: templates, tickets: tickets, logger: observability.OrNop(logger), now: now}
}

// List returns every template.
func (l *TemplateLibrary) List(ctx context.Context) ([]domain.TicketTemplate, error) {
	return l.templates.List(ctx)
}

// Create stores a new template authored by agent.
func (l *TemplateLibrary) Create(ctx context.Context, agent domain.Agent, p domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	if err := validateTemplate(p); err != nil {
		return domain.TicketTemplate{}, err
	}
	now := domain.NewUnixTime(l.now())
	tpl := domain.TicketTemplate{
		Name:      strings.TrimSpace(p.Name),
		Category:  p.Category,
		Content:   p.Content,
		Variables: templateVariables(p),
		CreatedBy: agent.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return l.templates.Create(ctx, tpl)
}

// Replace overwrites the editable fields of a template.
func (l *TemplateLibrary) Replace(ctx context.Context, id string, p domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	if err := validateTemplate(p); err != nil {
		return domain.TicketTemplate{}, err
	}
	tpl, err := l.templates.GetByID(ctx, id)
	if err != nil {
		return domain.TicketTemplate{}, err
	}
	tpl.Name = strings.TrimSpace(p.Name)
	tpl.Category = p.Category
	tpl.Content = p.Content
	tpl.Variables = templateVariables(p)
	tpl.UpdatedAt = domain.NewUnixTime(l.now())
	return l.templates.Replace(ctx, tpl)
}

// Delete removes a template.
func (l *TemplateLibrary) Delete(ctx context.Context, id string) error {
	return l.templates.Delete(ctx, id)
}

// Render substitutes {{name}} placeholders. Values from req win over the
// ticket's fields; unresolved placeholders stay in place and are reported.
func (l *TemplateLibrary) Render(ctx context.Context, id string, req domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error) {
	tpl, err := l.templates.GetByID(ctx, id)
	if err != nil {
		return domain.RenderTemplateResponse{}, err
	}
	values := map[string]string{}
	if req.TicketID != "" && l.tickets != nil {
		ticket, err := l.tickets.GetByID(ctx, req.TicketID)
		if err != nil {
			return domain.RenderTemplateResponse{}, err
		}
		values = ticketValues(*ticket)
	}
	for k, v := range req.Variables {
		values[k] = v
	}

	missing := []string{}
	content := placeholder.ReplaceAllStringFunc(tpl.Content, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		if !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
		return match
	})
	if len(missing) > 0 {
		l.logger.Debug("template rendered with gaps", zap.String("template_id", id), zap.Strings("missing", missing))
	}
	return domain.RenderTemplateResponse{Content: content, MissingVariables: missing}, nil
}

func validateTemplate(p domain.TicketTemplatePayload) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if strings.TrimSpace(p.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	return nil
}

// templateVariables keeps declared variables and adds any placeholder the content uses.
func templateVariables(p domain.TicketTemplatePayload) []string {
	vars := slices.Clone(p.Variables)
	if vars == nil {
		vars = []string{}
	}
	for _, m := range placeholder.FindAllStringSubmatch(p.Content, -1) {
		if !slices.Contains(vars, m[1]) {
			vars = append(vars, m[1])
		}
	}
	return vars
}

func ticketValues(t domain.Ticket) map[string]string {
	values := map[string]string{
		"ticket_id":       t.TicketID,
		"ticket.title":    t.Title,
		"ticket.status":   string(t.Status),
		"ticket.priority": string(t.Priority),
		"agent_name":      deref(t.AssignedAgentName),
	}
	if t.Customer != nil {
		values["customer_name"] = deref(t.Customer.Name)
		values["customer_email"] = deref(t.Customer.Email)
	}
	return values
}

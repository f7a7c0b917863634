package service

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
)

// TemplateStore mirrors the agent's ticket templates.
type TemplateStore struct {
	gateway TemplateGateway
	logger  *zap.Logger
	query   *queryTracker

	mu        sync.RWMutex
	templates []domain.TicketTemplate
}

// NewTemplateStore constructs the store.
func NewTemplateStore(gateway TemplateGateway, logger *zap.Logger) *TemplateStore {
	return &TemplateStore{
		gateway: gateway,
		logger:  observability.OrNop(logger).Named("templates"),
		query:   newQueryTracker("failed to load templates", nil),
	}
}

// Templates returns the mirrored templates.
func (s *TemplateStore) Templates() []domain.TicketTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.templates)
}

// State returns the list query state.
func (s *TemplateStore) State() QueryState { return s.query.state() }

// FetchTemplates replaces the mirror with the server's templates.
func (s *TemplateStore) FetchTemplates(ctx context.Context) (templates []domain.TicketTemplate, err error) {
	defer s.query.begin()(&err)

	templates, err = s.gateway.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.templates = slices.Clone(templates)
	s.mu.Unlock()
	return templates, nil
}

// CreateTemplate stores a template and prepends it to the mirror.
func (s *TemplateStore) CreateTemplate(ctx context.Context, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	tpl, err := s.gateway.CreateTemplate(ctx, payload)
	if err != nil {
		return domain.TicketTemplate{}, err
	}
	s.mu.Lock()
	s.templates = append([]domain.TicketTemplate{tpl}, s.templates...)
	s.mu.Unlock()
	return tpl, nil
}

// UpdateTemplate replaces a template and its mirrored entry.
func (s *TemplateStore) UpdateTemplate(ctx context.Context, templateID string, payload domain.TicketTemplatePayload) (domain.TicketTemplate, error) {
	tpl, err := s.gateway.UpdateTemplate(ctx, templateID, payload)
	if err != nil {
		return domain.TicketTemplate{}, err
	}
	s.mu.Lock()
	if i := slices.IndexFunc(s.templates, func(t domain.TicketTemplate) bool { return t.ID == templateID }); i >= 0 {
		s.templates[i] = tpl
	}
	s.mu.Unlock()
	return tpl, nil
}

// DeleteTemplate removes a template and its mirrored entry.
func (s *TemplateStore) DeleteTemplate(ctx context.Context, templateID string) error {
	if err := s.gateway.DeleteTemplate(ctx, templateID); err != nil {
		return err
	}
	s.mu.Lock()
	s.templates = slices.DeleteFunc(s.templates, func(t domain.TicketTemplate) bool { return t.ID == templateID })
	s.mu.Unlock()
	return nil
}

// RenderTemplate fills a template's placeholders. The mirror is not touched.
func (s *TemplateStore) RenderTemplate(ctx context.Context, templateID string, req domain.RenderTemplateRequest) (domain.RenderTemplateResponse, error) {
	rendered, err := s.gateway.RenderTemplate(ctx, templateID, req)
	if err != nil {
		return domain.RenderTemplateResponse{}, err
	}
	if len(rendered.MissingVariables) > 0 {
		s.logger.Debug("template rendered with missing variables",
			zap.String("template_id", templateID),
			zap.Strings("missing", rendered.MissingVariables))
	}
	return rendered, nil
}

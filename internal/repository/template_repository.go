package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-console/internal/domain"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// TemplateRepository stores ticket templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]domain.TicketTemplate, error)
	GetByID(ctx context.Context, id string) (domain.TicketTemplate, error)
	Create(ctx context.Context, tpl domain.TicketTemplate) (domain.TicketTemplate, error)
	Replace(ctx context.Context, tpl domain.TicketTemplate) (domain.TicketTemplate, error)
	Delete(ctx context.Context, id string) error
}

type templateRepository struct {
	mu        sync.RWMutex
	templates []domain.TicketTemplate
}

// NewTemplateRepository instantiates an in-memory template repository.
func NewTemplateRepository() TemplateRepository {
	return &templateRepository{}
}

func (r *templateRepository) List(_ context.Context) ([]domain.TicketTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TicketTemplate, len(r.templates))
	copy(out, r.templates)
	return out, nil
}

func (r *templateRepository) GetByID(_ context.Context, id string) (domain.TicketTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.templates[i], nil
	}
	return domain.TicketTemplate{}, apperrors.NewNotFound("template", map[string]any{"template_id": id})
}

func (r *templateRepository) Create(_ context.Context, tpl domain.TicketTemplate) (domain.TicketTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if r.index(tpl.ID) >= 0 {
		return domain.TicketTemplate{}, apperrors.NewConflict("template already exists", map[string]any{"template_id": tpl.ID})
	}
	r.templates = append(r.templates, tpl)
	return tpl, nil
}

func (r *templateRepository) Replace(_ context.Context, tpl domain.TicketTemplate) (domain.TicketTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(tpl.ID)
	if i < 0 {
		return domain.TicketTemplate{}, apperrors.NewNotFound("template", map[string]any{"template_id": tpl.ID})
	}
	r.templates[i] = tpl
	return tpl, nil
}

func (r *templateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return apperrors.NewNotFound("template", map[string]any{"template_id": id})
	}
	r.templates = append(r.templates[:i], r.templates[i+1:]...)
	return nil
}

func (r *templateRepository) index(id string) int {
	for i, tpl := range r.templates {
		if tpl.ID == id {
			return i
		}
	}
	return -1
}

package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/cache"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/observability"
)

// TicketStore keeps the local ticket mirror in sync with the ticket service.
type TicketStore struct {
	gateway TicketGateway
	cache   *cache.TicketCache
	logger  *zap.Logger

	list     *queryTracker
	search   *queryTracker
	filter   *queryTracker
	archived *queryTracker
	detail   *queryTracker

	slaSummaryQuery *queryTracker
	slaAlertsQuery  *queryTracker

	slaMu      sync.RWMutex
	slaSummary *domain.SLASummary
	slaAlerts  *domain.SLAAlerts
}

// TicketStoreDependencies bundles collaborators for the ticket store.
type TicketStoreDependencies struct {
	Gateway TicketGateway
	// Cache is created from Dispatcher when nil.
	Cache      *cache.TicketCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketStore constructs the store.
func NewTicketStore(deps TicketStoreDependencies) *TicketStore {
	logger := observability.OrNop(deps.Logger).Named("tickets")
	c := deps.Cache
	if c == nil {
		c = cache.New(deps.Dispatcher, cache.WithLogger(logger.Named("cache")))
	}
	slaErrors := &errorSlot{}
	return &TicketStore{
		gateway:         deps.Gateway,
		cache:           c,
		logger:          logger,
		list:            newQueryTracker("failed to load tickets", nil),
		search:          newQueryTracker("failed to search tickets", nil),
		filter:          newQueryTracker("failed to filter tickets", nil),
		archived:        newQueryTracker("failed to load archived tickets", nil),
		detail:          newQueryTracker("failed to load ticket", nil),
		slaSummaryQuery: newQueryTracker("failed to load SLA summary", slaErrors),
		slaAlertsQuery:  newQueryTracker("failed to load SLA alerts", slaErrors),
	}
}

// Cache exposes the underlying mirror.
func (s *TicketStore) Cache() *cache.TicketCache { return s.cache }

// Tickets returns the mirrored tickets in server order.
func (s *TicketStore) Tickets() []domain.Ticket { return s.cache.List() }

// Pagination returns the cursors of the last list-shaped fetch.
func (s *TicketStore) Pagination() domain.Pagination { return s.cache.Pagination() }

// CurrentTicket returns the ticket open in the detail view.
func (s *TicketStore) CurrentTicket() (domain.Ticket, bool) { return s.cache.Current() }

// ListState reports the loading and error state of paged list fetches.
func (s *TicketStore) ListState() QueryState { return s.list.state() }

// SearchState reports the loading and error state of keyword searches.
func (s *TicketStore) SearchState() QueryState { return s.search.state() }

// FilterState reports the loading and error state of filter queries.
func (s *TicketStore) FilterState() QueryState { return s.filter.state() }

// ArchivedState reports the loading and error state of archived listings.
func (s *TicketStore) ArchivedState() QueryState { return s.archived.state() }

// DetailState reports the loading and error state of single-ticket fetches.
func (s *TicketStore) DetailState() QueryState { return s.detail.state() }

// SLASummaryState reports the state of SLA summary fetches. It shares its error with SLAAlertsState.
func (s *TicketStore) SLASummaryState() QueryState { return s.slaSummaryQuery.state() }

// SLAAlertsState reports the state of SLA alert fetches.
func (s *TicketStore) SLAAlertsState() QueryState { return s.slaAlertsQuery.state() }

// FetchTickets loads one page and replaces the mirror with it.
func (s *TicketStore) FetchTickets(ctx context.Context, filters domain.TicketListFilters) (page domain.TicketPage, err error) {
	defer s.list.begin()(&err)

	page, err = s.gateway.ListTickets(ctx, filters)
	if err != nil {
		return domain.TicketPage{}, err
	}
	s.cache.ReplaceAll(page.Tickets, page.Pagination)
	return page, nil
}

// SearchTickets runs a keyword search and replaces the mirror with the results.
// A blank keyword lists tickets without filters instead.
func (s *TicketStore) SearchTickets(ctx context.Context, keyword string) (tickets []domain.Ticket, err error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		page, err := s.FetchTickets(ctx, domain.TicketListFilters{})
		if err != nil {
			return nil, err
		}
		return page.Tickets, nil
	}

	defer s.search.begin()(&err)

	tickets, err = s.gateway.SearchTickets(ctx, keyword)
	if err != nil {
		return nil, err
	}
	n := len(tickets)
	s.cache.ReplaceAll(tickets, domain.Pagination{Total: n, Limit: n, Offset: 0, HasMore: false})
	return tickets, nil
}

// FilterTickets runs the advanced filter and replaces the mirror with its page.
func (s *TicketStore) FilterTickets(ctx context.Context, payload domain.TicketFilterPayload) (page domain.TicketPage, err error) {
	defer s.filter.begin()(&err)

	page, err = s.gateway.FilterTickets(ctx, payload)
	if err != nil {
		return domain.TicketPage{}, err
	}
	s.cache.ReplaceAll(page.Tickets, page.Pagination)
	return page, nil
}

// FetchArchivedTickets loads one page of archived tickets and replaces the mirror with it.
func (s *TicketStore) FetchArchivedTickets(ctx context.Context, q domain.ArchivedTicketQuery) (page domain.TicketPage, err error) {
	defer s.archived.begin()(&err)

	page, err = s.gateway.ListArchivedTickets(ctx, q)
	if err != nil {
		return domain.TicketPage{}, err
	}
	s.cache.ReplaceAll(page.Tickets, page.Pagination)
	return page, nil
}

// FetchOption tunes FetchTicketByID.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	silent bool
}

// Silent leaves the detail loading flag and the previous error untouched.
// Failures are still recorded.
func Silent() FetchOption {
	return func(o *fetchOptions) { o.silent = true }
}

// FetchTicketByID loads one ticket, opens it in the detail slot and upserts it.
func (s *TicketStore) FetchTicketByID(ctx context.Context, ticketID string, opts ...FetchOption) (ticket domain.Ticket, err error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.silent {
		defer func() {
			if err != nil {
				s.detail.fail(err)
			}
		}()
	} else {
		defer s.detail.begin()(&err)
	}

	ticket, err = s.gateway.GetTicket(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.cache.SetCurrent(ticket)
	return ticket, nil
}

// SLASummary returns the last fetched SLA summary.
func (s *TicketStore) SLASummary() (domain.SLASummary, bool) {
	s.slaMu.RLock()
	defer s.slaMu.RUnlock()
	if s.slaSummary == nil {
		return domain.SLASummary{}, false
	}
	return *s.slaSummary, true
}

// SLAAlerts returns the last fetched SLA alerts.
func (s *TicketStore) SLAAlerts() (domain.SLAAlerts, bool) {
	s.slaMu.RLock()
	defer s.slaMu.RUnlock()
	if s.slaAlerts == nil {
		return domain.SLAAlerts{}, false
	}
	return *s.slaAlerts, true
}

// FetchSLASummary refreshes the SLA summary snapshot.
func (s *TicketStore) FetchSLASummary(ctx context.Context) (summary domain.SLASummary, err error) {
	defer s.slaSummaryQuery.begin()(&err)

	summary, err = s.gateway.SLASummary(ctx)
	if err != nil {
		return domain.SLASummary{}, err
	}
	s.slaMu.Lock()
	s.slaSummary = &summary
	s.slaMu.Unlock()
	return summary, nil
}

// FetchSLAAlerts refreshes the SLA alerts snapshot.
func (s *TicketStore) FetchSLAAlerts(ctx context.Context) (alerts domain.SLAAlerts, err error) {
	defer s.slaAlertsQuery.begin()(&err)

	alerts, err = s.gateway.SLAAlerts(ctx)
	if err != nil {
		return domain.SLAAlerts{}, err
	}
	s.slaMu.Lock()
	s.slaAlerts = &alerts
	s.slaMu.Unlock()
	return alerts, nil
}

// ExportTickets renders the filtered ticket set. The mirror is not touched.
func (s *TicketStore) ExportTickets(ctx context.Context, req domain.ExportRequest) (domain.ExportFile, error) {
	if req.Format == "" {
		req.Format = domain.ExportFormatCSV
	}
	file, err := s.gateway.ExportTickets(ctx, req)
	if err != nil {
		return domain.ExportFile{}, err
	}
	s.logger.Info("tickets exported", zap.String("format", string(req.Format)), zap.String("filename", file.Filename), zap.Int("bytes", len(file.Data)))
	return file, nil
}

// RecommendAssignment asks the server which agent should take a ticket.
func (s *TicketStore) RecommendAssignment(ctx context.Context, payload domain.SmartAssignPayload) (domain.SmartAssignRecommendation, error) {
	return s.gateway.RecommendAssignment(ctx, payload)
}

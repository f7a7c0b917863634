package backend

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/spec-kit/ticket-console/internal/domain"
)

type slaTarget struct {
	firstResponse time.Duration
	resolution    time.Duration
}

var slaTargets = map[domain.TicketPriority]slaTarget{
	domain.TicketPriorityUrgent: {firstResponse: 15 * time.Minute, resolution: 4 * time.Hour},
	domain.TicketPriorityHigh:   {firstResponse: time.Hour, resolution: 24 * time.Hour},
	domain.TicketPriorityMedium: {firstResponse: 4 * time.Hour, resolution: 72 * time.Hour},
	domain.TicketPriorityLow:    {firstResponse: 8 * time.Hour, resolution: 120 * time.Hour},
}

func targetFor(p domain.TicketPriority) slaTarget {
	if t, ok := slaTargets[p]; ok {
		return t
	}
	return slaTargets[domain.TicketPriorityMedium]
}

func isOpen(status domain.TicketStatus) bool {
	switch status {
	case domain.TicketStatusResolved, domain.TicketStatusClosed, domain.TicketStatusArchived:
		return false
	}
	return true
}

// SLASummary aggregates response and resolution times over every ticket.
func (d *TicketDesk) SLASummary(ctx context.Context) (domain.SLASummary, error) {
	all, err := d.tickets.All(ctx)
	if err != nil {
		return domain.SLASummary{}, err
	}
	var (
		summary        domain.SLASummary
		firstResponses float64
		resolutions    float64
	)
	for _, t := range all {
		summary.TotalTickets++
		if isOpen(t.Status) {
			summary.OpenTickets++
		}
		if t.Status == domain.TicketStatusPending {
			summary.PendingTickets++
		}
		if t.FirstResponseAt != nil {
			summary.FirstResponseCount++
			firstResponses += float64(*t.FirstResponseAt - t.CreatedAt)
		}
		if t.ResolvedAt != nil {
			summary.ResolutionCount++
			resolutions += float64(*t.ResolvedAt - t.CreatedAt)
		}
	}
	if summary.FirstResponseCount > 0 {
		avg := firstResponses / float64(summary.FirstResponseCount)
		summary.AvgFirstResponseSeconds = &avg
	}
	if summary.ResolutionCount > 0 {
		avg := resolutions / float64(summary.ResolutionCount)
		summary.AvgResolutionSeconds = &avg
	}
	return summary, nil
}

// SLAAlerts lists open tickets past their first response or resolution target,
// most overdue first.
func (d *TicketDesk) SLAAlerts(ctx context.Context) (domain.SLAAlerts, error) {
	all, err := d.tickets.All(ctx)
	if err != nil {
		return domain.SLAAlerts{}, err
	}
	now := float64(domain.NewUnixTime(d.now()))
	alerts := domain.SLAAlerts{FirstResponseAlerts: []domain.SLAAlert{}, ResolutionAlerts: []domain.SLAAlert{}}
	for _, t := range all {
		if !isOpen(t.Status) {
			continue
		}
		target := targetFor(t.Priority)
		elapsed := now - float64(t.CreatedAt)
		alert := domain.SLAAlert{TicketID: t.TicketID, ElapsedSeconds: elapsed, Priority: t.Priority}
		if t.FirstResponseAt == nil && elapsed > target.firstResponse.Seconds() {
			alerts.FirstResponseAlerts = append(alerts.FirstResponseAlerts, alert)
		}
		if elapsed > target.resolution.Seconds() {
			alerts.ResolutionAlerts = append(alerts.ResolutionAlerts, alert)
		}
	}
	byElapsed := func(a, b domain.SLAAlert) int {
		switch {
		case a.ElapsedSeconds > b.ElapsedSeconds:
			return -1
		case a.ElapsedSeconds < b.ElapsedSeconds:
			return 1
		}
		return strings.Compare(a.TicketID, b.TicketID)
	}
	slices.SortFunc(alerts.FirstResponseAlerts, byElapsed)
	slices.SortFunc(alerts.ResolutionAlerts, byElapsed)
	return alerts, nil
}

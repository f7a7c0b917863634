package domain

import (
	"maps"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending         TicketStatus = "pending"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusWaitingCustomer TicketStatus = "waiting_customer"
	TicketStatusWaitingVendor   TicketStatus = "waiting_vendor"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
	TicketStatusArchived        TicketStatus = "archived"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketType classifies the business context of a ticket.
type TicketType string

const (
	TicketTypePreSale   TicketType = "pre_sale"
	TicketTypeAfterSale TicketType = "after_sale"
	TicketTypeComplaint TicketType = "complaint"
)

// UnixTime is a wire timestamp expressed in (possibly fractional) unix seconds.
type UnixTime float64

// Time converts the wire value to a time.Time.
func (u UnixTime) Time() time.Time {
	sec := int64(u)
	nsec := int64((float64(u) - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// NewUnixTime converts t to its wire representation.
func NewUnixTime(t time.Time) UnixTime {
	return UnixTime(float64(t.UnixNano()) / float64(time.Second))
}

// CustomerInfo is the customer snapshot captured on a ticket.
type CustomerInfo struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Country *string `json:"country,omitempty"`
}

// AssignmentRecord is one entry of a ticket's assignment ledger.
type AssignmentRecord struct {
	AgentID    *string  `json:"agent_id,omitempty"`
	AgentName  *string  `json:"agent_name,omitempty"`
	AssignedBy *string  `json:"assigned_by,omitempty"`
	Note       *string  `json:"note,omitempty"`
	AssignedAt UnixTime `json:"assigned_at"`
}

// Ticket is the aggregate mirrored from the ticket service.
type Ticket struct {
	TicketID          string             `json:"ticket_id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	SessionName       *string            `json:"session_name,omitempty"`
	TicketType        TicketType         `json:"ticket_type"`
	Status            TicketStatus       `json:"status"`
	Priority          TicketPriority     `json:"priority"`
	CreatedBy         string             `json:"created_by"`
	CreatedByName     *string            `json:"created_by_name,omitempty"`
	AssignedAgentID   *string            `json:"assigned_agent_id,omitempty"`
	AssignedAgentName *string            `json:"assigned_agent_name,omitempty"`
	Customer          *CustomerInfo      `json:"customer,omitempty"`
	Metadata          map[string]any     `json:"metadata"`
	History           []StatusHistory    `json:"history"`
	ClosedAt          *UnixTime          `json:"closed_at,omitempty"`
	ArchivedAt        *UnixTime          `json:"archived_at,omitempty"`
	ReopenedCount     int                `json:"reopened_count"`
	ReopenedAt        *UnixTime          `json:"reopened_at,omitempty"`
	ReopenedBy        *string            `json:"reopened_by,omitempty"`
	FirstResponseAt   *UnixTime          `json:"first_response_at,omitempty"`
	ResolvedAt        *UnixTime          `json:"resolved_at,omitempty"`
	Assignments       []AssignmentRecord `json:"assignments"`
	Comments          []Comment          `json:"comments"`
	CreatedAt         UnixTime           `json:"created_at"`
	UpdatedAt         UnixTime           `json:"updated_at"`
}

// Clone returns a copy that shares no pointer, slice or top-level map storage with t.
func (t Ticket) Clone() Ticket {
	out := t
	out.SessionName = clonePtr(t.SessionName)
	out.CreatedByName = clonePtr(t.CreatedByName)
	out.AssignedAgentID = clonePtr(t.AssignedAgentID)
	out.AssignedAgentName = clonePtr(t.AssignedAgentName)
	out.ReopenedBy = clonePtr(t.ReopenedBy)
	out.ClosedAt = clonePtr(t.ClosedAt)
	out.ArchivedAt = clonePtr(t.ArchivedAt)
	out.ReopenedAt = clonePtr(t.ReopenedAt)
	out.FirstResponseAt = clonePtr(t.FirstResponseAt)
	out.ResolvedAt = clonePtr(t.ResolvedAt)
	if t.Customer != nil {
		customer := t.Customer.Clone()
		out.Customer = &customer
	}
	out.Metadata = maps.Clone(t.Metadata)
	out.History = cloneEach(t.History, StatusHistory.Clone)
	out.Assignments = cloneEach(t.Assignments, AssignmentRecord.Clone)
	out.Comments = cloneEach(t.Comments, Comment.Clone)
	return out
}

// Clone returns a copy with its own string fields.
func (c CustomerInfo) Clone() CustomerInfo {
	return CustomerInfo{
		Name:    clonePtr(c.Name),
		Email:   clonePtr(c.Email),
		Phone:   clonePtr(c.Phone),
		Country: clonePtr(c.Country),
	}
}

// Clone returns a copy with its own string fields.
func (a AssignmentRecord) Clone() AssignmentRecord {
	out := a
	out.AgentID = clonePtr(a.AgentID)
	out.AgentName = clonePtr(a.AgentName)
	out.AssignedBy = clonePtr(a.AssignedBy)
	out.Note = clonePtr(a.Note)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneEach[S ~[]E, E any](items S, clone func(E) E) S {
	if items == nil {
		return nil
	}
	out := make(S, len(items))
	for i := range items {
		out[i] = clone(items[i])
	}
	return out
}

// LatestStatus returns the to_status of the most recent history entry.
func (t Ticket) LatestStatus() (TicketStatus, bool) {
	if len(t.History) == 0 {
		return "", false
	}
	return t.History[len(t.History)-1].ToStatus, true
}

// Pagination carries the cursor state of a list-shaped response.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// TicketPage is the payload of list, filter and archived responses.
type TicketPage struct {
	Tickets []Ticket `json:"tickets"`
	Pagination
}

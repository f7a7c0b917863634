package domain

// BatchAssignRequest assigns several tickets to one agent.
type BatchAssignRequest struct {
	TicketIDs       []string `json:"ticket_ids"`
	TargetAgentID   string   `json:"target_agent_id"`
	TargetAgentName string   `json:"target_agent_name,omitempty"`
	Note            string   `json:"note,omitempty"`
}

// BatchCloseRequest closes several tickets.
type BatchCloseRequest struct {
	TicketIDs   []string `json:"ticket_ids"`
	CloseReason string   `json:"close_reason,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

// BatchPriorityRequest changes the priority of several tickets.
type BatchPriorityRequest struct {
	TicketIDs []string       `json:"ticket_ids"`
	Priority  TicketPriority `json:"priority"`
	Reason    string         `json:"reason,omitempty"`
}

// BatchFailure is one ticket the server refused to mutate.
type BatchFailure struct {
	TicketID string `json:"ticket_id"`
	Error    string `json:"error"`
}

// BatchResult is the per-item outcome of a batch operation.
type BatchResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
	Tickets   []Ticket       `json:"tickets"`
}

// FailedIDs lists the ticket ids the server rejected.
func (r BatchResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.TicketID)
	}
	return ids
}

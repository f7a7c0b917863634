package domain

// SLASummary aggregates response and resolution times across tickets.
type SLASummary struct {
	TotalTickets            int      `json:"total_tickets"`
	OpenTickets             int      `json:"open_tickets"`
	PendingTickets          int      `json:"pending_tickets"`
	FirstResponseCount      int      `json:"first_response_count"`
	AvgFirstResponseSeconds *float64 `json:"avg_first_response_seconds,omitempty"`
	ResolutionCount         int      `json:"resolution_count"`
	AvgResolutionSeconds    *float64 `json:"avg_resolution_seconds,omitempty"`
}

// SLAAlert flags a ticket whose elapsed time exceeds its target.
type SLAAlert struct {
	TicketID       string         `json:"ticket_id"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Priority       TicketPriority `json:"priority"`
}

// SLAAlerts groups alerts by the SLA clock that is breached.
type SLAAlerts struct {
	FirstResponseAlerts []SLAAlert `json:"first_response_alerts"`
	ResolutionAlerts    []SLAAlert `json:"resolution_alerts"`
}

// SmartAssignPayload describes a ticket for the assignment recommender.
type SmartAssignPayload struct {
	TicketType      TicketType     `json:"ticket_type"`
	Priority        TicketPriority `json:"priority"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	CustomerCountry string         `json:"customer_country,omitempty"`
	Category        string         `json:"category,omitempty"`
	Keywords        []string       `json:"keywords,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
}

// SmartAssignRecommendation is the agent suggested by the recommender.
type SmartAssignRecommendation struct {
	AgentID         string   `json:"agent_id"`
	AgentName       string   `json:"agent_name"`
	MatchedTags     []string `json:"matched_tags"`
	ManualSessions  int      `json:"manual_sessions"`
	PendingSessions int      `json:"pending_sessions"`
	LoadScore       float64  `json:"load_score"`
	Reason          string   `json:"reason"`
}

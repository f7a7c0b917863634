package domain

// StatusHistory is an immutable status transition recorded by the server.
type StatusHistory struct {
	HistoryID    string        `json:"history_id"`
	FromStatus   *TicketStatus `json:"from_status"`
	ToStatus     TicketStatus  `json:"to_status"`
	ChangedBy    string        `json:"changed_by"`
	ChangeReason *string       `json:"change_reason,omitempty"`
	Comment      *string       `json:"comment,omitempty"`
	ChangedAt    UnixTime      `json:"changed_at"`
}

// Clone returns a copy with its own optional fields.
func (h StatusHistory) Clone() StatusHistory {
	out := h
	out.FromStatus = clonePtr(h.FromStatus)
	out.ChangeReason = clonePtr(h.ChangeReason)
	out.Comment = clonePtr(h.Comment)
	return out
}

package events

import "time"

// EventType enumerates cache change notifications.
type EventType string

const (
	EventTicketUpserted  EventType = "ticket_upserted"
	EventTicketsReplaced EventType = "tickets_replaced"
	EventTicketEvicted   EventType = "ticket_evicted"
	EventCurrentChanged  EventType = "current_ticket_changed"
)

// Event describes one mutation applied to the ticket cache.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketUpsertedPayload payload.
type TicketUpsertedPayload struct {
	Inserted bool `json:"inserted"`
	Position int  `json:"position"`
}

// TicketsReplacedPayload payload.
type TicketsReplacedPayload struct {
	Count   int  `json:"count"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// CurrentChangedPayload payload. Cleared is true when the detail slot was emptied.
type CurrentChangedPayload struct {
	Cleared bool `json:"cleared"`
}

package domain

// AssistStatus is the state of a colleague assistance request.
type AssistStatus string

const (
	AssistStatusPending  AssistStatus = "pending"
	AssistStatusAnswered AssistStatus = "answered"
	// AssistStatusAll is a query-only value meaning "no status filter".
	AssistStatusAll AssistStatus = "all"
)

// AssistRequest is a question one agent asked another about a session.
type AssistRequest struct {
	ID          string       `json:"id"`
	SessionName string       `json:"session_name"`
	Requester   string       `json:"requester"`
	Assistant   string       `json:"assistant"`
	Question    string       `json:"question"`
	Answer      *string      `json:"answer,omitempty"`
	Status      AssistStatus `json:"status"`
	CreatedAt   UnixTime     `json:"created_at"`
	AnsweredAt  *UnixTime    `json:"answered_at,omitempty"`
}

// AssistInbox splits assistance requests by direction.
type AssistInbox struct {
	Received []AssistRequest `json:"received"`
	Sent     []AssistRequest `json:"sent"`
}

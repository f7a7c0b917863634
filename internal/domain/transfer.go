package domain

// TransferAction is an agent's answer to a transfer request.
type TransferAction string

const (
	TransferActionAccept  TransferAction = "accept"
	TransferActionDecline TransferAction = "decline"
)

// TransferDecision is the recorded outcome of a transfer.
type TransferDecision string

const (
	TransferDecisionAccepted TransferDecision = "accepted"
	TransferDecisionDeclined TransferDecision = "declined"
	TransferDecisionExpired  TransferDecision = "expired"
)

// TransferRequest is a pending hand-over of a session between agents.
type TransferRequest struct {
	ID            string   `json:"id"`
	SessionName   string   `json:"session_name"`
	FromAgentID   string   `json:"from_agent_id"`
	FromAgentName string   `json:"from_agent_name,omitempty"`
	ToAgentID     string   `json:"to_agent_id"`
	ToAgentName   string   `json:"to_agent_name,omitempty"`
	Reason        string   `json:"reason"`
	Note          string   `json:"note,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     UnixTime `json:"created_at"`
}

// TransferHistoryRecord is a completed transfer of a session.
type TransferHistoryRecord struct {
	ID            string           `json:"id"`
	SessionName   string           `json:"session_name"`
	FromAgent     string           `json:"from_agent"`
	FromAgentName string           `json:"from_agent_name,omitempty"`
	ToAgent       string           `json:"to_agent"`
	ToAgentName   string           `json:"to_agent_name,omitempty"`
	Reason        string           `json:"reason"`
	Note          string           `json:"note,omitempty"`
	TransferredAt UnixTime         `json:"transferred_at"`
	Accepted      bool             `json:"accepted"`
	Decision      TransferDecision `json:"decision"`
	RespondedAt   *UnixTime        `json:"responded_at,omitempty"`
	ResponseNote  string           `json:"response_note,omitempty"`
}

// TransferResponse is the body sent when responding to a transfer request.
type TransferResponse struct {
	Action       TransferAction `json:"action"`
	ResponseNote string         `json:"response_note"`
}

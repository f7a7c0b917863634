package domain

// AgentRole enumerates console operator roles.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "agent"
	AgentRoleAdmin AgentRole = "admin"
)

// Agent identifies the console operator a credential was issued to.
type Agent struct {
	ID   string    `json:"agent_id"`
	Name string    `json:"agent_name,omitempty"`
	Role AgentRole `json:"role,omitempty"`
}

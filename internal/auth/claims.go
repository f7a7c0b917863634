package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// Claims describes the JWT payload issued to console agents.
type Claims struct {
	AgentName string           `json:"agent_name,omitempty"`
	Role      domain.AgentRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what the console can learn about its operator from the credential.
type Identity struct {
	Agent     domain.Agent
	ExpiresAt *time.Time
}

// ParseIdentity decodes the claims of token without verifying its signature.
// The server remains the only judge of validity; this is for display and defaults.
func ParseIdentity(token string) (*Identity, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	agentID := claims.Subject
	if agentID == "" {
		return nil, errors.New("token has no subject")
	}
	identity := &Identity{Agent: domain.Agent{ID: agentID, Name: claims.AgentName, Role: claims.Role}}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		identity.ExpiresAt = &exp
	}
	return identity, nil
}

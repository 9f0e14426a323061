package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered EventType = "identity_registered"
	EventLoginSucceeded     EventType = "login_succeeded"
	EventLoginFailed        EventType = "login_failed"
	EventTokenRevoked       EventType = "token_revoked"
)

// Event represents an authentication event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// IdentityRegisteredPayload payload.
type IdentityRegisteredPayload struct {
	IdentityID string `json:"identity_id"`
	Role       string `json:"role,omitempty"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

package domain

import "time"

// Claims are the facts carried by a verified bearer token.
type Claims struct {
	TokenID   string
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// LoginResult is returned to a caller after successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

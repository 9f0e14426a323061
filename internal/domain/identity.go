package domain

import "time"

// Identity is a registered principal that can log in and receive tokens.
// Username is the lookup key and never changes after creation.
type Identity struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Profile is the public view of an identity handed to downstream services.
type Profile struct {
	Username string
	Role     string
}

// Profile projects the identity onto its public fields.
func (i *Identity) Profile() Profile {
	return Profile{Username: i.Username, Role: i.Role}
}

package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned for malformed, mis-signed, expired or revoked tokens
	// and for tokens whose identity no longer exists.
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUsernameTaken    = errors.New("username already registered")
)

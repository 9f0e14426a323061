package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// CredentialStore holds identities keyed by username and checks passwords against them.
type CredentialStore struct {
	repo      repository.IdentityRepository
	hasher    *auth.PasswordHasher
	dummyHash string
	now       func() time.Time
}

// NewCredentialStore wraps repo. The dummy hash used for unknown usernames is computed once here.
func NewCredentialStore(repo repository.IdentityRepository, hasher *auth.PasswordHasher) (*CredentialStore, error) {
	dummy, err := hasher.DummyHash()
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		repo:      repo,
		hasher:    hasher,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Lookup returns the identity for username or domain.ErrIdentityNotFound.
func (s *CredentialStore) Lookup(ctx context.Context, username string) (*domain.Identity, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Add inserts identity unless the username is already registered, in which case
// nothing changes and false is returned.
func (s *CredentialStore) Add(ctx context.Context, identity *domain.Identity) (bool, error) {
	if identity == nil || identity.Username == "" {
		return false, errors.New("add identity: username required")
	}
	if identity.PasswordHash == "" {
		return false, errors.New("add identity: password hash required")
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = s.now()
	}
	inserted, err := s.repo.InsertIfAbsent(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("add identity: %w", err)
	}
	return inserted, nil
}

// Register hashes password and adds a new identity. The returned bool is false when the
// username was taken; the returned identity is then the one that was attempted.
func (s *CredentialStore) Register(ctx context.Context, username, password, role string) (*domain.Identity, bool, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	identity := &domain.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	inserted, err := s.Add(ctx, identity)
	if err != nil {
		return nil, false, err
	}
	return identity, inserted, nil
}

// ValidateCredentials reports whether password belongs to username. Unknown usernames
// and wrong passwords both yield false; only storage failures return an error.
func (s *CredentialStore) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	identity, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		s.hasher.Matches(s.dummyHash, password)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("validate credentials: %w", err)
	}
	return s.hasher.Matches(identity.PasswordHash, password), nil
}

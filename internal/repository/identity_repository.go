package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/auth-service/internal/domain"
)

// IdentityRepository defines persistence access for identities.
type IdentityRepository interface {
	// GetByUsername returns domain.ErrIdentityNotFound when no identity matches.
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	// InsertIfAbsent stores identity unless its username is taken; the first writer wins.
	InsertIfAbsent(ctx context.Context, identity *domain.Identity) (bool, error)
}

type memoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

// NewMemoryIdentityRepository returns a process-local implementation.
func NewMemoryIdentityRepository() IdentityRepository {
	return &memoryIdentityRepository{identities: make(map[string]domain.Identity)}
}

func (r *memoryIdentityRepository) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[username]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return &identity, nil
}

func (r *memoryIdentityRepository) InsertIfAbsent(_ context.Context, identity *domain.Identity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.identities[identity.Username]; exists {
		return false, nil
	}
	r.identities[identity.Username] = *identity
	return true, nil
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func TestCredentialStore_RegisterAndValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newCredentialStore(t)

	identity, inserted, err := store.Register(ctx, "admin", "password", "Admin")
	require.NoError(t, err)
	require.True(t, inserted)
	assert.NotEmpty(t, identity.ID)
	assert.NotEqual(t, "password", identity.PasswordHash)
	assert.False(t, identity.CreatedAt.IsZero())

	ok, err := store.ValidateCredentials(ctx, "admin", "password")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Lookup(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, got.ID)
	assert.Equal(t, "Admin", got.Role)
}

func TestCredentialStore_FailuresAreUniform(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newCredentialStore(t)
	_, _, err := store.Register(ctx, "admin", "password", "Admin")
	require.NoError(t, err)

	wrongPassword, errWrong := store.ValidateCredentials(ctx, "admin", "wrong")
	unknownUser, errUnknown := store.ValidateCredentials(ctx, "ghost", "password")
	caseMismatch, errCase := store.ValidateCredentials(ctx, "ADMIN", "password")

	assert.False(t, wrongPassword)
	assert.False(t, unknownUser)
	assert.False(t, caseMismatch)
	assert.NoError(t, errWrong)
	assert.NoError(t, errUnknown)
	assert.NoError(t, errCase)
}

func TestCredentialStore_LookupMissing(t *testing.T) {
	t.Parallel()

	_, err := newCredentialStore(t).Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestCredentialStore_AddIsInsertIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newCredentialStore(t)

	inserted, err := store.Add(ctx, &domain.Identity{Username: "bob", PasswordHash: "first", Role: "User"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Add(ctx, &domain.Identity{Username: "bob", PasswordHash: "second", Role: "Admin"})
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := store.Lookup(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "first", got.PasswordHash)
	assert.Equal(t, "User", got.Role)
}

func TestCredentialStore_AddRejectsIncompleteIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newCredentialStore(t)

	_, err := store.Add(ctx, nil)
	assert.Error(t, err)
	_, err = store.Add(ctx, &domain.Identity{PasswordHash: "h"})
	assert.Error(t, err)
	_, err = store.Add(ctx, &domain.Identity{Username: "bob"})
	assert.Error(t, err)
}

func TestCredentialStore_ConcurrentRegistrationKeepsFirstWriter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newCredentialStore(t)

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := map[string]string{}
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			password := fmt.Sprintf("password-%d", i)
			identity, inserted, err := store.Register(ctx, "dup", password, "")
			assert.NoError(t, err)
			if inserted {
				mu.Lock()
				winners[identity.ID] = password
				mu.Unlock()
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	got, err := store.Lookup(ctx, "dup")
	require.NoError(t, err)
	password, ok := winners[got.ID]
	require.True(t, ok)

	valid, err := store.ValidateCredentials(ctx, "dup", password)
	require.NoError(t, err)
	assert.True(t, valid, "the stored identity is the winner's")
}

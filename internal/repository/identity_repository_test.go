package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func TestMemoryIdentityRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryIdentityRepository()

	_, err := repo.GetByUsername(ctx, "admin")
	require.ErrorIs(t, err, domain.ErrIdentityNotFound)

	inserted, err := repo.InsertIfAbsent(ctx, &domain.Identity{ID: "1", Username: "admin", PasswordHash: "h1", Role: "Admin"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, &domain.Identity{ID: "2", Username: "admin", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.Equal(t, "Admin", got.Role)

	_, err = repo.GetByUsername(ctx, "Admin")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound, "lookups are case-sensitive")
}

func TestMemoryIdentityRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryIdentityRepository()
	original := &domain.Identity{ID: "1", Username: "admin", Role: "Admin"}
	_, err := repo.InsertIfAbsent(ctx, original)
	require.NoError(t, err)

	original.Role = "Mutated"
	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	got.Role = "AlsoMutated"

	again, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin", again.Role)
}

func TestMemoryIdentityRepository_ConcurrentInsertKeepsOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryIdentityRepository()

	const writers = 32
	results := make([]bool, writers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			inserted, err := repo.InsertIfAbsent(ctx, &domain.Identity{ID: fmt.Sprint(i), Username: "dup"})
			assert.NoError(t, err)
			results[i] = inserted
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	winner := ""
	for i, ok := range results {
		if ok {
			winners++
			winner = fmt.Sprint(i)
		}
	}
	require.Equal(t, 1, winners)

	got, err := repo.GetByUsername(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, winner, got.ID, "the first writer's data is retained")
}

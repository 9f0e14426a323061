package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

type postgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIdentityRepository returns a Postgres-backed implementation.
func NewPostgresIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &postgresIdentityRepository{pool: pool}
}

func (r *postgresIdentityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	const query = `
        SELECT id, username, password_hash, role, created_at
        FROM identities WHERE username=$1`

	var identity domain.Identity
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&identity.ID,
		&identity.Username,
		&identity.PasswordHash,
		&identity.Role,
		&identity.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}
	return &identity, nil
}

func (r *postgresIdentityRepository) InsertIfAbsent(ctx context.Context, identity *domain.Identity) (bool, error) {
	const query = `
        INSERT INTO identities (id, username, password_hash, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO NOTHING
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		identity.ID,
		identity.Username,
		identity.PasswordHash,
		identity.Role,
	).Scan(&identity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

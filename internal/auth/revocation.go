package auth

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"
)

// DefaultRevocationShards is the shard count used when none is configured.
const DefaultRevocationShards = 16

type tokenDigest [sha256.Size]byte

// RevocationRegistry remembers logged-out tokens until their natural expiry.
//
// Entries are keyed by the SHA-256 digest of the raw token and spread over
// mutex-guarded shards chosen by the same digest, so every operation on a given
// token runs under one lock. Dead entries are dropped when they are read and by Sweep.
type RevocationRegistry struct {
	shards []*revocationShard
	mask   uint64
	now    func() time.Time
}

type revocationShard struct {
	mu      sync.Mutex
	entries map[tokenDigest]time.Time
}

// RevocationOption customizes a RevocationRegistry.
type RevocationOption func(*RevocationRegistry)

// WithRevocationClock replaces the wall clock used for expiry comparisons.
func WithRevocationClock(now func() time.Time) RevocationOption {
	return func(r *RevocationRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRevocationRegistry creates a registry with shardCount shards.
// shardCount is rounded up to a power of two; non-positive values use the default.
func NewRevocationRegistry(shardCount int, opts ...RevocationOption) *RevocationRegistry {
	if shardCount <= 0 {
		shardCount = DefaultRevocationShards
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}

	r := &RevocationRegistry{
		shards: make([]*revocationShard, n),
		mask:   uint64(n - 1),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for i := range r.shards {
		r.shards[i] = &revocationShard{entries: make(map[tokenDigest]time.Time)}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RevocationRegistry) locate(token string) (*revocationShard, tokenDigest) {
	key := tokenDigest(sha256.Sum256([]byte(token)))
	idx := binary.BigEndian.Uint64(key[:8]) & r.mask
	return r.shards[idx], key
}

// Revoke records token as revoked until naturalExpiry. A token that has already
// expired needs no entry.
func (r *RevocationRegistry) Revoke(_ context.Context, token string, naturalExpiry time.Time) error {
	shard, key := r.locate(token)
	now := r.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if !now.Before(naturalExpiry) {
		delete(shard.entries, key)
		return nil
	}
	shard.entries[key] = naturalExpiry
	return nil
}

// IsRevoked reports whether token was revoked and has not yet expired.
// An expired entry is removed as part of the check.
func (r *RevocationRegistry) IsRevoked(_ context.Context, token string) (bool, error) {
	shard, key := r.locate(token)
	now := r.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()
	expiry, ok := shard.entries[key]
	if !ok {
		return false, nil
	}
	if now.Before(expiry) {
		return true, nil
	}
	delete(shard.entries, key)
	return false, nil
}

// Sweep drops every entry whose natural expiry has passed and returns how many were removed.
func (r *RevocationRegistry) Sweep(ctx context.Context) int {
	removed := 0
	for _, shard := range r.shards {
		if ctx.Err() != nil {
			return removed
		}
		now := r.now()
		shard.mu.Lock()
		for key, expiry := range shard.entries {
			if !now.Before(expiry) {
				delete(shard.entries, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// Len returns the number of stored entries, including dead ones not yet pruned.
func (r *RevocationRegistry) Len() int {
	count := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		count += len(shard.entries)
		shard.mu.Unlock()
	}
	return count
}

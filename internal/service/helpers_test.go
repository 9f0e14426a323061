package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc         *AuthService
	credentials *CredentialStore
	registry    *auth.RevocationRegistry
	clock       *testClock
	metrics     *observability.Metrics
	dispatcher  events.Dispatcher
}

func newCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(repository.NewMemoryIdentityRepository(), auth.NewPasswordHasher(bcrypt.MinCost))
	require.NoError(t, err)
	return store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newTestClock()
	credentials := newCredentialStore(t)
	tokens, err := auth.NewTokenCodec(testSecret, auth.WithClock(clock.Now))
	require.NoError(t, err)
	registry := auth.NewRevocationRegistry(4, auth.WithRevocationClock(clock.Now))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewAuthService(config.AuthConfig{AccessTokenTTLMinutes: 60}, AuthDependencies{
		Credentials: credentials,
		Tokens:      tokens,
		Revocations: registry,
		Logger:      zaptest.NewLogger(t),
		Metrics:     metrics,
		Dispatcher:  dispatcher,
	})
	return &fixture{
		svc:         svc,
		credentials: credentials,
		registry:    registry,
		clock:       clock,
		metrics:     metrics,
		dispatcher:  dispatcher,
	}
}

// failingRevocations simulates an unreachable revocation backend.
type failingRevocations struct{}

var errBackendDown = errors.New("backend down")

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return errBackendDown }

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errBackendDown
}

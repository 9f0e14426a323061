package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
)

// RevocationStore records logged-out tokens until their natural expiry.
// auth.RevocationRegistry and repository.RedisRevocationStore implement it.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, naturalExpiry time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthService coordinates login, logout and token checks.
type AuthService struct {
	credentials *CredentialStore
	tokens      *auth.TokenCodec
	revocations RevocationStore
	lifespan    time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
// Logger, Metrics and Dispatcher are optional.
type AuthDependencies struct {
	Credentials *CredentialStore
	Tokens      *auth.TokenCodec
	Revocations RevocationStore
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Dispatcher  events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: deps.Credentials,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		lifespan:    cfg.AccessTokenTTL(),
		logger:      logger,
		metrics:     deps.Metrics,
		dispatcher:  deps.Dispatcher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the credentials and issues a token. Unknown usernames and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	ok, err := s.credentials.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("failed login attempt", zap.String("username", username))
		s.metrics.RecordLogin(false)
		s.publish(ctx, events.EventLoginFailed, username, nil)
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.credentials.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(identity, s.lifespan)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("username", username))
	s.metrics.RecordLogin(true)
	s.publish(ctx, events.EventLoginSucceeded, username, events.LoginSucceededPayload{ExpiresAt: expiresAt})
	return &domain.LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes token until its own expiry. Tokens that do not verify are ignored.
// The only error is a failure of the revocation store itself.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("logout with unverifiable token ignored", zap.Error(err))
		return nil
	}
	if err := s.revocations.Revoke(ctx, token, claims.ExpiresAt); err != nil {
		s.logger.Error("revoke token", zap.String("username", claims.Username), zap.Error(err))
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Info("user logged out", zap.String("username", claims.Username), zap.String("token_id", claims.TokenID))
	s.metrics.RecordRevocation()
	s.publish(ctx, events.EventTokenRevoked, claims.Username, events.TokenRevokedPayload{
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	})
	return nil
}

// IsAuthenticated reports whether token is correctly signed, unexpired and not revoked.
func (s *AuthService) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.authenticate(ctx, token)
	return err == nil
}

// GetIdentityFromToken applies the IsAuthenticated checks and resolves the token's
// username. It returns domain.ErrUnauthenticated if any check fails or the identity
// no longer exists.
func (s *AuthService) GetIdentityFromToken(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	identity, err := s.credentials.Lookup(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.logger.Info("token for unknown identity", zap.String("username", claims.Username))
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return identity, nil
}

// GetProfile returns the public profile for the identity behind token.
func (s *AuthService) GetProfile(ctx context.Context, token string) (*domain.Profile, error) {
	identity, err := s.GetIdentityFromToken(ctx, token)
	if err != nil {
		return nil, err
	}
	profile := identity.Profile()
	return &profile, nil
}

// Register creates an identity, returning domain.ErrUsernameTaken if the username exists.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*domain.Identity, error) {
	identity, inserted, err := s.credentials.Register(ctx, username, password, role)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, domain.ErrUsernameTaken
	}

	s.logger.Info("identity registered", zap.String("username", username), zap.String("role", role))
	s.publish(ctx, events.EventIdentityRegistered, username, events.IdentityRegisteredPayload{
		IdentityID: identity.ID,
		Role:       role,
	})
	return identity, nil
}

// Seed registers the bootstrap identity if it does not exist yet.
func (s *AuthService) Seed(ctx context.Context, seed config.SeedConfig) error {
	if !seed.Enabled {
		return nil
	}
	_, err := s.Register(ctx, seed.Username, seed.Password, seed.Role)
	if errors.Is(err, domain.ErrUsernameTaken) {
		s.logger.Info("seed identity already present", zap.String("username", seed.Username))
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed identity %q: %w", seed.Username, err)
	}
	return nil
}

// authenticate checks revocation first and then the token itself. Revoked and invalid
// tokens are told apart only in logs and metrics.
func (s *AuthService) authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		s.logger.Error("revocation check failed", zap.Error(err))
		s.metrics.RecordTokenCheck(observability.TokenInvalid)
		return nil, domain.ErrUnauthenticated
	}
	if revoked {
		s.logger.Debug("revoked token presented")
		s.metrics.RecordTokenCheck(observability.TokenRevoked)
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		s.metrics.RecordTokenCheck(observability.TokenInvalid)
		return nil, domain.ErrUnauthenticated
	}
	s.metrics.RecordTokenCheck(observability.TokenValid)
	return claims, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, username string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Username:  username,
		Timestamp: s.now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

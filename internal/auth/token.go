package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// MinSecretLength is the shortest HMAC key NewTokenCodec accepts.
const MinSecretLength = 32

var (
	// ErrTokenInvalid is the single outcome for every verification failure:
	// malformed input, wrong algorithm, bad signature and expiry all wrap it.
	ErrTokenInvalid = errors.New("token invalid")
	ErrWeakSecret   = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

// TokenCodec issues and verifies HS256 signed JWTs.
type TokenCodec struct {
	secret []byte
	skew   time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces the wall clock used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithClockSkew tolerates tokens up to skew past their expiry.
func WithClockSkew(skew time.Duration) TokenOption {
	return func(c *TokenCodec) {
		if skew > 0 {
			c.skew = skew
		}
	}
}

// NewTokenCodec builds a codec around the process-wide secret.
func NewTokenCodec(secret string, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	c := &TokenCodec{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Claims describes JWT payload.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for identity that expires lifespan from now.
// The returned expiry is the exact value embedded in the token.
func (c *TokenCodec) Issue(identity *domain.Identity, lifespan time.Duration) (string, time.Time, error) {
	if identity == nil || identity.Username == "" {
		return "", time.Time{}, errors.New("issue token: identity without username")
	}
	if lifespan <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: non-positive lifespan %s", lifespan)
	}

	now := c.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(lifespan))
	claims := &Claims{
		Name: identity.Username,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.Username,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return tokenString, expiresAt.Time, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Any failure is reported as ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenStr string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(c.skew),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}
	if claims.Name == "" {
		return nil, fmt.Errorf("%w: missing name claim", ErrTokenInvalid)
	}

	out := &domain.Claims{
		TokenID:   claims.ID,
		Username:  claims.Name,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

func newTestCodec(t *testing.T, clock *testClock, opts ...TokenOption) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, append([]TokenOption{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec("short")
	require.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewTokenCodec("")
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	codec := newTestCodec(t, clock)
	identity := &domain.Identity{Username: "admin", Role: "Admin"}

	token, expiresAt, err := codec.Issue(identity, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.True(t, expiresAt.Equal(clock.Now().Add(time.Hour)))

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "Admin", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.IssuedAt.Equal(clock.Now()))
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestTokenCodec_RoundTripWithoutRole(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())
	token, _, err := codec.Issue(&domain.Identity{Username: "guest"}, time.Minute)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "guest", claims.Username)
	assert.Empty(t, claims.Role)
}

func TestTokenCodec_PayloadCarriesNamedClaims(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())
	token, _, err := codec.Issue(&domain.Identity{Username: "admin", Role: "Admin"}, time.Minute)
	require.NoError(t, err)

	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(token, ".")[1])
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, "admin", fields["name"])
	assert.Equal(t, "Admin", fields["role"])
	assert.Contains(t, fields, "iat")
	assert.Contains(t, fields, "exp")
	assert.Contains(t, fields, "jti")
}

func TestTokenCodec_TokensAreUnique(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())
	identity := &domain.Identity{Username: "admin", Role: "Admin"}

	first, _, err := codec.Issue(identity, time.Minute)
	require.NoError(t, err)
	second, _, err := codec.Issue(identity, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenCodec_Expiry(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	codec := newTestCodec(t, clock)
	token, expiresAt, err := codec.Issue(&domain.Identity{Username: "admin"}, 10*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{name: "just issued", at: clock.Now(), valid: true},
		{name: "one second before expiry", at: expiresAt.Add(-time.Second), valid: true},
		{name: "one nanosecond before expiry", at: expiresAt.Add(-time.Nanosecond), valid: true},
		{name: "at expiry", at: expiresAt, valid: false},
		{name: "one second after expiry", at: expiresAt.Add(time.Second), valid: false},
	}
	for _, tt := range tests {
		clock.Set(tt.at)
		_, err := codec.Verify(token)
		if tt.valid {
			assert.NoError(t, err, tt.name)
		} else {
			assert.ErrorIs(t, err, ErrTokenInvalid, tt.name)
		}
	}
}

func TestTokenCodec_ClockSkew(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	codec := newTestCodec(t, clock, WithClockSkew(5*time.Second))
	token, expiresAt, err := codec.Issue(&domain.Identity{Username: "admin"}, time.Minute)
	require.NoError(t, err)

	clock.Set(expiresAt.Add(4 * time.Second))
	_, err = codec.Verify(token)
	assert.NoError(t, err)

	clock.Set(expiresAt.Add(5 * time.Second))
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_SignatureBitFlipsAreRejected(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())
	token, _, err := codec.Issue(&domain.Identity{Username: "admin", Role: "Admin"}, time.Hour)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for i := sigStart; i < len(token); i++ {
		for bit := 0; bit < 8; bit++ {
			tampered := []byte(token)
			tampered[i] ^= 1 << bit
			_, err := codec.Verify(string(tampered))
			require.ErrorIs(t, err, ErrTokenInvalid, "byte %d bit %d", i, bit)
		}
	}
}

func TestTokenCodec_RejectsForgedClaims(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())
	token, _, err := codec.Issue(&domain.Identity{Username: "bob", Role: "User"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"User"`, `"role":"Admin"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = codec.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	codec := newTestCodec(t, clock)
	exp := jwt.NewNumericDate(clock.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	otherSecret := "another-secret-key-at-least-32-bytes!"
	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"two segments":   "a.b",
		"three garbage":  "a.b.c",
		"other secret":   sign(jwt.SigningMethodHS256, []byte(otherSecret), &Claims{Name: "admin", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"other hmac alg": sign(jwt.SigningMethodHS512, []byte(testSecret), &Claims{Name: "admin", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"alg none":       sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &Claims{Name: "admin", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"no expiry":      sign(jwt.SigningMethodHS256, []byte(testSecret), &Claims{Name: "admin"}),
		"no name":        sign(jwt.SigningMethodHS256, []byte(testSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
	}
	for name, token := range tests {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}

func TestTokenCodec_IssueValidatesInput(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, newTestClock())

	_, _, err := codec.Issue(nil, time.Minute)
	assert.Error(t, err)

	_, _, err = codec.Issue(&domain.Identity{}, time.Minute)
	assert.Error(t, err)

	_, _, err = codec.Issue(&domain.Identity{Username: "admin"}, 0)
	assert.Error(t, err)
}

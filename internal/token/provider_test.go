package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"gift-store-api/internal/model"
)

const testSecret = "test-secret-key-for-provider-tests"

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	p, err := NewProvider(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	_, err := NewProvider("", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestProvider_IssueParseRoundTrip(t *testing.T) {
	p := newTestProvider(t)

	signed, err := p.Issue("alice", map[string]any{"role": "USER"}, time.Hour)
	require.NoError(t, err)
	require.Len(t, strings.Split(signed, "."), 3)

	claims, err := p.Parse(signed)
	require.NoError(t, err)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
	require.Equal(t, "USER", claims["role"])
}

func TestProvider_IssueProtectsRegisteredClaims(t *testing.T) {
	p := newTestProvider(t)

	signed, err := p.Issue("alice", map[string]any{"sub": "mallory"}, time.Hour)
	require.NoError(t, err)

	subject, err := p.Subject(signed)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestProvider_ParseFailuresCollapse(t *testing.T) {
	p := newTestProvider(t)

	t.Run("malformed token", func(t *testing.T) {
		_, err := p.Parse("not-a-token")
		require.ErrorIs(t, err, model.ErrInvalidAuth)
	})

	t.Run("wrong signature", func(t *testing.T) {
		other, err := NewProvider("a-different-secret", time.Minute, time.Hour)
		require.NoError(t, err)

		signed, err := other.Issue("alice", nil, time.Hour)
		require.NoError(t, err)

		_, err = p.Parse(signed)
		require.ErrorIs(t, err, model.ErrInvalidAuth)
	})

	t.Run("unsupported signing method", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = p.Parse(unsigned)
		require.ErrorIs(t, err, model.ErrInvalidAuth)
	})

	t.Run("expired token", func(t *testing.T) {
		signed, err := p.Issue("alice", nil, -time.Minute)
		require.NoError(t, err)

		_, err = p.Parse(signed)
		require.ErrorIs(t, err, model.ErrInvalidAuth)
	})
}

func TestProvider_Subject(t *testing.T) {
	p := newTestProvider(t)

	t.Run("returns sub claim", func(t *testing.T) {
		signed, err := p.IssueRefresh("bob")
		require.NoError(t, err)

		subject, err := p.Subject(signed)
		require.NoError(t, err)
		require.Equal(t, "bob", subject)
	})

	t.Run("missing subject is invalid auth", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = p.Subject(signed)
		require.ErrorIs(t, err, model.ErrInvalidAuth)
	})
}

func TestProvider_IsValid(t *testing.T) {
	p := newTestProvider(t)
	alice := model.User{ID: "u-1", Username: "alice"}

	t.Run("fresh token is valid", func(t *testing.T) {
		signed, err := p.IssueAccess("alice", nil)
		require.NoError(t, err)
		require.True(t, p.IsValid(signed, alice))
	})

	t.Run("subject mismatch", func(t *testing.T) {
		signed, err := p.IssueAccess("bob", nil)
		require.NoError(t, err)
		require.False(t, p.IsValid(signed, alice))
	})

	t.Run("zero ttl is immediately invalid", func(t *testing.T) {
		signed, err := p.Issue("alice", nil, 0)
		require.NoError(t, err)
		require.False(t, p.IsValid(signed, alice))
	})

	t.Run("large ttl stays valid", func(t *testing.T) {
		signed, err := p.Issue("alice", nil, 1000*time.Hour)
		require.NoError(t, err)
		require.True(t, p.IsValid(signed, alice))
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		require.False(t, p.IsValid("garbage", alice))
	})
}

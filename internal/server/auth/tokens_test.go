package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("super-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RejectsMisconfiguration(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("", time.Minute, time.Hour)
	require.Error(t, err)
	_, err = NewTokenManager("k", 0, time.Hour)
	require.Error(t, err)
	_, err = NewTokenManager("k", time.Minute, -time.Second)
	require.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	tok, err := m.IssueAccessToken("user-123", "ann")
	require.NoError(t, err)

	c, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", c.UserID)
	assert.Equal(t, "ann", c.UserName)
	assert.Equal(t, TokenTypeAccess, c.Type)
	assert.WithinDuration(t, time.Now().Add(time.Minute), c.ExpiresAt.Time, 2*time.Second)
}

func TestRefreshToken_RoundTripAndUnique(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	a, err := m.IssueRefreshToken("u1")
	require.NoError(t, err)
	b, err := m.IssueRefreshToken("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "refresh tokens must be distinct even within one second")

	c, err := m.ParseRefreshToken(a)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Empty(t, c.UserName)
	assert.NotEmpty(t, c.ID)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	access, err := m.IssueAccessToken("u1", "ann")
	require.NoError(t, err)
	refresh, err := m.IssueRefreshToken("u1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccessToken(access)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	_, err = m.ParseRefreshToken(refresh)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	other, err := NewTokenManager("right-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	tok, err := other.IssueAccessToken("u2", "bob")
	require.NoError(t, err)

	_, err = newManager(t).ParseAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_ExpiredWithBadSignatureIsInvalid(t *testing.T) {
	t.Parallel()

	other, err := NewTokenManager("right-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	other.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := other.IssueAccessToken("u2", "bob")
	require.NoError(t, err)

	_, err = newManager(t).ParseAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_TypeConfusionRejected(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	refresh, err := m.IssueRefreshToken("u1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	access, err := m.IssueAccessToken("u1", "ann")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c", strings.Repeat("x", 300)} {
		_, err := m.ParseAccessToken(tok)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "token %q: got %v", tok, err)
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		Type:             TokenTypeAccess,
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = m.ParseAccessToken(hs512)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(none)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_MissingExpiryOrSubject(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1", Type: TokenTypeAccess}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = m.ParseAccessToken(noExp)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Type:             TokenTypeAccess,
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = m.ParseAccessToken(noUser)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

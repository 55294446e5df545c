// Package auth issues and verifies the signed session tokens and hashes
// account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType separates access tokens from refresh tokens signed with the same key.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the token payload: standard claims plus the user identity and token type.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string    `json:"uid"`
	UserName string    `json:"username,omitempty"`
	Type     TokenType `json:"typ"`
}

// TokenManager signs and verifies HS256 tokens with one shared key and
// independent lifetimes for access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager validates the key material once so that misconfiguration
// surfaces at startup instead of on every request.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token signing key is empty")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive, got %s", accessTTL)
	}
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive, got %s", refreshTTL)
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccessToken mints a short-lived token carrying the user's id and username.
func (m *TokenManager) IssueAccessToken(userID, userName string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: m.registered(m.accessTTL, ""),
		UserID:           userID,
		UserName:         userName,
		Type:             TokenTypeAccess,
	})
}

// IssueRefreshToken mints a long-lived token carrying only the user's id.
// Each token gets a random jti so two tokens for the same user never collide.
func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: m.registered(m.refreshTTL, uuid.NewString()),
		UserID:           userID,
		Type:             TokenTypeRefresh,
	})
}

// ParseAccessToken verifies signature, algorithm, expiry and type.
// It returns common.ErrTokenExpired or common.ErrInvalidToken on failure.
func (m *TokenManager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ParseRefreshToken is ParseAccessToken for refresh tokens.
func (m *TokenManager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh)
}

func (m *TokenManager) registered(ttl time.Duration, id string) jwt.RegisteredClaims {
	now := m.now()
	return jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (m *TokenManager) sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

func (m *TokenManager) parse(tokenString string, want TokenType) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Type != want || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

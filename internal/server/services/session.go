package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/auth"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

// LoginLimiter throttles failed logins per username and client address.
// Check returns common.ErrorTooManyRequests once the budget is spent.
type LoginLimiter interface {
	Check(ctx context.Context, username, ip string) error
	Fail(ctx context.Context, username, ip string) error
	Reset(ctx context.Context, username, ip string) error
}

type noLimit struct{}

func (noLimit) Check(context.Context, string, string) error { return nil }
func (noLimit) Fail(context.Context, string, string) error  { return nil }
func (noLimit) Reset(context.Context, string, string) error { return nil }

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the outcome of a successful login.
type Session struct {
	TokenPair
	User *models.PublicUser
}

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	limiter     LoginLimiter
	rotate      bool
	bcryptCost  int
}

// NewSessionService builds the login/refresh/logout flows. A nil limiter
// disables throttling.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenManager,
	limiter LoginLimiter, cfg *config.Config) *SessionService {
	if limiter == nil {
		limiter = noLimit{}
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		limiter:     limiter,
		rotate:      cfg.RotateRefreshTokens,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Login verifies the credentials, issues a token pair and records the
// refresh token digest on the user. Unknown user and wrong password both
// yield common.ErrorUnauthorized.
func (s *SessionService) Login(ctx context.Context, userName, password, ip string) (*Session, error) {

	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	// only an exhausted budget blocks; limiter outages do not lock everyone out
	if err := s.limiter.Check(ctx, userName, ip); errors.Is(err, common.ErrorTooManyRequests) {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CompareDummy(password, s.bcryptCost)
			_ = s.limiter.Fail(ctx, userName, ip)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		_ = s.limiter.Fail(ctx, userName, ip)
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := repo.SetRefreshToken(ctx, user.ID, auth.Digest(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}

	_ = s.limiter.Reset(ctx, userName, ip)

	return &Session{TokenPair: *pair, User: user.Public()}, nil
}

func (s *SessionService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.UserName)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The presented
// token must still be the one recorded on the user. With rotation enabled a
// new refresh token is swapped in and returned; otherwise RefreshToken is
// empty and the user record is left untouched.
//
// Errors: common.ErrRefreshTokenMissing, common.ErrTokenExpired,
// common.ErrInvalidToken (also when the user is gone) and
// common.ErrRefreshTokenMismatch.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	if refreshToken == "" {
		return nil, common.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.DigestMatches(user.RefreshTokenHash, refreshToken) {
		return nil, common.ErrRefreshTokenMismatch
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.UserName)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	if !s.rotate {
		return &TokenPair{AccessToken: access}, nil
	}

	next, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	swapped, err := repo.SwapRefreshToken(ctx, user.ID, auth.Digest(refreshToken), auth.Digest(next))
	if err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}
	if !swapped {
		// a concurrent refresh or logout won
		return nil, common.ErrRefreshTokenMismatch
	}

	return &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout clears the stored refresh digest when the presented token is the
// current one. Unknown, expired or superseded tokens are not an error.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {

	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.ClearRefreshToken(ctx, claims.UserID, auth.Digest(refreshToken)); err != nil {
		return fmt.Errorf("error clearing refresh token: %w", err)
	}

	return nil
}

// Authenticate resolves an access token to the public view of its user.
// A valid token whose user no longer exists yields common.ErrorNotFound.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error) {

	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	return user.Public(), nil
}

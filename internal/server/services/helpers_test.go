package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/newsnow/internal/server/auth"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTokens(t *testing.T, accessTTL, refreshTTL time.Duration) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager("test-secret", accessTTL, refreshTTL)
	require.NoError(t, err)
	return tm
}

func seedUser(t *testing.T, m *memory.Manager, userName, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u, err := m.Users(nil).Create(context.Background(), &models.User{
		FullName:     strings.ToUpper(userName[:1]) + userName[1:],
		UserName:     userName,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func seedCategory(t *testing.T, m *memory.Manager, name, authorID string) *models.Category {
	t.Helper()
	c, err := m.Categories(nil).Create(context.Background(), &models.Category{Name: name, Slug: Slugify(name), AuthorID: authorID})
	require.NoError(t, err)
	return c
}

func seedArticle(t *testing.T, m *memory.Manager, title, authorID, categoryID string) *models.Article {
	t.Helper()
	a, err := m.Articles(nil).Create(context.Background(), &models.Article{
		Title: title, Slug: Slugify(title), AuthorID: authorID, CategoryID: categoryID,
	})
	require.NoError(t, err)
	return a
}

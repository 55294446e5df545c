package settings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+website_name,\s*image,\s*theme_color,\s*footer_description,\s*updated_at\s+FROM\s+settings\s+WHERE\s+id\s*=\s*1$`
	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"website_name", "image", "theme_color", "footer_description", "updated_at"}).
		AddRow("News Now", "", "", "© Copyright 2025 News Now", time.Now()))

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)

	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "News Now", s.WebsiteName)
}

func TestSave_Upserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+settings.*ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE\s+SET.*RETURNING\s+updated_at$`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs("Daily", "", "#ff0000", "footer").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(q).WillReturnError(errors.New("db down"))

	s := &models.Setting{WebsiteName: "Daily", ThemeColor: "#ff0000", FooterDescription: "footer"}
	require.NoError(t, repo.Save(context.Background(), s))
	assert.Equal(t, now, s.UpdatedAt)

	err := repo.Save(context.Background(), s)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

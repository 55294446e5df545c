package comments

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
	"github.com/jackc/pgx/v5/pgconn"
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

var cols = []string{"id", "article_id", "name", "email", "content", "status", "title", "author_id", "created_at"}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+comments\s*\(article_id,\s*name,\s*email,\s*content,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at$`
	mock.ExpectQuery(q).WithArgs("a-1", "Reader", "r@example.com", "Nice", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("cm-1", time.Now()))
	mock.ExpectQuery(q).WillReturnError(&pgconn.PgError{Code: "23503"})

	c := &models.Comment{ArticleID: "a-1", Name: "Reader", Email: "r@example.com", Content: "Nice", Status: models.CommentPending}
	got, err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "cm-1", got.ID)

	_, err = repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+cm\.id,.*FROM\s+comments\s+cm\s+JOIN\s+articles\s+a\s+ON\s+a\.id\s*=\s*cm\.article_id\s+WHERE\s+cm\.id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("cm-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("cm-1", "a-1", "R", "r@x", "Nice", "approved", "Final", "u-1", time.Now()))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	c, err := repo.GetByID(context.Background(), "cm-1")
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, c.Status)
	assert.Equal(t, "u-1", c.ArticleAuthorID)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_Filters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)JOIN\s+articles\s+a\s+ON\s+a\.id\s*=\s*cm\.article_id\s+ORDER\s+BY\s+cm\.created_at\s+DESC$`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("cm-1", "a-1", "R", "r@x", "Nice", "pending", "Final", "u-1", time.Now()))
	mock.ExpectQuery(`(?s)WHERE\s+cm\.article_id\s*=\s*\$1\s+AND\s+a\.author_id\s*=\s*\$2\s+AND\s+cm\.status\s*=\s*\$3\s+ORDER`).
		WithArgs("a-1", "u-1", "approved").
		WillReturnRows(sqlmock.NewRows(cols))

	all, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := repo.List(context.Background(), Filter{ArticleID: "a-1", ArticleAuthorID: "u-1", Status: models.CommentApproved})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^UPDATE\s+comments\s+SET\s+status\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("cm-1", "approved").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+comments\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE\s+FROM\s+comments`).
		WithArgs("cm-1").WillReturnError(errors.New("db err"))

	ctx := context.Background()
	require.NoError(t, repo.UpdateStatus(ctx, "cm-1", models.CommentApproved))
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), common.ErrorNotFound)

	err := repo.Delete(ctx, "cm-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCountOnArticlesBy(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+comments\s+cm\s+JOIN\s+articles\s+a\s+ON\s+a\.id\s*=\s*cm\.article_id\s+WHERE\s+a\.author_id\s*=\s*\$1$`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountOnArticlesBy(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

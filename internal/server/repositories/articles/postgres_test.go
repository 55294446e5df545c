package articles

import (
	"context"
	"database/sql"
	"database/sql/driver"
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

var cols = []string{"id", "title", "slug", "content", "image", "author_id", "username", "full_name", "category_id", "name", "created_at"}

func row(now time.Time) []driver.Value {
	return []driver.Value{"a-1", "Final", "final", "text", "", "u-1", "ann", "Ann", "c-1", "Sports", now}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+articles\s*\(title,\s*slug,\s*content,\s*image,\s*author_id,\s*category_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,\s*created_at$`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs("Final", "final", "text", "", "u-1", "c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", now))
	mock.ExpectQuery(q).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(q).WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(q).WillReturnError(errors.New("db down"))

	a := &models.Article{Title: "Final", Slug: "final", Content: "text", AuthorID: "u-1", CategoryID: "c-1"}
	got, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.ID)

	_, err = repo.Create(context.Background(), a)
	assert.ErrorIs(t, err, common.ErrorConflict)
	_, err = repo.Create(context.Background(), a)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.Create(context.Background(), a)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByIDAndSlug(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+a\.id,.*JOIN\s+categories\s+c\s+ON\s+c\.id\s*=\s*a\.category_id\s+WHERE\s+a\.id\s*=\s*\$1$`).
		WithArgs("a-1").WillReturnRows(sqlmock.NewRows(cols).AddRow(row(now)...))
	mock.ExpectQuery(`(?s)WHERE\s+a\.slug\s*=\s*\$1$`).
		WithArgs("nope").WillReturnError(sql.ErrNoRows)

	a, err := repo.GetByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Sports", a.CategoryName)
	assert.Equal(t, "ann", a.AuthorUserName)

	_, err = repo.GetBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_BuildsFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)JOIN\s+categories\s+c\s+ON\s+c\.id\s*=\s*a\.category_id\s+ORDER\s+BY\s+a\.created_at\s+DESC$`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(row(now)...))
	mock.ExpectQuery(`(?s)WHERE\s+a\.author_id\s*=\s*\$1\s+AND\s+a\.category_id\s*=\s*\$2\s+ORDER\s+BY\s+a\.created_at\s+DESC\s+LIMIT\s+\$3$`).
		WithArgs("u-1", "c-1", 5).
		WillReturnRows(sqlmock.NewRows(cols))

	all, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := repo.List(context.Background(), Filter{AuthorID: "u-1", CategoryID: "c-1", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, none)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	upQ := `(?s)^UPDATE\s+articles\s+SET\s+title\s*=\s*\$2,\s*slug\s*=\s*\$3,\s*content\s*=\s*\$4,\s*image\s*=\s*\$5,\s*category_id\s*=\s*\$6\s+WHERE\s+id\s*=\s*\$1$`
	delQ := `^DELETE\s+FROM\s+articles\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(upQ).WithArgs("a-1", "T", "t", "c", "", "c-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upQ).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(delQ).WithArgs("a-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(delQ).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, &models.Article{ID: "a-1", Title: "T", Slug: "t", Content: "c", CategoryID: "c-2"}))
	assert.ErrorIs(t, repo.Update(ctx, &models.Article{ID: "ghost"}), common.ErrorNotFound)
	require.NoError(t, repo.Delete(ctx, "a-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), common.ErrorNotFound)
}

func TestCounts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+articles$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+articles\s+WHERE\s+author_id\s*=\s*\$1$`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+articles\s+WHERE\s+category_id\s*=\s*\$1$`).WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+articles\s+WHERE\s+category_id`).WithArgs("c-2").
		WillReturnError(errors.New("db err"))

	ctx := context.Background()
	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	n, err = repo.Count(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountByCategory(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.CountByCategory(ctx, "c-2")
	require.Error(t, err)
}

package site_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buivan/fedisearch/internal/core/site"
)

/*
TestPostgresRepository_Register verifies that registering a known instance
updates its name and last-seen time without touching the crawl cursors.
*/
func TestPostgresRepository_Register(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sites")).
		WithArgs("https://lemmy.example/", "Lemmy Example", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repository := site.NewPostgresRepository(mock)
	err = repository.Register(context.Background(), "https://lemmy.example/", "Lemmy Example")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_All(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	seen := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"actor_id", "name", "last_post_page", "last_comment_page", "last_update"}).
		AddRow("https://a.example/", "Instance A", 12, 0, seen).
		AddRow("https://b.example/", "Instance B", 0, 0, seen)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sites")).WillReturnRows(rows)

	repository := site.NewPostgresRepository(mock)
	sites, err := repository.All(context.Background())

	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "https://a.example/", sites[0].ActorID)
	assert.Equal(t, 12, sites[0].LastPostPage)
	assert.Equal(t, "Instance B", sites[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_LastPostPage covers both a stored cursor and an
instance nobody crawled yet, which reads as page zero rather than an error.
*/
func TestPostgresRepository_LastPostPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_post_page")).
		WithArgs("https://a.example/").
		WillReturnRows(pgxmock.NewRows([]string{"last_post_page"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_post_page")).
		WithArgs("https://new.example/").
		WillReturnError(pgx.ErrNoRows)

	repository := site.NewPostgresRepository(mock)

	page, err := repository.LastPostPage(context.Background(), "https://a.example/")
	require.NoError(t, err)
	assert.Equal(t, 7, page)

	page, err = repository.LastPostPage(context.Background(), "https://new.example/")
	require.NoError(t, err)
	assert.Equal(t, 0, page)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetLastPostPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sites")).
		WithArgs("https://a.example/", 8).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repository := site.NewPostgresRepository(mock)
	err = repository.SetLastPostPage(context.Background(), "https://a.example/", 8)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/internal/lemmy"
	"github.com/buivan/fedisearch/internal/platform/apperr"
	"github.com/buivan/fedisearch/pkg/pointer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixturePage is one listing page: two posts sharing an author and a
// community, the second post without a body.
func fixturePage() []lemmy.PostData {
	published := lemmy.Time{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	author := lemmy.Person{
		ActorID:     "https://a.example/u/beekeeper",
		Name:        "beekeeper",
		DisplayName: pointer.To("The Beekeeper"),
	}
	community := lemmy.Community{
		ActorID: "https://a.example/c/beekeeping",
		Name:    "beekeeping",
		Title:   pointer.To("Beekeeping"),
	}

	return []lemmy.PostData{
		{
			Post: lemmy.Post{
				ID:        7,
				Name:      "Alpha beekeeping guide",
				Body:      pointer.To("Keep bees warm"),
				ApID:      "https://a.example/post/1",
				Published: published,
			},
			Creator:   author,
			Community: community,
			Counts:    lemmy.Counts{Score: 10},
		},
		{
			Post: lemmy.Post{
				ID:        8,
				Name:      "Alpha hive",
				ApID:      "https://a.example/post/2",
				Published: published,
			},
			Creator:   author,
			Community: community,
			Counts:    lemmy.Counts{Score: 3},
		},
	}
}

/*
TestIngestor_Ingest_OrderedUpserts drives a full page through the ingestor
and verifies one statement per row set in dependency order, with shared
authors and communities deduplicated and word IDs derived deterministically.
*/
func TestIngestor_Ingest_OrderedUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO authors")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO communities")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lemmy_ids")).
		WithArgs(
			int64(7), "https://a.example/post/1", "https://a.example/",
			int64(8), "https://a.example/post/2", "https://a.example/",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO words (id, word)")).
		WithArgs(
			index.WordID("alpha"), "alpha",
			index.WordID("beekeeping"), "beekeeping",
			index.WordID("guide"), "guide",
			index.WordID("keep"), "keep",
			index.WordID("bees"), "bees",
			index.WordID("warm"), "warm",
			index.WordID("hive"), "hive",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO words_xref_posts")).
		WillReturnResult(pgxmock.NewResult("INSERT", 8))

	ingestor := index.NewIngestor(mock, discardLogger())

	require.NoError(t, ingestor.Ingest(context.Background(), "https://a.example/", fixturePage()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestIngestor_Ingest_EmptyBatch must not touch the database at all.
*/
func TestIngestor_Ingest_EmptyBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ingestor := index.NewIngestor(mock, discardLogger())

	require.NoError(t, ingestor.Ingest(context.Background(), "https://a.example/", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestIngestor_Ingest_StepFailureAborts checks that a failing step surfaces a
database error and no later row set is written.
*/
func TestIngestor_Ingest_StepFailureAborts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO authors")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO communities")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnError(errors.New("disk full"))

	ingestor := index.NewIngestor(mock, discardLogger())

	err = ingestor.Ingest(context.Background(), "https://a.example/", fixturePage())
	require.Error(t, err)
	assert.Equal(t, "DATABASE_ERROR", apperr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

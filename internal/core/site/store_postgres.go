package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/buivan/fedisearch/internal/platform/database/schema"
	"github.com/buivan/fedisearch/internal/platform/dberr"
	"github.com/buivan/fedisearch/internal/platform/postgres"
)

type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Register(context context.Context, actorID, name string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (%s)
		DO UPDATE SET %s = $2, %s = $3;
	`,
		schema.RefSite.Table,
		schema.RefSite.ActorID,
		schema.RefSite.Name,
		schema.RefSite.LastPostPage,
		schema.RefSite.LastCommentPage,
		schema.RefSite.LastUpdate,
		schema.RefSite.ActorID,
		schema.RefSite.Name,
		schema.RefSite.LastUpdate,
	)

	_, err := repository.db.Exec(context, query, actorID, name, time.Now().UTC())
	return dberr.Wrap(err, "register_site")
}

func (repository *PostgresRepository) All(context context.Context) ([]*Site, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC;
	`,
		schema.RefSite.ActorID,
		schema.RefSite.Name,
		schema.RefSite.LastPostPage,
		schema.RefSite.LastCommentPage,
		schema.RefSite.LastUpdate,
		schema.RefSite.Table,
		schema.RefSite.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_sites")
	}
	defer rows.Close()

	var sites []*Site
	for rows.Next() {
		s := &Site{}
		if err := rows.Scan(&s.ActorID, &s.Name, &s.LastPostPage, &s.LastCommentPage, &s.LastUpdate); err != nil {
			return nil, dberr.Wrap(err, "scan_site")
		}
		sites = append(sites, s)
	}

	return sites, nil
}

func (repository *PostgresRepository) LastPostPage(context context.Context, actorID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1;
	`,
		schema.RefSite.LastPostPage,
		schema.RefSite.Table,
		schema.RefSite.ActorID,
	)

	var page int
	err := repository.db.QueryRow(context, query, actorID).Scan(&page)
	if errors.Is(err, pgx.ErrNoRows) {
		// An instance nobody crawled yet starts from the beginning.
		return 0, nil
	}
	return page, dberr.Wrap(err, "get_last_post_page")
}

func (repository *PostgresRepository) SetLastPostPage(context context.Context, actorID string, page int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2
		WHERE %s = $1;
	`,
		schema.RefSite.Table,
		schema.RefSite.LastPostPage,
		schema.RefSite.ActorID,
	)

	_, err := repository.db.Exec(context, query, actorID, page)
	return dberr.Wrap(err, "set_last_post_page")
}

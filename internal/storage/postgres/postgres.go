package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FranksOps/serpkeep/internal/storage"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	rank INTEGER NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL UNIQUE,
	snippet TEXT,
	query TEXT NOT NULL,
	fetched_at BIGINT NOT NULL
);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, result *storage.Result) error {
	query := `
	INSERT INTO results (rank, title, link, snippet, query, fetched_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (link) DO UPDATE SET
		rank = EXCLUDED.rank,
		title = EXCLUDED.title,
		snippet = EXCLUDED.snippet,
		query = EXCLUDED.query,
		fetched_at = EXCLUDED.fetched_at
	`

	_, err := b.pool.Exec(ctx, query,
		result.Rank,
		result.Title,
		result.Link,
		pgtype.Text{String: result.Snippet, Valid: result.Snippet != ""},
		result.Query,
		result.FetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", result.Link, err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Result, error) {
	query := `SELECT rank, title, link, snippet, query, fetched_at FROM results WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Link != "" {
		query += fmt.Sprintf(` AND link = $%d`, paramCount)
		args = append(args, filter.Link)
		paramCount++
	}
	if filter.Query != "" {
		query += fmt.Sprintf(` AND query = $%d`, paramCount)
		args = append(args, filter.Query)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND fetched_at >= $%d`, paramCount)
		args = append(args, filter.Since.Unix())
		paramCount++
	}

	query += ` ORDER BY fetched_at DESC, rank ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*storage.Result
	for rows.Next() {
		var r storage.Result
		var snippet pgtype.Text
		var fetchedAt int64

		if err := rows.Scan(&r.Rank, &r.Title, &r.Link, &snippet, &r.Query, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		r.Snippet = snippet.String
		r.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FranksOps/serpkeep/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	rank INTEGER NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL UNIQUE,
	snippet TEXT,
	query TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, result *storage.Result) error {
	query := `
	INSERT INTO results (rank, title, link, snippet, query, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(link) DO UPDATE SET
		rank = excluded.rank,
		title = excluded.title,
		snippet = excluded.snippet,
		query = excluded.query,
		fetched_at = excluded.fetched_at
	`

	_, err := b.db.ExecContext(ctx, query,
		result.Rank,
		result.Title,
		result.Link,
		sql.NullString{String: result.Snippet, Valid: result.Snippet != ""},
		result.Query,
		result.FetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", result.Link, err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Result, error) {
	query := `SELECT rank, title, link, snippet, query, fetched_at FROM results WHERE 1=1`
	args := []any{}

	if filter.Link != "" {
		query += ` AND link = ?`
		args = append(args, filter.Link)
	}
	if filter.Query != "" {
		query += ` AND query = ?`
		args = append(args, filter.Query)
	}
	if filter.Since != nil {
		query += ` AND fetched_at >= ?`
		args = append(args, filter.Since.Unix())
	}

	query += ` ORDER BY fetched_at DESC, rank ASC`

	// SQLite only accepts OFFSET after a LIMIT clause.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*storage.Result
	for rows.Next() {
		var r storage.Result
		var snippet sql.NullString
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

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

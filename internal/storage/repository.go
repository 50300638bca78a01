package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

var ErrPageNotCached = errors.New("page not cached")

// Page is the last successfully fetched markup for a URL.
type Page struct {
	URL       string
	Body      string
	FetchedAt time.Time
}

// Fetch is one entry of the fetch log.
type Fetch struct {
	ID        string
	URL       string
	Kind      string
	Duration  time.Duration
	Bytes     int
	StartedAt time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS pages (
  url TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fetches (
  id TEXT PRIMARY KEY,
  url TEXT NOT NULL,
  kind TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  bytes INTEGER NOT NULL,
  started_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetches_started_at ON fetches(started_at);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) SavePage(ctx context.Context, page Page) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pages (url, body, fetched_at)
VALUES (?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
  body=excluded.body,
  fetched_at=excluded.fetched_at
`, page.URL, page.Body, page.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save page %s: %w", page.URL, err)
	}
	return nil
}

func (r *Repository) LoadPage(ctx context.Context, url string) (Page, error) {
	page := Page{URL: url}
	var fetchedAt string
	err := r.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM pages WHERE url = ?`, url).Scan(&page.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, fmt.Errorf("load page %s: %w", url, ErrPageNotCached)
	}
	if err != nil {
		return Page{}, fmt.Errorf("load page %s: %w", url, err)
	}
	page.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return Page{}, fmt.Errorf("parse page fetched_at %q: %w", fetchedAt, err)
	}
	return page, nil
}

// RecordFetch appends f to the fetch log, assigning an id when f has none.
func (r *Repository) RecordFetch(ctx context.Context, f Fetch) (string, error) {
	if f.ID == "" {
		f.ID = ulid.Make().String()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fetches (id, url, kind, duration_ms, bytes, started_at)
VALUES (?, ?, ?, ?, ?, ?)
`, f.ID, f.URL, f.Kind, f.Duration.Milliseconds(), f.Bytes, f.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("record fetch %s: %w", f.URL, err)
	}
	return f.ID, nil
}

// ListFetches returns the newest log entries first.
func (r *Repository) ListFetches(ctx context.Context, limit int) ([]Fetch, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, url, kind, duration_ms, bytes, started_at
FROM fetches
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetches: %w", err)
	}
	defer rows.Close()

	fetches := make([]Fetch, 0, limit)
	for rows.Next() {
		var f Fetch
		var durationMS int64
		var startedAt string
		if err := rows.Scan(&f.ID, &f.URL, &f.Kind, &durationMS, &f.Bytes, &startedAt); err != nil {
			return nil, fmt.Errorf("scan fetch: %w", err)
		}
		f.Duration = time.Duration(durationMS) * time.Millisecond
		f.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fetch started_at %q: %w", startedAt, err)
		}
		fetches = append(fetches, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return fetches, nil
}

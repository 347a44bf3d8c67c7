// Package store persists extracted outlines in SQLite, keyed by document ID
// and indexed by content hash for duplicate detection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	_ "modernc.org/sqlite"
)

// ErrNotFound means no document has the requested ID or hash.
var ErrNotFound = errors.New("document not found")

// Record is one stored outline.
type Record struct {
	DocID       string          `json:"doc_id"`
	ContentHash string          `json:"content_hash"`
	Filename    string          `json:"filename"`
	Status      string          `json:"status"`
	Outline     doctree.Outline `json:"outline"`
	Pages       int             `json:"pages"`
	FailedPages []int           `json:"failed_pages,omitempty"`
	Degraded    bool            `json:"degraded,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary is a Record without its outline, for listings.
type Summary struct {
	DocID     string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Pages     int       `json:"pages"`
	Headings  int       `json:"headings"`
	CreatedAt time.Time `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id       TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	filename     TEXT NOT NULL,
	title        TEXT NOT NULL,
	outline      TEXT NOT NULL,
	headings     INTEGER NOT NULL,
	pages        INTEGER NOT NULL,
	failed_pages TEXT NOT NULL,
	degraded     INTEGER NOT NULL,
	status       TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_by_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS documents_by_created ON documents(created_at);
`

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, r Record) error {
	if r.DocID == "" {
		return fmt.Errorf("put: empty doc_id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	outline, err := json.Marshal(r.Outline)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	failed := r.FailedPages
	if failed == nil {
		failed = []int{}
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("marshal failed pages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, content_hash, filename, title, outline, headings, pages, failed_pages, degraded, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			filename     = excluded.filename,
			title        = excluded.title,
			outline      = excluded.outline,
			headings     = excluded.headings,
			pages        = excluded.pages,
			failed_pages = excluded.failed_pages,
			degraded     = excluded.degraded,
			status       = excluded.status,
			created_at   = excluded.created_at`,
		r.DocID, r.ContentHash, r.Filename, r.Outline.Title, string(outline), len(r.Outline.Entries),
		r.Pages, string(failedJSON), r.Degraded, r.Status, r.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s: %w", r.DocID, err)
	}
	return nil
}

const recordColumns = `doc_id, content_hash, filename, outline, pages, failed_pages, degraded, status, created_at`

// Get returns the record for docID.
func (s *Store) Get(ctx context.Context, docID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM documents WHERE doc_id = ?`, docID)
	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", docID, err)
	}
	return r, nil
}

// FindByHash returns the most recent record with the given content hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM documents WHERE content_hash = ? ORDER BY created_at DESC, doc_id LIMIT 1`, hash)
	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return r, nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var (
		r                    Record
		outline, failedPages string
		createdAt            int64
	)
	err := row.Scan(&r.DocID, &r.ContentHash, &r.Filename, &outline, &r.Pages, &failedPages, &r.Degraded, &r.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(outline), &r.Outline); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if err := json.Unmarshal([]byte(failedPages), &r.FailedPages); err != nil {
		return nil, fmt.Errorf("decode failed pages: %w", err)
	}
	if len(r.FailedPages) == 0 {
		r.FailedPages = nil
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	return &r, nil
}

// List returns summaries newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, filename, title, status, pages, headings, created_at
		FROM documents ORDER BY created_at DESC, doc_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var createdAt int64
		if err := rows.Scan(&sm.DocID, &sm.Filename, &sm.Title, &sm.Status, &sm.Pages, &sm.Headings, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sm.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", docID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", docID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", docID, ErrNotFound)
	}
	return nil
}

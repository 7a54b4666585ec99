package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// Store persists snippets in SQLite.
type Store struct {
	conn *sql.DB
	path string
}

// NewStore opens (or creates) the snippet database and initializes the
// schema.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, path: dbPath}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// NewTestStore creates an in-memory store for testing.
func NewTestStore() (*Store, error) {
	return NewStore(":memory:")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS snippets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		institution_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en'
	);
	CREATE INDEX IF NOT EXISTS idx_snippets_institution ON snippets(institution_id);
	`

	if _, err := s.conn.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create snippets table: %w", err)
	}
	return nil
}

// SaveSnippet inserts a snippet and returns its assigned ID.
func (s *Store) SaveSnippet(ctx context.Context, sn *Snippet) (int64, error) {
	query := `
		INSERT INTO snippets (institution_id, title, content, language)
		VALUES (?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query, sn.InstitutionID, sn.Title, sn.Content, sn.Language)
	if err != nil {
		return 0, fmt.Errorf("save snippet: %w", err)
	}
	return res.LastInsertId()
}

// AllSnippets returns every snippet, used to build the search index.
func (s *Store) AllSnippets(ctx context.Context) ([]*Snippet, error) {
	query := `SELECT id, institution_id, title, content, language FROM snippets ORDER BY id`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snippets []*Snippet
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.ID, &sn.InstitutionID, &sn.Title, &sn.Content, &sn.Language); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		snippets = append(snippets, &sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snippets: %w", err)
	}
	return snippets, nil
}

// CountSnippets returns the number of stored snippets.
func (s *Store) CountSnippets(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snippets: %w", err)
	}
	return count, nil
}

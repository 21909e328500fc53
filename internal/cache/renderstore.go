package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"git.home.luguber.info/inful/mdxsite/internal/docs"
)

// RenderStore persists rendered document bodies in SQLite, keyed by
// content fingerprint. It satisfies docs.RenderCache.
type RenderStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ docs.RenderCache = (*RenderStore)(nil)

// OpenRenderStore opens or creates the database at path.
func OpenRenderStore(path string) (*RenderStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open render store: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &RenderStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RenderStore) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS renders (
		fingerprint TEXT PRIMARY KEY,
		html        TEXT NOT NULL,
		nodes       BLOB NOT NULL,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize render store schema: %w", err)
	}
	return nil
}

// LoadRender returns the stored render for fingerprint.
func (s *RenderStore) LoadRender(ctx context.Context, fingerprint string) (*docs.Rendered, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out   docs.Rendered
		nodes []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT html, nodes FROM renders WHERE fingerprint = ?`, fingerprint,
	).Scan(&out.HTML, &nodes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load render: %w", err)
	}
	if err := json.Unmarshal(nodes, &out.Nodes); err != nil {
		return nil, false, fmt.Errorf("failed to decode render nodes: %w", err)
	}
	return &out, true, nil
}

// StoreRender inserts or replaces the render for fingerprint.
func (s *RenderStore) StoreRender(ctx context.Context, fingerprint string, r *docs.Rendered) error {
	nodes, err := json.Marshal(r.Nodes)
	if err != nil {
		return fmt.Errorf("failed to encode render nodes: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO renders (fingerprint, html, nodes, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			html = excluded.html, nodes = excluded.nodes, created_at = excluded.created_at`,
		fingerprint, r.HTML, nodes, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store render: %w", err)
	}
	return nil
}

// Count returns the number of stored renders.
func (s *RenderStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM renders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count renders: %w", err)
	}
	return n, nil
}

// Prune removes renders stored before cutoff.
func (s *RenderStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM renders WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune renders: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *RenderStore) Close() error { return s.db.Close() }

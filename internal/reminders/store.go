package reminders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// DedupeStore persists the set of task ids already alerted as overdue.
// Last writer wins.
type DedupeStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

type MemoryStore struct {
	mu  sync.Mutex
	ids []string
}

func NewMemoryStore(ids ...string) *MemoryStore {
	return &MemoryStore{ids: append([]string(nil), ids...)}
}

func (m *MemoryStore) Load(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...), nil
}

func (m *MemoryStore) Save(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append([]string(nil), ids...)
	return nil
}

const notifiedKey = "notifiedTaskIds"

// SQLiteStore keeps the set as a JSON array in a key/value metadata table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the metadata table if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, notifiedKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", notifiedKey, err)
	}

	var ids []string
	if err := json.Unmarshal(value, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode metadata[%s]: %w", notifiedKey, err)
	}
	return ids, nil
}

func (s *SQLiteStore) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	value, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode metadata[%s]: %w", notifiedKey, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, notifiedKey, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", notifiedKey, err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the dedupe database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, func() error, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := NewSQLiteStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, db.Close, nil
}

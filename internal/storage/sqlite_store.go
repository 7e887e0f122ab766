package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/noahxzhu/tabwake/internal/model"
)

const (
	keySettings = "settings"
	keyItems    = "items"
)

// SQLiteStore keeps the schema in a two-row key/value table. Values are
// whole JSON documents, matching the whole-value get/set semantics of the
// JSON store; SQLite only buys durability of individual writes, not per-item
// transactions.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	data *model.AppSchema
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLiteStore{db: db, data: defaultSchema()}, nil
}

func (s *SQLiteStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := defaultSchema()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, keySettings).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &data.Settings); err != nil {
			return fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("failed to read settings: %w", err)
	}

	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, keyItems).Scan(&raw)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &data.Items); err != nil {
			return fmt.Errorf("failed to unmarshal items: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("failed to read items: %w", err)
	}

	applyDefaults(data)
	s.data = data
	return nil
}

func (s *SQLiteStore) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetItems() []*model.ScheduledItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.ScheduledItem, len(s.data.Items))
	copy(result, s.data.Items)
	return result
}

func (s *SQLiteStore) ReplaceItems(items []*model.ScheduledItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []*model.ScheduledItem{}
	}
	if err := s.set(keyItems, items); err != nil {
		return err
	}
	s.data.Items = items
	return nil
}

func (s *SQLiteStore) GetSettings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

func (s *SQLiteStore) UpdateSettings(settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(keySettings, settings); err != nil {
		return err
	}
	s.data.Settings = settings
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

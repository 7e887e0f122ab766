package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/noahxzhu/tabwake/internal/model"
)

// JSONStore keeps the whole schema in a single JSON file.
type JSONStore struct {
	mu       sync.RWMutex
	filePath string
	data     *model.AppSchema
}

func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{
		filePath: filePath,
		data:     defaultSchema(),
	}
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = defaultSchema()
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(raw) == 0 {
		s.data = defaultSchema()
		return nil
	}

	data := &model.AppSchema{}
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	applyDefaults(data)
	s.data = data
	return nil
}

func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(s.filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *JSONStore) GetItems() []*model.ScheduledItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.ScheduledItem, len(s.data.Items))
	copy(result, s.data.Items)
	return result
}

func (s *JSONStore) ReplaceItems(items []*model.ScheduledItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []*model.ScheduledItem{}
	}
	s.data.Items = items
	return s.save()
}

func (s *JSONStore) GetSettings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Settings
}

func (s *JSONStore) UpdateSettings(settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings = settings
	return s.save()
}

func (s *JSONStore) Close() error { return nil }

// Watch reports external edits of the backing file through onChange until
// ctx is cancelled. Saves made through this process also trigger events;
// callers are expected to react idempotently (reconciliation is a no-op
// against a collection that already matches).
func (s *JSONStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.Load(); err != nil {
					slog.Error("Failed to reload store after external change", "error", err)
					continue
				}
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Store watcher error", "error", err)
			}
		}
	}()
	return nil
}

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahxzhu/tabwake/internal/model"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabwake.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Load())

	assert.Empty(t, s.GetItems())
	assert.Equal(t, "xdg-open", s.GetSettings().BrowserCommand)

	require.NoError(t, s.ReplaceItems([]*model.ScheduledItem{testItem("a"), testItem("b")}))
	require.NoError(t, s.UpdateSettings(model.Settings{BrowserCommand: "chromium", Notifications: true}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Load())

	items := reopened.GetItems()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "chromium", reopened.GetSettings().BrowserCommand)
}

func TestSQLiteStore_ReplaceOverwritesWholeCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabwake.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Load())

	require.NoError(t, s.ReplaceItems([]*model.ScheduledItem{testItem("a"), testItem("b")}))
	require.NoError(t, s.ReplaceItems([]*model.ScheduledItem{testItem("c")}))

	require.NoError(t, s.Load())
	items := s.GetItems()
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].ID)
}

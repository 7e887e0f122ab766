// Package storage persists the scheduled-item collection and the settings
// record. The collection is always replaced wholesale (full read, transform,
// full write), never patched per item, so a partially failed wake still
// leaves a self-consistent collection behind.
package storage

import "github.com/noahxzhu/tabwake/internal/model"

// Store is the durable source of truth for scheduled items and settings.
type Store interface {
	Load() error
	GetItems() []*model.ScheduledItem
	ReplaceItems(items []*model.ScheduledItem) error
	GetSettings() model.Settings
	UpdateSettings(settings model.Settings) error
	Close() error
}

func defaultSchema() *model.AppSchema {
	return &model.AppSchema{
		Settings: model.Settings{
			BrowserCommand: "xdg-open",
			Notifications:  true,
		},
		Items: []*model.ScheduledItem{},
	}
}

func applyDefaults(data *model.AppSchema) {
	if data.Settings.BrowserCommand == "" {
		data.Settings.BrowserCommand = "xdg-open"
	}
	if data.Items == nil {
		data.Items = []*model.ScheduledItem{}
	}
}

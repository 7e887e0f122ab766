// Package materialize recreates woken items in the user's browser and emits
// notifications.
package materialize

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/noahxzhu/tabwake/internal/model"
	"github.com/noahxzhu/tabwake/internal/notify"
)

// SettingsSource yields the current settings record. Settings are read per
// call so that edits take effect without a restart.
type SettingsSource interface {
	GetSettings() model.Settings
}

// Browser opens woken tabs through the configured browser command and pushes
// notifications through the notify client.
type Browser struct {
	settings SettingsSource
}

func NewBrowser(settings SettingsSource) *Browser {
	return &Browser{settings: settings}
}

// OpenTab launches the browser command with a single URL.
func (b *Browser) OpenTab(url string) error {
	cmd := b.settings.GetSettings().BrowserCommand
	if cmd == "" {
		return fmt.Errorf("no browser command configured")
	}
	if err := exec.Command(cmd, url).Start(); err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	return nil
}

// OpenWindow launches the browser command with all URLs in order. Most
// browsers open the argument list as tabs of one new window; ordering
// follows the argument order.
func (b *Browser) OpenWindow(urls []string) error {
	cmd := b.settings.GetSettings().BrowserCommand
	if cmd == "" {
		return fmt.Errorf("no browser command configured")
	}
	if err := exec.Command(cmd, urls...).Start(); err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}
	return nil
}

// Notify sends a push notification unless notifications are disabled or no
// credentials are configured.
func (b *Browser) Notify(title, message string) error {
	settings := b.settings.GetSettings()
	if !settings.Notifications {
		return nil
	}
	if settings.PushToken == "" || settings.PushUser == "" {
		slog.Debug("Notification skipped, push credentials not configured")
		return nil
	}
	client := notify.NewClient(settings.PushToken, settings.PushUser)
	return client.SendMessage(title, message)
}

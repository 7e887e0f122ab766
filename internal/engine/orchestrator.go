package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/noahxzhu/tabwake/internal/model"
	"github.com/noahxzhu/tabwake/internal/recurrence"
)

// wake processes trigger items against the full collection and returns the
// next collection (the original minus every woken item, plus recurrence
// continuations) along with the continuations themselves. Callers must pass
// trigger items taken from coll itself, hold e.mu, and arm the continuation
// alarms once the collection has been persisted.
//
// Every sub-step beyond the returned collection is best effort: a failed
// tab open or notification never blocks alarm cancellation or removal.
func (e *Engine) wake(trigger, coll []*model.ScheduledItem) (next, conts []*model.ScheduledItem) {
	now := e.now()

	handledSessions := make(map[string]bool)
	removed := make(map[string]bool)
	var continuations []*model.ScheduledItem

	for _, it := range trigger {
		if !it.Grouped() {
			e.wakeSolo(it, now, removed, &continuations)
			continue
		}

		// One window group per invocation, no matter how many of its
		// members appear in the trigger set.
		if handledSessions[it.WindowSessionID] {
			continue
		}
		handledSessions[it.WindowSessionID] = true
		e.wakeGroup(it, coll, now, removed, &continuations)
	}

	out := make([]*model.ScheduledItem, 0, len(coll)+len(continuations))
	for _, it := range coll {
		if !removed[it.ID] {
			out = append(out, it)
		}
	}
	out = append(out, continuations...)
	return out, continuations
}

func (e *Engine) wakeSolo(it *model.ScheduledItem, now time.Time, removed map[string]bool, continuations *[]*model.ScheduledItem) {
	// A missing URL skips materialization only; cleanup, notification and
	// continuation still happen.
	if it.URL != "" {
		if err := e.mat.OpenTab(it.URL); err != nil {
			slog.Error("Failed to open tab", "id", it.ID, "url", it.URL, "error", err)
		}
	}

	title, message := soloNotification(it)
	if err := e.mat.Notify(title, message); err != nil {
		slog.Error("Failed to send notification", "id", it.ID, "error", err)
	}

	e.alarms.Clear(it.ID)
	removed[it.ID] = true

	if cont := e.continuation(it, now); cont != nil {
		*continuations = append(*continuations, cont)
	}
}

func (e *Engine) wakeGroup(it *model.ScheduledItem, coll []*model.ScheduledItem, now time.Time, removed map[string]bool, continuations *[]*model.ScheduledItem) {
	// The authoritative group is every collection member with this item's
	// (session id, wake time) pair, not just the trigger subset.
	var group []*model.ScheduledItem
	for _, m := range coll {
		if it.SameGroup(m) {
			group = append(group, m)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].WindowIndex < group[j].WindowIndex
	})

	var urls []string
	for _, m := range group {
		if m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	if len(urls) > 0 {
		if err := e.mat.OpenWindow(urls); err != nil {
			slog.Error("Failed to open window", "session", it.WindowSessionID, "error", err)
		}
	}

	if err := e.mat.Notify("Window woke up", fmt.Sprintf("Restored a window with %d tabs", len(group))); err != nil {
		slog.Error("Failed to send notification", "session", it.WindowSessionID, "error", err)
	}

	// The original session's wake has concluded; continuation members get
	// one fresh shared session id so they group again at their new time.
	newSession := ""
	for _, m := range group {
		e.alarms.Clear(m.ID)
		removed[m.ID] = true

		if cont := e.continuation(m, now); cont != nil {
			if newSession == "" {
				newSession = e.newID()
			}
			cont.WindowSessionID = newSession
			*continuations = append(*continuations, cont)
		}
	}
}

// continuation derives the next occurrence of a recurring item: same payload
// under a fresh id. Returns nil for non-recurring items and for dead rules,
// which is the designed termination of a recurring item.
func (e *Engine) continuation(it *model.ScheduledItem, now time.Time) *model.ScheduledItem {
	if !it.IsRecurring || it.Recurrence == nil {
		return nil
	}
	next, ok := recurrence.Next(*it.Recurrence, now)
	if !ok {
		return nil
	}
	return &model.ScheduledItem{
		ID:          e.newID(),
		URL:         it.URL,
		Title:       it.Title,
		Favicon:     it.Favicon,
		WakeTime:    next,
		WindowIndex: it.WindowIndex,
		IsRecurring: true,
		Recurrence:  it.Recurrence,
	}
}

func soloNotification(it *model.ScheduledItem) (title, message string) {
	name := it.Title
	if name == "" {
		name = it.URL
	}
	if it.IsRecurring {
		return "Recurring tab woke up", name
	}
	return "Snoozed tab woke up", name
}

package engine

import (
	"fmt"
	"log/slog"

	"github.com/noahxzhu/tabwake/internal/model"
)

// Reconcile aligns the durable collection with the alarm facility. It runs
// at every process start, wakes everything already overdue, persists the
// result and re-arms an alarm for every item still in the future.
//
// The alarm facility does not survive restarts, so the collection, not the
// alarm registrations, is the ground truth for what should eventually fire.
// Reconcile never assumes a prior alarm existed and is safe to run
// redundantly: against an already reconciled collection it wakes nothing,
// writes nothing, and re-arms the same alarms. Writing only when something
// was woken also keeps the store's own change notification from feeding a
// reconcile-save loop.
func (e *Engine) Reconcile() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	coll := e.store.GetItems()

	var overdue []*model.ScheduledItem
	for _, it := range coll {
		if !it.WakeTime.After(now) {
			overdue = append(overdue, it)
		}
	}

	next := coll
	if len(overdue) > 0 {
		slog.Info("Waking overdue items", "count", len(overdue))
		next, _ = e.wake(overdue, coll)
		if err := e.store.ReplaceItems(next); err != nil {
			return fmt.Errorf("failed to persist reconciled items: %w", err)
		}
	}

	// One arming pass covers survivors and continuations alike.
	for _, it := range next {
		if it.WakeTime.After(now) {
			e.alarms.Create(it.ID, it.WakeTime)
		}
	}
	return nil
}

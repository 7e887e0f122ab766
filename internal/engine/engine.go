// Package engine drives waking: it decides, when a wake trigger arrives,
// what to recreate, what to notify, what to delete and what to reschedule.
//
// All mutating operations serialize through one mutex, so the three external
// triggers (an alarm firing, an explicit wake request, startup reconciliation)
// never interleave their read-modify-write cycles within this process. Each
// operation reads the collection fresh under the lock; trigger ids that no
// longer resolve against that read are silent no-ops.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noahxzhu/tabwake/internal/model"
)

// Store is the durable collection the engine reconciles against. It is the
// single source of truth; alarms are merely derived from it.
type Store interface {
	GetItems() []*model.ScheduledItem
	ReplaceItems(items []*model.ScheduledItem) error
}

// Alarm requests and cancels one-shot wake signals keyed by item id.
// Scheduling is best effort: a lost alarm is corrected at the next
// reconciliation.
type Alarm interface {
	Create(id string, at time.Time)
	Clear(id string)
}

// Materializer recreates woken items and emits user-visible notifications.
type Materializer interface {
	OpenTab(url string) error
	OpenWindow(urls []string) error
	Notify(title, message string) error
}

type Engine struct {
	mu     sync.Mutex
	store  Store
	alarms Alarm
	mat    Materializer

	now   func() time.Time
	newID func() string
}

func New(store Store, alarms Alarm, mat Materializer) *Engine {
	return &Engine{
		store:  store,
		alarms: alarms,
		mat:    mat,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// HandleAlarm processes a due signal for a single item id. A signal for an
// id that is no longer in the collection (already woken manually, deleted,
// or a stale alarm from before a restart) is ignored.
func (e *Engine) HandleAlarm(id string) error {
	return e.WakeItems([]string{id})
}

// WakeItems wakes the given item ids immediately, in input order. Unknown
// ids are skipped. Returns the store write error, if any; materializer and
// alarm failures are logged and do not fail the batch.
func (e *Engine) WakeItems(ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	coll := e.store.GetItems()
	byID := make(map[string]*model.ScheduledItem, len(coll))
	for _, it := range coll {
		byID[it.ID] = it
	}

	var trigger []*model.ScheduledItem
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if it, ok := byID[id]; ok {
			trigger = append(trigger, it)
		}
	}
	if len(trigger) == 0 {
		return nil
	}

	next, continuations := e.wake(trigger, coll)
	if err := e.store.ReplaceItems(next); err != nil {
		return err
	}
	for _, cont := range continuations {
		e.alarms.Create(cont.ID, cont.WakeTime)
	}
	return nil
}

// Add appends fully formed items to the collection and arms their alarms.
func (e *Engine) Add(items []*model.ScheduledItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	coll := append(e.store.GetItems(), items...)
	if err := e.store.ReplaceItems(coll); err != nil {
		return err
	}
	for _, it := range items {
		e.alarms.Create(it.ID, it.WakeTime)
	}
	return nil
}

// Remove deletes an item without waking it and cancels its alarm. Removing
// an unknown id is a no-op.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	coll := e.store.GetItems()
	out := coll[:0]
	found := false
	for _, it := range coll {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		return nil
	}
	if err := e.store.ReplaceItems(out); err != nil {
		return err
	}
	e.alarms.Clear(id)
	return nil
}

// Reschedule moves an item's wake time and re-arms its alarm. Returns false
// when the id is unknown.
func (e *Engine) Reschedule(id string, at time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	coll := e.store.GetItems()
	found := false
	for i, it := range coll {
		if it.ID == id {
			updated := *it
			updated.WakeTime = at
			coll[i] = &updated
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	if err := e.store.ReplaceItems(coll); err != nil {
		return true, err
	}
	e.alarms.Create(id, at)
	return true, nil
}

// Items returns the current collection.
func (e *Engine) Items() []*model.ScheduledItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.GetItems()
}

// NewID exposes the engine's id generator so that callers creating items use
// the same id space as recurrence continuations.
func (e *Engine) NewID() string {
	return e.newID()
}

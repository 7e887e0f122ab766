package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahxzhu/tabwake/internal/model"
)

func TestReconcile_WakesOverdueAndArmsFuture(t *testing.T) {
	store := &fakeStore{items: []*model.ScheduledItem{
		solo("old", "https://old.example", testNow.AddDate(0, 0, -2)), // overdue by 2 days
		solo("soon", "https://soon.example", testNow.Add(time.Hour)),
	}}
	alarms := newFakeAlarm()
	mat := &fakeMaterializer{}
	e := newTestEngine(store, alarms, mat)

	require.NoError(t, e.Reconcile())

	assert.Equal(t, []string{"https://old.example"}, mat.tabs, "overdue item woken exactly once")
	assert.Equal(t, []string{"soon"}, ids(store.items))
	at, ok := alarms.created["soon"]
	require.True(t, ok, "future item must be re-armed")
	assert.Equal(t, testNow.Add(time.Hour), at)
	_, ok = alarms.created["old"]
	assert.False(t, ok, "woken item must not be re-armed")
}

func TestReconcile_ItemDueExactlyNowIsOverdue(t *testing.T) {
	store := &fakeStore{items: []*model.ScheduledItem{
		solo("now", "https://now.example", testNow),
	}}
	mat := &fakeMaterializer{}
	e := newTestEngine(store, newFakeAlarm(), mat)

	require.NoError(t, e.Reconcile())
	assert.Len(t, mat.tabs, 1)
	assert.Empty(t, store.items)
}

func TestReconcile_RecurringOverdueContinues(t *testing.T) {
	item := solo("r", "https://r.example", testNow.Add(-time.Hour))
	item.IsRecurring = true
	item.Recurrence = &model.RecurrencePattern{Type: model.PatternDaily, Time: "09:00"}
	store := &fakeStore{items: []*model.ScheduledItem{item}}
	alarms := newFakeAlarm()
	e := newTestEngine(store, alarms, &fakeMaterializer{})

	require.NoError(t, e.Reconcile())

	require.Len(t, store.items, 1)
	cont := store.items[0]
	assert.NotEqual(t, "r", cont.ID)
	assert.True(t, cont.WakeTime.After(testNow))
	at, ok := alarms.created[cont.ID]
	require.True(t, ok)
	assert.Equal(t, cont.WakeTime, at)
}

func TestReconcile_OverdueWindowGroup(t *testing.T) {
	wake := testNow.Add(-time.Minute)
	store := &fakeStore{items: []*model.ScheduledItem{
		grouped("g1", "https://one.example", "S1", wake, 1),
		grouped("g0", "https://zero.example", "S1", wake, 0),
	}}
	mat := &fakeMaterializer{}
	e := newTestEngine(store, newFakeAlarm(), mat)

	require.NoError(t, e.Reconcile())

	require.Len(t, mat.windows, 1, "group woken as one window, not two tabs")
	assert.Equal(t, []string{"https://zero.example", "https://one.example"}, mat.windows[0])
	assert.Empty(t, store.items)
}

func TestReconcile_RedundantRunIsHarmless(t *testing.T) {
	store := &fakeStore{items: []*model.ScheduledItem{
		solo("old", "https://old.example", testNow.Add(-time.Minute)),
		solo("soon", "https://soon.example", testNow.Add(time.Hour)),
	}}
	alarms := newFakeAlarm()
	mat := &fakeMaterializer{}
	e := newTestEngine(store, alarms, mat)

	require.NoError(t, e.Reconcile())
	require.NoError(t, e.Reconcile()) // e.g. rapid double-initialization

	assert.Len(t, mat.tabs, 1, "second pass wakes nothing")
	assert.Equal(t, []string{"soon"}, ids(store.items))
	assert.Equal(t, testNow.Add(time.Hour), alarms.created["soon"], "re-arming the same alarm is a no-op")
}

func TestReconcile_NothingOverdueWritesNothing(t *testing.T) {
	// A store that notifies on its own saves would otherwise feed every
	// reconcile-triggered write back into another reconcile.
	store := &fakeStore{items: []*model.ScheduledItem{
		solo("soon", "https://soon.example", testNow.Add(time.Hour)),
	}}
	alarms := newFakeAlarm()
	e := newTestEngine(store, alarms, &fakeMaterializer{})

	require.NoError(t, e.Reconcile())

	assert.Zero(t, store.writes, "reconcile with nothing overdue must not touch the store")
	assert.Equal(t, testNow.Add(time.Hour), alarms.created["soon"], "future item still re-armed")
}

func TestReconcile_ContinuationAlarmArmedOnce(t *testing.T) {
	item := solo("r", "https://r.example", testNow.Add(-time.Hour))
	item.IsRecurring = true
	item.Recurrence = &model.RecurrencePattern{Type: model.PatternDaily, Time: "09:00"}
	store := &fakeStore{items: []*model.ScheduledItem{item}}
	alarms := newFakeAlarm()
	e := newTestEngine(store, alarms, &fakeMaterializer{})

	require.NoError(t, e.Reconcile())

	require.Len(t, store.items, 1)
	cont := store.items[0]
	count := 0
	for _, id := range alarms.creates {
		if id == cont.ID {
			count++
		}
	}
	assert.Equal(t, 1, count, "continuation alarm must be armed exactly once")
}

func TestReconcile_EmptyCollection(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store, newFakeAlarm(), &fakeMaterializer{})
	require.NoError(t, e.Reconcile())
	assert.Empty(t, store.items)
}

func TestAddRemoveReschedule(t *testing.T) {
	store := &fakeStore{}
	alarms := newFakeAlarm()
	e := newTestEngine(store, alarms, &fakeMaterializer{})

	item := solo("a", "https://a.example", testNow.Add(time.Hour))
	require.NoError(t, e.Add([]*model.ScheduledItem{item}))
	assert.Equal(t, []string{"a"}, ids(store.items))
	assert.Equal(t, item.WakeTime, alarms.created["a"])

	later := testNow.Add(3 * time.Hour)
	found, err := e.Reschedule("a", later)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, later, alarms.created["a"])
	assert.Equal(t, later, store.items[0].WakeTime)

	found, err = e.Reschedule("ghost", later)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, e.Remove("a"))
	assert.Empty(t, store.items)
	assert.Contains(t, alarms.cleared, "a")

	require.NoError(t, e.Remove("a"), "removing an unknown id is a no-op")
}

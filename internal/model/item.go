package model

import "time"

type PatternType string

const (
	PatternDaily    PatternType = "daily"
	PatternWeekdays PatternType = "weekdays"
	PatternWeekly   PatternType = "weekly"
	PatternCustom   PatternType = "custom"
	PatternMonthly  PatternType = "monthly"
)

// RecurrencePattern is a rule, not a schedule: it describes when the next
// occurrence falls relative to whatever "now" it is evaluated against.
type RecurrencePattern struct {
	Type       PatternType `json:"type"`
	Time       string      `json:"time"` // "HH:MM", local wall clock
	DaysOfWeek []int       `json:"days_of_week,omitempty"`
	DayOfMonth int         `json:"day_of_month,omitempty"`
	EndDate    *time.Time  `json:"end_date,omitempty"`
}

// ScheduledItem is a deferred tab. Items sharing a non-empty WindowSessionID
// and an equal WakeTime form a window group and are restored together, in
// WindowIndex order, as one window.
type ScheduledItem struct {
	ID              string             `json:"id"`
	URL             string             `json:"url,omitempty"`
	Title           string             `json:"title,omitempty"`
	Favicon         string             `json:"favicon,omitempty"`
	WakeTime        time.Time          `json:"wake_time"`
	WindowSessionID string             `json:"window_session_id,omitempty"`
	WindowIndex     int                `json:"window_index,omitempty"`
	IsRecurring     bool               `json:"is_recurring,omitempty"`
	Recurrence      *RecurrencePattern `json:"recurrence,omitempty"`
}

// Grouped reports whether the item belongs to a window group. An empty
// session id means the item was deferred on its own.
func (it *ScheduledItem) Grouped() bool {
	return it.WindowSessionID != ""
}

// SameGroup reports whether other belongs to the same window group as it.
// Group membership is defined by this equality pair alone; there is no
// persisted group record.
func (it *ScheduledItem) SameGroup(other *ScheduledItem) bool {
	return it.Grouped() && it.WindowSessionID == other.WindowSessionID &&
		it.WakeTime.Equal(other.WakeTime)
}

type Settings struct {
	BrowserCommand string `json:"browser_command"` // e.g. "xdg-open"
	Notifications  bool   `json:"notifications"`
	PushToken      string `json:"push_token"`
	PushUser       string `json:"push_user"`
}

type AppSchema struct {
	Settings Settings         `json:"settings"`
	Items    []*ScheduledItem `json:"items"`
}

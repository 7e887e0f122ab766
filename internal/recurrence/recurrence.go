// Package recurrence computes the next occurrence of a recurrence pattern.
// Next is a pure function of (pattern, now); exhausted or unrepresentable
// rules yield ok=false rather than an error.
package recurrence

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noahxzhu/tabwake/internal/model"
)

// Next returns the next occurrence of p strictly relative to now, evaluated
// in now's location. ok is false when the rule is dead (end date passed),
// malformed (bad time, empty day set for weekly/custom) or of unknown type.
func Next(p model.RecurrencePattern, now time.Time) (time.Time, bool) {
	if p.EndDate != nil && !now.Before(*p.EndDate) {
		return time.Time{}, false
	}

	hour, min, ok := parseClock(p.Time)
	if !ok {
		return time.Time{}, false
	}

	// Candidate: today at the pattern's time of day.
	cand := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())

	switch p.Type {
	case model.PatternDaily:
		if cand.After(now) {
			return cand, true
		}
		return cand.AddDate(0, 0, 1), true

	case model.PatternWeekdays:
		next := cand.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
		return next, true

	case model.PatternWeekly, model.PatternCustom:
		if len(p.DaysOfWeek) == 0 {
			return time.Time{}, false
		}
		days := append([]int(nil), p.DaysOfWeek...)
		sort.Ints(days)

		today := int(now.Weekday())
		delta := -1
		for _, d := range days {
			if d > today {
				delta = d - today
				break
			}
		}
		if delta < 0 {
			// Wrap to the smallest day next week.
			delta = 7 - today + days[0]
		}
		// Landing on today with the time of day already passed would
		// re-fire the instant the rule was computed from; push a week out.
		if delta == 0 && !cand.After(now) {
			delta = 7
		}
		return cand.AddDate(0, 0, delta), true

	case model.PatternMonthly:
		dom := p.DayOfMonth
		if dom == 0 {
			dom = 1
		}
		// Out-of-range days roll over per time.Date normalization
		// (e.g. Feb 31 becomes Mar 2/3).
		next := time.Date(now.Year(), now.Month(), dom, hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 1, 0)
		}
		return next, true
	}

	return time.Time{}, false
}

func parseClock(s string) (hour, min int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

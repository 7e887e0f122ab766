// Package alarm provides the one-shot wake-signal facility. It keeps a
// min-heap of pending alarms in a single goroutine and sleeps with a
// 60-second cap so that NTP steps, DST transitions and system sleep cannot
// park the timer past a due alarm indefinitely.
//
// Alarms are keyed by item id, fire once, and do not survive a process
// restart — the durable item collection is reconciled against at startup to
// rebuild them. Trigger times are truncated to the minute.
package alarm

import (
	"container/heap"
	"context"
	"log/slog"
	"time"
)

const maxSleepCap = 60 * time.Second

// Service delivers due signals for scheduled alarms via the onDue callback.
type Service struct {
	addChan    chan entry
	removeChan chan string
	ctx        context.Context
}

// New creates and starts an alarm Service. onDue is invoked with the id of
// each alarm whose time has arrived, in a goroutine of its own so a slow
// handler can never stall the service loop (which must keep draining
// Create/Clear — handlers routinely issue those while reacting to a fire).
// The service goroutine exits when ctx is cancelled.
func New(ctx context.Context, onDue func(id string)) *Service {
	s := &Service{
		addChan:    make(chan entry, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onDue)
	return s
}

// Create schedules a wake signal for id at the given time, truncated to the
// minute. A pending alarm with the same id is replaced.
func (s *Service) Create(id string, at time.Time) {
	select {
	case s.addChan <- entry{ID: id, At: at.Truncate(time.Minute)}:
	case <-s.ctx.Done():
	}
}

// Clear cancels the pending alarm for id, if any.
func (s *Service) Clear(id string) {
	select {
	case s.removeChan <- id:
	case <-s.ctx.Done():
	}
}

func (s *Service) run(onDue func(string)) {
	h := &alarmHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// Nothing pending — block on the channels alone.
			return nil
		}
		dur := time.Until((*h)[0].At)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case e := <-s.addChan:
			h.removeByID(e.ID)
			heap.Push(h, e)
			timerCh = resetTimer()

		case id := <-s.removeChan:
			h.removeByID(id)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].At.After(now) {
				e := heap.Pop(h).(entry)
				slog.Debug("Alarm due", "id", e.ID, "at", e.At)
				go onDue(e.ID)
			}
			timerCh = resetTimer()
		}
	}
}

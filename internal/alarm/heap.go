package alarm

import (
	"container/heap"
	"time"
)

// alarmHeap orders pending alarms by trigger time, earliest first.
type alarmHeap []entry

type entry struct {
	ID string
	At time.Time
}

func (h alarmHeap) Len() int           { return len(h) }
func (h alarmHeap) Less(i, j int) bool { return h[i].At.Before(h[j].At) }
func (h alarmHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *alarmHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *alarmHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// removeByID removes the pending alarm with the given id, if any.
func (h *alarmHeap) removeByID(id string) bool {
	for i, e := range *h {
		if e.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}

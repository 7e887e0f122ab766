package alarm

import (
	"container/heap"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapOrdering(t *testing.T) {
	base := time.Date(2021, time.June, 9, 9, 0, 0, 0, time.UTC)

	h := &alarmHeap{}
	heap.Init(h)
	heap.Push(h, entry{ID: "c", At: base.Add(3 * time.Minute)})
	heap.Push(h, entry{ID: "a", At: base.Add(1 * time.Minute)})
	heap.Push(h, entry{ID: "b", At: base.Add(2 * time.Minute)})

	var order []string
	for h.Len() > 0 {
		order = append(order, heap.Pop(h).(entry).ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestHeapRemoveByID(t *testing.T) {
	base := time.Date(2021, time.June, 9, 9, 0, 0, 0, time.UTC)

	h := &alarmHeap{}
	heap.Init(h)
	heap.Push(h, entry{ID: "a", At: base.Add(1 * time.Minute)})
	heap.Push(h, entry{ID: "b", At: base.Add(2 * time.Minute)})

	assert.True(t, h.removeByID("a"))
	assert.False(t, h.removeByID("a"), "already removed")

	require.Equal(t, 1, h.Len())
	assert.Equal(t, "b", heap.Pop(h).(entry).ID)
}

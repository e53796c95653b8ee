package ingest

import (
	"testing"
	"time"
)

func TestQueueDropOldest(t *testing.T) {
	q := newQueue(3)
	at := time.Now()
	for _, s := range []string{"a", "b", "c"} {
		if evicted := q.push(PendingLine{Text: s, EnqueuedAt: at}); evicted {
			t.Fatalf("no eviction expected while under capacity")
		}
	}
	if evicted := q.push(PendingLine{Text: "d", EnqueuedAt: at}); !evicted {
		t.Fatalf("eviction expected at capacity")
	}
	if q.len() != 3 {
		t.Fatalf("len: %d", q.len())
	}
	line, ok := q.pop()
	if !ok || line.Text != "b" {
		t.Fatalf("oldest should have been dropped, head is %q", line.Text)
	}
}

func TestQueuePopEmpty(t *testing.T) {
	q := newQueue(2)
	if _, ok := q.pop(); ok {
		t.Fatalf("pop on empty queue")
	}
}

func TestQueueClear(t *testing.T) {
	q := newQueue(2)
	q.push(PendingLine{Text: "x"})
	q.clear()
	if q.len() != 0 {
		t.Fatalf("clear left %d items", q.len())
	}
}

package ingest

import (
	"testing"
	"time"
)

func TestQuotaCapsWindow(t *testing.T) {
	q := newQuotaState(3, 24*time.Hour)
	now := time.Unix(1_700_000_000, 0)
	for i := 0; i < 3; i++ {
		if !q.allow(now) {
			t.Fatalf("allow %d refused", i)
		}
		q.commit()
	}
	if q.allow(now) {
		t.Fatalf("quota should be exhausted")
	}
}

func TestQuotaResetsAfterWindow(t *testing.T) {
	q := newQuotaState(1, 24*time.Hour)
	now := time.Unix(1_700_000_000, 0)
	if !q.allow(now) {
		t.Fatalf("first allow")
	}
	q.commit()
	if q.allow(now.Add(23 * time.Hour)) {
		t.Fatalf("still inside window")
	}
	if !q.allow(now.Add(25 * time.Hour)) {
		t.Fatalf("window elapsed, should allow")
	}
	if q.used() != 0 {
		t.Fatalf("count should reset, got %d", q.used())
	}
}

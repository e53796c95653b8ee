package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/ledger/ledgertest"
)

func TestFetchLatestNewestFirst(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(3164)
	tr := NewTailReader(fake, nil, testLogger())
	entries, err := tr.FetchLatest(context.Background(), 100, 3163)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 100 {
		t.Fatalf("want 100 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := uint64(3163 - i)
		if e.Index != want {
			t.Fatalf("pos %d: want index %d got %d", i, want, e.Index)
		}
	}
}

func TestFetchLatestSkipsGaps(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(50)
	fake.Remove(47)
	fake.Remove(42)
	tr := NewTailReader(fake, nil, testLogger())
	entries, err := tr.FetchLatest(context.Background(), 10, 49)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Window [49..40] has two gaps; gaps are skipped, never padded.
	if len(entries) != 8 {
		t.Fatalf("want 8 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Index == 47 || e.Index == 42 {
			t.Fatalf("gap index %d returned", e.Index)
		}
	}
}

func TestFetchLatestClampsAtZero(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(3)
	tr := NewTailReader(fake, nil, testLogger())
	entries, err := tr.FetchLatest(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if entries[0].Index != 2 || entries[2].Index != 0 {
		t.Fatalf("order: %+v", entries)
	}
}

func TestFetchLatestBulkFallback(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(200)
	fake.ReadErr = ledger.ErrUnreachable // individual reads fail wholesale
	tr := NewTailReader(fake, nil, testLogger())
	entries, err := tr.FetchLatest(context.Background(), 5, 199)
	if err != nil {
		t.Fatalf("fetch via bulk: %v", err)
	}
	if fake.RangeCalls != 1 {
		t.Fatalf("want exactly one bulk call, got %d", fake.RangeCalls)
	}
	if len(entries) != 5 || entries[0].Index != 199 || entries[4].Index != 195 {
		t.Fatalf("bulk result: %+v", entries)
	}
}

func TestFetchLatestBulkExhausted(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(10)
	fake.ReadErr = ledger.ErrUnreachable
	fake.RangeErr = ledger.ErrUnreachable
	tr := NewTailReader(fake, nil, testLogger())
	_, err := tr.FetchLatest(context.Background(), 5, 9)
	if !errors.Is(err, ErrBulkReadExhausted) {
		t.Fatalf("want ErrBulkReadExhausted, got %v", err)
	}
}

func TestFetchLatestIdempotent(t *testing.T) {
	fake := ledgertest.New()
	fake.Seed(120)
	tr := NewTailReader(fake, nil, testLogger())
	a, err := tr.FetchLatest(context.Background(), 20, 119)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	b, err := tr.FetchLatest(context.Background(), 20, 119)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pos %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

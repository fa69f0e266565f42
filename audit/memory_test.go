package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStoreRecordAndHistory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	if err := s.RecordOutcome(ctx, Outcome{RunID: "run-1", NodeID: 1, State: "Completed", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if err := s.RecordOutcome(ctx, Outcome{RunID: "run-1", NodeID: 2, State: "Failed", Failure: "boom", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	history, err := s.History(ctx, "run-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	want := []Outcome{
		{RunID: "run-1", NodeID: 1, State: "Completed", StartedAt: now, FinishedAt: now},
		{RunID: "run-1", NodeID: 2, State: "Failed", Failure: "boom", StartedAt: now, FinishedAt: now},
	}
	if diff := cmp.Diff(want, history); diff != "" {
		t.Fatalf("History(run-1) mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreHistoryNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.History(context.Background(), "no-such-run")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreConcurrentRecordOutcome(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			_ = s.RecordOutcome(ctx, Outcome{RunID: "run-1", NodeID: n, State: "Completed", StartedAt: now, FinishedAt: now})
		}(int64(i))
	}
	wg.Wait()

	history, err := s.History(ctx, "run-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("len(history) = %d, want 50", len(history))
	}
}

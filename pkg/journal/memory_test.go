package journal

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func appendN(t *testing.T, b Backend, n int) {
	t.Helper()
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		rec := &Record{
			ID:        fmt.Sprintf("rec-%03d", i),
			Host:      "api.example.com",
			Outcome:   OutcomeOK,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := b.Append(context.Background(), rec); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
}

func TestMemoryBackendRecentNewestFirst(t *testing.T) {
	b := NewMemoryBackend(10)
	appendN(t, b, 3)

	records, err := b.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	want := []string{"rec-002", "rec-001", "rec-000"}
	if len(records) != len(want) {
		t.Fatalf("records = %d, want %d", len(records), len(want))
	}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestMemoryBackendOverwritesOldest(t *testing.T) {
	b := NewMemoryBackend(3)
	appendN(t, b, 5)

	records, err := b.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	want := []string{"rec-004", "rec-003", "rec-002"}
	if len(records) != len(want) {
		t.Fatalf("records = %d, want %d (ring capacity)", len(records), len(want))
	}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestMemoryBackendRecentLimit(t *testing.T) {
	b := NewMemoryBackend(10)
	appendN(t, b, 5)

	records, err := b.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != "rec-004" {
		t.Errorf("newest record = %q, want rec-004", records[0].ID)
	}
}

func TestMemoryBackendIgnoresAppendsAfterClose(t *testing.T) {
	b := NewMemoryBackend(10)
	appendN(t, b, 2)
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := b.Append(context.Background(), &Record{ID: "late"}); err != nil {
		t.Fatalf("Append after close errored: %v", err)
	}
	records, _ := b.Recent(context.Background(), 10)
	if len(records) != 2 {
		t.Errorf("records = %d after post-close append, want 2", len(records))
	}
}

package journal

import (
	"context"
	"testing"
	"time"
)

// blockingBackend blocks every Append until released, for exercising the
// recorder's buffering and drop behavior.
type blockingBackend struct {
	entered chan struct{}
	gate    chan struct{}
	inner   *MemoryBackend
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{
		entered: make(chan struct{}, 100),
		gate:    make(chan struct{}),
		inner:   NewMemoryBackend(100),
	}
}

func (b *blockingBackend) Append(ctx context.Context, rec *Record) error {
	b.entered <- struct{}{}
	<-b.gate
	return b.inner.Append(ctx, rec)
}

func (b *blockingBackend) Recent(ctx context.Context, limit int) ([]*Record, error) {
	return b.inner.Recent(ctx, limit)
}

func (b *blockingBackend) Close() error { return b.inner.Close() }

func TestRecorderWritesAsync(t *testing.T) {
	backend := NewMemoryBackend(100)
	r := NewRecorder(backend, Config{})

	for i := 0; i < 5; i++ {
		r.Record(&Record{Host: "api.example.com", Outcome: OutcomeOK})
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, err := backend.Recent(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("records = %d, want 5", len(records))
	}
	for _, rec := range records {
		if rec.ID == "" {
			t.Error("record ID not assigned")
		}
		if rec.CreatedAt.IsZero() {
			t.Error("record timestamp not assigned")
		}
	}
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	backend := newBlockingBackend()
	r := NewRecorder(backend, Config{Buffer: 1})

	// First record occupies the writer, which blocks inside Append.
	r.Record(&Record{Host: "a"})
	select {
	case <-backend.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("writer never reached the backend")
	}

	// Second fills the one-slot buffer, third has nowhere to go.
	r.Record(&Record{Host: "b"})
	r.Record(&Record{Host: "c"})

	if got := r.Dropped(); got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}

	close(backend.gate)
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, err := backend.Recent(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records written = %d, want 2", len(records))
	}
}

func TestRecorderCloseDrainsBuffer(t *testing.T) {
	backend := NewMemoryBackend(100)
	r := NewRecorder(backend, Config{Buffer: 50})

	for i := 0; i < 20; i++ {
		r.Record(&Record{Host: "api.example.com"})
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, _ := backend.Recent(context.Background(), 100)
	if len(records)+int(r.Dropped()) != 20 {
		t.Errorf("written %d + dropped %d != 20 recorded", len(records), r.Dropped())
	}
}

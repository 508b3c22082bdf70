package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Outcome values for journal records.
const (
	// OutcomeOK marks a request whose downstream call succeeded.
	OutcomeOK = "ok"
	// OutcomeError marks a request whose downstream call failed.
	OutcomeError = "error"
	// OutcomeCancelled marks a request cancelled while queued for a permit.
	OutcomeCancelled = "cancelled"
)

// Record is one journaled rate-limit event. Records describe activity for
// observability only; nothing is ever read back into limiting decisions.
type Record struct {
	// ID uniquely identifies the record. Assigned by the recorder.
	ID string

	// Client is the logical limiter name ("" for the default limiter).
	Client string

	// Host is the partition key the request was limited under.
	Host string

	// Wait is how long the request waited for its permit.
	Wait time.Duration

	// Cooldown is the cool-down that was applied.
	Cooldown time.Duration

	// Outcome is one of OutcomeOK, OutcomeError, OutcomeCancelled.
	Outcome string

	// CreatedAt is when the record was created. Assigned by the recorder.
	CreatedAt time.Time
}

// Backend persists journal records. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Append stores a record. Returns an error on system failure.
	Append(ctx context.Context, rec *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Config contains configuration for the Recorder.
type Config struct {
	// Buffer is the size of the async write channel.
	// Default: 1000
	Buffer int

	// WriteTimeout bounds each backend write.
	// Default: 5s
	WriteTimeout time.Duration
}

// Recorder journals records asynchronously so that recording never blocks
// a request. Records are handed to a buffered channel consumed by a single
// writer goroutine; when the buffer is full the record is dropped and
// counted rather than applying backpressure.
type Recorder struct {
	backend Backend
	config  Config

	recordCh chan *Record
	done     chan struct{}
	wg       sync.WaitGroup
	dropped  atomic.Int64
	logger   *slog.Logger
}

// NewRecorder creates a recorder writing to backend and starts its writer
// goroutine.
func NewRecorder(backend Backend, cfg Config) *Recorder {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		backend:  backend,
		config:   cfg,
		recordCh: make(chan *Record, cfg.Buffer),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r
}

// Record queues rec for writing. It never blocks: when the buffer is full
// the record is dropped and the drop counter incremented. The record's ID
// and CreatedAt are assigned here.
func (r *Recorder) Record(rec *Record) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	select {
	case r.recordCh <- rec:
	case <-r.done:
	default:
		if n := r.dropped.Add(1); n == 1 || n%1000 == 0 {
			r.logger.Warn("journal buffer full, dropping records", "dropped", n)
		}
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close drains buffered records, stops the writer goroutine, and closes
// the backend.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return r.backend.Close()
}

// writeLoop consumes the record channel until Close.
func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordCh:
			r.write(rec)
		case <-r.done:
			// Drain whatever is still buffered.
			for {
				select {
				case rec := <-r.recordCh:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

// write stores one record with the configured timeout.
func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.backend.Append(ctx, rec); err != nil {
		r.logger.Error("failed to write journal record", "error", err, "host", rec.Host)
	}
}

package tempfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Errors returned by temp file operations.
var (
	// ErrDisposed is returned when an operation is attempted on a file
	// record after it has been disposed.
	ErrDisposed = errors.New("tempfile: already disposed")

	// ErrConflictingAccess is returned when an open would violate the
	// sharing rules: a write handle is exclusive, read handles only
	// coexist with other read handles.
	ErrConflictingAccess = errors.New("tempfile: conflicting access mode")
)

// Mode selects the access mode for a handle.
type Mode int

const (
	// ModeRead opens the file read-only. Multiple read handles may be
	// open at once, and external processes can read the path too.
	ModeRead Mode = iota

	// ModeWrite opens the file write-only. A write handle is exclusive
	// against all other handles from this API.
	ModeWrite
)

// File is a reference-counted temporary file.
//
// The record starts with a reference count of 1 held by the creator. Every
// open handle adds one reference; every handle close and the creator's own
// Close each remove exactly one. Whichever decrement observes the count
// reach zero deletes the backing file, exactly once. After that, no
// further filesystem operation is attempted through this record, so a
// later unrelated file at the same path can never be deleted by it.
//
// The idiom this enables: create a file, hand its path to something that
// may fail, and defer Close. The failure path deletes the file, while a
// success path that opened a handle keeps the file alive until that handle
// closes, even though the record itself was already disposed.
//
// # Thread Safety
//
// The reference count is manipulated atomically; File is safe for
// concurrent opens, closes, and disposal from multiple goroutines.
type File struct {
	path string

	// refs is the number of outstanding consumers: the creator plus all
	// open handles. The consumer that drops it to zero deletes the file.
	refs atomic.Int64

	// disposed is set by the first Close. Later Close calls are no-ops.
	disposed atomic.Bool

	// handleMu guards the open-handle accounting used to enforce the
	// sharing rules.
	handleMu sync.Mutex
	readers  int
	writing  bool

	metrics *Metrics
}

// newFile creates a record for path with the creator's reference.
func newFile(path string) *File {
	return newFileWithMetrics(path, nil)
}

// newFileWithMetrics creates a record for path reporting to metrics.
func newFileWithMetrics(path string, metrics *Metrics) *File {
	f := &File{path: path, metrics: metrics}
	f.refs.Store(1)
	return f
}

// Path returns the absolute path of the backing file. It fails with
// ErrDisposed after the record has been disposed.
func (f *File) Path() (string, error) {
	if f.disposed.Load() {
		return "", ErrDisposed
	}
	return f.path, nil
}

// Open opens a new handle on the backing file with the given access mode.
// It fails with ErrDisposed if the record has been disposed, and with
// ErrConflictingAccess if the mode conflicts with handles already open.
//
// The returned handle holds its own reference: it stays valid, and keeps
// the file on disk, even after the record itself is closed.
func (f *File) Open(mode Mode) (*Handle, error) {
	if err := f.retain(); err != nil {
		return nil, err
	}

	f.handleMu.Lock()
	switch mode {
	case ModeWrite:
		if f.writing || f.readers > 0 {
			f.handleMu.Unlock()
			f.release()
			return nil, ErrConflictingAccess
		}
		f.writing = true
	default:
		if f.writing {
			f.handleMu.Unlock()
			f.release()
			return nil, ErrConflictingAccess
		}
		f.readers++
	}
	f.handleMu.Unlock()

	flags := os.O_RDONLY
	if mode == ModeWrite {
		flags = os.O_WRONLY
	}
	osf, err := os.OpenFile(f.path, flags, 0)
	if err != nil {
		f.forgetHandle(mode)
		f.release()
		return nil, fmt.Errorf("tempfile: open %s: %w", f.path, err)
	}

	return &Handle{f: f, file: osf, mode: mode}, nil
}

// Close disposes the creator's reference. It is idempotent: only the first
// call decrements the count. Open handles keep the file alive; the last
// one to close deletes it.
func (f *File) Close() error {
	if !f.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return f.release()
}

// retain adds a reference, failing once the record is disposed or fully
// released. The compare-and-swap loop guarantees the count never moves up
// from zero.
func (f *File) retain() error {
	for {
		if f.disposed.Load() {
			return ErrDisposed
		}
		n := f.refs.Load()
		if n <= 0 {
			return ErrDisposed
		}
		if f.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// release removes one reference. The single caller that brings the count
// to zero deletes the backing file; the atomic decrement-and-test makes
// racing decrements safe.
func (f *File) release() error {
	if f.refs.Add(-1) != 0 {
		return nil
	}
	f.metrics.recordDelete()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tempfile: remove %s: %w", f.path, err)
	}
	return nil
}

// forgetHandle undoes the sharing accounting for a handle that failed to
// open or was closed.
func (f *File) forgetHandle(mode Mode) {
	f.handleMu.Lock()
	if mode == ModeWrite {
		f.writing = false
	} else {
		f.readers--
	}
	f.handleMu.Unlock()
}

// Handle is an open handle on a reference-counted temporary file.
// It implements io.Reader, io.Writer, io.Seeker, and io.Closer; reads and
// writes are only valid for the mode the handle was opened with.
type Handle struct {
	f    *File
	file *os.File
	mode Mode

	once     sync.Once
	closeErr error
}

var _ io.ReadWriteSeeker = (*Handle)(nil)

// Read reads from the underlying file.
func (h *Handle) Read(p []byte) (int, error) {
	return h.file.Read(p)
}

// Write writes to the underlying file.
func (h *Handle) Write(p []byte) (int, error) {
	return h.file.Write(p)
}

// Seek sets the offset for the next Read or Write.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	return h.file.Seek(offset, whence)
}

// Name returns the path of the underlying file.
func (h *Handle) Name() string {
	return h.file.Name()
}

// Close closes the handle and removes its reference. It is idempotent:
// only the first call decrements the count, so a double close can never
// delete an unrelated file that later reuses the path.
func (h *Handle) Close() error {
	h.once.Do(func() {
		cerr := h.file.Close()
		h.f.forgetHandle(h.mode)
		rerr := h.f.release()
		h.closeErr = errors.Join(cerr, rerr)
	})
	return h.closeErr
}

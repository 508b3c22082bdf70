package tempfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Directory creates uniquely-named temporary files inside one managed
// directory. The directory is created eagerly on construction and removed
// on Close if still empty.
type Directory struct {
	path     string
	generate func() string
	logger   *slog.Logger
	metrics  *Metrics
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithNameGenerator overrides the base-name generator used for new files.
// The default generates random UUID strings; tests can substitute a
// deterministic generator.
func WithNameGenerator(generate func() string) DirectoryOption {
	return func(d *Directory) { d.generate = generate }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DirectoryOption {
	return func(d *Directory) { d.logger = logger }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(metrics *Metrics) DirectoryOption {
	return func(d *Directory) { d.metrics = metrics }
}

// NewDirectory creates a managed temp file directory at path, creating the
// directory (and parents) if missing. An empty path defaults to a
// subdirectory of the system temp root named after the application:
//
//	dir, err := tempfile.NewDirectory("", app)
//
// app is only consulted when path is empty.
func NewDirectory(path, app string, opts ...DirectoryOption) (*Directory, error) {
	if path == "" {
		if app == "" {
			app = "hostgate"
		}
		path = filepath.Join(os.TempDir(), app)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("tempfile: resolve directory %q: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("tempfile: create directory %q: %w", abs, err)
	}

	d := &Directory{
		path:     abs,
		generate: uuid.NewString,
		logger:   slog.Default().With("component", "tempfile.directory"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Path returns the absolute path of the managed directory.
func (d *Directory) Path() string {
	return d.path
}

// Create creates a new temporary file named prefix+base+suffix, where base
// comes from the name generator, and returns its record with the creator's
// reference held.
//
// The file is created with an exclusive-create call. When the generated
// name already exists the loop retries with a fresh name; with the default
// UUID generator a collision is astronomically unlikely, so the loop has
// no retry cap. Any other error propagates.
func (d *Directory) Create(prefix, suffix string) (*File, error) {
	for {
		name := prefix + d.generate() + suffix
		path := filepath.Join(d.path, name)

		fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				d.logger.Debug("temp file name collision, retrying", "name", name)
				continue
			}
			return nil, fmt.Errorf("tempfile: create %s: %w", path, err)
		}

		if err := fd.Close(); err != nil {
			return nil, fmt.Errorf("tempfile: close %s: %w", path, err)
		}

		d.metrics.recordCreate()
		return newFileWithMetrics(path, d.metrics), nil
	}
}

// Close removes the managed directory if it is empty. Removal is
// best-effort cleanup: failure (directory not empty, in use) is swallowed.
func (d *Directory) Close() error {
	if err := os.Remove(d.path); err != nil {
		d.logger.Debug("temp directory not removed", "path", d.path, "error", err)
	}
	return nil
}

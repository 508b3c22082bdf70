package tempfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes orphaned files from a managed directory on a cron
// schedule. Files referenced by a running process are deleted by their
// last reference; orphans only appear after a crash, so the sweeper uses
// an age threshold well above any plausible file lifetime.
type Sweeper struct {
	dir      *Directory
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
	metrics  *Metrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Schedule is a standard cron expression (e.g. "0 3 * * *").
	Schedule string

	// MaxAge is the minimum age a file must have before it is removed.
	MaxAge time.Duration
}

// NewSweeper creates a sweeper for dir.
func NewSweeper(dir *Directory, cfg SweeperConfig) *Sweeper {
	return &Sweeper{
		dir:      dir,
		schedule: cfg.Schedule,
		maxAge:   cfg.MaxAge,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "tempfile.sweeper"),
		metrics:  dir.metrics,
	}
}

// Start begins scheduled sweeping. It returns immediately; sweeps run on
// the cron schedule until the context is cancelled or Stop is called.
//
// Common cron expressions:
//   - "0 3 * * *"    - daily at 3 AM
//   - "0 */6 * * *"  - every 6 hours
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		removed, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("scheduled sweep failed", "error", err)
			return
		}
		if removed > 0 {
			s.logger.Info("swept orphaned temp files", "removed", removed, "dir", s.dir.Path())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh

	s.logger.Info("temp file sweeper started",
		"schedule", s.schedule,
		"max_age", s.maxAge.String(),
		"dir", s.dir.Path(),
	)

	// The monitor must also exit on Stop, or it would block on a
	// long-lived context forever.
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}()

	return nil
}

// Stop stops scheduled sweeping. In-flight sweeps run to completion.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	<-s.cron.Stop().Done()
}

// Sweep performs one sweep pass, removing regular files older than the age
// threshold. It returns the number of files removed. Individual removal
// failures are logged and skipped; only listing the directory is fatal.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir.Path())
	if err != nil {
		return 0, fmt.Errorf("read temp directory: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir.Path(), entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove orphaned file", "path", path, "error", err)
			continue
		}
		removed++
	}

	s.metrics.recordSwept(removed)
	return removed, nil
}

// SweepCandidates lists the regular files under dir that a sweep with the
// given age threshold would remove, without removing anything.
func SweepCandidates(dir string, maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read temp directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	var candidates []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, entry.Name()))
	}
	return candidates, nil
}

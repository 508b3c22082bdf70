package config

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times for one burst, want 1", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	path := writeConfigFile(t, `
rate_limit:
  default:
    cooldown: 100ms
`)
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	w, err := NewWatcher(WatcherConfig{Path: path, DebounceInterval: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Watch(ctx, func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to install its directory watch.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`
rate_limit:
  default:
    cooldown: 900ms
`), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload after file change")
	}

	cfg := GetConfig()
	if cfg == nil || cfg.RateLimit.Default.Cooldown == nil || *cfg.RateLimit.Default.Cooldown != 900*time.Millisecond {
		t.Errorf("config after watched reload = %+v, want 900ms cooldown", cfg)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	select {
	case err := <-watchErr:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
}

func TestWatcherStopConcurrent(t *testing.T) {
	path := writeConfigFile(t, "journal:\n  backend: memory\n")

	w, err := NewWatcher(WatcherConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Watch(context.Background(), nil)
	}()
	time.Sleep(100 * time.Millisecond)

	// Racing Stop calls must not double-close the stop channel.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Stop(); err != nil {
				t.Errorf("Stop failed: %v", err)
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-watchErr:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
}

func TestWatcherRequiresPath(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{}, nil); err == nil {
		t.Fatal("NewWatcher accepted an empty path")
	}
}

package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"hostgate/pkg/config"
	"hostgate/pkg/journal"
)

// stubTransport records the dispatch time of each downstream call.
type stubTransport struct {
	mu    sync.Mutex
	calls []time.Time
	delay time.Duration
	err   error
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, time.Now())
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func (s *stubTransport) callTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.calls...)
}

func fixedCooldown(d time.Duration) ConfigFunc {
	return func() *config.CooldownConfig {
		return &config.CooldownConfig{Cooldown: &d}
	}
}

func mustRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	return req
}

func TestRoundTripDoesNotDelayCaller(t *testing.T) {
	stub := &stubTransport{}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(300*time.Millisecond), stub)

	start := time.Now()
	resp, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1"))
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	resp.Body.Close()

	// The cool-down applies to the next request, never to this one.
	if elapsed := time.Since(start); elapsed >= 150*time.Millisecond {
		t.Errorf("caller delayed %v by its own cool-down", elapsed)
	}
}

func TestRoundTripEnforcesCooldownGap(t *testing.T) {
	const cooldown = 150 * time.Millisecond
	stub := &stubTransport{}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(cooldown), stub)

	for i := 0; i < 2; i++ {
		resp, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1"))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}

	calls := stub.callTimes()
	if len(calls) != 2 {
		t.Fatalf("downstream calls = %d, want 2", len(calls))
	}
	if gap := calls[1].Sub(calls[0]); gap < cooldown {
		t.Errorf("dispatch gap = %v, want >= %v", gap, cooldown)
	}
}

func TestRoundTripCooldownStartsAtCompletion(t *testing.T) {
	const downstream = 150 * time.Millisecond
	const cooldown = 150 * time.Millisecond
	stub := &stubTransport{delay: downstream}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(cooldown), stub)

	start := time.Now()
	for i := 0; i < 2; i++ {
		resp, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1"))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}
	elapsed := time.Since(start)

	// The cool-down clock starts when the first response completes, not
	// when it was dispatched: slow call, full cool-down, slow call. A
	// clock started at dispatch would already expire during the first
	// call and finish in about two downstream latencies.
	if want := 2*downstream + cooldown; elapsed < want {
		t.Errorf("two sequential requests took %v, want >= %v", elapsed, want)
	}
}

func TestRoundTripCooldownAppliesToFailures(t *testing.T) {
	const cooldown = 100 * time.Millisecond
	stub := &stubTransport{err: errors.New("connection refused")}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(cooldown), stub)

	for i := 0; i < 2; i++ {
		if _, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1")); err == nil {
			t.Fatalf("request %d: want downstream error", i)
		}
	}

	calls := stub.callTimes()
	if len(calls) != 2 {
		t.Fatalf("downstream calls = %d, want 2", len(calls))
	}
	if gap := calls[1].Sub(calls[0]); gap < cooldown {
		t.Errorf("dispatch gap after failure = %v, want >= %v", gap, cooldown)
	}
}

func TestRoundTripDisabledWithoutConfig(t *testing.T) {
	stub := &stubTransport{}
	limiter := NewLimiter(nil)
	tr := NewTransport(limiter, func() *config.CooldownConfig { return nil }, stub)

	for i := 0; i < 3; i++ {
		resp, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1"))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}

	limiter.mu.Lock()
	gates := len(limiter.gates)
	limiter.mu.Unlock()
	if gates != 0 {
		t.Errorf("limiter touched %d keys with limiting disabled, want 0", gates)
	}
}

func TestRoundTripHostsAreIndependent(t *testing.T) {
	const cooldown = 200 * time.Millisecond
	stub := &stubTransport{}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(cooldown), stub)

	start := time.Now()
	for _, target := range []string{"https://a.example.com/", "https://b.example.com/"} {
		resp, err := tr.RoundTrip(mustRequest(t, target))
		if err != nil {
			t.Fatalf("request to %s failed: %v", target, err)
		}
		resp.Body.Close()
	}

	if elapsed := time.Since(start); elapsed >= cooldown {
		t.Errorf("requests to distinct hosts took %v, want no cross-host wait", elapsed)
	}
}

func TestRoundTripCancelledWhileQueued(t *testing.T) {
	stub := &stubTransport{}
	limiter := NewLimiter(nil)
	tr := NewTransport(limiter, fixedCooldown(time.Second), stub)

	// Occupy the permit directly so the request has to queue.
	holder, err := limiter.Acquire(context.Background(), "api.example.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := mustRequest(t, "https://api.example.com/v1").WithContext(ctx)

	_, err = tr.RoundTrip(req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RoundTrip error = %v, want context.DeadlineExceeded", err)
	}
	if calls := stub.callTimes(); len(calls) != 0 {
		t.Errorf("downstream called %d times for cancelled request, want 0", len(calls))
	}
}

func TestRoundTripJournalsRequests(t *testing.T) {
	backend := journal.NewMemoryBackend(10)
	recorder := journal.NewRecorder(backend, journal.Config{})

	stub := &stubTransport{}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(time.Millisecond), stub)
	tr.name = "crawler"
	tr.recorder = recorder

	resp, err := tr.RoundTrip(mustRequest(t, "https://api.example.com/v1"))
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	resp.Body.Close()

	if err := recorder.Close(); err != nil {
		t.Fatalf("recorder close failed: %v", err)
	}

	records, err := backend.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("journal records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Host != "api.example.com" {
		t.Errorf("record host = %q, want %q", rec.Host, "api.example.com")
	}
	if rec.Client != "crawler" {
		t.Errorf("record client = %q, want %q", rec.Client, "crawler")
	}
	if rec.Outcome != journal.OutcomeOK {
		t.Errorf("record outcome = %q, want %q", rec.Outcome, journal.OutcomeOK)
	}
}

func TestResolveCooldown(t *testing.T) {
	short := 100 * time.Millisecond
	long := 2 * time.Second

	cc := &config.CooldownConfig{
		Cooldown: &short,
		Hosts: map[string]*time.Duration{
			"slow.example.com": &long,
			"localhost:8080":   nil,
		},
	}

	tests := []struct {
		name string
		cc   *config.CooldownConfig
		host string
		want *time.Duration
	}{
		{"nil config disables", nil, "api.example.com", nil},
		{"default applies to unlisted host", cc, "api.example.com", &short},
		{"per-host override wins", cc, "slow.example.com", &long},
		{"override matches case-insensitively", cc, "SLOW.example.COM", &long},
		{"null entry disables host", cc, "localhost:8080", nil},
		{"empty policy disables", &config.CooldownConfig{}, "api.example.com", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCooldown(tt.cc, tt.host)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("resolveCooldown = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("resolveCooldown = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("resolveCooldown = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"https://api.example.com/v1/users", "api.example.com"},
		{"https://API.Example.COM/v1", "api.example.com"},
		{"http://localhost:8080/health", "localhost:8080"},
		{"/relative/path", ""},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.target)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.target, err)
		}
		if got := HostKey(u); got != tt.want {
			t.Errorf("HostKey(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}

	if got := HostKey(nil); got != "" {
		t.Errorf("HostKey(nil) = %q, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	stub := &stubTransport{}
	tr := NewTransport(NewLimiter(nil), fixedCooldown(time.Second), stub)

	if got := tr.Unwrap(); got != http.RoundTripper(stub) {
		t.Errorf("Unwrap = %T, want the wrapped transport", got)
	}
}

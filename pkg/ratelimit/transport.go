package ratelimit

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hostgate/pkg/config"
	"hostgate/pkg/journal"
)

// ConfigFunc resolves the current cool-down policy for a limiter.
// It is called fresh on every request so that configuration changes take
// effect without rebuilding the transport. A nil return value disables
// rate limiting entirely.
type ConfigFunc func() *config.CooldownConfig

// Transport is an http.RoundTripper that enforces a per-host cool-down on
// outbound requests.
//
// Before forwarding a request it acquires the permit for the target host
// from the shared Limiter, queuing behind earlier requests to the same
// host. When the downstream response arrives (success or failure alike) it
// schedules a detached timer that releases the permit after the configured
// cool-down. The caller is never delayed by the cool-down itself: only the
// next request to the same host is.
//
// The cool-down clock starts at response completion, not dispatch. A
// downstream that never completes therefore never frees its permit; there
// is deliberately no timeout-based force release.
//
// The release timer is not tied to the request context. A cancelled request
// still releases its permit after the cool-down, so cancellation cannot
// leak a permanently held permit.
type Transport struct {
	limiter *Limiter
	conf    ConfigFunc
	next    http.RoundTripper

	name     string
	recorder *journal.Recorder
	metrics  *Metrics
	logger   *slog.Logger
}

// NewTransport creates a rate limiting transport wrapping next. If next is
// nil, http.DefaultTransport is used. conf must not be nil.
//
// Most callers should use Registry.Wrap instead, which shares one limiter
// per name and elides duplicate installation.
func NewTransport(limiter *Limiter, conf ConfigFunc, next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{
		limiter: limiter,
		conf:    conf,
		next:    next,
		logger:  slog.Default().With("component", "ratelimit.transport"),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := HostKey(req.URL)

	cooldown := resolveCooldown(t.conf(), key)
	if cooldown == nil {
		return t.next.RoundTrip(req)
	}

	start := time.Now()
	lease, err := t.limiter.Acquire(req.Context(), key)
	if err != nil {
		t.logger.Debug("request cancelled while queued", "host", key, "waited", time.Since(start).String())
		t.record(key, time.Since(start), *cooldown, journal.OutcomeCancelled)
		return nil, err
	}
	wait := time.Since(start)
	t.metrics.recordWait(key, wait)

	resp, err := t.next.RoundTrip(req)

	// The delayed release runs detached from the request context: the
	// cool-down applies to failed calls too, and cancelling the caller
	// must not cancel the release.
	t.scheduleRelease(lease, *cooldown)

	outcome := journal.OutcomeOK
	if err != nil {
		outcome = journal.OutcomeError
	}
	t.record(key, wait, *cooldown, outcome)

	return resp, err
}

// Unwrap returns the wrapped RoundTripper. It allows transport chains to be
// walked, which Registry.Wrap uses to detect double installation.
func (t *Transport) Unwrap() http.RoundTripper {
	return t.next
}

// scheduleRelease frees the lease after d has elapsed, without blocking the
// caller. A non-positive cool-down releases immediately.
func (t *Transport) scheduleRelease(lease *Lease, d time.Duration) {
	if d <= 0 {
		lease.Release()
		return
	}
	t.metrics.recordCooldown(lease.Key())
	time.AfterFunc(d, lease.Release)
}

// record journals one rate-limited request, if a recorder is attached.
func (t *Transport) record(host string, wait, cooldown time.Duration, outcome string) {
	if t.recorder == nil {
		return
	}
	t.recorder.Record(&journal.Record{
		Client:   t.name,
		Host:     host,
		Wait:     wait,
		Cooldown: cooldown,
		Outcome:  outcome,
	})
}

// resolveCooldown returns the effective cool-down for host: the per-host
// override when the host has an explicit entry (a null entry disables
// limiting for that host), otherwise the default. nil means no limiting.
func resolveCooldown(cc *config.CooldownConfig, host string) *time.Duration {
	if cc == nil {
		return nil
	}
	if d, ok := cc.Hosts[host]; ok {
		return d
	}
	for h, d := range cc.Hosts {
		if strings.EqualFold(h, host) {
			return d
		}
	}
	return cc.Cooldown
}

// HostKey returns the partition key for a request target: the lowercase
// host of an absolute URL, or the empty string for relative targets.
func HostKey(u *url.URL) string {
	if u == nil || !u.IsAbs() {
		return ""
	}
	return strings.ToLower(u.Host)
}

// Package ratelimit enforces a per-host cool-down on outbound HTTP requests.
//
// # Overview
//
// The package implements a "one in flight plus fixed cool-down" policy: for
// any single host, at most one request is in flight at a time, and after a
// response completes the next request to that host is held back until the
// configured cool-down has elapsed. Requests to different hosts proceed
// fully in parallel.
//
// The cool-down is measured from response completion, not from dispatch.
// Measuring from dispatch would let a slow response and its successor be
// sent back to back whenever the response takes longer than the cool-down.
// The caller awaiting a response is never delayed by the cool-down itself;
// only subsequent requests to the same host are.
//
// # Components
//
//   - Limiter: per-key mutual exclusion with unbounded FIFO queuing and
//     context cancellation
//   - Transport: an http.RoundTripper decorator that resolves the host key
//     and cool-down per request and schedules the delayed permit release
//   - Registry: one shared limiter per logical name, idempotent transport
//     installation
//
// # Usage
//
//	registry := ratelimit.NewRegistry()
//	client := &http.Client{}
//	registry.WrapClient("crawler", client)
//
//	resp, err := client.Get("https://api.example.org/items")
//
// Cool-downs are resolved from configuration on every request, so changes
// applied through config.ReloadConfig (or the config watcher) take effect
// on the next call.
//
// # Ordering
//
// For a single host, queued acquirers are granted the permit oldest first.
// Across hosts there is no ordering relationship.
package ratelimit

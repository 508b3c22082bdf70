// Package journal records rate-limit activity for observability.
//
// Each journaled record captures one rate-limited outbound request: the
// limiter name, the host key, how long the request waited for its permit,
// the cool-down that was applied, and the outcome. Records are written
// asynchronously through a buffered channel so that journaling never adds
// latency to requests; when the buffer is full, records are dropped and
// counted.
//
// Two backends are provided:
//
//   - MemoryBackend: a bounded in-memory ring, the default
//   - SQLiteBackend: durable storage for audit across restarts
//
// The journal is write-mostly: nothing recorded here feeds back into
// limiting decisions, and a fresh process always starts with empty limiter
// state regardless of backend.
package journal

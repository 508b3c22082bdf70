// Package telemetry groups hostgate's observability subpackages:
// structured logging (telemetry/logging) and Prometheus metrics
// (telemetry/metrics).
package telemetry

// Package observability provides event logging and metrics calculation for
// staffplan. Solve and plan events are persisted as JSON Lines (JSONL) and
// metrics are derived on demand from the event log.
package observability

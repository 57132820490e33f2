// Package store provides an in-memory SQLite index over one parsed log.
//
// The index is rebuilt from the correlated call targets on every run and
// is never written to disk. It backs the aggregate reports and ad-hoc
// queries:
//   - targets: one row per call target with its current execution count
//   - events: every attributed event with its kind-specific fields; fields
//     a kind does not carry are NULL, never zero
//   - compilations, evictions: views over events for Done and
//     CacheFlushing rows
//
// # Deterministic Query Results
//
// Reads order by bucket key, target id and seq, so identical logs produce
// identical reports.
//
// # Database Configuration
//
//   - single connection: an in-memory database lives and dies with its
//     connection
//   - foreign_keys=ON: events must reference a loaded target
//   - query_only=ON while running ad-hoc SQL
package store

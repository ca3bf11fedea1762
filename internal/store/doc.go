// Package store provides SQLite-backed storage for check runs and the
// capture side tables they produce.
//
// Each run of the checker over a program is recorded with the program's
// content hash and its outcome. Successful runs also store their
// annotations: one row per stanza and one row per resolved capture
// reference.
//
// # Ordering
//
// Runs are ordered by seq, a logical clock assigned on write, never by
// timestamps. All multi-row reads carry an explicit ORDER BY so results are
// identical across reads.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING keyed on the run ID and on
// (run, node) for capture resolutions, so writing the same run twice is a
// no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

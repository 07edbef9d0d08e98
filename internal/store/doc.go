// Package store is the SQLite turn log: every buffer a session sent or
// received, with the session it belongs to.
//
// # Tables
//
//   - sessions: one row per played session (role, player names, layout, seed)
//   - turns: one row per exchanged buffer, keyed by (session_id, seq)
//
// Writes are idempotent (ON CONFLICT DO NOTHING), so a recorder retried after
// a crash never duplicates a turn. Every read orders by seq ASC: seq comes
// from the session's logical clock, so a log reads back in exactly the order
// it was played, regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: readers (rotnet log) alongside a live session
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: a turn cannot outlive its session row
//
// Raw buffers are stored exactly as they crossed the wire, including ones
// that failed to decode, so Replay can re-verify a log byte for byte.
package store

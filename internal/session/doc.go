// Package session runs one two-peer game over a turn-alternating transport.
//
// A Session owns the local turn phase and mediates between three
// collaborators: the Engine (game rules and history), the Transport (one
// wire.Buffer per turn, ownership flips on every exchanged buffer) and an
// optional Recorder (durable turn log).
//
// Turn structure:
//
//	owner:  Move ──local Move──▶ Rotate ──local Rotate──▶ Wait
//	other:  Wait ──remote Move (ack None)──▶ Wait ──remote Rotate──▶ Move
//
// Submit is Local Dispatch: input is ignored unless this peer holds
// ownership, then applied through the engine's checked entry point, run
// through the phase machine and, if accepted, transmitted. An out-of-order
// effect (a Rotate during Move, a Move during Rotate) is reverted and never
// reaches the wire. Engines implementing Reverter drop it from their history;
// others are sent a PrevTurn.
//
// Reset input is the one local-only input: the engine (if it is a Resetter)
// and the phase go back to their start whoever holds ownership, and nothing
// is transmitted or recorded.
//
// Poll is Remote Reconciliation: a non-blocking receive of one buffer while
// the peer holds ownership, applied through the engine's unchecked entry
// points.
//
// Navigation effects (FirstTurn..LastTurn) leave the phase alone. They are
// transmitted like any other effect and the receiver acknowledges them with
// a None buffer, so ownership returns to the navigating peer and both
// history cursors stay in step.
//
// # Concurrency
//
// A Session is single-writer. Submit, Poll, Reset and Run must not be called
// concurrently; Run is the usual way to drive one from a single goroutine.
//
// # Failure modes
//
//   - Out-of-order local effect: reverted, logged at warn, reported through the
//     notify hook with Rejected set. Not an error.
//   - Malformed wire data: *wire.ProtocolError. The session is terminated and
//     every later call returns the same error.
//   - Transport failure: wrapped and terminal, no retries.
//   - Broken internal invariant: panic with *InvariantError.
package session

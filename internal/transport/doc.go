// Package transport carries wire buffers between exactly two peers and owns
// turn ownership.
//
// Ownership rule, shared by every implementation: the host (or the first pipe
// endpoint) starts with the turn; Send gives it away; a successful receive
// takes it back. Send without ownership fails with ErrNotYourTurn. Neither
// Send nor TryReceive blocks the caller's game loop.
//
// Two implementations:
//
//   - Pipe: an in-memory pair for tests, scripted scenarios and hot-seat play.
//   - Peer: a WebSocket connection (gorilla/websocket) established by
//     Listen/Accept on the host and Join on the guest, using a Ticket of the
//     form "host:port/<session-uuid>". A JSON Hello is exchanged first; after
//     that every message is one binary frame of exactly wire.BufferSize bytes.
package transport

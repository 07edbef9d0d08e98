package transport

import "errors"

var (
	// ErrNotYourTurn is returned by Send when the peer holds ownership.
	ErrNotYourTurn = errors.New("transport: not our turn")

	// ErrClosed is returned after Close, or once the other side went away.
	ErrClosed = errors.New("transport: closed")
)

package transport

import (
	"sync"

	"github.com/roach88/rotnet/internal/wire"
)

// pipe is the shared state of two connected endpoints.
type pipe struct {
	mu     sync.Mutex
	queues [2][]wire.Buffer // queues[i] holds buffers addressed to endpoint i
	turn   [2]bool
	closed bool
}

// Endpoint is one side of an in-memory Pipe.
type Endpoint struct {
	p    *pipe
	side int
}

// NewPipe returns two connected endpoints. The first holds the opening turn.
func NewPipe() (*Endpoint, *Endpoint) {
	p := &pipe{turn: [2]bool{true, false}}
	return &Endpoint{p: p, side: 0}, &Endpoint{p: p, side: 1}
}

// Send delivers b to the other endpoint and gives up the turn.
func (e *Endpoint) Send(b wire.Buffer) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()

	if e.p.closed {
		return ErrClosed
	}
	if !e.p.turn[e.side] {
		return ErrNotYourTurn
	}
	other := 1 - e.side
	e.p.queues[other] = append(e.p.queues[other], b)
	e.p.turn[e.side] = false
	return nil
}

// TryReceive pops the next buffer addressed to this endpoint and takes the
// turn. It returns ErrClosed only once the queue is drained.
func (e *Endpoint) TryReceive() (wire.Buffer, bool, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()

	q := e.p.queues[e.side]
	if len(q) == 0 {
		if e.p.closed {
			return wire.Buffer{}, false, ErrClosed
		}
		return wire.Buffer{}, false, nil
	}
	b := q[0]
	e.p.queues[e.side] = q[1:]
	e.p.turn[e.side] = true
	return b, true, nil
}

// HasTurn reports ownership.
func (e *Endpoint) HasTurn() bool {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	return e.p.turn[e.side]
}

// Pending returns how many buffers wait for this endpoint.
func (e *Endpoint) Pending() int {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	return len(e.p.queues[e.side])
}

// Inject queues a raw buffer for this endpoint as if the other side had sent
// it, without touching ownership. Tests use it to deliver malformed data.
func (e *Endpoint) Inject(b wire.Buffer) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	e.p.queues[e.side] = append(e.p.queues[e.side], b)
}

// Close closes both endpoints.
func (e *Endpoint) Close() error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	e.p.closed = true
	return nil
}

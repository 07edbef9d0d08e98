package transport

import (
	"sync"

	"github.com/roach88/rotnet/internal/wire"
)

// inbox is the unbounded FIFO between a connection's reader goroutine and
// the game loop's non-blocking TryReceive.
//
// The reader may deliver several buffers before the game loop polls (a None
// acknowledgement right behind a Move, for example), so the queue never
// drops or blocks.
type inbox struct {
	mu     sync.Mutex
	bufs   []wire.Buffer
	err    error
	closed bool
}

func newInbox() *inbox {
	return &inbox{bufs: make([]wire.Buffer, 0, 8)}
}

// push appends b. Returns false once the inbox is closed.
func (q *inbox) push(b wire.Buffer) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.bufs = append(q.bufs, b)
	return true
}

// tryPop removes the front buffer without blocking. When the inbox is empty
// it reports the error the reader closed it with, if any.
func (q *inbox) tryPop() (wire.Buffer, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.bufs) == 0 {
		return wire.Buffer{}, false, q.err
	}
	b := q.bufs[0]
	if len(q.bufs) == 1 {
		q.bufs = q.bufs[:0]
	} else {
		q.bufs = q.bufs[1:]
	}
	return b, true, nil
}

// close stops accepting buffers. Already queued buffers stay readable;
// err (may be nil) is reported once they are drained.
func (q *inbox) close(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.err = err
}

func (q *inbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.bufs)
}

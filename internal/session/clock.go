package session

import "sync/atomic"

// Sequencer hands out the logical sequence numbers stamped on recorded turns.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock: every exchanged buffer gets the next
// seq. Turn ordering never depends on wall-clock time, so a recorded session
// replays in exactly the order it was played.
//
// Clock is safe for concurrent use, although a Session only calls it from
// its own goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

package session

import (
	"errors"
	"fmt"

	"github.com/roach88/rotnet/internal/wire"
)

// InvariantError is the panic value for a broken internal invariant: a bug in
// this package or in the peer's, never a condition to recover from.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "session invariant violated: " + e.Message
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(invariantf(format, args...))
	}
}

// ErrClosed is returned by a session that was closed without a fault.
var ErrClosed = errors.New("session closed")

// IsProtocolViolation reports whether err ended the session because the peer
// sent malformed data.
func IsProtocolViolation(err error) bool {
	return wire.IsProtocolError(err)
}

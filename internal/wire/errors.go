package wire

import (
	"errors"
	"fmt"
)

// ProtocolError reports wire data that violates the protocol contract.
// It is never retried: the session that observes it is over.
type ProtocolError struct {
	// Tag is the offending tag byte, zero for framing errors.
	Tag byte

	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Tag != 0 {
		return fmt.Sprintf("protocol violation: %s (tag=%d)", e.Reason, e.Tag)
	}
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// IsProtocolError reports whether err is or wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

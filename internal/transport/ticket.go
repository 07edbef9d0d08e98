package transport

import (
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
)

// Ticket is everything a guest needs to find a hosted session.
type Ticket struct {
	Addr      string // host:port
	SessionID string
}

func (t Ticket) String() string {
	return t.Addr + "/" + t.SessionID
}

// ParseTicket parses "host:port/<session-uuid>".
func ParseTicket(s string) (Ticket, error) {
	i := strings.LastIndex(s, "/")
	if i < 0 {
		return Ticket{}, fmt.Errorf("ticket %q: want host:port/session-id", s)
	}
	addr, id := s[:i], s[i+1:]
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return Ticket{}, fmt.Errorf("ticket %q: %w", s, err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Ticket{}, fmt.Errorf("ticket %q: session id: %w", s, err)
	}
	return Ticket{Addr: addr, SessionID: id}, nil
}

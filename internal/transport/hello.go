package transport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ProtocolVersion is bumped whenever the wire format changes.
const ProtocolVersion = 1

// MaxNameLength bounds player names, in runes.
const MaxNameLength = 32

// Hello is the handshake each side sends once, before any turn. The guest
// adopts the host's Layout and Seed so both boards start identical.
type Hello struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Layout    string `json:"layout"`
	Seed      uint64 `json:"seed"`
}

// NormalizeName trims a player name, NFC-normalizes it so the same name typed
// on two systems compares equal, and caps its length.
func NormalizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxNameLength])
}

// check validates a received Hello against the session we expect.
func (h Hello) check(sessionID string) error {
	if h.Version != ProtocolVersion {
		return fmt.Errorf("peer speaks protocol version %d, we speak %d", h.Version, ProtocolVersion)
	}
	if h.SessionID != sessionID {
		return fmt.Errorf("peer is in session %q, want %q", h.SessionID, sessionID)
	}
	return nil
}

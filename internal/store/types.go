package store

import (
	"errors"

	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/wire"
)

// ErrNotFound is returned when a session is not in the log.
var ErrNotFound = errors.New("store: session not found")

// Role says how the local peer took part in a session.
type Role string

const (
	RoleHost     Role = "host"
	RoleJoin     Role = "join"
	RoleScenario Role = "scenario"
)

// SessionInfo describes one recorded session.
type SessionInfo struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	LocalName  string `json:"local_name"`
	RemoteName string `json:"remote_name"`
	Layout     string `json:"layout"`
	Seed       uint64 `json:"seed"`
}

// SessionSummary is a SessionInfo with turn counts, as listed by `rotnet log`.
type SessionSummary struct {
	SessionInfo
	Sent     int   `json:"sent"`
	Received int   `json:"received"`
	LastSeq  int64 `json:"last_seq"`
}

// Turn is one recorded buffer.
type Turn struct {
	SessionID string            `json:"session_id"`
	Seq       int64             `json:"seq"`
	Direction session.Direction `json:"direction"`
	Tag       byte              `json:"tag"`
	Raw       wire.Buffer       `json:"-"`
	Phase     string            `json:"phase"`
}

// turnFromRecord flattens what a session hands its Recorder.
func turnFromRecord(rec session.TurnRecord) Turn {
	return Turn{
		SessionID: rec.SessionID,
		Seq:       rec.Seq,
		Direction: rec.Direction,
		Tag:       rec.Buffer.Tag(),
		Raw:       rec.Buffer,
		Phase:     rec.Phase.String(),
	}
}

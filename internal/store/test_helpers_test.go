package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/wire"
)

const testSessionID = "0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01"

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a standard-layout host session row.
func createTestSession(t *testing.T, s *Store, id string) SessionInfo {
	t.Helper()
	info := SessionInfo{ID: id, Role: RoleHost, LocalName: "alice", Layout: "standard"}
	if err := s.WriteSession(context.Background(), info); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return info
}

// recordTurn records ev as the seq-th buffer of the test session.
func recordTurn(t *testing.T, s *Store, seq int64, dir session.Direction, ev game.Event, phase session.Phase) {
	t.Helper()
	rec := session.TurnRecord{SessionID: testSessionID, Seq: seq, Direction: dir, Buffer: wire.Encode(ev), Phase: phase}
	if err := s.RecordTurn(context.Background(), rec); err != nil {
		t.Fatalf("RecordTurn() failed: %v", err)
	}
}

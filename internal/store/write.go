package store

import (
	"context"
	"fmt"

	"github.com/roach88/rotnet/internal/session"
)

// WriteSession inserts a session row. Rewriting an existing ID only fills in
// the remote name, which a host learns after the session row exists.
func (s *Store) WriteSession(ctx context.Context, info SessionInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, role, local_name, remote_name, layout, seed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET remote_name = excluded.remote_name
		WHERE sessions.remote_name = ''
	`,
		info.ID,
		string(info.Role),
		info.LocalName,
		info.RemoteName,
		info.Layout,
		// SQLite integers are signed; the seed round-trips through int64.
		int64(info.Seed),
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteTurn inserts a turn. Duplicate (session, seq) pairs are ignored.
// The session row must already exist.
func (s *Store) WriteTurn(ctx context.Context, t Turn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (session_id, seq, direction, tag, raw, phase)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		t.SessionID,
		t.Seq,
		string(t.Direction),
		int(t.Tag),
		t.Raw[:],
		t.Phase,
	)
	if err != nil {
		return fmt.Errorf("write turn %d: %w", t.Seq, err)
	}
	return nil
}

// RecordTurn implements session.Recorder.
func (s *Store) RecordTurn(ctx context.Context, rec session.TurnRecord) error {
	return s.WriteTurn(ctx, turnFromRecord(rec))
}

var _ session.Recorder = (*Store)(nil)

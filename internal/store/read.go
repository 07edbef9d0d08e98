package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rotnet/internal/session"
)

// ReadSession returns one session's row, or ErrNotFound.
func (s *Store) ReadSession(ctx context.Context, id string) (SessionInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, role, local_name, remote_name, layout, seed
		FROM sessions
		WHERE id = ?
	`, id)
	info, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("read session: %w", err)
	}
	return info, nil
}

// ListSessions returns every session with its turn counts, oldest first.
// Session IDs are UUIDv7, so ordering by ID is ordering by start time.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.role, s.local_name, s.remote_name, s.layout, s.seed,
		       COUNT(CASE WHEN t.direction = 'sent' THEN 1 END),
		       COUNT(CASE WHEN t.direction = 'received' THEN 1 END),
		       COALESCE(MAX(t.seq), 0)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	summaries := []SessionSummary{}
	for rows.Next() {
		var (
			sum  SessionSummary
			role string
			seed int64
		)
		if err := rows.Scan(&sum.ID, &role, &sum.LocalName, &sum.RemoteName, &sum.Layout, &seed,
			&sum.Sent, &sum.Received, &sum.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Role = Role(role)
		sum.Seed = uint64(seed)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return summaries, nil
}

// ReadTurns returns a session's turns in seq order. Returns an empty slice
// (not nil) when the session has none.
func (s *Store) ReadTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, direction, tag, raw, phase
		FROM turns
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

// LastSeq returns the highest recorded seq for a session, 0 if none. A
// resumed recorder continues with session.NewClockAt(LastSeq).
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM turns WHERE session_id = ?`, sessionID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionInfo, error) {
	var (
		info SessionInfo
		role string
		seed int64
	)
	if err := row.Scan(&info.ID, &role, &info.LocalName, &info.RemoteName, &info.Layout, &seed); err != nil {
		return SessionInfo{}, err
	}
	info.Role = Role(role)
	info.Seed = uint64(seed)
	return info, nil
}

func scanTurn(row scanner) (Turn, error) {
	var (
		t   Turn
		dir string
		tag int
		raw []byte
	)
	if err := row.Scan(&t.SessionID, &t.Seq, &dir, &tag, &raw, &t.Phase); err != nil {
		return Turn{}, fmt.Errorf("scan turn: %w", err)
	}
	if err := t.Raw.UnmarshalBinary(raw); err != nil {
		return Turn{}, fmt.Errorf("turn %d: %w", t.Seq, err)
	}
	t.Direction = session.Direction(dir)
	t.Tag = byte(tag)
	return t, nil
}

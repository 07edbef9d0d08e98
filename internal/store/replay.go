package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/wire"
)

// Mismatch is one problem Replay found in a recorded session.
type Mismatch struct {
	Seq    int64  `json:"seq"`
	Reason string `json:"reason"`
}

// ReplayResult is the outcome of re-verifying a recorded session.
type ReplayResult struct {
	Session    SessionInfo   `json:"session"`
	Turns      int           `json:"turns"`
	Effects    int           `json:"effects"`
	Cursor     int           `json:"cursor"`
	Final      []board.Piece `json:"final"`
	Mismatches []Mismatch    `json:"mismatches"`
}

// OK reports whether the log verified cleanly.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-verifies a recorded session:
//   - every buffer decodes, and re-encodes to the identical bytes;
//   - the stored tag column agrees with the buffer;
//   - the stored phase of every Move or Rotate row is the one the phase
//     machine leaves behind for that direction.
//
// The phase check is row by row, so a local reset, which is never recorded,
// does not upset it.
//
// Sent and received effects are both applied, through the unchecked entry
// points, so the result is the position both peers ended on. Errors are
// returned only for storage failures; anything wrong with the log itself is
// a Mismatch.
func (s *Store) Replay(ctx context.Context, sessionID string) (ReplayResult, error) {
	info, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	turns, err := s.ReadTurns(ctx, sessionID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	result := ReplayResult{Session: info, Turns: len(turns), Mismatches: []Mismatch{}}
	layout, err := board.ParseLayout(info.Layout)
	if err != nil {
		result.Mismatches = append(result.Mismatches, Mismatch{Reason: err.Error()})
		return result, nil
	}

	var events []game.Event
	for _, t := range turns {
		ev, problem := verifyTurn(t)
		if problem != "" {
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: t.Seq, Reason: problem})
			continue
		}
		if !ev.IsNone() {
			events = append(events, ev)
		}
	}
	result.Effects = len(events)

	final := applyAll(layout, info.Seed, events)
	result.Cursor = final.Turn()
	result.Final = final.Pieces()
	return result, nil
}

// verifyTurn decodes one turn and checks it re-encodes byte for byte. It
// returns a non-empty reason when the turn is bad.
func verifyTurn(t Turn) (game.Event, string) {
	if t.Tag != t.Raw.Tag() {
		return game.Event{}, fmt.Sprintf("tag column %d disagrees with buffer tag %d", t.Tag, t.Raw.Tag())
	}
	if t.Direction != session.Sent && t.Direction != session.Received {
		return game.Event{}, fmt.Sprintf("unknown direction %q", t.Direction)
	}
	ev, err := wire.Decode(t.Raw)
	if err != nil {
		return game.Event{}, fmt.Sprintf("decode: %v", err)
	}
	if re := wire.Encode(ev); !bytes.Equal(re[:], t.Raw[:]) {
		return game.Event{}, fmt.Sprintf("re-encoding %s gives %s, recorded %s", ev, re, t.Raw)
	}
	if problem := verifyPhase(t, ev); problem != "" {
		return game.Event{}, problem
	}
	return ev, ""
}

// phaseAfter is the phase a peer is left in once it has sent or received an
// effect of the given kind. ok is false for kinds that leave the phase alone.
func phaseAfter(dir session.Direction, k game.Kind) (p session.Phase, ok bool) {
	switch {
	case dir == session.Sent && k == game.KindMove:
		return session.PhaseRotate, true
	case dir == session.Sent && k == game.KindRotate:
		return session.PhaseWait, true
	case dir == session.Received && k == game.KindMove:
		return session.PhaseWait, true
	case dir == session.Received && k == game.KindRotate:
		return session.PhaseMove, true
	}
	return 0, false
}

func verifyPhase(t Turn, ev game.Event) string {
	got, err := session.ParsePhase(t.Phase)
	if err != nil {
		return fmt.Sprintf("phase column: %v", err)
	}
	if want, ok := phaseAfter(t.Direction, ev.Kind); ok && got != want {
		return fmt.Sprintf("recorded phase %s after %s %s, want %s", got, t.Direction, ev.Kind, want)
	}
	return ""
}

func applyAll(layout board.Layout, seed uint64, events []game.Event) *board.Board {
	b := board.New(layout, seed)
	for _, ev := range events {
		switch {
		case ev.Kind == game.KindMove:
			b.ApplyMove(ev.Piece, ev.X, ev.Y)
		case ev.Kind == game.KindRotate:
			b.ApplyRotate(ev.Piece, ev.Angle)
		case ev.Kind.IsNavigation():
			b.Handle(game.Navigate(ev.Kind))
		}
	}
	return b
}

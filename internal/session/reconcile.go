package session

import (
	"context"
	"fmt"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/wire"
)

// Poll receives and applies at most one remote buffer. Call it once per tick.
//
// It never blocks: while this peer holds ownership, or when nothing has
// arrived, it returns immediately. A buffer that does not decode ends the
// session with the *wire.ProtocolError.
func (s *Session) Poll(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	// Ownership, not phase, gates receiving: after sending a navigation
	// event we are still in Move or Rotate but the peer holds the turn.
	if s.transport.HasTurn() {
		return nil
	}

	b, ok, err := s.transport.TryReceive()
	if err != nil {
		return s.fail(fmt.Errorf("receive: %w", err))
	}
	if !ok {
		return nil
	}

	ev, err := wire.Decode(b)
	if err != nil {
		s.record(ctx, Received, b)
		return s.fail(err)
	}

	step := stepRemote(s.phase, ev.Kind)
	s.apply(ev)
	s.phase = step.next
	s.record(ctx, Received, b)

	if !ev.IsNone() {
		s.logger.Info("remote effect applied", "kind", ev.Kind, "phase", s.phase)
		s.changed(Change{Origin: Remote, Event: ev, Phase: s.phase})
	}
	if step.ack {
		return s.send(ctx, game.None)
	}
	return nil
}

// apply hands a remote event to the engine. Moves and rotations use the
// unchecked entry points; navigation goes through Handle like local input.
func (s *Session) apply(ev game.Event) {
	switch ev.Kind {
	case game.KindMove:
		s.engine.ApplyMove(ev.Piece, ev.X, ev.Y)
	case game.KindRotate:
		s.engine.ApplyRotate(ev.Piece, ev.Angle)
	case game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn:
		s.engine.Handle(game.Navigate(ev.Kind))
	case game.KindNone:
	}
}

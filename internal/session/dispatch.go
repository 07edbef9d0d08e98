package session

import (
	"context"
	"fmt"

	"github.com/roach88/rotnet/internal/game"
)

// Submit routes one locally originated input.
//
// Reset input is local only: it is handled whatever the ownership and is
// never transmitted. Any other input is dropped unless this peer holds
// ownership. With ownership it goes through the engine's checked entry
// point; an observable effect then passes the phase machine and is
// transmitted, or is reverted and dropped if it came out of order. The only errors are terminal ones (transport failure, closed or
// previously failed session).
func (s *Session) Submit(ctx context.Context, in game.Input) error {
	if s.err != nil {
		return s.err
	}
	if in.Kind == game.InputReset {
		s.reset()
		return nil
	}
	if !s.transport.HasTurn() {
		s.logger.Debug("input dropped: not our turn", "input", in)
		return nil
	}

	eff := s.engine.Handle(in)
	if eff.IsNone() {
		return nil
	}

	step := stepLocal(s.phase, eff.Kind)
	if !step.accepted {
		s.revert(eff)
		return nil
	}

	if step.deselect {
		s.deselect()
	}
	s.phase = step.next
	s.logger.Info("local effect accepted", "kind", eff.Kind, "phase", s.phase)
	s.changed(Change{Origin: Local, Event: eff, Phase: s.phase})

	return s.send(ctx, eff)
}

// revert undoes an out-of-order effect. The peer never learns about it.
func (s *Session) revert(eff game.Event) {
	s.logger.Warn("turns are a move then a rotation; effect reverted",
		"kind", eff.Kind,
		"phase", s.phase,
	)
	if r, ok := s.engine.(Reverter); ok {
		r.Revert()
	} else {
		s.engine.Handle(game.Navigate(game.KindPrevTurn))
	}
	s.changed(Change{Origin: Local, Event: eff, Rejected: true, Phase: s.phase})
}

// reset puts the engine and the phase back to their start. The peer is not
// told: its board keeps the history it has.
func (s *Session) reset() {
	if r, ok := s.engine.(Resetter); ok {
		r.Reset()
	}
	s.Reset()
	s.changed(Change{Origin: Local, Event: game.None, Reset: true, Phase: s.phase})
}

// deselect drops the engine's selection after a rotation so the rotated
// piece does not keep capturing input.
func (s *Session) deselect() {
	if d, ok := s.engine.(Deselecter); ok {
		d.Deselect()
		return
	}
	eff := s.engine.Handle(game.ButtonDown(OffBoard, OffBoard, game.ButtonRight))
	assertf(eff.IsNone(), "off-board deselect produced effect %s", eff)
}

func fmtSendError(ev game.Event, err error) error {
	return fmt.Errorf("send %s: %w", ev.Kind, err)
}

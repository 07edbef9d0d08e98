package testutil

import "github.com/roach88/rotnet/internal/game"

// FakeEngine is a scripted engine. Handle answers from Script (game.None
// when the input is not scripted) and records every call, so tests can
// check exactly what a session asked of its engine.
//
// FakeEngine deliberately has no Deselect method: sessions must fall back to
// the off-board click, which Handle also records.
type FakeEngine struct {
	Script map[game.Input]game.Event

	Handled []game.Input
	Moves   []game.Event
	Rotates []game.Event
}

// NewFakeEngine creates an engine with an empty script.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Script: make(map[game.Input]game.Event)}
}

// On scripts the effect returned for in.
func (e *FakeEngine) On(in game.Input, eff game.Event) *FakeEngine {
	e.Script[in] = eff
	return e
}

// Handle implements the checked entry point.
func (e *FakeEngine) Handle(in game.Input) game.Event {
	e.Handled = append(e.Handled, in)
	if eff, ok := e.Script[in]; ok {
		return eff
	}
	return game.None
}

// ApplyMove records an unchecked move.
func (e *FakeEngine) ApplyMove(piece uint8, x, y float32) {
	e.Moves = append(e.Moves, game.Event{Kind: game.KindMove, Piece: piece, X: x, Y: y})
}

// ApplyRotate records an unchecked rotation.
func (e *FakeEngine) ApplyRotate(piece uint8, angle float32) {
	e.Rotates = append(e.Rotates, game.Event{Kind: game.KindRotate, Piece: piece, Angle: angle})
}

// HandledNav counts Handle calls carrying navigation kind k.
func (e *FakeEngine) HandledNav(k game.Kind) int {
	n := 0
	for _, in := range e.Handled {
		if in.Kind == game.InputNav && in.Nav == k {
			n++
		}
	}
	return n
}

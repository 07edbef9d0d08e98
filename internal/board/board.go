package board

import (
	"math"

	"github.com/roach88/rotnet/internal/game"
)

type selectMode uint8

const (
	selectNone selectMode = iota
	selectMove
	selectRotate
)

// Board holds the game history and the local selection.
//
// history[0] is the starting position; every effect appends a snapshot.
// cursor indexes the snapshot currently shown. Recording a new effect while
// the cursor is behind the end discards the snapshots after it.
//
// Board is not safe for concurrent use.
type Board struct {
	layout  Layout
	seed    uint64
	history [][]Piece
	cursor  int

	selected int
	mode     selectMode
}

// New creates a board in the starting position of layout.
func New(layout Layout, seed uint64) *Board {
	b := &Board{layout: layout, seed: seed}
	b.Reset()
	return b
}

// Reset returns to the starting position and clears history and selection.
func (b *Board) Reset() {
	b.history = [][]Piece{StartingPieces(b.layout, b.seed)}
	b.cursor = 0
	b.clearSelection()
}

// SetLayout switches to layout and resets to its starting position.
func (b *Board) SetLayout(layout Layout) {
	b.layout = layout
	b.Reset()
}

// Layout returns the board's layout.
func (b *Board) Layout() Layout {
	return b.layout
}

// Pieces returns a copy of the pieces at the cursor.
func (b *Board) Pieces() []Piece {
	cur := b.current()
	out := make([]Piece, len(cur))
	copy(out, cur)
	return out
}

// Selected returns the selected piece index, if any.
func (b *Board) Selected() (int, bool) {
	return b.selected, b.mode != selectNone
}

// Turn returns the history cursor (0 is the starting position).
func (b *Board) Turn() int {
	return b.cursor
}

// Len returns the number of snapshots in the history.
func (b *Board) Len() int {
	return len(b.history)
}

// Contains reports whether (x, y) lies on the board.
func Contains(x, y float32) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// Handle applies local input. It returns the observable effect, or game.None
// when the input only changed the selection or did nothing.
func (b *Board) Handle(in game.Input) game.Event {
	switch in.Kind {
	case game.InputButtonDown:
		if in.Button == game.ButtonLeft {
			return b.leftDown(in.X, in.Y)
		}
		b.rightDown(in.X, in.Y)
		return game.None
	case game.InputButtonUp:
		if in.Button == game.ButtonRight {
			return b.rightUp(in.X, in.Y)
		}
		return game.None
	case game.InputNav:
		return b.navigate(in.Nav)
	default:
		return game.None
	}
}

// ApplyMove moves a piece without checking selection or rules. Indices that
// do not name a piece are ignored.
func (b *Board) ApplyMove(piece uint8, x, y float32) {
	if int(piece) >= len(b.current()) {
		return
	}
	b.clearSelection()
	b.recordMove(int(piece), x, y)
}

// ApplyRotate rotates a piece without checking selection. Indices that do not
// name a piece are ignored.
func (b *Board) ApplyRotate(piece uint8, angle float32) {
	if int(piece) >= len(b.current()) {
		return
	}
	b.clearSelection()
	b.recordRotate(int(piece), angle)
}

// Revert steps back over the snapshot at the cursor and discards it, along
// with anything after it, so navigation cannot reach it again. It is a no-op
// at the starting position.
func (b *Board) Revert() {
	if b.cursor == 0 {
		return
	}
	b.cursor--
	b.history = b.history[:b.cursor+1]
	b.clearSelection()
}

// Deselect clears the selection.
func (b *Board) Deselect() {
	b.clearSelection()
}

func (b *Board) current() []Piece {
	return b.history[b.cursor]
}

func (b *Board) clearSelection() {
	b.selected = -1
	b.mode = selectNone
}

// pieceAt returns the index of the live piece under (x, y), or -1.
func (b *Board) pieceAt(x, y float32) int {
	for i, p := range b.current() {
		if !p.Captured && p.Collides(x, y) {
			return i
		}
	}
	return -1
}

func (b *Board) leftDown(x, y float32) game.Event {
	target := b.pieceAt(x, y)
	if b.mode == selectMove && Contains(x, y) && target != b.selected {
		mover := b.current()[b.selected]
		if target < 0 || b.current()[target].Side != mover.Side {
			idx := b.selected
			b.clearSelection()
			b.recordMove(idx, x, y)
			return game.NewMove(idx, x, y)
		}
	}
	if target >= 0 {
		b.selected, b.mode = target, selectMove
	} else {
		b.clearSelection()
	}
	return game.None
}

func (b *Board) rightDown(x, y float32) {
	if target := b.pieceAt(x, y); target >= 0 {
		b.selected, b.mode = target, selectRotate
		return
	}
	b.clearSelection()
}

// rightUp completes a rotation drag: the selected piece turns to face (x, y).
// Releasing on the piece itself is not a rotation.
func (b *Board) rightUp(x, y float32) game.Event {
	if b.mode != selectRotate {
		return game.None
	}
	p := b.current()[b.selected]
	if p.Collides(x, y) {
		return game.None
	}
	angle := float32(math.Atan2(float64(y-p.Y), float64(x-p.X)))
	b.recordRotate(b.selected, angle)
	return game.NewRotate(b.selected, angle)
}

func (b *Board) navigate(k game.Kind) game.Event {
	target := b.cursor
	switch k {
	case game.KindFirstTurn:
		target = 0
	case game.KindPrevTurn:
		target = b.cursor - 1
	case game.KindNextTurn:
		target = b.cursor + 1
	case game.KindLastTurn:
		target = len(b.history) - 1
	}
	if target == b.cursor || target < 0 || target >= len(b.history) {
		return game.None
	}
	b.cursor = target
	b.clearSelection()
	return game.Nav(k)
}

// push truncates any snapshots after the cursor and appends next.
func (b *Board) push(next []Piece) {
	b.history = append(b.history[:b.cursor+1], next)
	b.cursor++
}

func (b *Board) recordMove(idx int, x, y float32) {
	next := b.Pieces()
	mover := next[idx]
	for i := range next {
		if i != idx && !next[i].Captured && next[i].Side != mover.Side && next[i].Collides(x, y) {
			next[i].Captured = true
		}
	}
	next[idx].X, next[idx].Y = x, y
	b.push(next)
}

func (b *Board) recordRotate(idx int, angle float32) {
	next := b.Pieces()
	next[idx].Angle = angle
	b.push(next)
}

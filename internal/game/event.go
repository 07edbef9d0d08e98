package game

import (
	"fmt"
	"math"
)

// Kind identifies an event variant. The value is also the wire tag.
type Kind uint8

const (
	KindFirstTurn Kind = iota + 1
	KindPrevTurn
	KindNextTurn
	KindLastTurn
	KindRotate
	KindMove
	KindNone
)

// MaxPiece is the largest piece index that fits in one wire byte.
const MaxPiece = math.MaxUint8

var kindNames = map[Kind]string{
	KindFirstTurn: "FirstTurn",
	KindPrevTurn:  "PrevTurn",
	KindNextTurn:  "NextTurn",
	KindLastTurn:  "LastTurn",
	KindRotate:    "Rotate",
	KindMove:      "Move",
	KindNone:      "None",
}

// Kinds lists every valid Kind in tag order.
var Kinds = []Kind{KindFirstTurn, KindPrevTurn, KindNextTurn, KindLastTurn, KindRotate, KindMove, KindNone}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the seven variants.
func (k Kind) Valid() bool {
	return k >= KindFirstTurn && k <= KindNone
}

// IsNavigation reports whether k is one of the four history navigation kinds.
func (k Kind) IsNavigation() bool {
	return k >= KindFirstTurn && k <= KindLastTurn
}

// ParseKind maps a case-sensitive variant name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", name)
}

// Event is one game event. Only the fields relevant to Kind are meaningful:
// Rotate uses Piece and Angle, Move uses Piece, X and Y.
type Event struct {
	Kind  Kind
	Piece uint8
	X     float32
	Y     float32
	Angle float32
}

// None is the "nothing happened" event.
var None = Event{Kind: KindNone}

// IsNone reports whether e carries no game effect.
func (e Event) IsNone() bool {
	return e.Kind == KindNone
}

// Nav builds one of the four navigation events. It panics for any other kind.
func Nav(k Kind) Event {
	if !k.IsNavigation() {
		panic(fmt.Sprintf("game: %s is not a navigation kind", k))
	}
	return Event{Kind: k}
}

// NewMove builds a Move event. A piece index that does not fit in a byte is
// a programming error: the board never holds that many pieces.
func NewMove(piece int, x, y float32) Event {
	return Event{Kind: KindMove, Piece: pieceIndex(piece), X: x, Y: y}
}

// NewRotate builds a Rotate event. See NewMove for the index constraint.
func NewRotate(piece int, angle float32) Event {
	return Event{Kind: KindRotate, Piece: pieceIndex(piece), Angle: angle}
}

func pieceIndex(piece int) uint8 {
	if piece < 0 || piece > MaxPiece {
		panic(fmt.Sprintf("game: piece index %d does not fit in a byte", piece))
	}
	return uint8(piece)
}

func (e Event) String() string {
	switch e.Kind {
	case KindMove:
		return fmt.Sprintf("Move(%d, %g, %g)", e.Piece, e.X, e.Y)
	case KindRotate:
		return fmt.Sprintf("Rotate(%d, %g)", e.Piece, e.Angle)
	default:
		return e.Kind.String()
	}
}

package board

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Size is the board edge length in board units.
const Size = 8

// PieceRadius is the hit radius of a piece in board units.
const PieceRadius = 0.35

// Side is the owner of a piece.
type Side uint8

const (
	White Side = iota + 1
	Black
)

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// Kind is a chess piece type.
type Kind uint8

const (
	Pawn Kind = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[Kind]string{Pawn: "p", Knight: "n", Bishop: "b", Rook: "r", Queen: "q", King: "k"}

func (k Kind) String() string {
	return kindLetters[k]
}

// Piece is one piece on the board. Captured pieces keep their slot so that
// piece indices stay stable for the lifetime of a game.
type Piece struct {
	Kind     Kind
	Side     Side
	X, Y     float32
	Angle    float32
	Captured bool
}

// Collides reports whether (x, y) falls inside the piece's hit circle.
func (p Piece) Collides(x, y float32) bool {
	dx, dy := float64(x-p.X), float64(y-p.Y)
	return math.Hypot(dx, dy) <= PieceRadius
}

func (p Piece) String() string {
	letter := p.Kind.String()
	if p.Side == White {
		letter = strings.ToUpper(letter)
	}
	return fmt.Sprintf("%s@(%.2f,%.2f)∠%.2f", letter, p.X, p.Y, p.Angle)
}

// Layout selects the starting position.
type Layout string

const (
	LayoutStandard Layout = "standard"
	LayoutChess960 Layout = "chess960"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutStandard, LayoutChess960:
		return Layout(s), nil
	default:
		return "", fmt.Errorf("unknown layout %q: must be %q or %q", s, LayoutStandard, LayoutChess960)
	}
}

var standardRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingPieces returns the initial pieces for a layout. For chess960 the
// back rank is shuffled from seed, so both peers derive the same position
// from the same seed. Black mirrors White's back rank.
func StartingPieces(layout Layout, seed uint64) []Piece {
	rank := standardRank
	if layout == LayoutChess960 {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		rng.Shuffle(len(rank), func(i, j int) { rank[i], rank[j] = rank[j], rank[i] })
	}

	pieces := make([]Piece, 0, 4*Size)
	for col, k := range rank {
		pieces = append(pieces, Piece{Kind: k, Side: White, X: float32(col) + 0.5, Y: 7.5})
	}
	for col := 0; col < Size; col++ {
		pieces = append(pieces, Piece{Kind: Pawn, Side: White, X: float32(col) + 0.5, Y: 6.5})
	}
	for col := 0; col < Size; col++ {
		pieces = append(pieces, Piece{Kind: Pawn, Side: Black, X: float32(col) + 0.5, Y: 1.5, Angle: math.Pi})
	}
	for col, k := range rank {
		pieces = append(pieces, Piece{Kind: k, Side: Black, X: float32(col) + 0.5, Y: 0.5, Angle: math.Pi})
	}
	return pieces
}

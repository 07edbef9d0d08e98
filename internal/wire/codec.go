package wire

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/rotnet/internal/game"
)

// BufferSize is the size of every transmitted turn: tag + index + two float32.
const BufferSize = 1 + 1 + 4 + 4

const (
	offTag   = 0
	offPiece = 1
	offA     = 2 // angle for Rotate, x for Move
	offB     = 6 // y for Move
)

// Buffer is one wire unit.
type Buffer [BufferSize]byte

var (
	_ encoding.BinaryMarshaler   = Buffer{}
	_ encoding.BinaryUnmarshaler = (*Buffer)(nil)
)

// Encode serializes ev into a Buffer.
//
// Panics if ev.Kind is not one of the seven variants; events built through
// the game package constructors always satisfy that.
func Encode(ev game.Event) Buffer {
	var b Buffer
	switch ev.Kind {
	case game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn, game.KindNone:
		b[offTag] = byte(ev.Kind)
	case game.KindRotate:
		b[offTag] = byte(ev.Kind)
		b[offPiece] = ev.Piece
		putFloat(b[offA:], ev.Angle)
	case game.KindMove:
		b[offTag] = byte(ev.Kind)
		b[offPiece] = ev.Piece
		putFloat(b[offA:], ev.X)
		putFloat(b[offB:], ev.Y)
	default:
		panic(fmt.Sprintf("wire: cannot encode event of kind %s", ev.Kind))
	}
	return b
}

// Decode is the inverse of Encode. Tag 7 yields game.None. Any tag outside
// 1..7 is a protocol violation: the peer sent data we cannot interpret.
//
// Bytes a variant does not use are ignored.
func Decode(b Buffer) (game.Event, error) {
	kind := game.Kind(b[offTag])
	switch kind {
	case game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn:
		return game.Nav(kind), nil
	case game.KindRotate:
		return game.Event{
			Kind:  kind,
			Piece: b[offPiece],
			Angle: getFloat(b[offA:]),
		}, nil
	case game.KindMove:
		return game.Event{
			Kind:  kind,
			Piece: b[offPiece],
			X:     getFloat(b[offA:]),
			Y:     getFloat(b[offB:]),
		}, nil
	case game.KindNone:
		return game.None, nil
	default:
		return game.Event{}, &ProtocolError{Tag: b[offTag], Reason: "unknown event tag"}
	}
}

func putFloat(dst []byte, f float32) {
	binary.BigEndian.PutUint32(dst, math.Float32bits(f))
}

func getFloat(src []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(src))
}

// Tag returns the raw tag byte.
func (b Buffer) Tag() byte {
	return b[offTag]
}

// String renders the buffer as lowercase hex, e.g. "06030000...".
func (b Buffer) String() string {
	return hex.EncodeToString(b[:])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b Buffer) MarshalBinary() ([]byte, error) {
	out := make([]byte, BufferSize)
	copy(out, b[:])
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The input must be
// exactly BufferSize bytes; anything else is a framing violation.
func (b *Buffer) UnmarshalBinary(data []byte) error {
	if len(data) != BufferSize {
		return &ProtocolError{Reason: fmt.Sprintf("frame is %d bytes, want %d", len(data), BufferSize)}
	}
	copy(b[:], data)
	return nil
}

// ParseHex parses a hex string (spaces allowed) into a Buffer.
func ParseHex(s string) (Buffer, error) {
	var b Buffer
	raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if err != nil {
		return b, fmt.Errorf("parse hex: %w", err)
	}
	if err := b.UnmarshalBinary(raw); err != nil {
		return b, err
	}
	return b, nil
}

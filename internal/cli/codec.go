package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/wire"
)

// BufferView is a decoded buffer as printed by encode and decode.
type BufferView struct {
	Hex   string   `json:"hex"`
	Tag   byte     `json:"tag"`
	Kind  string   `json:"kind"`
	Event string   `json:"event"`
	Piece *uint8   `json:"piece,omitempty"`
	X     *float32 `json:"x,omitempty"`
	Y     *float32 `json:"y,omitempty"`
	Angle *float32 `json:"angle,omitempty"`
}

func (v BufferView) String() string {
	return fmt.Sprintf("%s  %s", v.Hex, v.Event)
}

func newBufferView(b wire.Buffer, ev game.Event) BufferView {
	v := BufferView{Hex: b.String(), Tag: b.Tag(), Kind: ev.Kind.String(), Event: ev.String()}
	switch ev.Kind {
	case game.KindMove:
		v.Piece, v.X, v.Y = &ev.Piece, &ev.X, &ev.Y
	case game.KindRotate:
		v.Piece, v.Angle = &ev.Piece, &ev.Angle
	}
	return v
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <kind> [args]",
		Short: "Encode one event as a wire buffer",
		Long: `Encode one event and print the buffer as hex.

Kinds are matched without regard to case:
  first | prev | next | last | none
  rotate PIECE ANGLE
  move PIECE X Y

Examples:
  rotnet encode move 12 4.5 4.5
  rotnet encode rotate 12 1.5708
  rotnet encode none --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := parseEvent(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid event", err)
			}
			b := wire.Encode(ev)
			return newFormatter(rootOpts, cmd).Success(newBufferView(b, ev))
		},
	}
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a wire buffer",
		Long: `Decode a hex wire buffer and print the event it carries.

The hex may be split into several arguments or contain spaces; it must
decode to exactly one buffer.

Exit codes:
  0 - Buffer decoded
  1 - Buffer is a protocol violation (unknown tag)
  2 - Not a buffer (bad hex or wrong length)

Examples:
  rotnet decode 060c4090000040900000
  rotnet decode "07 00 00000000 00000000"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)

			b, err := wire.ParseHex(strings.Join(args, ""))
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid buffer", err)
			}
			ev, err := wire.Decode(b)
			if err != nil {
				_ = out.Error(ErrCodeDecode, err.Error(), map[string]any{"hex": b.String(), "tag": b.Tag()})
				return WrapExitError(ExitFailure, "decode failed", err)
			}
			return out.Success(newBufferView(b, ev))
		},
	}
}

// parseEvent reads "<kind> [args]" as accepted by encode.
func parseEvent(args []string) (game.Event, error) {
	name, rest := strings.ToLower(args[0]), args[1:]

	want := func(n int, usage string) error {
		if len(rest) != n {
			return fmt.Errorf("%s: usage: %s", name, usage)
		}
		return nil
	}

	switch name {
	case "first", "prev", "next", "last":
		if err := want(0, name); err != nil {
			return game.Event{}, err
		}
		return game.Nav(map[string]game.Kind{
			"first": game.KindFirstTurn,
			"prev":  game.KindPrevTurn,
			"next":  game.KindNextTurn,
			"last":  game.KindLastTurn,
		}[name]), nil
	case "none":
		if err := want(0, "none"); err != nil {
			return game.Event{}, err
		}
		return game.None, nil
	case "rotate":
		if err := want(2, "rotate PIECE ANGLE"); err != nil {
			return game.Event{}, err
		}
		piece, err := parsePiece(rest[0])
		if err != nil {
			return game.Event{}, err
		}
		angle, err := parseFloat("angle", rest[1])
		if err != nil {
			return game.Event{}, err
		}
		return game.NewRotate(piece, angle), nil
	case "move":
		if err := want(3, "move PIECE X Y"); err != nil {
			return game.Event{}, err
		}
		piece, err := parsePiece(rest[0])
		if err != nil {
			return game.Event{}, err
		}
		x, err := parseFloat("x", rest[1])
		if err != nil {
			return game.Event{}, err
		}
		y, err := parseFloat("y", rest[2])
		if err != nil {
			return game.Event{}, err
		}
		return game.NewMove(piece, x, y), nil
	default:
		return game.Event{}, fmt.Errorf("unknown event kind %q", args[0])
	}
}

func parsePiece(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("piece index %q must be 0..%d", s, game.MaxPiece)
	}
	return int(n), nil
}

func parseFloat(field, s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", field, s)
	}
	return float32(f), nil
}

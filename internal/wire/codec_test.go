package wire

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rotnet/internal/game"
)

// assertBijective checks the wire contract: decoding an encoded event and
// re-encoding it yields the identical bytes.
func assertBijective(t *testing.T, ev game.Event) {
	t.Helper()
	first := Encode(ev)
	decoded, err := Decode(first)
	require.NoError(t, err)
	assert.Equal(t, first, Encode(decoded), "event %s", ev)
}

func TestRoundTrip_Navigation(t *testing.T) {
	for _, k := range []game.Kind{game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn} {
		t.Run(k.String(), func(t *testing.T) {
			assertBijective(t, game.Nav(k))

			decoded, err := Decode(Encode(game.Nav(k)))
			require.NoError(t, err)
			assert.Equal(t, game.Nav(k), decoded)
		})
	}
}

func TestRoundTrip_None(t *testing.T) {
	assertBijective(t, game.None)

	decoded, err := Decode(Encode(game.None))
	require.NoError(t, err)
	assert.True(t, decoded.IsNone())
}

func TestRoundTrip_Rotate(t *testing.T) {
	cases := []game.Event{
		game.NewRotate(2, 91.246876218913),
		game.NewRotate(6, 1.797548620909),
		game.NewRotate(5, 8.147878140881),
		game.NewRotate(1, 21.581176862643),
		game.NewRotate(7, 32.217517844368),
		game.NewRotate(4, 90.522625314885),
		game.NewRotate(1, 23.927154940674),
		game.NewRotate(8, 53.959229741122),
		game.NewRotate(8, 60.743439712343),
		game.NewRotate(8, 82.152850235763),
	}
	for _, ev := range cases {
		assertBijective(t, ev)

		decoded, err := Decode(Encode(ev))
		require.NoError(t, err)
		assert.Equal(t, ev.Piece, decoded.Piece)
		assert.Equal(t, math.Float32bits(ev.Angle), math.Float32bits(decoded.Angle))
	}
}

func TestRoundTrip_Move(t *testing.T) {
	cases := []game.Event{
		game.NewMove(28, 11.352279394256, 81.647432982848),
		game.NewMove(74, 30.000701136234, 90.218648211692),
		game.NewMove(47, 56.161192888566, 2.448786090013),
		game.NewMove(86, 54.106803274653, 61.299734032137),
		game.NewMove(86, 28.528662175474, 48.520872175935),
		game.NewMove(26, 66.300609468152, 85.435537391159),
		game.NewMove(77, 73.688001636818, 68.715058900751),
		game.NewMove(10, 68.328589705709, 11.444493994595),
		game.NewMove(29, 65.925913814140, 87.078698941045),
		game.NewMove(85, 38.747317527971, 20.528927188939),
	}
	for _, ev := range cases {
		assertBijective(t, ev)

		decoded, err := Decode(Encode(ev))
		require.NoError(t, err)
		assert.Equal(t, ev, decoded)
	}
}

func TestRoundTrip_BoundaryValues(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	nan := math.Float32frombits(0x7fc00123) // quiet NaN with a payload
	cases := []game.Event{
		game.NewMove(0, 0, 0),
		game.NewMove(255, 8, 8),
		game.NewMove(0, negZero, negZero),
		game.NewMove(255, math.MaxFloat32, math.SmallestNonzeroFloat32),
		game.NewMove(1, float32(math.Inf(1)), float32(math.Inf(-1))),
		game.NewRotate(0, nan),
		game.NewRotate(255, math.Nextafter32(1, 2)),
	}
	for _, ev := range cases {
		assertBijective(t, ev)
	}

	// Bit-exact, not approximate: the sign of zero and the NaN payload survive.
	decoded, err := Decode(Encode(game.NewMove(0, negZero, 1)))
	require.NoError(t, err)
	assert.True(t, math.Signbit(float64(decoded.X)))

	decoded, err = Decode(Encode(game.NewRotate(0, nan)))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7fc00123), math.Float32bits(decoded.Angle))
}

func TestEncode_Layout(t *testing.T) {
	b := Encode(game.NewMove(0x1c, 1.5, 6.5))
	assert.Equal(t, Buffer{0x06, 0x1c, 0x3f, 0xc0, 0x00, 0x00, 0x40, 0xd0, 0x00, 0x00}, b)

	b = Encode(game.NewRotate(2, 0.25))
	assert.Equal(t, Buffer{0x05, 0x02, 0x3e, 0x80, 0, 0, 0, 0, 0, 0}, b)

	b = Encode(game.None)
	assert.Equal(t, Buffer{0x07}, b)
}

func TestEncode_InvalidKindPanics(t *testing.T) {
	assert.Panics(t, func() { Encode(game.Event{}) })
	assert.Panics(t, func() { Encode(game.Event{Kind: 8}) })
}

func TestEncode_GoldenLayout(t *testing.T) {
	cases := []struct {
		name string
		ev   game.Event
	}{
		{"first_turn", game.Nav(game.KindFirstTurn)},
		{"prev_turn", game.Nav(game.KindPrevTurn)},
		{"next_turn", game.Nav(game.KindNextTurn)},
		{"last_turn", game.Nav(game.KindLastTurn)},
		{"rotate_2_quarter", game.NewRotate(2, 0.25)},
		{"rotate_255_pi", game.NewRotate(255, 3.14159265)},
		{"move_0_origin_center", game.NewMove(0, 0.5, 0.5)},
		{"move_28", game.NewMove(28, 1.5, 6.5)},
		{"move_255_neg_zero", game.NewMove(255, float32(math.Copysign(0, -1)), 7.75)},
		{"none", game.None},
	}

	var buf bytes.Buffer
	for _, c := range cases {
		fmt.Fprintf(&buf, "%s %s\n", c.name, Encode(c.ev))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "layout", buf.Bytes())
}

func TestDecode_UnknownTagIsProtocolViolation(t *testing.T) {
	for _, tag := range []byte{0, 8, 9, 0x7f, 0xff} {
		t.Run(fmt.Sprintf("tag_%d", tag), func(t *testing.T) {
			_, err := Decode(Buffer{tag, 1, 2, 3})
			require.Error(t, err)
			assert.True(t, IsProtocolError(err))

			var pe *ProtocolError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tag, pe.Tag)
		})
	}
}

func TestDecode_IgnoresUnusedBytes(t *testing.T) {
	ev, err := Decode(Buffer{0x03, 0xaa, 0xbb, 0xcc})
	require.NoError(t, err)
	assert.Equal(t, game.Nav(game.KindNextTurn), ev)

	ev, err = Decode(Buffer{0x07, 0xff, 0xff})
	require.NoError(t, err)
	assert.True(t, ev.IsNone())
}

func TestParseHex(t *testing.T) {
	b, err := ParseHex("06 1c 3fc00000 40d00000")
	require.NoError(t, err)
	assert.Equal(t, Encode(game.NewMove(28, 1.5, 6.5)), b)
	assert.Equal(t, "061c3fc0000040d00000", b.String())

	_, err = ParseHex("0600")
	assert.True(t, IsProtocolError(err))

	_, err = ParseHex("zz")
	assert.Error(t, err)
}

func TestBuffer_BinaryMarshaling(t *testing.T) {
	orig := Encode(game.NewRotate(9, 1.25))
	raw, err := orig.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, raw, BufferSize)

	var back Buffer
	require.NoError(t, back.UnmarshalBinary(raw))
	assert.Equal(t, orig, back)

	err = back.UnmarshalBinary(raw[:9])
	assert.True(t, IsProtocolError(err))
}

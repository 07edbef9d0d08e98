package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Input
	}{
		{"select 4.5 6.5", ButtonDown(4.5, 6.5, ButtonLeft)},
		{"move 4.5 4.5", ButtonDown(4.5, 4.5, ButtonLeft)},
		{"rselect 1 2", ButtonDown(1, 2, ButtonRight)},
		{"  ROTATE   3 -1 ", ButtonUp(3, -1, ButtonRight)},
		{"motion 0 0", Motion(0, 0)},
		{"first", Navigate(KindFirstTurn)},
		{"prev", Navigate(KindPrevTurn)},
		{"next", Navigate(KindNextTurn)},
		{"last", Navigate(KindLastTurn)},
		{"Reset", Reset()},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, err := ParseCommand(tt.line)
			require.NoError(t, err)
			in, err := c.Input()
			require.NoError(t, err)
			assert.Equal(t, tt.want, in)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"", "jump 1 2", "move 1", "move x 2", "move 1 y", "prev 1", "reset 1 2"} {
		_, err := ParseCommand(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestCommand_String(t *testing.T) {
	c, err := ParseCommand("move 4.5 4.5")
	require.NoError(t, err)
	assert.Equal(t, "move 4.5 4.5", c.String())
	assert.Equal(t, "last", Command{Name: "last"}.String())
	assert.Equal(t, "reset", Command{Name: "reset"}.String())
}

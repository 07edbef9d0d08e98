package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a textual input, shared by the interactive prompt and scripted
// scenarios:
//
//	select X Y    left press (pick up a piece)
//	move X Y      left press (drop the picked-up piece)
//	rselect X Y   right press (grab a piece for rotation)
//	rotate X Y    right release (turn the grabbed piece towards X Y)
//	motion X Y    pointer motion
//	first | prev | next | last
//	reset         back to the starting position (not sent to the peer)
type Command struct {
	Name string  `yaml:"cmd" json:"cmd"`
	X    float32 `yaml:"x,omitempty" json:"x,omitempty"`
	Y    float32 `yaml:"y,omitempty" json:"y,omitempty"`
}

// resetCommand takes no arguments, like the navigation commands.
const resetCommand = "reset"

var navCommands = map[string]Kind{
	"first": KindFirstTurn,
	"prev":  KindPrevTurn,
	"next":  KindNextTurn,
	"last":  KindLastTurn,
}

// ParseCommand parses one line such as "move 4.5 4.5".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	c := Command{Name: strings.ToLower(fields[0])}
	if _, ok := navCommands[c.Name]; ok || c.Name == resetCommand {
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", c.Name)
		}
		return c, nil
	}
	if len(fields) != 3 {
		return Command{}, fmt.Errorf("%s: want %s X Y", c.Name, c.Name)
	}
	x, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return Command{}, fmt.Errorf("%s: bad X %q", c.Name, fields[1])
	}
	y, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return Command{}, fmt.Errorf("%s: bad Y %q", c.Name, fields[2])
	}
	c.X, c.Y = float32(x), float32(y)
	if _, err := c.Input(); err != nil {
		return Command{}, err
	}
	return c, nil
}

// Input translates the command into engine input.
func (c Command) Input() (Input, error) {
	if k, ok := navCommands[c.Name]; ok {
		return Navigate(k), nil
	}
	switch c.Name {
	case resetCommand:
		return Reset(), nil
	case "select", "move":
		return ButtonDown(c.X, c.Y, ButtonLeft), nil
	case "rselect":
		return ButtonDown(c.X, c.Y, ButtonRight), nil
	case "rotate":
		return ButtonUp(c.X, c.Y, ButtonRight), nil
	case "motion":
		return Motion(c.X, c.Y), nil
	default:
		return Input{}, fmt.Errorf("unknown command %q", c.Name)
	}
}

func (c Command) String() string {
	if _, ok := navCommands[c.Name]; ok || c.Name == resetCommand {
		return c.Name
	}
	return fmt.Sprintf("%s %g %g", c.Name, c.X, c.Y)
}

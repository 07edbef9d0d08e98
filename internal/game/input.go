package game

import "fmt"

// InputKind classifies raw input handed to an engine's checked entry point.
type InputKind uint8

const (
	InputButtonDown InputKind = iota + 1
	InputButtonUp
	InputMotion
	InputNav
	InputReset
)

// Button is a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
}

// Input is locally originated input in board coordinates. The engine decides
// whether it has an observable effect (a non-None Event).
type Input struct {
	Kind   InputKind
	X, Y   float32
	Button Button
	Nav    Kind // InputNav only
}

// ButtonDown is a press at (x, y).
func ButtonDown(x, y float32, b Button) Input {
	return Input{Kind: InputButtonDown, X: x, Y: y, Button: b}
}

// ButtonUp is a release at (x, y).
func ButtonUp(x, y float32, b Button) Input {
	return Input{Kind: InputButtonUp, X: x, Y: y, Button: b}
}

// Motion is pointer movement to (x, y).
func Motion(x, y float32) Input {
	return Input{Kind: InputMotion, X: x, Y: y}
}

// Navigate requests a history navigation step.
func Navigate(k Kind) Input {
	if !k.IsNavigation() {
		panic(fmt.Sprintf("game: %s is not a navigation kind", k))
	}
	return Input{Kind: InputNav, Nav: k}
}

// Reset asks for the game to go back to its starting position. It is local
// only: sessions never transmit it.
func Reset() Input {
	return Input{Kind: InputReset}
}

func (in Input) String() string {
	switch in.Kind {
	case InputButtonDown:
		return fmt.Sprintf("down(%s, %g, %g)", in.Button, in.X, in.Y)
	case InputButtonUp:
		return fmt.Sprintf("up(%s, %g, %g)", in.Button, in.X, in.Y)
	case InputMotion:
		return fmt.Sprintf("motion(%g, %g)", in.X, in.Y)
	case InputNav:
		return "nav(" + in.Nav.String() + ")"
	case InputReset:
		return "reset"
	default:
		return fmt.Sprintf("Input(%d)", uint8(in.Kind))
	}
}

package session

import (
	"fmt"

	"github.com/roach88/rotnet/internal/game"
)

// Phase is the local sub-turn.
type Phase uint8

const (
	// PhaseWait: the peer is acting.
	PhaseWait Phase = iota + 1
	// PhaseMove: this peer may originate a Move.
	PhaseMove
	// PhaseRotate: this peer may originate a Rotate.
	PhaseRotate
)

func (p Phase) String() string {
	switch p {
	case PhaseWait:
		return "wait"
	case PhaseMove:
		return "move"
	case PhaseRotate:
		return "rotate"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for _, p := range []Phase{PhaseWait, PhaseMove, PhaseRotate} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// initialPhase is Move for the peer that acts first, Wait for the other.
func initialPhase(first bool) Phase {
	if first {
		return PhaseMove
	}
	return PhaseWait
}

// localStep is the phase machine's answer to a locally produced effect.
type localStep struct {
	next     Phase
	accepted bool
	deselect bool // the effect was a rotation: drop the selection before sending
}

// stepLocal applies the transition table for a local effect. Kind must not
// be None.
func stepLocal(p Phase, k game.Kind) localStep {
	switch k {
	case game.KindMove:
		if p == PhaseMove {
			return localStep{next: PhaseRotate, accepted: true}
		}
		return localStep{next: p}
	case game.KindRotate:
		if p == PhaseRotate {
			return localStep{next: PhaseWait, accepted: true, deselect: true}
		}
		return localStep{next: p}
	case game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn:
		return localStep{next: p, accepted: true}
	default:
		panic(invariantf("local effect of kind %s reached the phase machine", k))
	}
}

// remoteStep is the phase machine's answer to a decoded remote event.
type remoteStep struct {
	next Phase
	ack  bool // reply with a None buffer to hand ownership back
}

// stepRemote applies the transition table for a remote event. Moves and
// rotations may only arrive while waiting: the sender's own phase machine
// guarantees it.
func stepRemote(p Phase, k game.Kind) remoteStep {
	switch k {
	case game.KindRotate:
		assertf(p == PhaseWait, "remote Rotate received in phase %s", p)
		return remoteStep{next: PhaseMove}
	case game.KindMove:
		assertf(p == PhaseWait, "remote Move received in phase %s", p)
		return remoteStep{next: PhaseWait, ack: true}
	case game.KindFirstTurn, game.KindPrevTurn, game.KindNextTurn, game.KindLastTurn:
		return remoteStep{next: p, ack: true}
	case game.KindNone:
		return remoteStep{next: p}
	default:
		panic(invariantf("remote event of kind %s reached the phase machine", k))
	}
}

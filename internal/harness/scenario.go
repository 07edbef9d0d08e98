package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/wire"
)

// Peer names.
const (
	PeerHost = "host"
	PeerJoin = "join"
)

// Scenario is a scripted two-peer game.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Layout is the starting position; empty means standard.
	Layout string `yaml:"layout,omitempty"`

	// Seed shuffles a chess960 back rank.
	Seed uint64 `yaml:"seed,omitempty"`

	// Steps run in order. Steps after a panic are skipped.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action by one peer. Exactly one of Input, Poll and Inject is
// set.
type Step struct {
	Peer string `yaml:"peer"`

	// Input is submitted to the peer's session as local input.
	Input *game.Command `yaml:"input,omitempty"`

	// Poll runs one Poll on the peer's session.
	Poll bool `yaml:"poll,omitempty"`

	// Inject queues a raw hex buffer for the peer, as if the other side had
	// sent it. Ownership is not touched.
	Inject string `yaml:"inject,omitempty"`
}

// Assertion checks the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Peer is the peer the assertion is about (all but boards_equal).
	Peer string `yaml:"peer,omitempty"`

	// Expect is the expected value: a phase name (phase), a bool (has_turn),
	// a kind name (last_sent) or an error class (error: "", "protocol", or a
	// substring of the error).
	Expect any `yaml:"expect,omitempty"`

	// Count is the expected number (sent_count, cursor).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPhase       = "phase"
	AssertHasTurn     = "has_turn"
	AssertSentCount   = "sent_count"
	AssertLastSent    = "last_sent"
	AssertCursor      = "cursor"
	AssertBoardsEqual = "boards_equal"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo cannot silently disable a step.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Layout == "" {
		s.Layout = string(board.LayoutStandard)
	}
	if _, err := board.ParseLayout(s.Layout); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validatePeer(peer string) error {
	if peer != PeerHost && peer != PeerJoin {
		return fmt.Errorf("peer must be %q or %q, got %q", PeerHost, PeerJoin, peer)
	}
	return nil
}

func validateStep(index int, step Step) error {
	if err := validatePeer(step.Peer); err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}

	set := 0
	if step.Input != nil {
		set++
		if _, err := step.Input.Input(); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	if step.Poll {
		set++
	}
	if step.Inject != "" {
		set++
		if _, err := wire.ParseHex(step.Inject); err != nil {
			return fmt.Errorf("steps[%d]: inject: %w", index, err)
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of input, poll and inject is required", index)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Type != AssertBoardsEqual {
		if err := validatePeer(a.Peer); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertPhase:
		s, ok := a.Expect.(string)
		if !ok {
			return fmt.Errorf("assertions[%d]: expect must be a phase name for phase", index)
		}
		if _, err := session.ParsePhase(s); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertHasTurn:
		if _, ok := a.Expect.(bool); !ok {
			return fmt.Errorf("assertions[%d]: expect must be true or false for has_turn", index)
		}
	case AssertLastSent:
		s, ok := a.Expect.(string)
		if !ok {
			return fmt.Errorf("assertions[%d]: expect must be a kind name for last_sent", index)
		}
		if _, err := game.ParseKind(s); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertSentCount, AssertCursor:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertError:
		if a.Expect != nil {
			if _, ok := a.Expect.(string); !ok {
				return fmt.Errorf("assertions[%d]: expect must be a string for error", index)
			}
		}
	case AssertBoardsEqual:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Package game defines the closed event vocabulary shared by the wire codec,
// the turn-phase state machine and the board engine.
//
// The Kind enumeration is the canonical discriminant. Its numeric values ARE
// the wire tags, so the codec and the domain model cannot drift apart:
//
//	FirstTurn=1 PrevTurn=2 NextTurn=3 LastTurn=4 Rotate=5 Move=6 None=7
//
// None doubles as the explicit NoOp sentinel and as "nothing happened"
// (an engine reporting no observable effect). The zero Kind is invalid.
//
// Input is the raw pointer and keyboard vocabulary an engine consumes.
// Command is its textual form, typed at the interactive prompt and written
// in scenario files.
package game

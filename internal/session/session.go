package session

import (
	"context"
	"log/slog"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/wire"
)

// Engine is the game-rules collaborator.
//
// Handle is the checked entry point for local input; it returns game.None
// when the input had no observable effect. ApplyMove and ApplyRotate are
// trusted entry points for effects the remote peer already validated.
type Engine interface {
	Handle(in game.Input) game.Event
	ApplyMove(piece uint8, x, y float32)
	ApplyRotate(piece uint8, angle float32)
}

// Deselecter is an optional Engine capability. Without it the session falls
// back to a right-click at OffBoard.
type Deselecter interface {
	Deselect()
}

// Reverter is an optional Engine capability: Revert undoes the latest
// effect and forgets it, so later navigation cannot bring it back. Without
// it the session steps back with a PrevTurn navigation instead.
type Reverter interface {
	Revert()
}

// Resetter is an optional Engine capability used by reset input.
type Resetter interface {
	Reset()
}

// OffBoard is a coordinate no board contains. A right-button press there
// selects nothing, which engines without Deselect use to drop a selection.
const OffBoard = -1000

// Transport carries one wire.Buffer per turn. Ownership is the transport's:
// Send gives it away, a successful receive takes it back.
//
// Implementations must not block in Send or TryReceive.
type Transport interface {
	Send(b wire.Buffer) error
	TryReceive() (wire.Buffer, bool, error)
	HasTurn() bool
}

// Direction says which way a recorded buffer travelled.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// TurnRecord is one exchanged buffer as seen by the local session.
type TurnRecord struct {
	SessionID string
	Seq       int64
	Direction Direction
	Buffer    wire.Buffer
	// Phase is the local phase after the buffer was handled.
	Phase Phase
}

// Recorder persists exchanged buffers. A failing Recorder is logged, never
// fatal: the game does not depend on its own log.
type Recorder interface {
	RecordTurn(ctx context.Context, rec TurnRecord) error
}

// Origin says where a change came from.
type Origin string

const (
	Local  Origin = "local"
	Remote Origin = "remote"
)

// Change is passed to the notify hook whenever the game state may need a
// redraw.
type Change struct {
	Origin Origin
	Event  game.Event
	// Rejected is set when a local effect was out of order and reverted.
	Rejected bool
	// Reset is set when local input put the game back to its start.
	Reset bool
	Phase Phase
}

// Session is one game between two peers. See the package documentation.
type Session struct {
	id        string
	engine    Engine
	transport Transport
	phase     Phase

	clock    Sequencer
	recorder Recorder
	logger   *slog.Logger
	notify   func(Change)

	// err is terminal: once set, Submit and Poll return it.
	err error
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID (default: a fresh UUIDv7).
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithRecorder records every exchanged buffer.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the sequencer for recorded turns (default: NewClock()).
func WithClock(c Sequencer) Option {
	return func(s *Session) { s.clock = c }
}

// WithNotify registers the state-changed hook.
func WithNotify(fn func(Change)) Option {
	return func(s *Session) { s.notify = fn }
}

// New creates a session. The peer holding ownership at this moment acts
// first and starts in PhaseMove; the other starts in PhaseWait.
func New(engine Engine, transport Transport, opts ...Option) *Session {
	s := &Session{
		engine:    engine,
		transport: transport,
		clock:     NewClock(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	s.phase = initialPhase(transport.HasTurn())
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current local phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// HasTurn reports whether this peer currently holds turn ownership.
func (s *Session) HasTurn() bool {
	return s.transport.HasTurn()
}

// Err returns the terminal error, or nil while the session is live.
func (s *Session) Err() error {
	return s.err
}

// Reset reinitializes the phase after the board was reset, by the same rule
// as at session start applied to the current ownership. A peer that reset
// while the other one acts is back in PhaseWait, ready for its turn.
func (s *Session) Reset() {
	s.phase = initialPhase(s.transport.HasTurn())
	s.logger.Info("session reset", "phase", s.phase)
}

// Close ends the session. Later calls to Submit and Poll return ErrClosed.
func (s *Session) Close() {
	if s.err == nil {
		s.err = ErrClosed
	}
}

// fail makes err terminal and returns it.
func (s *Session) fail(err error) error {
	if s.err == nil {
		s.err = err
		s.logger.Error("session terminated", "error", err)
	}
	return s.err
}

func (s *Session) changed(c Change) {
	if s.notify != nil {
		s.notify(c)
	}
}

func (s *Session) record(ctx context.Context, dir Direction, b wire.Buffer) {
	seq := s.clock.Next()
	s.logger.Debug("turn exchanged", "seq", seq, "dir", dir, "tag", b.Tag(), "phase", s.phase)
	if s.recorder == nil {
		return
	}
	rec := TurnRecord{SessionID: s.id, Seq: seq, Direction: dir, Buffer: b, Phase: s.phase}
	if err := s.recorder.RecordTurn(ctx, rec); err != nil {
		s.logger.Error("recording turn failed", "seq", seq, "error", err)
	}
}

// send encodes ev and hands it to the transport.
func (s *Session) send(ctx context.Context, ev game.Event) error {
	b := wire.Encode(ev)
	if err := s.transport.Send(b); err != nil {
		return s.fail(fmtSendError(ev, err))
	}
	s.record(ctx, Sent, b)
	return nil
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/testutil"
	"github.com/roach88/rotnet/internal/transport"
	"github.com/roach88/rotnet/internal/wire"
)

// Fixed session IDs used unless WithIDs says otherwise, so traces and logs
// are reproducible.
const (
	HostSessionID = "00000000-0000-7000-8000-000000000001"
	JoinSessionID = "00000000-0000-7000-8000-000000000002"
)

// Option configures Run.
type Option func(*options)

type options struct {
	store  *store.Store
	ids    session.IDGenerator
	logger *slog.Logger
}

// WithStore records into st instead of a fresh in-memory log.
func WithStore(st *store.Store) Option {
	return func(o *options) { o.store = st }
}

// WithIDs draws the host's then the joiner's session ID from gen.
func WithIDs(gen session.IDGenerator) Option {
	return func(o *options) { o.ids = gen }
}

// WithLogger sets the sessions' logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Harness holds one scenario execution.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	peers  map[string]*peer
	result *Result
}

type peer struct {
	name     string
	board    *board.Board
	endpoint *transport.Endpoint
	session  *session.Session
	err      error
}

// Run executes a scenario and returns the result. The error is for setup
// failures only; a scenario that runs and fails returns Pass == false.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		ids:    session.NewFixedGenerator(HostSessionID, JoinSessionID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	st := o.store
	if st == nil {
		var err error
		st, err = store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
	}

	layout, err := board.ParseLayout(scenario.Layout)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		peers:  make(map[string]*peer),
		result: NewResult(),
	}

	hostEnd, joinEnd := transport.NewPipe()
	ends := map[string]*transport.Endpoint{PeerHost: hostEnd, PeerJoin: joinEnd}
	for _, name := range []string{PeerHost, PeerJoin} {
		id := o.ids.Generate()
		info := store.SessionInfo{
			ID:         id,
			Role:       store.RoleScenario,
			LocalName:  name,
			RemoteName: other(name),
			Layout:     string(layout),
			Seed:       scenario.Seed,
		}
		if err := st.WriteSession(ctx, info); err != nil {
			return nil, fmt.Errorf("failed to write session: %w", err)
		}

		p := &peer{name: name, board: board.New(layout, scenario.Seed), endpoint: ends[name]}
		p.session = session.New(p.board, p.endpoint,
			session.WithID(id),
			session.WithClock(h.clock),
			session.WithRecorder(&traceRecorder{h: h, peer: name}),
			session.WithLogger(o.logger.With("peer", name)),
		)
		h.peers[name] = p
	}

	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, step); err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			break
		}
	}

	for _, name := range []string{PeerHost, PeerJoin} {
		p := h.peers[name]
		state := PeerState{
			SessionID: p.session.ID(),
			Phase:     p.session.Phase().String(),
			HasTurn:   p.session.HasTurn(),
			Cursor:    p.board.Turn(),
		}
		if p.err != nil {
			state.Error = p.err.Error()
		}
		h.result.Peers[name] = state
	}

	for i, a := range scenario.Assertions {
		if err := h.check(a); err != nil {
			h.result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	h.verifyLogs(ctx)
	return h.result, nil
}

// runStep executes one step. Only a panic stops the scenario; session errors
// are terminal for that peer and left to the error assertion.
func (h *Harness) runStep(ctx context.Context, step Step) (err error) {
	p := h.peers[step.Peer]
	defer func() {
		if r := recover(); r != nil {
			var ierr *session.InvariantError
			if e, ok := r.(error); ok && errors.As(e, &ierr) {
				err = fmt.Errorf("%s: %w", p.name, ierr)
				return
			}
			panic(r)
		}
	}()

	switch {
	case step.Input != nil:
		var in game.Input
		in, err = step.Input.Input()
		if err != nil {
			return err
		}
		p.note(p.session.Submit(ctx, in))
	case step.Poll:
		p.note(p.session.Poll(ctx))
	case step.Inject != "":
		var b wire.Buffer
		b, err = wire.ParseHex(step.Inject)
		if err != nil {
			return err
		}
		p.endpoint.Inject(b)
	}
	return nil
}

func (p *peer) note(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

// verifyLogs replays both recorded sessions when neither failed.
func (h *Harness) verifyLogs(ctx context.Context) {
	for _, name := range []string{PeerHost, PeerJoin} {
		if h.peers[name].err != nil {
			return
		}
	}
	for _, name := range []string{PeerHost, PeerJoin} {
		replay, err := h.store.Replay(ctx, h.peers[name].session.ID())
		if err != nil {
			h.result.AddError(fmt.Sprintf("%s: replay: %v", name, err))
			continue
		}
		for _, m := range replay.Mismatches {
			h.result.AddError(fmt.Sprintf("%s: replay seq %d: %s", name, m.Seq, m.Reason))
		}
	}
}

func boardsEqual(a, b *board.Board) bool {
	return a.Turn() == b.Turn() && slices.Equal(a.Pieces(), b.Pieces())
}

func other(name string) string {
	if name == PeerHost {
		return PeerJoin
	}
	return PeerHost
}

// traceRecorder appends to the trace and writes through to the turn log.
type traceRecorder struct {
	h    *Harness
	peer string
}

func (r *traceRecorder) RecordTurn(ctx context.Context, rec session.TurnRecord) error {
	r.h.result.Trace = append(r.h.result.Trace, TraceEvent{
		Seq:  rec.Seq,
		Peer: r.peer,
		Dir:  string(rec.Direction),
		Kind: kindName(rec.Buffer),
		Hex:  rec.Buffer.String(),
	})
	return r.h.store.RecordTurn(ctx, rec)
}

func kindName(b wire.Buffer) string {
	if k := game.Kind(b.Tag()); k.Valid() {
		return k.String()
	}
	return fmt.Sprintf("tag(%d)", b.Tag())
}

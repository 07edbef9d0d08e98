package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/config"
	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/transport"
)

// PeerOptions holds the flags shared by host and join.
type PeerOptions struct {
	*RootOptions
	Listen   string
	Name     string
	Layout   string
	Database string
	Tick     time.Duration
	Seed     uint64
	Ticket   string
}

// MatchSummary is printed when a match ends.
type MatchSummary struct {
	SessionID string     `json:"session_id"`
	Role      store.Role `json:"role"`
	Local     string     `json:"local"`
	Remote    string     `json:"remote"`
	Phase     string     `json:"phase"`
	Cursor    int        `json:"cursor"`
	Outcome   string     `json:"outcome"`
}

func (m MatchSummary) String() string {
	return fmt.Sprintf("session %s ended (%s): %s vs %s, phase %s, turn %d",
		m.SessionID, m.Outcome, m.Local, m.Remote, m.Phase, m.Cursor)
}

// addPeerFlags registers the flags host and join share. Defaults come from
// the embedded config schema so --help shows the effective values.
func addPeerFlags(cmd *cobra.Command, opts *PeerOptions) {
	d := config.Default()
	cmd.Flags().StringVar(&opts.Name, "name", d.Name, "player name shown to the peer")
	cmd.Flags().StringVar(&opts.Database, "db", d.DB, "record turns to this SQLite database")
	cmd.Flags().DurationVar(&opts.Tick, "tick", d.Tick, "how often to poll for the peer's turn")
}

// resolveConfig loads --config and lets explicitly set flags override it.
func resolveConfig(opts *PeerOptions, cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = opts.Listen
	}
	if flags.Changed("name") {
		cfg.Name = opts.Name
	}
	if flags.Changed("layout") {
		layout, err := board.ParseLayout(opts.Layout)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid --layout", err)
		}
		cfg.Layout = layout
	}
	if flags.Changed("db") {
		cfg.DB = opts.Database
	}
	if flags.Changed("tick") {
		if opts.Tick <= 0 {
			return config.Config{}, NewExitError(ExitCommandError, "--tick must be positive")
		}
		cfg.Tick = opts.Tick
	}
	if flags.Changed("seed") {
		seed := opts.Seed
		cfg.Seed = &seed
	}

	if transport.NormalizeName(cfg.Name) == "" {
		return config.Config{}, NewExitError(ExitCommandError, "player name must not be empty")
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM, or when the command's own
// context is.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// match is a connected game about to start.
type match struct {
	id     string
	role   store.Role
	cfg    config.Config
	layout board.Layout
	seed   uint64
	peer   *transport.Peer
}

// playMatch runs an interactive game over an established connection: stdin
// commands are local input, the peer's turns are polled every tick.
func playMatch(ctx context.Context, opts *PeerOptions, cmd *cobra.Command, logger *slog.Logger, m match) error {
	out := &syncWriter{w: cmd.OutOrStdout()}
	remote := m.peer.Remote()
	defer m.peer.Close()

	shared := &sharedBoard{b: board.New(m.layout, m.seed)}
	sessOpts := []session.Option{
		session.WithID(m.id),
		session.WithLogger(logger),
		session.WithNotify(announce(out)),
	}

	if m.cfg.DB != "" {
		st, err := store.Open(m.cfg.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		info := store.SessionInfo{
			ID:         m.id,
			Role:       m.role,
			LocalName:  transport.NormalizeName(m.cfg.Name),
			RemoteName: remote.Name,
			Layout:     string(m.layout),
			Seed:       m.seed,
		}
		if err := st.WriteSession(ctx, info); err != nil {
			return WrapExitError(ExitCommandError, "failed to record session", err)
		}
		sessOpts = append(sessOpts, session.WithRecorder(st))
	}

	s := session.New(shared, m.peer, sessOpts...)
	defer s.Close()

	if s.HasTurn() {
		fmt.Fprintf(out, "%s joined. You move first (phase %s).\n", remote.Name, s.Phase())
	} else {
		fmt.Fprintf(out, "Joined %s. %s moves first.\n", m.layout, remote.Name)
	}

	inputs := make(chan game.Input)
	go readCommands(ctx, cmd.InOrStdin(), out, shared, inputs)

	runErr := s.Run(ctx, m.cfg.Tick, inputs)

	summary := MatchSummary{
		SessionID: m.id,
		Role:      m.role,
		Local:     transport.NormalizeName(m.cfg.Name),
		Remote:    remote.Name,
		Phase:     s.Phase().String(),
		Cursor:    shared.cursor(),
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.Writer = out

	switch {
	case runErr == nil:
		summary.Outcome = "quit"
	case errors.Is(runErr, context.Canceled):
		summary.Outcome = "interrupted"
	case errors.Is(runErr, transport.ErrClosed):
		summary.Outcome = "peer left"
	case session.IsProtocolViolation(runErr):
		_ = formatter.Error(ErrCodeProtocol, runErr.Error(), summary)
		return WrapExitError(ExitFailure, "session terminated", runErr)
	default:
		_ = formatter.Error(ErrCodeTransport, runErr.Error(), summary)
		return WrapExitError(ExitFailure, "session terminated", runErr)
	}
	return formatter.Success(summary)
}

// chooseSeed returns the configured chess960 seed, or a random one.
func chooseSeed(cfg config.Config) uint64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return rand.Uint64()
}

const commandHelp = `commands:
  select X Y | move X Y     pick up and drop a piece
  rselect X Y | rotate X Y  grab a piece and turn it towards X Y
  first | prev | next | last
  reset                     back to the starting position (not sent)
  layout standard|chess960  switch layout and reset (not sent)
  board                     show the position
  quit`

// readCommands feeds stdin commands to inputs until quit, end of input or
// cancellation, then closes inputs.
func readCommands(ctx context.Context, r io.Reader, out io.Writer, shared *sharedBoard, inputs chan<- game.Input) {
	defer close(inputs)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return
		case "board":
			shared.print(out)
			continue
		case "help", "?":
			fmt.Fprintln(out, commandHelp)
			continue
		}

		if fields := strings.Fields(line); strings.EqualFold(fields[0], "layout") {
			if len(fields) != 2 {
				fmt.Fprintln(out, "? layout: want layout standard|chess960")
				continue
			}
			layout, err := board.ParseLayout(strings.ToLower(fields[1]))
			if err != nil {
				fmt.Fprintf(out, "? %v\n", err)
				continue
			}
			// The switch happens when the session loop handles the reset.
			shared.switchLayout(layout)
			line = "reset"
		}

		c, err := game.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(out, "? %v\n", err)
			continue
		}
		in, err := c.Input()
		if err != nil {
			fmt.Fprintf(out, "? %v\n", err)
			continue
		}

		select {
		case inputs <- in:
		case <-ctx.Done():
			return
		}
	}
}

// announce prints every change the session reports.
func announce(w io.Writer) func(session.Change) {
	return func(c session.Change) {
		switch {
		case c.Reset:
			fmt.Fprintf(w, "board reset (phase %s); the peer keeps its position\n", c.Phase)
		case c.Rejected:
			fmt.Fprintf(w, "%s is out of order and was taken back (phase %s)\n", c.Event, c.Phase)
		case c.Origin == session.Remote:
			fmt.Fprintf(w, "peer: %s (phase %s)\n", c.Event, c.Phase)
		default:
			fmt.Fprintf(w, "you: %s (phase %s)\n", c.Event, c.Phase)
		}
	}
}

// sharedBoard lets the command reader print the position while the session
// loop owns the board. A layout switch asked for by the reader is held in
// next until the session loop resets the board.
type sharedBoard struct {
	mu   sync.Mutex
	b    *board.Board
	next board.Layout
}

var (
	_ session.Engine     = (*sharedBoard)(nil)
	_ session.Deselecter = (*sharedBoard)(nil)
	_ session.Reverter   = (*sharedBoard)(nil)
	_ session.Resetter   = (*sharedBoard)(nil)
)

func (s *sharedBoard) Handle(in game.Input) game.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Handle(in)
}

func (s *sharedBoard) ApplyMove(piece uint8, x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.ApplyMove(piece, x, y)
}

func (s *sharedBoard) ApplyRotate(piece uint8, angle float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.ApplyRotate(piece, angle)
}

func (s *sharedBoard) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.Deselect()
}

func (s *sharedBoard) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.Revert()
}

func (s *sharedBoard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next != "" {
		s.b.SetLayout(s.next)
		s.next = ""
		return
	}
	s.b.Reset()
}

func (s *sharedBoard) switchLayout(l board.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = l
}

func (s *sharedBoard) cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Turn()
}

func (s *sharedBoard) print(w io.Writer) {
	s.mu.Lock()
	layout, pieces, turn, last := s.b.Layout(), s.b.Pieces(), s.b.Turn(), s.b.Len()-1
	s.mu.Unlock()

	fmt.Fprintf(w, "%s, turn %d of %d\n", layout, turn, last)
	for i, p := range pieces {
		if p.Captured {
			continue
		}
		fmt.Fprintf(w, "  %2d %s\n", i, p)
	}
}

// syncWriter serializes writes from the session loop and the command reader.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/config"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/transport"
)

// NewHostCommand creates the host command.
func NewHostCommand(rootOpts *RootOptions) *cobra.Command {
	return newHostCommand(&PeerOptions{RootOptions: rootOpts})
}

func newHostCommand(opts *PeerOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a game and wait for a peer",
		Long: `Host a game. A ticket is printed; the other player joins with it.

The host moves first. Commands are read from stdin, one per line:
  select X Y, move X Y, rselect X Y, rotate X Y,
  first, prev, next, last, board, help, quit
reset and layout standard|chess960 only touch the local board; the peer is
not told.

Flags override the config file, which overrides the built-in defaults.

Exit codes:
  0 - Game ended (quit, interrupted or peer left)
  1 - Peer broke the protocol or the connection failed
  2 - Command error (bad flags or config, address in use, etc.)

Examples:
  rotnet host
  rotnet host --listen 192.168.1.10:7878 --name alice --db ./turns.db
  rotnet host --layout chess960 --seed 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(opts, cmd)
		},
	}

	d := config.Default()
	cmd.Flags().StringVar(&opts.Listen, "listen", d.Listen, "address to accept the peer on")
	cmd.Flags().StringVar(&opts.Layout, "layout", string(d.Layout), "starting position (standard|chess960)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "chess960 shuffle seed (random when unset)")
	addPeerFlags(cmd, opts)

	return cmd
}

func runHost(opts *PeerOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr()).With("role", store.RoleHost)

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}
	seed := chooseSeed(cfg)
	id := session.UUIDv7Generator{}.Generate()

	local := transport.Hello{SessionID: id, Name: cfg.Name, Layout: string(cfg.Layout), Seed: seed}
	ln, err := transport.Listen(cfg.Listen, local, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	defer ln.Close()

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Ticket: %s\n", ln.Ticket())
	fmt.Fprintln(cmd.OutOrStdout(), "Waiting for a peer...")
	logger.Info("hosting", "ticket", ln.Ticket().String(), "layout", cfg.Layout, "seed", seed)

	peer, err := ln.Accept(ctx)
	if err != nil {
		// Only cancellation ends the wait.
		fmt.Fprintln(cmd.OutOrStdout(), "Stopped before a peer joined.")
		return nil
	}

	return playMatch(ctx, opts, cmd, logger, match{
		id:     id,
		role:   store.RoleHost,
		cfg:    cfg,
		layout: cfg.Layout,
		seed:   seed,
		peer:   peer,
	})
}

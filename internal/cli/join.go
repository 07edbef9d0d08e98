package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/transport"
)

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PeerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a hosted game",
		Long: `Join the game behind a ticket printed by "rotnet host".

The layout and chess960 seed are the host's. The host moves first; until
then input other than reset is ignored. Commands are the same as for host.

The turns are recorded under a session ID of the joiner's own, so both
players may share one --db file.

Exit codes:
  0 - Game ended (quit, interrupted or peer left)
  1 - Peer broke the protocol or the connection failed
  2 - Command error (bad ticket, host unreachable, etc.)

Examples:
  rotnet join --ticket 192.168.1.10:7878/0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01
  rotnet join --ticket localhost:7878/0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01 --name bob`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ticket, "ticket", "", "ticket printed by the host (required)")
	_ = cmd.MarkFlagRequired("ticket")
	addPeerFlags(cmd, opts)

	return cmd
}

func runJoin(opts *PeerOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr()).With("role", store.RoleJoin)

	ticket, err := transport.ParseTicket(opts.Ticket)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ticket", err)
	}
	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Joining %s...\n", ticket.Addr)
	peer, err := transport.Join(ctx, ticket, transport.Hello{Name: cfg.Name}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to join", err)
	}

	remote := peer.Remote()
	layout, err := board.ParseLayout(remote.Layout)
	if err != nil {
		_ = peer.Close()
		return WrapExitError(ExitFailure, "host sent an unknown layout", err)
	}

	return playMatch(ctx, opts, cmd, logger, match{
		id:     session.UUIDv7Generator{}.Generate(),
		role:   store.RoleJoin,
		cfg:    cfg,
		layout: layout,
		seed:   remote.Seed,
		peer:   peer,
	})
}

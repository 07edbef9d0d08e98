package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplaySessionResult is the replay outcome for one session.
type ReplaySessionResult struct {
	SessionID  string           `json:"session_id"`
	Role       store.Role       `json:"role"`
	Turns      int              `json:"turns"`
	Effects    int              `json:"effects"`
	Cursor     int              `json:"cursor"`
	OK         bool             `json:"ok"`
	Mismatches []store.Mismatch `json:"mismatches"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllOK         bool                  `json:"all_ok"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-verify the recorded turn log",
		Long: `Re-verify recorded sessions.

Every recorded buffer is decoded and re-encoded, and must come back byte
for byte. Each Move or Rotate row must carry the phase that direction leaves
the peer in: rotate after a sent move, wait after a sent rotation or a
received move, move after a received rotation. The effects are then applied
to a fresh board to report the final position.

Exit codes:
  0 - Every session verified
  1 - At least one session has mismatches
  2 - Command error (database not found, unknown session, etc.)

Examples:
  rotnet replay --db ./turns.db
  rotnet replay --db ./turns.db --session 0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01
  rotnet replay --db ./turns.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay one session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []string
	if opts.SessionID != "" {
		ids = []string{opts.SessionID}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{Sessions: make([]ReplaySessionResult, 0, len(ids)), AllOK: true}
	for _, id := range ids {
		out.VerboseLog("replaying %s", id)
		r, err := st.Replay(ctx, id)
		if err != nil {
			return notFoundOr(opts.RootOptions, cmd, "failed to replay session", err)
		}
		result.Sessions = append(result.Sessions, ReplaySessionResult{
			SessionID:  id,
			Role:       r.Session.Role,
			Turns:      r.Turns,
			Effects:    r.Effects,
			Cursor:     r.Cursor,
			OK:         r.OK(),
			Mismatches: r.Mismatches,
		})
		if !r.OK() {
			result.AllOK = false
		}
	}
	result.TotalSessions = len(result.Sessions)

	if opts.Format == "json" {
		if err := outputJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllOK {
		return NewExitError(ExitFailure, "replay found mismatches")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	for _, s := range result.Sessions {
		mark := "✓"
		if !s.OK {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s): %d turns, %d effects, cursor %d\n",
			mark, s.SessionID, s.Role, s.Turns, s.Effects, s.Cursor)
		for _, m := range s.Mismatches {
			if m.Seq != 0 {
				fmt.Fprintf(w, "    seq %d: %s\n", m.Seq, m.Reason)
			} else {
				fmt.Fprintf(w, "    %s\n", m.Reason)
			}
		}
	}

	failed := 0
	for _, s := range result.Sessions {
		if !s.OK {
			failed++
		}
	}
	fmt.Fprintf(w, "\n%d sessions, %d verified, %d with mismatches\n",
		result.TotalSessions, result.TotalSessions-failed, failed)
}

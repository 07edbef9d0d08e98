package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/wire"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - list one session's turns
}

// LogTurn is one recorded turn as printed by the log command.
type LogTurn struct {
	store.Turn
	Hex   string `json:"hex"`
	Event string `json:"event"`
}

// SessionLog is one session with its turns.
type SessionLog struct {
	Session store.SessionInfo `json:"session"`
	Turns   []LogTurn         `json:"turns"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the recorded turn log",
		Long: `Show the turns recorded by host, join and play.

Without --session every recorded session is listed with its turn counts.
With --session that session's turns are printed in sequence order, each
decoded back into the event it carried.

Examples:
  rotnet log --db ./turns.db
  rotnet log --db ./turns.db --session 0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01
  rotnet log --db ./turns.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "show one session's turns")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.SessionID == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if opts.Format == "json" {
			return outputJSON(cmd, sessions)
		}
		return outputSessionsText(cmd, sessions)
	}

	info, err := st.ReadSession(ctx, opts.SessionID)
	if err != nil {
		return notFoundOr(opts.RootOptions, cmd, "failed to read session", err)
	}
	turns, err := st.ReadTurns(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read turns", err)
	}

	result := SessionLog{Session: info, Turns: make([]LogTurn, 0, len(turns))}
	for _, t := range turns {
		result.Turns = append(result.Turns, LogTurn{Turn: t, Hex: t.Raw.String(), Event: describe(t.Raw)})
	}

	if opts.Format == "json" {
		return outputJSON(cmd, result)
	}
	return outputTurnsText(cmd, result)
}

// openExisting opens a turn log that must already exist; store.Open would
// otherwise create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// notFoundOr reports a missing session in the configured format; any other
// error is a plain command error.
func notFoundOr(opts *RootOptions, cmd *cobra.Command, message string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		_ = newFormatter(opts, cmd).Error(ErrCodeNotFound, err.Error(), nil)
	}
	return WrapExitError(ExitCommandError, message, err)
}

// describe decodes a recorded buffer for display.
func describe(b wire.Buffer) string {
	ev, err := wire.Decode(b)
	if err != nil {
		return fmt.Sprintf("undecodable tag %d", b.Tag())
	}
	return ev.String()
}

func outputJSON(cmd *cobra.Command, data any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{Status: "ok", Data: data})
}

func outputSessionsText(cmd *cobra.Command, sessions []store.SessionSummary) error {
	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tROLE\tLOCAL\tREMOTE\tLAYOUT\tSENT\tRECEIVED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.ID, s.Role, s.LocalName, s.RemoteName, s.Layout, s.Sent, s.Received)
	}
	return tw.Flush()
}

func outputTurnsText(cmd *cobra.Command, result SessionLog) error {
	w := cmd.OutOrStdout()
	s := result.Session
	fmt.Fprintf(w, "Session %s (%s, %s vs %s, %s)\n", s.ID, s.Role, s.LocalName, s.RemoteName, s.Layout)
	if len(result.Turns) == 0 {
		fmt.Fprintln(w, "No turns recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tDIR\tPHASE\tHEX\tEVENT")
	for _, t := range result.Turns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.Seq, t.Direction, t.Phase, t.Hex, t.Event)
	}
	return tw.Flush()
}

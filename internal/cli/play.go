package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rotnet/internal/harness"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database string // optional - keep the scenario's turn log
	Trace    bool   // print each scenario's trace
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	File   string                       `json:"file"`
	Name   string                       `json:"name"`
	Pass   bool                         `json:"pass"`
	Errors []string                     `json:"errors,omitempty"`
	Peers  map[string]harness.PeerState `json:"peers,omitempty"`
	Trace  []harness.TraceEvent         `json:"trace,omitempty"`
}

// PlayResult holds the overall result.
type PlayResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <scenario.yaml>...",
		Short: "Run scripted two-peer scenarios",
		Long: `Run scripted scenarios with both peers in this process.

Each scenario drives a host and a joiner over an in-memory connection,
then checks its assertions. With --db the scenario's turns are kept in
the log under fresh session IDs, ready for log and replay.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable scenario, database error, etc.)

Examples:
  rotnet play testdata/scenarios/full_turn.yaml
  rotnet play --trace testdata/scenarios/*.yaml
  rotnet play --db ./turns.db testdata/scenarios/navigation.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the scenarios' turns to this SQLite database")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print each scenario's trace")

	return cmd
}

func runPlay(opts *PlayOptions, files []string, cmd *cobra.Command) error {
	scenarios := make([]*harness.Scenario, 0, len(files))
	for _, f := range files {
		s, err := harness.LoadScenario(f)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", f), err)
		}
		scenarios = append(scenarios, s)
	}

	runOpts := []harness.Option{harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr()))}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st), harness.WithIDs(session.UUIDv7Generator{}))
	}

	result := PlayResult{Scenarios: make([]ScenarioResult, 0, len(scenarios)), Total: len(scenarios)}
	for i, s := range scenarios {
		r, err := harness.Run(s, runOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run %s", s.Name), err)
		}

		sr := ScenarioResult{
			File:   filepath.Base(files[i]),
			Name:   s.Name,
			Pass:   r.Pass,
			Errors: r.Errors,
			Peers:  r.Peers,
		}
		if opts.Trace {
			sr.Trace = r.Trace
		}
		result.Scenarios = append(result.Scenarios, sr)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := outputJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputPlayText(cmd, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func outputPlayText(cmd *cobra.Command, result PlayResult) {
	w := cmd.OutOrStdout()
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range s.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		if len(s.Trace) > 0 {
			fmt.Fprint(w, indent(harness.FormatTrace(s.Trace), "    "))
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}

// indent prefixes every line of text.
func indent(text []byte, prefix string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(string(text), "\n") {
		if line != "" {
			b.WriteString(prefix + line)
		}
	}
	return b.String()
}

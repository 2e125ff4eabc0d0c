package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/communityvoice/internal/harness"
	"github.com/roach88/communityvoice/internal/seed"
	"github.com/roach88/communityvoice/internal/storage"
)

// SessionOptions holds flags for the session command.
type SessionOptions struct {
	*RootOptions
	DB   string // SQLite file, overrides the configured db_path
	Seed string // seed document, overrides the configured seed_path
}

// SessionResult is the JSON payload of a session.
type SessionResult struct {
	Name string `json:"name"`
	*harness.Result
}

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "session <scenario.yaml>",
		Short: "Replay a scripted user session",
		Long: `Replay a scenario file against the engine on a console host.

The console prints every rendered page, header, button and alert as
the steps run. With --db the state is kept in a SQLite database, so a
second session continues where the first left off.

Exit codes:
  0 - Every step and expectation passed
  1 - A step or expectation failed
  2 - Command error (unreadable scenario, database errors, etc.)

Examples:
  cvoice session scenarios/upvote_flow.yaml
  cvoice session scenarios/submit_flow.yaml --db state.db
  cvoice session scenarios/submit_flow.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database holding the state (default: in memory)")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "seed document used when the database is empty")

	return cmd
}

func runSession(opts *SessionOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		code := ErrCodeScenario
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return formatter.Fail(ExitCommandError, code, err.Error(), nil)
	}

	cfg := opts.Config
	if opts.DB != "" {
		cfg.DBPath = opts.DB
	}
	if opts.Seed != "" {
		cfg.SeedPath = opts.Seed
	}

	hopts := []harness.Option{harness.WithConfig(cfg)}
	if cfg.DBPath != "" {
		db, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
		}
		defer db.Close()
		formatter.VerboseLog("Using database %s", cfg.DBPath)
		hopts = append(hopts, harness.WithBackend(db))
	}
	if cfg.SeedPath != "" {
		formatter.VerboseLog("Using seed %s", cfg.SeedPath)
		hopts = append(hopts, harness.WithSeed(seed.File(cfg.SeedPath)))
	}
	if !formatter.IsJSON() {
		hopts = append(hopts, harness.WithOutput(cmd.OutOrStdout()))
	}

	result, err := harness.Run(cmd.Context(), scenario, hopts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSessionSetup, err.Error(), nil)
	}
	formatter.VerboseLog("State origin: %s", result.Origin)

	if formatter.IsJSON() {
		if err := formatter.Success(SessionResult{Name: scenario.Name, Result: result}); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), summary(scenario.Name, result))
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("session %q failed", scenario.Name))
	}
	return nil
}

// summary is the closing line of a text session.
func summary(name string, r *harness.Result) string {
	if r.Pass {
		return "PASS " + name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "FAIL %s", name)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  %s", e)
	}
	return b.String()
}

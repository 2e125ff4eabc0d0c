package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/communityvoice/internal/seed"
	"github.com/roach88/communityvoice/internal/storage"
	"github.com/roach88/communityvoice/internal/store"
)

// StateOptions holds flags shared by dump and reset.
type StateOptions struct {
	*RootOptions
	DB string
}

// DumpResult is the saved state of one key.
type DumpResult struct {
	Key      string          `json:"key"`
	Revision int64           `json:"revision"`
	State    json.RawMessage `json:"state"`
}

// ResetResult describes what reset did.
type ResetResult struct {
	Key      string `json:"key"`
	Reseeded bool   `json:"reseeded"`
}

func (r ResetResult) String() string {
	if r.Reseeded {
		return fmt.Sprintf("%s: deleted, the next session loads the seed", r.Key)
	}
	return fmt.Sprintf("%s: reset to the empty state", r.Key)
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the saved state",
		Long: `Print the state document saved in a SQLite database, with the
number of times it has been saved.

Examples:
  cvoice dump --db state.db
  cvoice dump --db state.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database holding the state (default: db_path setting)")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}
	var reseed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved state",
		Long: `Replace the saved state with the empty default state.

With --reseed the saved state is deleted instead, so the next session
starts from the seed document again.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, reseed, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database holding the state (default: db_path setting)")
	cmd.Flags().BoolVar(&reseed, "reseed", false, "delete the state so the seed is loaded again")
	return cmd
}

// openDB opens the database named by --db or the db_path setting. The
// file must already exist.
func openDB(opts *StateOptions, formatter *OutputFormatter) (*storage.SQLite, error) {
	path := opts.DB
	if path == "" {
		path = opts.Config.DBPath
	}
	if path == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, "no database: pass --db or set db_path", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
	}
	formatter.VerboseLog("Opened %s", path)
	return db, nil
}

func runDump(opts *StateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	db, err := openDB(opts, formatter)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	key := opts.Config.StorageKey
	blob, ok, err := db.Load(ctx, key)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
	}
	if !ok {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no state saved under %q", key), nil)
	}
	rev, err := db.Revision(ctx, key)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(DumpResult{Key: key, Revision: rev, State: blob})
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, blob, "", "  "); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStorage, fmt.Sprintf("state under %q is not JSON: %v", key, err), nil)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "key: %s (revision %d)\n", key, rev)
	return formatter.Success(pretty.String())
}

func runReset(opts *StateOptions, reseed bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	db, err := openDB(opts, formatter)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	key := opts.Config.StorageKey
	if reseed {
		if err := db.Delete(ctx, key); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
		}
	} else {
		store.New(db, seed.None, store.WithKey(key)).Reset(ctx)
		_, ok, err := db.Load(ctx, key)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStorage, err.Error(), nil)
		}
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeStorage, fmt.Sprintf("state under %q was not saved", key), nil)
		}
	}
	return formatter.Success(ResetResult{Key: key, Reseeded: reseed})
}

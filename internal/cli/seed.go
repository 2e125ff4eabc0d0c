package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/communityvoice/internal/content"
	"github.com/roach88/communityvoice/internal/seed"
)

// SeedReport summarizes a valid seed document.
type SeedReport struct {
	Source    string `json:"source"`
	Ideas     int    `json:"ideas"`
	Petitions int    `json:"petitions"`
	Polls     int    `json:"polls"`
	Projects  int    `json:"projects"`
	Comments  int    `json:"comments"`
}

func (r SeedReport) String() string {
	return fmt.Sprintf("%s: valid (%d ideas, %d petitions, %d polls, %d projects, %d comments)",
		r.Source, r.Ideas, r.Petitions, r.Polls, r.Projects, r.Comments)
}

// SchemaDetails locates a schema violation.
type SchemaDetails struct {
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewSeedCommand creates the seed command group.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Inspect seed documents",
	}
	cmd.AddCommand(newSeedValidateCommand(rootOpts))
	return cmd
}

func newSeedValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [seed.yaml]",
		Short: "Check a seed document against the schema",
		Long: `Check a seed document against the schema and the id and vote rules.

Without an argument the seed_path setting is checked, and without that
the document built into the binary.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.SeedPath
			if len(args) == 1 {
				path = args[0]
			}
			return runSeedValidate(rootOpts, path, cmd)
		},
	}
}

func runSeedValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	source := path
	data := seed.Bundled()
	if path == "" {
		source = "embedded"
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			code := ErrCodeGeneric
			if errors.Is(err, fs.ErrNotExist) {
				code = ErrCodeNotFound
			}
			return formatter.Fail(ExitCommandError, code, err.Error(), nil)
		}
	}
	formatter.VerboseLog("Validating %s (%d bytes)", source, len(data))

	if _, err := seed.ToJSON(data); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSeedSyntax, err.Error(), nil)
	}
	c, err := seed.Parse(data)
	if err != nil {
		var schemaErr *seed.SchemaError
		if errors.As(err, &schemaErr) {
			details := SchemaDetails{Path: schemaErr.Path}
			if schemaErr.Pos.IsValid() {
				details.Line = schemaErr.Pos.Line()
				details.Column = schemaErr.Pos.Column()
			}
			return formatter.Fail(ExitFailure, ErrCodeSeedSchema, schemaErr.Error(), details)
		}
		return formatter.Fail(ExitFailure, ErrCodeSeedContent, err.Error(), nil)
	}

	return formatter.Success(report(source, c))
}

func report(source string, c content.Collections) SeedReport {
	r := SeedReport{
		Source:    source,
		Ideas:     len(c.Ideas),
		Petitions: len(c.Petitions),
		Polls:     len(c.Polls),
		Projects:  len(c.Projects),
	}
	for _, kind := range content.Kinds {
		for _, it := range c.Items(kind) {
			r.Comments += len(it.Base().Comments)
		}
	}
	return r
}

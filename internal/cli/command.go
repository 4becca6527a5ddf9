package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/crlfstat/internal/config"
	"github.com/idelchi/crlfstat/internal/integration"
)

var (
	// ErrUsage marks invalid arguments, flags or configuration.
	ErrUsage = errors.New("usage error")
	// ErrMixedFound is returned in strict mode when any file mixes line endings or indentation.
	ErrMixedFound = errors.New("mixed line endings or indentation found")
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

func flags(fs *pflag.FlagSet) {
	fs.StringSliceP(
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	fs.StringSliceP("exclude", "e", config.DefaultExcludes, "Regex patterns to exclude")
	fs.IntP("depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	fs.IntP("jobs", "j", 0, "Number of walker goroutines (0=automatic)")
	fs.String("buffer-size", "32KiB", "Read buffer size per file (e.g., 4KiB)")
	fs.BoolP("follow", "L", false, "Follow symbolic links")
	fs.Bool("no-ignore", false, "Don't respect the root .gitignore")
	fs.Bool("skip-vendor", false, "Skip vendored paths (vendor/, node_modules/, third_party/, ...)")
	fs.StringP("output", "o", "text", "Output format: text, table or json")
	fs.Bool("verbose", false, "Print each file with mixed line endings as it is found")
	fs.Bool("debug", false, "Enable debug output")
	fs.Bool("strict", false, "Exit with a failure code when mixed files are found")
	fs.StringP("config", "c", "", "Config file (default .crlfstat.yaml in . or $HOME)")
	fs.BoolP("init", "i", false, "Output a git pre-commit hook and exit")
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crlfstat [flags] [path]",
		Short: "Report line-ending and indentation consistency of a directory tree",
		Long: heredoc.Doc(`
			crlfstat scans a directory tree and reports how consistently text files
			use line endings (LF vs CRLF) and leading indentation (space vs tab).
			Binary files are detected and counted separately.

			Positional Arguments:
			  path                   Directory to analyze. Defaults to current directory if not specified.

			Configuration is read from .crlfstat.yaml (current directory or $HOME)
			and CRLFSTAT_* environment variables; flags take precedence.

			Use --init to print a git pre-commit hook that runs crlfstat --strict.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: accepts at most one path, received %d", ErrUsage, len(args))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printHook, _ := cmd.Flags().GetBool("init"); printHook {
				rendered, err := integration.Render(filepath.Base(os.Args[0]))
				if err != nil {
					return fmt.Errorf("rendering pre-commit hook: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return err
			}

			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUsage, err)
			}

			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			return logic(cmd.Context(), cfg, path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags(cmd.Flags())
	cmd.Flags().SortFlags = false
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

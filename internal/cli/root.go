package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/config"
)

// LevelTrace is below slog.LevelDebug; it reports every rejected log line.
const LevelTrace = slog.LevelDebug - 4

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Trace      bool   // implies Verbose
	Format     string // "json" | "text"
	ConfigPath string

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ctlog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ctlog",
		Short: "ctlog - compilation log analyzer",
		Long: `Analyze the compilation log of a JIT runtime.

ctlog parses engine optimization lines and code cache eviction lines,
correlates them into per-call-target timelines, and reports compilation
statistics, hotspots, compile rates and eviction behavior.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Trace {
				opts.Verbose = true
			}
			slog.SetDefault(newLogger(opts, cmd.ErrOrStderr()))

			if _, err := opts.config(); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeConfig+": failed to load config", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "log every rejected line (implies --verbose)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")

	// Add subcommands
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHistogramCommand(opts))
	cmd.AddCommand(NewHotspotsCommand(opts))
	cmd.AddCommand(NewTargetCommand(opts))
	cmd.AddCommand(NewCompRateCommand(opts))
	cmd.AddCommand(NewParetoCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// config returns the configuration named by --config, or the defaults.
// The result is loaded once.
func (o *RootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	if o.ConfigPath == "" {
		o.cfg = config.Default()
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// newLogger builds the diagnostic logger: Info by default, Debug under
// --verbose, LevelTrace under --trace.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Trace {
		level = LevelTrace
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

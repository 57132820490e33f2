package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/store"
)

// CompRateOptions holds flags for the comp-rate command.
type CompRateOptions struct {
	*RootOptions
	Granularity string
}

// NewCompRateCommand creates the comp-rate command.
func NewCompRateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompRateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "comp-rate <log>",
		Short: "Show compilations per hour or minute",
		Long: `Aggregate finished compilations into hour or minute buckets, from the
first to the last compilation. Each bucket reports compilations, produced
code, compile time, distinct call targets and sources, the running total
of distinct targets, the summed largest compilation per target, and the
evictions of code compiled in the bucket.

Examples:
  ctlog comp-rate ./compile.log
  ctlog comp-rate ./compile.log --granularity minute`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompRate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Granularity, "granularity", "g", "", "bucket size: hour or minute (default from config)")

	return cmd
}

func runCompRate(opts *CompRateOptions, logPath string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd)

	name := opts.Granularity
	if name == "" {
		cfg, err := opts.config()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
		}
		name = cfg.Granularity
	}
	g, err := store.ParseGranularity(name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, err.Error(), nil)
	}

	sess, err := loadSession(ctx, opts.RootOptions, formatter, logPath)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, formatter, sess)
	if err != nil {
		return err
	}
	defer st.Close()

	return renderCompRate(ctx, formatter, st, g)
}

func renderCompRate(ctx context.Context, formatter *OutputFormatter, st *store.Store, g store.Granularity) error {
	buckets, err := st.CompRate(ctx, g)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStoreFailed, "failed to aggregate compile rate", err)
	}
	return formatter.Render(buckets, func(w *report.Writer) {
		w.WriteCompRate(buckets)
	})
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/config"
	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/session"
)

// RankOptions holds flags for the histogram and hotspots commands.
type RankOptions struct {
	*RootOptions
	Top int
}

// rankFunc orders call targets into report rows, keeping at most n.
type rankFunc func(sess *session.Session, n int) []report.Row

func histogramRows(sess *session.Session, n int) []report.Row {
	return report.Histogram(sess.Targets(), n)
}

func hotspotRows(sess *session.Session, n int) []report.Row {
	return report.Hotspots(sess.Targets(), n)
}

// NewHistogramCommand creates the histogram command.
func NewHistogramCommand(rootOpts *RootOptions) *cobra.Command {
	return newRankCommand(rootOpts, histogramRows, &cobra.Command{
		Use:   "histogram <log>",
		Short: "List the most compiled call targets",
		Long: `List call targets ordered by number of compilations, then by total
compile time.

Examples:
  ctlog histogram ./compile.log
  ctlog histogram ./compile.log --top 25
  ctlog histogram ./compile.log --top 0 --format json`,
	})
}

// NewHotspotsCommand creates the hotspots command.
func NewHotspotsCommand(rootOpts *RootOptions) *cobra.Command {
	return newRankCommand(rootOpts, hotspotRows, &cobra.Command{
		Use:   "hotspots <log>",
		Short: "List the most executed call targets",
		Long: `List call targets ordered by their last reported execution count, then
by fewest compilations.

Examples:
  ctlog hotspots ./compile.log
  ctlog hotspots ./compile.log --top 5`,
	})
}

func newRankCommand(rootOpts *RootOptions, rank rankFunc, cmd *cobra.Command) *cobra.Command {
	opts := &RankOptions{RootOptions: rootOpts}

	cmd.Args = cobra.ExactArgs(1)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		formatter := newFormatter(opts.RootOptions, cmd)
		sess, err := loadSession(commandContext(cmd), opts.RootOptions, formatter, args[0])
		if err != nil {
			return err
		}
		top := opts.Top
		if !cmd.Flags().Changed("top") {
			cfg, _ := opts.config()
			top = cfg.DefaultTop
		}
		return renderRows(formatter, rank(sess, top))
	}

	cmd.Flags().IntVarP(&opts.Top, "top", "n", config.DefaultTop, "number of rows to list (0 lists all; default from config)")

	return cmd
}

func renderRows(formatter *OutputFormatter, rows []report.Row) error {
	return formatter.Render(rows, func(w *report.Writer) {
		w.WriteRows(rows)
	})
}

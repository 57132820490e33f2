package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/correlate"
	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/session"
)

// StatsResult is the JSON payload of the stats command.
type StatsResult struct {
	Path        string             `json:"path"`
	Parse       session.ParseStats `json:"parse"`
	Correlation correlate.Stats    `json:"correlation"`
	Summary     report.Summary     `json:"summary"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <log>",
		Short: "Print whole-log compilation statistics",
		Long: `Print totals over every call target of a compilation log: targets,
compilations, invalidations, deoptimizations, failures, evictions,
targets that reached the compilation limit, targets thrashing the code
cache, produced code and compile time.

Examples:
  ctlog stats ./compile.log
  ctlog stats ./compile.log --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := loadSession(commandContext(cmd), rootOpts, formatter, args[0])
			if err != nil {
				return err
			}
			return renderStats(formatter, sess)
		},
	}

	return cmd
}

func renderStats(formatter *OutputFormatter, sess *session.Session) error {
	summary := report.Stats(sess.Targets())
	result := StatsResult{
		Path:        sess.Path,
		Parse:       sess.ParseStats,
		Correlation: sess.CorrelationStats,
		Summary:     summary,
	}
	return formatter.Render(result, func(w *report.Writer) {
		w.WriteSummary(summary)
	})
}

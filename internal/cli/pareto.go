package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/session"
)

// NewParetoCommand creates the pareto command.
func NewParetoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pareto <log>",
		Short: "Show how compilations are distributed over call targets",
		Long: `Count call targets by how many times they were compiled, from 1 to 100
compilations, with the share of all targets per count and the
accumulated share. Targets compiled more than 100 times are counted in
the last row.

Examples:
  ctlog pareto ./compile.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			sess, err := loadSession(commandContext(cmd), rootOpts, formatter, args[0])
			if err != nil {
				return err
			}
			return renderPareto(formatter, sess)
		},
	}

	return cmd
}

func renderPareto(formatter *OutputFormatter, sess *session.Session) error {
	rows := report.Pareto(sess.Targets())
	return formatter.Render(rows, func(w *report.Writer) {
		w.WritePareto(rows)
	})
}

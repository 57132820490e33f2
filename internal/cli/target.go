package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/session"
)

// NewTargetCommand creates the target command.
func NewTargetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target <log> <id>",
		Aliases: []string{"call-id"},
		Short:   "Show one call target's timeline",
		Long: `Show the totals and the chronological timeline of one call target.

Done events whose compiled code was later evicted from the code cache
note the time until eviction. Enqueued events after the first note the
execution rate since the previous enqueue.

Examples:
  ctlog target ./compile.log 42
  ctlog target ./compile.log 42 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			id, err := parseTargetID(args[1])
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, err.Error(), nil)
			}
			sess, err := loadSession(commandContext(cmd), rootOpts, formatter, args[0])
			if err != nil {
				return err
			}
			return renderTarget(formatter, sess, id)
		},
	}

	return cmd
}

func renderTarget(formatter *OutputFormatter, sess *session.Session, id int64) error {
	ct, ok := sess.Target(id)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("call target with id %d not present", id), nil)
	}
	details := report.TargetDetails(ct)
	return formatter.Render(details, func(w *report.Writer) {
		w.WriteDetails(details)
	})
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/report"
	"github.com/roach88/ctlog/internal/store"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <log> <sql>",
		Short: "Run a read-only SQL query over the parsed log",
		Long: `Index the parsed log into an in-memory SQLite database and run one
read-only SQL statement against it.

Tables:
  targets(id, name, source, exec_count)
  events(seq, target_id, kind, at, at_ms, tier, comp_id, compile_time_ms,
         code_size, exec_count, reason, fields, raw)
Views:
  compilations  Done events
  evictions     CacheFlushing events

Examples:
  ctlog query ./compile.log "SELECT kind, COUNT(*) FROM events GROUP BY kind"
  ctlog query ./compile.log "SELECT * FROM compilations ORDER BY code_size DESC LIMIT 5"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			formatter := newFormatter(rootOpts, cmd)
			sess, err := loadSession(ctx, rootOpts, formatter, args[0])
			if err != nil {
				return err
			}
			st, err := openStore(ctx, formatter, sess)
			if err != nil {
				return err
			}
			defer st.Close()

			return renderQuery(ctx, formatter, st, args[1])
		},
	}

	return cmd
}

func renderQuery(ctx context.Context, formatter *OutputFormatter, st *store.Store, sql string) error {
	res, err := st.Query(ctx, sql)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQueryFailed, "query failed", err)
	}
	return formatter.Render(res, func(w *report.Writer) {
		w.WriteQuery(res)
	})
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/session"
	"github.com/roach88/ctlog/internal/store"
)

// ReplPrompt is printed before reading each command.
const ReplPrompt = "ctlog ::> "

const replHelp = `Commands:
  stats                 whole-log statistics
  histogram <n>         the n most compiled call targets
  hotspots <n>          the n most executed call targets
  target <id>           timeline of one call target (alias: call_id)
  comp_rate <g>         compilations per hour or minute
  pareto                compilation count distribution (alias: comp_pareto)
  filename              path of the loaded log
  help                  this text
  quit                  leave (alias: exit)`

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl <log>",
		Short: "Explore a log interactively",
		Long: `Load a compilation log once and run report commands against it from an
interactive prompt. Type "help" at the prompt for the command list.

Examples:
  ctlog repl ./compile.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			formatter := newFormatter(rootOpts, cmd)
			sess, err := loadSession(ctx, rootOpts, formatter, args[0])
			if err != nil {
				return err
			}

			r := &repl{ctx: ctx, formatter: formatter, sess: sess}
			defer r.close()
			return r.run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	return cmd
}

// repl serves report commands over one loaded session. The store is
// built on first use.
type repl struct {
	ctx       context.Context
	formatter *OutputFormatter
	sess      *session.Session
	st        *store.Store
}

func (r *repl) run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ReplPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if quit := r.execute(out, scanner.Text()); quit {
			return nil
		}
	}
}

// execute runs one command line. Command failures are reported on out
// and never end the session.
func (r *repl) execute(out io.Writer, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(out, replHelp)
	case "stats":
		_ = renderStats(r.formatter, r.sess)
	case "histogram":
		if n, ok := intArg(out, args, "Missing histogram size argument."); ok {
			_ = renderRows(r.formatter, histogramRows(r.sess, n))
		}
	case "hotspots":
		if n, ok := intArg(out, args, "Missing number of call targets to list."); ok {
			_ = renderRows(r.formatter, hotspotRows(r.sess, n))
		}
	case "target", "call_id":
		if len(args) == 0 {
			fmt.Fprintln(out, "Missing call target id argument.")
			return false
		}
		id, err := parseTargetID(args[0])
		if err != nil {
			fmt.Fprintf(out, "%v.\n", err)
			return false
		}
		_ = renderTarget(r.formatter, r.sess, id)
	case "comp_rate":
		if len(args) == 0 {
			fmt.Fprintln(out, "Missing granularity argument (hour or minute).")
			return false
		}
		g, err := store.ParseGranularity(args[0])
		if err != nil {
			fmt.Fprintf(out, "%v.\n", err)
			return false
		}
		if err := r.openStore(); err != nil {
			return false
		}
		_ = renderCompRate(r.ctx, r.formatter, r.st, g)
	case "pareto", "comp_pareto":
		_ = renderPareto(r.formatter, r.sess)
	case "filename":
		fmt.Fprintln(out, r.sess.Path)
	default:
		fmt.Fprintf(out, "Unknown command %q. Type \"help\" for the command list.\n", cmd)
	}
	return false
}

func (r *repl) openStore() error {
	if r.st != nil {
		return nil
	}
	st, err := openStore(r.ctx, r.formatter, r.sess)
	if err != nil {
		return err
	}
	r.st = st
	return nil
}

func (r *repl) close() {
	if r.st != nil {
		_ = r.st.Close()
	}
}

// intArg parses the first argument as a row count, printing missing when
// there is none.
func intArg(out io.Writer, args []string, missing string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(out, missing)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(out, "invalid number %q.\n", args[0])
		return 0, false
	}
	return n, true
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/ctlog/internal/correlate"
	"github.com/roach88/ctlog/internal/session"
	"github.com/roach88/ctlog/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeInvalidArg   = "E002" // Malformed argument or flag value
	ErrCodeConfig       = "E003" // Config file unreadable or invalid
	ErrCodeLoadFailed   = "E004" // Log could not be read or correlated
	ErrCodeNotFound     = "E005" // Log file or call target not found
	ErrCodeStoreFailed  = "E006" // In-memory index could not be built
	ErrCodeQueryFailed  = "E007" // Ad-hoc query rejected or failed
	ErrCodeInconsistent = "E008" // Log violates an engine invariant
	ErrCodeCheckFailed  = "E009" // One or more scenarios failed
)

// newFormatter creates the output formatter for cmd.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadSession parses and correlates the log at path. Failures are written
// through formatter and returned as an ExitError. On success the formatter
// is tagged with the session id.
func loadSession(ctx context.Context, opts *RootOptions, formatter *OutputFormatter, path string) (*session.Session, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	logger := slog.Default()
	sess, err := session.Load(ctx, path, session.Options{
		Parser: cfg.ParserOptions(),
		Logger: logger,
		OnDrop: func(lineNo int, line string, err error) {
			logger.Log(ctx, LevelTrace, "line dropped", "line", lineNo, "error", err, "text", line)
		},
	})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("log file not found: %s", path), err)
	case correlate.IsConsistencyError(err):
		return nil, formatter.Fail(ExitFailure, ErrCodeInconsistent, "log is internally inconsistent", err)
	case err != nil:
		return nil, formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load log", err)
	}

	formatter.SessionID = sess.ID
	formatter.VerboseLog("Loaded %s: %d lines, %d events, %d ignored, %d dropped, %d call targets",
		path, sess.ParseStats.Lines, sess.ParseStats.Events, sess.ParseStats.Ignored,
		sess.ParseStats.DroppedTotal(), sess.CorrelationStats.Targets)
	return sess, nil
}

// openStore indexes the session's call targets into a fresh in-memory
// store. The caller closes it.
func openStore(ctx context.Context, formatter *OutputFormatter, sess *session.Session) (*store.Store, error) {
	st, err := store.Open(ctx)
	if err != nil {
		return nil, formatter.Fail(ExitFailure, ErrCodeStoreFailed, "failed to open index", err)
	}
	if err := st.WriteTargets(ctx, sess.Targets()); err != nil {
		_ = st.Close()
		return nil, formatter.Fail(ExitFailure, ErrCodeStoreFailed, "failed to index call targets", err)
	}
	return st, nil
}

// parseTargetID parses a call target id argument.
func parseTargetID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid call target id %q", arg)
	}
	return id, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// WriteTargets indexes call targets and their sorted timelines in one
// transaction. Event seq numbers follow target id, then timeline order.
func (s *Store) WriteTargets(ctx context.Context, targets []*calltarget.CallTarget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write targets: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	targetStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO targets (id, name, source, exec_count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write targets: prepare: %w", err)
	}
	defer targetStmt.Close()

	eventStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(target_id, kind, at, at_ms, tier, comp_id, compile_time_ms, code_size, exec_count, reason, fields, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare: %w", err)
	}
	defer eventStmt.Close()

	for _, ct := range targets {
		if _, err := targetStmt.ExecContext(ctx, ct.ID, ct.Name, ct.Source, ct.ExecCount()); err != nil {
			return fmt.Errorf("write target %d: %w", ct.ID, err)
		}

		for _, e := range ct.AllEventsSorted() {
			fields, err := marshalFields(e)
			if err != nil {
				return fmt.Errorf("write target %d: %w", ct.ID, err)
			}

			tier, hasTier := event.TierOf(e)
			compID, hasCompID := event.CompIDOf(e)
			compileTime, hasCompileTime := event.CompileTimeOf(e)
			codeSize, hasCodeSize := event.CodeSizeOf(e)
			execCount, hasExecCount := event.ExecCountOf(e)
			reason, hasReason := event.ReasonOf(e)

			_, err = eventStmt.ExecContext(ctx,
				ct.ID,
				e.Kind().String(),
				e.Timestamp().UTC().Format(time.RFC3339Nano),
				e.Timestamp().UnixMilli(),
				nullInt(int64(tier), hasTier),
				nullInt(compID, hasCompID),
				nullInt(compileTime, hasCompileTime),
				nullInt(codeSize, hasCodeSize),
				nullInt(execCount, hasExecCount),
				nullString(reason, hasReason),
				fields,
				e.Raw(),
			)
			if err != nil {
				return fmt.Errorf("write %s event for target %d: %w", e.Kind(), ct.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write targets: commit: %w", err)
	}

	return nil
}

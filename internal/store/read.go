package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Granularity is the bucket size of the compile-rate aggregation.
type Granularity string

const (
	Hour   Granularity = "hour"
	Minute Granularity = "minute"
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Hour, Minute:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want hour or minute)", s)
}

// sqlFormat is the strftime pattern producing bucket keys.
func (g Granularity) sqlFormat() string {
	if g == Minute {
		return "%Y-%m-%d %H:%M"
	}
	return "%Y-%m-%d %H"
}

// layout is the Go time layout matching sqlFormat.
func (g Granularity) layout() string {
	if g == Minute {
		return "2006-01-02 15:04"
	}
	return "2006-01-02 15"
}

func (g Granularity) step() time.Duration {
	if g == Minute {
		return time.Minute
	}
	return time.Hour
}

// RateBucket aggregates the compilations finished within one time bucket.
type RateBucket struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`

	Compilations  int64 `json:"compilations"`
	CodeBytes     int64 `json:"code_bytes"`
	CompileTimeMs int64 `json:"compile_time_ms"`
	Targets       int64 `json:"targets"`
	Sources       int64 `json:"sources"`

	// CumulativeTargets counts distinct targets compiled in this or any
	// earlier bucket.
	CumulativeTargets int64 `json:"cumulative_targets"`

	// LargestBytes sums, over the targets compiled in the bucket, the size
	// of each target's largest compilation in the bucket.
	LargestBytes int64 `json:"largest_bytes"`

	Evictions int64 `json:"evictions"`
}

// CompRate returns one bucket per step from the bucket of the earliest
// compilation through the bucket of the latest, including empty buckets.
// It returns no buckets when nothing was compiled.
func (s *Store) CompRate(ctx context.Context, g Granularity) ([]RateBucket, error) {
	var minMs, maxMs sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(at_ms), MAX(at_ms) FROM compilations
	`).Scan(&minMs, &maxMs)
	if err != nil {
		return nil, fmt.Errorf("comp rate: range: %w", err)
	}
	if !minMs.Valid {
		return []RateBucket{}, nil
	}

	byKey := make(map[string]*RateBucket)
	var buckets []RateBucket
	last := time.UnixMilli(maxMs.Int64).UTC().Truncate(g.step())
	for at := time.UnixMilli(minMs.Int64).UTC().Truncate(g.step()); !at.After(last); at = at.Add(g.step()) {
		buckets = append(buckets, RateBucket{Key: at.Format(g.layout()), Start: at})
	}
	for i := range buckets {
		byKey[buckets[i].Key] = &buckets[i]
	}

	if err := s.readCompilationTotals(ctx, g, byKey); err != nil {
		return nil, err
	}
	if err := s.readLargest(ctx, g, byKey); err != nil {
		return nil, err
	}
	if err := s.readEvictionCounts(ctx, g, byKey); err != nil {
		return nil, err
	}
	if err := s.readCumulativeTargets(ctx, g, buckets); err != nil {
		return nil, err
	}

	return buckets, nil
}

func (s *Store) readCompilationTotals(ctx context.Context, g Granularity, byKey map[string]*RateBucket) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime(?, c.at_ms / 1000, 'unixepoch') AS bucket,
		       COUNT(*),
		       COALESCE(SUM(c.code_size), 0),
		       COALESCE(SUM(c.compile_time_ms), 0),
		       COUNT(DISTINCT c.target_id),
		       COUNT(DISTINCT t.source)
		FROM compilations c
		JOIN targets t ON t.id = c.target_id
		GROUP BY bucket
		ORDER BY bucket ASC
	`, g.sqlFormat())
	if err != nil {
		return fmt.Errorf("comp rate: query compilations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			row RateBucket
		)
		if err := rows.Scan(&key, &row.Compilations, &row.CodeBytes, &row.CompileTimeMs, &row.Targets, &row.Sources); err != nil {
			return fmt.Errorf("comp rate: scan compilations: %w", err)
		}
		if b, ok := byKey[key]; ok {
			b.Compilations = row.Compilations
			b.CodeBytes = row.CodeBytes
			b.CompileTimeMs = row.CompileTimeMs
			b.Targets = row.Targets
			b.Sources = row.Sources
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("comp rate: iterate compilations: %w", err)
	}
	return nil
}

func (s *Store) readLargest(ctx context.Context, g Granularity, byKey map[string]*RateBucket) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bucket, SUM(largest)
		FROM (
			SELECT strftime(?, at_ms / 1000, 'unixepoch') AS bucket,
			       target_id,
			       MAX(COALESCE(code_size, 0)) AS largest
			FROM compilations
			GROUP BY bucket, target_id
		)
		GROUP BY bucket
		ORDER BY bucket ASC
	`, g.sqlFormat())
	if err != nil {
		return fmt.Errorf("comp rate: query largest: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key     string
			largest int64
		)
		if err := rows.Scan(&key, &largest); err != nil {
			return fmt.Errorf("comp rate: scan largest: %w", err)
		}
		if b, ok := byKey[key]; ok {
			b.LargestBytes = largest
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("comp rate: iterate largest: %w", err)
	}
	return nil
}

func (s *Store) readEvictionCounts(ctx context.Context, g Granularity, byKey map[string]*RateBucket) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime(?, at_ms / 1000, 'unixepoch') AS bucket, COUNT(*)
		FROM evictions
		GROUP BY bucket
		ORDER BY bucket ASC
	`, g.sqlFormat())
	if err != nil {
		return fmt.Errorf("comp rate: query evictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("comp rate: scan evictions: %w", err)
		}
		// Evictions outside the compilation range have no bucket.
		if b, ok := byKey[key]; ok {
			b.Evictions = count
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("comp rate: iterate evictions: %w", err)
	}
	return nil
}

func (s *Store) readCumulativeTargets(ctx context.Context, g Granularity, buckets []RateBucket) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT strftime(?, at_ms / 1000, 'unixepoch') AS bucket, target_id
		FROM compilations
		ORDER BY bucket ASC, target_id ASC
	`, g.sqlFormat())
	if err != nil {
		return fmt.Errorf("comp rate: query targets: %w", err)
	}
	defer rows.Close()

	firstSeen := make(map[string]int64)
	seen := make(map[int64]bool)
	for rows.Next() {
		var (
			key      string
			targetID int64
		)
		if err := rows.Scan(&key, &targetID); err != nil {
			return fmt.Errorf("comp rate: scan targets: %w", err)
		}
		if !seen[targetID] {
			seen[targetID] = true
			firstSeen[key]++
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("comp rate: iterate targets: %w", err)
	}

	var cumulative int64
	for i := range buckets {
		cumulative += firstSeen[buckets[i].Key]
		buckets[i].CumulativeTargets = cumulative
	}
	return nil
}

// QueryResult is the tabular result of an ad-hoc query. Values are int64,
// float64, string or nil.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Query runs one read-only SQL statement against the index with optional
// bind args. Statements that would modify the database fail.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("query: enable query_only: %w", err)
	}
	defer conn.ExecContext(context.Background(), "PRAGMA query_only = OFF")

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: columns: %w", err)
	}

	result := &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: iterate: %w", err)
	}
	return result, nil
}

// CountTargets returns the number of indexed call targets.
func (s *Store) CountTargets(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM targets").Scan(&n); err != nil {
		return 0, fmt.Errorf("count targets: %w", err)
	}
	return n, nil
}

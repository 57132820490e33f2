// Package session runs the parsing pipeline over one log file.
//
// Load reads the file sequentially, parses every line, and correlates the
// resulting events into call targets. Lines the grammars reject are
// dropped and counted; they never abort a load. I/O errors and internal
// consistency errors do.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/correlate"
	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/parse"
)

// MaxLineBytes bounds a single log line.
const MaxLineBytes = 1 << 20

// DropFunc observes a line rejected by a grammar. lineNo is 1-based.
type DropFunc func(lineNo int, line string, err error)

// Options configures Load.
type Options struct {
	Parser parse.Options

	// IDs generates the session id. Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Logger receives phase summaries. Defaults to slog.Default().
	Logger *slog.Logger

	// OnDrop is called for every rejected line.
	OnDrop DropFunc
}

// ParseStats summarizes the parse phase.
type ParseStats struct {
	Lines   int `json:"lines"`
	Events  int `json:"events"`
	Ignored int `json:"ignored"`

	// Dropped counts rejected lines per error code.
	Dropped map[parse.ErrorCode]int `json:"dropped"`
}

// DroppedTotal returns the number of rejected lines.
func (s ParseStats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Session is the fully correlated content of one log file.
type Session struct {
	ID               string               `json:"id"`
	Path             string               `json:"path"`
	Events           []event.Event        `json:"-"`
	Registry         *calltarget.Registry `json:"-"`
	Index            *correlate.Index     `json:"-"`
	ParseStats       ParseStats           `json:"parse"`
	CorrelationStats correlate.Stats      `json:"correlation"`
}

// Load parses and correlates the log file at path.
func Load(ctx context.Context, path string, opts Options) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	s, err := Read(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Read parses and correlates a log from r.
func Read(ctx context.Context, r io.Reader, opts Options) (*Session, error) {
	if opts.IDs == nil {
		opts.IDs = UUIDv7Generator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		ID:         opts.IDs.Generate(),
		ParseStats: ParseStats{Dropped: make(map[parse.ErrorCode]int)},
	}
	logger := opts.Logger.With("session", s.ID)

	started := time.Now()
	if err := s.parse(ctx, r, parse.New(opts.Parser), opts.OnDrop); err != nil {
		return nil, err
	}
	logger.Debug("log parsed",
		"lines", s.ParseStats.Lines,
		"events", s.ParseStats.Events,
		"dropped", s.ParseStats.DroppedTotal(),
		"elapsed", time.Since(started))

	started = time.Now()
	res, err := correlate.Build(s.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to correlate events: %w", err)
	}
	s.Registry = res.Registry
	s.Index = res.Index
	s.CorrelationStats = res.Stats
	logger.Debug("events correlated",
		"targets", res.Stats.Targets,
		"evictions_dropped", res.Stats.EvictionsDropped,
		"transfers_dropped", res.Stats.TransfersDropped,
		"elapsed", time.Since(started))

	return s, nil
}

func (s *Session) parse(ctx context.Context, r io.Reader, p *parse.Parser, onDrop DropFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.ParseStats.Lines++
		line := scanner.Text()

		ev, err := p.ParseLine(line)
		switch {
		case err != nil:
			s.ParseStats.Dropped[parse.CodeOf(err)]++
			if onDrop != nil {
				onDrop(s.ParseStats.Lines, line, err)
			}
		case ev == nil:
			s.ParseStats.Ignored++
		default:
			s.Events = append(s.Events, ev)
			s.ParseStats.Events++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log at line %d: %w", s.ParseStats.Lines+1, err)
	}
	return nil
}

// Target returns the call target with the given id.
func (s *Session) Target(id int64) (*calltarget.CallTarget, bool) {
	return s.Registry.Get(id)
}

// Targets returns all call targets ordered by id.
func (s *Session) Targets() []*calltarget.CallTarget {
	return s.Registry.Targets()
}

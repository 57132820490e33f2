package parse

import (
	"strings"
	"time"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/timestamp"
)

// Default markers as printed by the engine and the code cache.
const (
	DefaultEngineMarker   = "[engine] opt"
	DefaultFlushingMarker = "*flushing "
)

// DefaultFallbackTime is assigned to interpreter-fallback events whose
// line carries no timestamp. It sorts after any realistic log instant.
var DefaultFallbackTime = timestamp.MustNormalize("2050-01-01T23:59:59.123Z")

// Grammar identifies which line grammar a classified line belongs to.
type Grammar int

const (
	GrammarNone Grammar = iota
	GrammarEngine
	GrammarCacheFlushing
	GrammarFallback
)

func (g Grammar) String() string {
	switch g {
	case GrammarEngine:
		return "engine"
	case GrammarCacheFlushing:
		return "cache-flushing"
	case GrammarFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Options configures a Parser. Zero values select the defaults.
type Options struct {
	EngineMarker   string
	FlushingMarker string

	// FallbackTime is the timestamp given to interpreter-fallback events
	// without one of their own.
	FallbackTime time.Time

	// Ignore lists substrings; lines containing any of them are dropped
	// before classification.
	Ignore []string
}

// Parser classifies and parses lines. It holds no per-line state, so the
// same line always yields an equal result.
type Parser struct {
	opts Options
}

// New creates a Parser, filling unset options with defaults.
func New(opts Options) *Parser {
	if opts.EngineMarker == "" {
		opts.EngineMarker = DefaultEngineMarker
	}
	if opts.FlushingMarker == "" {
		opts.FlushingMarker = DefaultFlushingMarker
	}
	if opts.FallbackTime.IsZero() {
		opts.FallbackTime = DefaultFallbackTime
	}
	opts.FallbackTime = opts.FallbackTime.UTC()
	return &Parser{opts: opts}
}

// Classify decides which grammar applies to a trimmed line. Blank and
// ignored lines classify as GrammarNone.
func (p *Parser) Classify(line string) Grammar {
	if line == "" {
		return GrammarNone
	}
	for _, s := range p.opts.Ignore {
		if s != "" && strings.Contains(line, s) {
			return GrammarNone
		}
	}
	switch {
	case strings.HasPrefix(line, p.opts.EngineMarker):
		return GrammarEngine
	case strings.Contains(line, p.opts.FlushingMarker):
		return GrammarCacheFlushing
	default:
		return GrammarFallback
	}
}

// ParseLine parses one line. It returns (nil, nil) for lines that carry
// no event (blank, ignored, or unrelated runtime output) and a non-nil
// *Error for lines a grammar rejected.
func (p *Parser) ParseLine(line string) (event.Event, error) {
	line = strings.TrimSpace(line)
	switch p.Classify(line) {
	case GrammarEngine:
		body := strings.TrimSpace(line[len(p.opts.EngineMarker):])
		return parseEngine(line, body)
	case GrammarCacheFlushing:
		return parseCacheFlushing(line)
	case GrammarFallback:
		ev := parseFallback(line, p.opts.FallbackTime)
		if ev == nil {
			return nil, nil
		}
		return ev, nil
	default:
		return nil, nil
	}
}

package parse

import (
	"strings"
	"time"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/timestamp"
)

// parseFallback reads an interpreter-fallback frame:
//
//	[<ts>] name(source) trailing
//
// The name is the text before the first '(' plus any text after the
// matching ')'. The bracketed timestamp prefix is optional; without it the
// event gets fallback and is marked Synthetic. Lines without a
// parenthesized group, or with an empty name, are not frames and yield nil.
func parseFallback(line string, fallback time.Time) *event.TransferToInterpreter {
	at, synthetic := fallback, true
	body := line
	if strings.HasPrefix(body, "[") {
		if end := strings.IndexByte(body, ']'); end > 0 {
			if t, err := timestamp.Normalize(body[1:end]); err == nil {
				at, synthetic = t, false
				body = strings.TrimSpace(body[end+1:])
			}
		}
	}

	open := strings.IndexByte(body, '(')
	if open < 0 {
		return nil
	}
	closing := strings.IndexByte(body[open+1:], ')')
	if closing < 0 {
		return nil
	}
	closing += open + 1

	name := strings.TrimSpace(body[:open])
	if trailing := strings.TrimSpace(body[closing+1:]); trailing != "" {
		name = strings.TrimSpace(name + " " + trailing)
	}
	if name == "" {
		return nil
	}

	return &event.TransferToInterpreter{
		Line:      line,
		Name:      name,
		Source:    strings.TrimSpace(body[open+1 : closing]),
		At:        at,
		Synthetic: synthetic,
	}
}

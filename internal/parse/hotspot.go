package parse

import (
	"regexp"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/timestamp"
)

// flushingPattern matches a code-cache eviction:
//
//	[2024-01-01T10:00:00.123+0000] *flushing  nmethod 1234/0x00007f...
//
// Extra decorations between the timestamp and the marker are allowed.
var flushingPattern = regexp.MustCompile(`^\[([^\]]+)\].*?\*flushing\s.*?\bnmethod\s+(\d+)/`)

func parseCacheFlushing(line string) (event.Event, error) {
	const kind = event.KindCacheFlushing
	m := flushingPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, unrecognized(kind, "Flushing", line)
	}
	at, err := timestamp.Normalize(m[1])
	if err != nil {
		return nil, badTimestamp(kind, m[1], err)
	}
	compID, err := atoi(kind, "nmethod", line, m[2])
	if err != nil {
		return nil, err
	}
	return &event.CacheFlushing{Line: line, CompID: compID, At: at}, nil
}

package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/timestamp"
)

// Segment label patterns. All are anchored at the start of a trimmed
// segment; trailing text (units, parenthesized breakdowns) is ignored.
var (
	tierPattern       = regexp.MustCompile(`^Tier\s+(\d+)`)
	priorityPattern   = regexp.MustCompile(`^Priority\s+(\d+)`)
	ratePattern       = regexp.MustCompile(`^Rate\s+(NaN|\d*\.?\d+)`)
	queuePattern      = regexp.MustCompile(`^Queue:\s+Size\s+(\d+)\s+Change\s+([+-]?\d+)\s+Load\s+(\d*\.?\d+)\s+Time\s+(\d+)us`)
	thresholdsPattern = regexp.MustCompile(`^Count/Thres\s+(\d+)\s*/\s*(\d+)`)
	timePattern       = regexp.MustCompile(`^Time\s+(\d+)`)
	astPattern        = regexp.MustCompile(`^AST\s+(\d+)`)
	inlinedPattern    = regexp.MustCompile(`^Inlined\s+(\d+)Y\s+(\d+)N`)
	irPattern         = regexp.MustCompile(`^IR\s+(\d+)\s*/\s*(\d+)`)
	codeSizePattern   = regexp.MustCompile(`^CodeSize\s+(\d+)`)
	addrPattern       = regexp.MustCompile(`^Addr\s+(\S+)`)
	compIDPattern     = regexp.MustCompile(`^CompId\s+(\d+)`)
	utcPattern        = regexp.MustCompile(`^UTC\s+(\d{4}-\S+)`)
)

// splitSegments splits s on '|' and trims every segment.
func splitSegments(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// submatch returns the capture groups of re in seg, or an
// UNRECOGNIZED_PATTERN error labeled with label.
func submatch(kind event.Kind, label string, re *regexp.Regexp, seg string) ([]string, error) {
	m := re.FindStringSubmatch(seg)
	if m == nil {
		return nil, unrecognized(kind, label, seg)
	}
	return m[1:], nil
}

func atoi(kind event.Kind, label, seg, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Digit-only captures only fail here on overflow.
		return 0, &Error{Code: ErrCodeUnrecognizedPattern, Kind: kind, Label: label, Segment: seg, Err: err}
	}
	return n, nil
}

func atof(kind event.Kind, label, seg, s string) (float64, error) {
	if s == "NaN" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &Error{Code: ErrCodeUnrecognizedPattern, Kind: kind, Label: label, Segment: seg, Err: err}
	}
	return f, nil
}

func matchInt(kind event.Kind, label string, re *regexp.Regexp, seg string) (int64, error) {
	m, err := submatch(kind, label, re, seg)
	if err != nil {
		return 0, err
	}
	return atoi(kind, label, seg, m[0])
}

func matchTier(kind event.Kind, seg string) (int, error) {
	n, err := matchInt(kind, "Tier", tierPattern, seg)
	return int(n), err
}

func matchRate(kind event.Kind, seg string) (event.Rate, error) {
	m, err := submatch(kind, "Rate", ratePattern, seg)
	if err != nil {
		return 0, err
	}
	f, err := atof(kind, "Rate", seg, m[0])
	return event.Rate(f), err
}

func matchQueue(kind event.Kind, seg string) (event.Queue, error) {
	const label = "Queue"
	m, err := submatch(kind, label, queuePattern, seg)
	if err != nil {
		return event.Queue{}, err
	}
	var q event.Queue
	if q.Size, err = atoi(kind, label, seg, m[0]); err != nil {
		return event.Queue{}, err
	}
	if q.Change, err = atoi(kind, label, seg, m[1]); err != nil {
		return event.Queue{}, err
	}
	if q.Load, err = atof(kind, label, seg, m[2]); err != nil {
		return event.Queue{}, err
	}
	if q.TimeUs, err = atoi(kind, label, seg, m[3]); err != nil {
		return event.Queue{}, err
	}
	return q, nil
}

func matchPair(kind event.Kind, label string, re *regexp.Regexp, seg string) (int64, int64, error) {
	m, err := submatch(kind, label, re, seg)
	if err != nil {
		return 0, 0, err
	}
	a, err := atoi(kind, label, seg, m[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := atoi(kind, label, seg, m[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func matchAddr(kind event.Kind, seg string) (string, error) {
	m, err := submatch(kind, "Addr", addrPattern, seg)
	if err != nil {
		return "", err
	}
	return m[0], nil
}

func matchUTC(kind event.Kind, seg string) (time.Time, error) {
	m, err := submatch(kind, "UTC", utcPattern, seg)
	if err != nil {
		return time.Time{}, err
	}
	t, err := timestamp.Normalize(m[0])
	if err != nil {
		return time.Time{}, badTimestamp(kind, seg, err)
	}
	return t, nil
}

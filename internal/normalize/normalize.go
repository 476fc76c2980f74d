// Package normalize converts heterogeneous date expressions, both relative
// ("2 days ago", "yesterday") and absolute (any common calendar format),
// into timezone-aware instants in UTC.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseable reports that an expression matched neither a known
// relative pattern nor any supported absolute calendar format. Callers
// must treat it as "date unknown", never as epoch or any other default.
var ErrUnparseable = errors.New("unparseable date expression")

var relativePattern = regexp.MustCompile(`^(\d+)\s+(day|week|month|year)s?\s+ago$`)

// Unit approximations for relative expressions. Months and years are
// deliberately approximated in days rather than calendar-shifted.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365
)

// Normalize parses expr into an instant in UTC. Relative expressions are
// anchored to now and floored to midnight UTC. Absolute expressions keep
// their time-of-day; when they carry no timezone, UTC is assumed.
// Ambiguous numeric dates (03/04) resolve month-first, the underlying
// parser's default.
func Normalize(expr string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(expr)
	lower := strings.ToLower(trimmed)
	if lower == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrUnparseable)
	}

	now = now.UTC()
	switch lower {
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now.AddDate(0, 0, -1)), nil
	}

	if m := relativePattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
		}
		days := n
		switch m[2] {
		case "week":
			days = n * daysPerWeek
		case "month":
			days = n * daysPerMonth
		case "year":
			days = n * daysPerYear
		}
		return midnight(now.AddDate(0, 0, -days)), nil
	}

	parsed, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
	}
	return parsed.UTC(), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

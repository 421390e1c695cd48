package gaql

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDateRange is used when a caller leaves the range blank.
const DefaultDateRange = "LAST_30_DAYS"

const dateLayout = "2006-01-02"

// ErrInvalidDateRange is returned for ranges that are neither named nor a
// valid start:end pair.
var ErrInvalidDateRange = errors.New("invalid date range")

var namedRanges = map[string]bool{
	"TODAY":               true,
	"YESTERDAY":           true,
	"LAST_7_DAYS":         true,
	"LAST_14_DAYS":        true,
	"LAST_30_DAYS":        true,
	"LAST_BUSINESS_WEEK":  true,
	"THIS_MONTH":          true,
	"LAST_MONTH":          true,
	"THIS_WEEK_SUN_TODAY": true,
	"THIS_WEEK_MON_TODAY": true,
	"LAST_WEEK_SUN_SAT":   true,
	"LAST_WEEK_MON_SUN":   true,
}

// NamedRanges lists the accepted relative range names.
func NamedRanges() []string {
	return []string{
		"TODAY", "YESTERDAY", "LAST_7_DAYS", "LAST_14_DAYS", "LAST_30_DAYS", "LAST_BUSINESS_WEEK",
		"THIS_MONTH", "LAST_MONTH", "THIS_WEEK_SUN_TODAY", "THIS_WEEK_MON_TODAY", "LAST_WEEK_SUN_SAT", "LAST_WEEK_MON_SUN",
	}
}

// DateRange is either a named relative range or an explicit inclusive window.
type DateRange struct {
	Named string
	Start time.Time
	End   time.Time
}

// Condition renders the segments.date predicate.
func (r DateRange) Condition() string {
	if r.Named != "" {
		return "segments.date DURING " + r.Named
	}
	return fmt.Sprintf("segments.date BETWEEN '%s' AND '%s'", r.Start.Format(dateLayout), r.End.Format(dateLayout))
}

// String is the caller-facing form: the range name or "start:end".
func (r DateRange) String() string {
	if r.Named != "" {
		return r.Named
	}
	return r.Start.Format(dateLayout) + ":" + r.End.Format(dateLayout)
}

// ParseDateRange accepts a named range, "YYYY-MM-DD:YYYY-MM-DD" or free-form
// "last N days". Blank input falls back to fallback (DefaultDateRange if empty).
func ParseDateRange(raw, fallback string) (DateRange, error) {
	return parseDateRangeAt(raw, fallback, time.Now().UTC())
}

func parseDateRangeAt(raw, fallback string, now time.Time) (DateRange, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		v = strings.TrimSpace(fallback)
	}
	if v == "" {
		v = DefaultDateRange
	}

	if named := strings.ToUpper(v); namedRanges[named] {
		return DateRange{Named: named}, nil
	}

	if start, end, ok := strings.Cut(v, ":"); ok {
		s, err := time.Parse(dateLayout, strings.TrimSpace(start))
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidDateRange, start)
		}
		e, err := time.Parse(dateLayout, strings.TrimSpace(end))
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidDateRange, end)
		}
		if e.Before(s) {
			return DateRange{}, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, end, start)
		}
		return DateRange{Start: s, End: e}, nil
	}

	// "last 10 days", "last_10_days", "past 10 days"
	if n := extractDays(v); n > 0 && strings.Contains(strings.ToLower(v), "day") {
		end := now.Truncate(24 * time.Hour)
		return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}, nil
	}

	return DateRange{}, fmt.Errorf("%w: %q (use one of %s or YYYY-MM-DD:YYYY-MM-DD)", ErrInvalidDateRange, raw, strings.Join(NamedRanges(), ", "))
}

var digitsRe = regexp.MustCompile(`\d+`)

// extractDays pulls the first integer found in a string like "last 10 days".
func extractDays(s string) int {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

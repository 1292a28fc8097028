package compile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// weekdayNames is ordered so index i is weekday number i+1 in the
// 1=Sunday convention, and also time.Weekday(i) (Sunday=0).
var weekdayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ResolveDay resolves a day specifier to a time.Weekday-compatible
// index (0=Sunday .. 6=Saturday). day may be an int 1..7 (1=Sunday),
// a numeral string ("3"), or a weekday name or unambiguous prefix of
// one ("tu", "th", but not "t"), case-insensitively.
func ResolveDay(day interface{}) (int, error) {
	switch d := day.(type) {
	case int:
		return resolveDayInt(d)
	case string:
		if n, err := strconv.Atoi(d); err == nil {
			return resolveDayInt(n)
		}
		return resolveDayPrefix(d)
	default:
		return 0, errors.Wrapf(ErrUnknownDay, "unsupported day type %T", day)
	}
}

func resolveDayInt(n int) (int, error) {
	if n < 1 || n > 7 {
		return 0, errors.Wrapf(ErrUnknownDay, "day %d out of range 1..7", n)
	}
	return n - 1, nil
}

func resolveDayPrefix(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.Wrap(ErrUnknownDay, "empty day")
	}

	matches := []int{}
	for i, name := range weekdayNames {
		if strings.HasPrefix(name, s) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, errors.Wrapf(ErrUnknownDay, "'%s' matches no weekday", s)
	case 1:
		return matches[0], nil
	default:
		return 0, errors.Wrapf(ErrAmbiguousDay, "'%s' matches multiple weekdays", s)
	}
}

// Package gtfstime implements the time parser/formatter external
// collaborator: it accepts the several input shapes a query can
// supply a time in, and renders seconds-since-midnight back to the
// zero-padded HH:MM:SS GTFS convention, with hours allowed to exceed
// 23 for after-midnight services.
package gtfstime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadTime is returned when a time argument is in an unrecognised
// shape.
var ErrBadTime = errors.New("bad time")

// Parse accepts an integer number of seconds, an [2]int of (H, M), an
// [3]int of (H, M, S), or a "HH:MM:SS" string, and returns seconds
// since service-day midnight. Any other shape fails with ErrBadTime.
func Parse(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		if t < 0 {
			return 0, errors.Wrapf(ErrBadTime, "negative seconds %d", t)
		}
		return t, nil
	case [2]int:
		return HM(t[0], t[1]), nil
	case [3]int:
		return HMS(t[0], t[1], t[2]), nil
	case string:
		return ParseClock(t)
	default:
		return 0, errors.Wrapf(ErrBadTime, "unsupported type %T", v)
	}
}

// HM converts an (hour, minute) pair to seconds since midnight.
func HM(h, m int) int {
	return h*3600 + m*60
}

// HMS converts an (hour, minute, second) triple to seconds since
// midnight.
func HMS(h, m, s int) int {
	return h*3600 + m*60 + s
}

// ParseClock parses a "HH:MM:SS" string (hours unbounded, as GTFS
// allows times past 24:00:00 for after-midnight trips) into seconds
// since service-day midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Wrapf(ErrBadTime, "'%s' has %d parts, want 3", s, len(parts))
	}

	hms := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, errors.Wrapf(ErrBadTime, "'%s' has non-integer part %q", s, p)
		}
		hms[i] = n
	}

	if hms[0] < 0 {
		return 0, errors.Wrapf(ErrBadTime, "'%s' has negative hour", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, errors.Wrapf(ErrBadTime, "'%s' has invalid minute", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, errors.Wrapf(ErrBadTime, "'%s' has invalid second", s)
	}

	return HMS(hms[0], hms[1], hms[2]), nil
}

// Format renders seconds since service-day midnight as a zero-padded
// HH:MM:SS string. Hours may exceed 23 for after-midnight services.
func Format(seconds int) string {
	neg := ""
	if seconds < 0 {
		neg = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", neg, h, m, s)
}

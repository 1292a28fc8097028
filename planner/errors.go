package planner

import (
	"github.com/pkg/errors"

	"github.com/gmatosferreira/gtfsrouter/resolve"
)

// ErrNoServicesAfterStart is returned when, after the start_time
// cutoff, zero Connections remain in the compiled timetable.
var ErrNoServicesAfterStart = errors.New("no services after start time")

// ErrLengthMismatch is returned when a multi-query's From and To
// slices have different lengths.
var ErrLengthMismatch = errors.New("from/to length mismatch")

// ErrStationNotFound is re-exported from resolve for callers that
// only import planner.
var ErrStationNotFound = resolve.ErrStationNotFound

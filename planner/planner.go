// Package planner wires the feed, compile, resolve, csa and journey
// packages into the single end-to-end query surface a CLI or API
// caller uses: resolve from/to text into stops, compile the day's
// timetable, search for the earliest arrival (optionally refining for
// the latest feasible departure), and reconstruct the result into
// Legs.
package planner

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/gmatosferreira/gtfsrouter/compile"
	"github.com/gmatosferreira/gtfsrouter/csa"
	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/gtfstime"
	"github.com/gmatosferreira/gtfsrouter/journey"
	"github.com/gmatosferreira/gtfsrouter/resolve"
)

// Query describes one planning request, possibly carrying several
// from/to pairs that share a day, start time and filters.
type Query struct {
	// Day selects the service day; see compile.Options.Day.
	Day interface{}

	// RoutePattern, if non-empty, restricts the search to routes
	// matching the pattern; see compile.Options.RoutePattern.
	RoutePattern string

	// From and To name the query stops, one entry per pair. They must
	// be the same length.
	From []string
	To   []string

	// FromToAreIDs treats From/To entries as stop_ids instead of
	// free-text names.
	FromToAreIDs bool

	// GrepFixed matches From/To name text literally instead of as a
	// regular expression. Ignored when FromToAreIDs is set.
	GrepFixed bool

	// StartTime is anything accepted by gtfstime.Parse.
	StartTime interface{}

	// EarliestArrival, when true (the default), refines the forward
	// search's result to the latest feasible departure via the
	// reverse scan. A caller that wants the raw earliest-arrival path
	// should set this false explicitly.
	EarliestArrival bool

	// IncludeIDs requests GTFS ids alongside names in the returned
	// Legs.
	IncludeIDs bool

	// MaxTransfers, if non-nil, bounds the number of trip changes in
	// any returned Journey.
	MaxTransfers *int
}

// NewQuery returns a Query with EarliestArrival defaulted to true.
func NewQuery() Query {
	return Query{EarliestArrival: true}
}

// Journey is one planned result: the ordered Legs, plus any
// name-resolution warnings raised while resolving its from/to pair.
type Journey struct {
	Legs        []journey.Leg
	FromWarning string
	ToWarning   string
}

// Plan resolves and searches q.From[i]/q.To[i] for every i, against f
// compiled once for q.Day/q.RoutePattern. The result slice has one
// entry per pair; an entry is nil when no journey was found for that
// pair (absence of a route is not an error). ctx is checked
// periodically during each search; a cancelled context aborts the
// remaining pairs and returns ctx.Err().
func Plan(ctx context.Context, f *feed.Feed, q Query) ([]*Journey, error) {
	if len(q.From) != len(q.To) {
		return nil, errors.Wrapf(ErrLengthMismatch, "from has %d entries, to has %d", len(q.From), len(q.To))
	}

	startTime, err := gtfstime.Parse(q.StartTime)
	if err != nil {
		return nil, err
	}

	tt, transfers, idmaps, err := compile.Compile(f, compile.Options{
		Day:          q.Day,
		RoutePattern: q.RoutePattern,
	})
	if err != nil {
		return nil, err
	}

	if !hasConnectionAtOrAfter(tt, startTime) {
		return nil, errors.Wrapf(ErrNoServicesAfterStart, "start_time %s", gtfstime.Format(startTime))
	}

	results := make([]*Journey, len(q.From))

	for i := range q.From {
		j, err := planOne(ctx, f, tt, transfers, idmaps, q, q.From[i], q.To[i], startTime)
		if err != nil {
			return nil, err
		}
		results[i] = j
	}

	return results, nil
}

// PlanOne is a convenience wrapper over Plan for a single from/to
// pair.
func PlanOne(ctx context.Context, f *feed.Feed, q Query, from, to string) (*Journey, error) {
	q.From = []string{from}
	q.To = []string{to}
	results, err := Plan(ctx, f, q)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func planOne(
	ctx context.Context,
	f *feed.Feed,
	tt *compile.Timetable,
	transfers *compile.TransferIndex,
	idmaps *compile.IdMaps,
	q Query,
	from, to string,
	startTime int,
) (*Journey, error) {
	fromResult, err := resolve.Resolve(f, resolve.Query{Text: from, ByID: q.FromToAreIDs, Fixed: q.GrepFixed})
	if err != nil {
		return nil, errors.Wrapf(err, "resolving from %q", from)
	}
	toResult, err := resolve.Resolve(f, resolve.Query{Text: to, ByID: q.FromToAreIDs, Fixed: q.GrepFixed})
	if err != nil {
		return nil, errors.Wrapf(err, "resolving to %q", to)
	}

	// A stop that exists in the feed but survived neither the day nor
	// the route filter is indistinguishable, to the search, from one
	// that never existed.
	starts := compiledIndices(idmaps, fromResult)
	if len(starts) == 0 {
		return nil, errors.Wrapf(ErrStationNotFound, "'%s' is not served by the compiled timetable", from)
	}
	ends := compiledIndices(idmaps, toResult)
	if len(ends) == 0 {
		return nil, errors.Wrapf(ErrStationNotFound, "'%s' is not served by the compiled timetable", to)
	}

	result, err := csa.Search(ctx, tt, transfers, idmaps, starts, ends, startTime, q.MaxTransfers)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	steps := result.Steps
	if q.EarliestArrival {
		refined, err := csa.Refine(ctx, tt, transfers, idmaps, starts, ends, result, q.MaxTransfers)
		if err != nil {
			return nil, err
		}
		if refined.Refined {
			steps = refined.Result.Steps
		}
	}

	legs, err := journey.Reconstruct(f, idmaps, steps, q.IncludeIDs)
	if err != nil {
		return nil, err
	}
	legs = journey.SpliceTerminalTransfers(f, idmaps, transfers, legs, steps, starts, ends)

	return &Journey{
		Legs:        legs,
		FromWarning: fromResult.Warning,
		ToWarning:   toResult.Warning,
	}, nil
}

// compiledIndices translates a resolve.Result's Stops to the compact
// indices that survived compilation, dropping any stop compilation
// never saw (not served today, or filtered out by route_pattern).
func compiledIndices(idmaps *compile.IdMaps, r *resolve.Result) []int {
	indices := []int{}
	for _, s := range r.Stops {
		if i, ok := idmaps.StopIndex(s.ID); ok {
			indices = append(indices, i)
		}
	}
	return indices
}

// hasConnectionAtOrAfter reports whether tt has any Connection
// departing at or after startTime; tt.Connections is sorted by
// DepartureTime ascending.
func hasConnectionAtOrAfter(tt *compile.Timetable, startTime int) bool {
	n := len(tt.Connections)
	i := sort.Search(n, func(i int) bool {
		return tt.Connections[i].DepartureTime >= startTime
	})
	return i < n
}

// Package compile implements the timetable compiler: it projects a
// feed.Feed onto a given service day and optional route filter,
// producing a dense, time-sorted array of Connections plus the index
// tables (Transfer Index, IdMaps) the CSA search engine needs.
package compile

import (
	"cmp"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/gmatosferreira/gtfsrouter/feed"
)

// Options parameterises a single compilation.
type Options struct {
	// Day is anything accepted by ResolveDay: an int 1..7 (1=Sunday),
	// a numeral string, or a weekday name/prefix.
	Day interface{}

	// RoutePattern, if non-empty, is a regular expression matched
	// against route_short_name. A leading '!' negates the match.
	RoutePattern string
}

// Connection is one vehicle hop between two adjacent stops on one
// trip, with compact integer stop/trip ids.
type Connection struct {
	DepartureStop int
	ArrivalStop   int
	DepartureTime int
	ArrivalTime   int
	TripIndex     int
}

// Timetable is an ordered, immutable sequence of Connections sorted
// by DepartureTime ascending.
type Timetable struct {
	Connections []Connection
}

// IdMaps back-translates compact stop/trip indices to GTFS string
// ids, and forward-translates ids to indices.
type IdMaps struct {
	StopID []string
	TripID []string

	stopIndex map[string]int
	tripIndex map[string]int
}

// StopIndex returns the compact stop index for a GTFS stop_id, if
// that stop survived compilation.
func (m *IdMaps) StopIndex(stopID string) (int, bool) {
	i, ok := m.stopIndex[stopID]
	return i, ok
}

// TripIndexOf returns the compact trip index for a GTFS trip_id, if
// that trip survived compilation.
func (m *IdMaps) TripIndexOf(tripID string) (int, bool) {
	i, ok := m.tripIndex[tripID]
	return i, ok
}

// Compile projects f onto the given day and route filter, producing a
// Timetable, a TransferIndex and the IdMaps between them. Compile is a
// pure function of (f, opts): it holds no cache and mutates nothing,
// so compiling the same arguments twice yields a structurally
// equivalent result.
func Compile(f *feed.Feed, opts Options) (*Timetable, *TransferIndex, *IdMaps, error) {
	weekday, err := ResolveDay(opts.Day)
	if err != nil {
		return nil, nil, nil, err
	}

	allowedRoutes, err := matchRoutes(f, opts.RoutePattern)
	if err != nil {
		return nil, nil, nil, err
	}

	trips := []string{}
	for _, t := range f.Trips {
		if allowedRoutes != nil && !allowedRoutes[t.RouteID] {
			continue
		}
		if !f.RunsOnWeekday(t.ServiceID, weekday) {
			continue
		}
		trips = append(trips, t.ID)
	}

	if len(trips) == 0 {
		return nil, nil, nil, errors.Wrap(ErrNoServicesOnDay, "compile")
	}

	idmaps := &IdMaps{
		TripID:    trips,
		tripIndex: map[string]int{},
		stopIndex: map[string]int{},
	}
	for i, id := range trips {
		idmaps.tripIndex[id] = i
	}

	stops := []string{}
	connections := []Connection{}

	stopIndexFor := func(stopID string) int {
		if i, ok := idmaps.stopIndex[stopID]; ok {
			return i
		}
		i := len(stops)
		idmaps.stopIndex[stopID] = i
		stops = append(stops, stopID)
		return i
	}

	for tripIdx, tripID := range trips {
		sts := f.StopTimesForTrip(tripID)
		for i := 0; i+1 < len(sts); i++ {
			from, to := sts[i], sts[i+1]
			connections = append(connections, Connection{
				DepartureStop: stopIndexFor(from.StopID),
				ArrivalStop:   stopIndexFor(to.StopID),
				DepartureTime: int(from.DepartureTime() / time.Second),
				ArrivalTime:   int(to.ArrivalTime() / time.Second),
				TripIndex:     tripIdx,
			})
		}
		// A trip with a single stop_time contributes no connections
		// but its stop must still be indexed so it can be used as a
		// start/end stop.
		if len(sts) == 1 {
			stopIndexFor(sts[0].StopID)
		}
	}

	idmaps.StopID = stops

	slices.SortStableFunc(connections, func(a, b Connection) int {
		return cmp.Compare(a.DepartureTime, b.DepartureTime)
	})

	transferIndex := compileTransfers(f, idmaps)

	return &Timetable{Connections: connections}, transferIndex, idmaps, nil
}

// matchRoutes resolves route_pattern to the set of allowed route_ids,
// or nil if no pattern was given (all routes allowed).
func matchRoutes(f *feed.Feed, pattern string) (map[string]bool, error) {
	if pattern == "" {
		return nil, nil
	}

	if pattern == "!" {
		return nil, errors.Wrap(ErrSillyPattern, "compile")
	}

	negate := false
	expr := pattern
	if strings.HasPrefix(pattern, "!") {
		negate = true
		expr = pattern[1:]
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling route_pattern %q", pattern)
	}

	allowed := map[string]bool{}
	for _, r := range f.Routes {
		matched := re.MatchString(r.ShortName)
		if matched != negate {
			allowed[r.ID] = true
		}
	}

	if len(allowed) == 0 {
		return nil, errors.Wrapf(ErrNoRoutesMatch, "route_pattern %q", pattern)
	}

	return allowed, nil
}

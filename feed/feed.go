// Package feed loads the six GTFS tables the journey planner consumes
// into an immutable, joined in-memory representation.
package feed

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/gmatosferreira/gtfsrouter/model"
	"github.com/gmatosferreira/gtfsrouter/storage"
)

// Feed is the in-memory, normalised representation of a GTFS static
// feed, restricted to the six tables the planner uses. It is built
// once from a storage.FeedReader and never mutated afterwards.
type Feed struct {
	Stops     []model.Stop
	Routes    []model.Route
	Trips     []model.Trip
	StopTimes []model.StopTime
	Calendars []model.Calendar
	Transfers []model.Transfer

	stopByID     map[string]*model.Stop
	routeByID    map[string]*model.Route
	tripByID     map[string]*model.Trip
	calendarByID map[string]*model.Calendar

	// stopTimesByTrip holds, for each trip_id, its StopTimes sorted
	// by stop_sequence ascending.
	stopTimesByTrip map[string][]model.StopTime
}

// Load reads the six tables from reader and joins them into a Feed.
func Load(reader storage.FeedReader) (*Feed, error) {
	stops, err := reader.Stops()
	if err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}
	routes, err := reader.Routes()
	if err != nil {
		return nil, fmt.Errorf("reading routes: %w", err)
	}
	trips, err := reader.Trips()
	if err != nil {
		return nil, fmt.Errorf("reading trips: %w", err)
	}
	stopTimes, err := reader.StopTimes()
	if err != nil {
		return nil, fmt.Errorf("reading stop_times: %w", err)
	}
	calendars, err := reader.Calendars()
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	transfers, err := reader.Transfers()
	if err != nil {
		return nil, fmt.Errorf("reading transfers: %w", err)
	}

	f := &Feed{
		Stops:     stops,
		Routes:    routes,
		Trips:     trips,
		StopTimes: stopTimes,
		Calendars: calendars,
		Transfers: transfers,

		stopByID:        map[string]*model.Stop{},
		routeByID:       map[string]*model.Route{},
		tripByID:        map[string]*model.Trip{},
		calendarByID:    map[string]*model.Calendar{},
		stopTimesByTrip: map[string][]model.StopTime{},
	}

	for i := range f.Stops {
		f.stopByID[f.Stops[i].ID] = &f.Stops[i]
	}
	for i := range f.Routes {
		f.routeByID[f.Routes[i].ID] = &f.Routes[i]
	}
	for i := range f.Trips {
		f.tripByID[f.Trips[i].ID] = &f.Trips[i]
	}
	for i := range f.Calendars {
		f.calendarByID[f.Calendars[i].ServiceID] = &f.Calendars[i]
	}
	for _, st := range f.StopTimes {
		f.stopTimesByTrip[st.TripID] = append(f.stopTimesByTrip[st.TripID], st)
	}
	for _, sts := range f.stopTimesByTrip {
		slices.SortStableFunc(sts, func(a, b model.StopTime) int {
			return cmp.Compare(a.StopSequence, b.StopSequence)
		})
	}

	return f, nil
}

// Stop looks up a Stop by stop_id.
func (f *Feed) Stop(id string) (*model.Stop, bool) {
	s, ok := f.stopByID[id]
	return s, ok
}

// Route looks up a Route by route_id.
func (f *Feed) Route(id string) (*model.Route, bool) {
	r, ok := f.routeByID[id]
	return r, ok
}

// Trip looks up a Trip by trip_id.
func (f *Feed) Trip(id string) (*model.Trip, bool) {
	t, ok := f.tripByID[id]
	return t, ok
}

// Calendar looks up a Calendar entry by service_id.
func (f *Feed) Calendar(serviceID string) (*model.Calendar, bool) {
	c, ok := f.calendarByID[serviceID]
	return c, ok
}

// StopTimesForTrip returns the StopTimes of trip tripID, in
// stop_sequence order.
func (f *Feed) StopTimesForTrip(tripID string) []model.StopTime {
	return f.stopTimesByTrip[tripID]
}

// RunsOnWeekday reports whether the service identified by serviceID
// operates on the given time.Weekday (0=Sunday .. 6=Saturday).
func (f *Feed) RunsOnWeekday(serviceID string, weekday int) bool {
	c, ok := f.calendarByID[serviceID]
	if !ok {
		return false
	}
	return c.Weekday&(1<<uint(weekday)) != 0
}

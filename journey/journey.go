// Package journey implements the Journey Reconstructor: it unwinds
// the csa.Step chain produced by a search into a human-readable
// stop-by-stop sequence of Legs, splicing in transfer legs and
// resolving GTFS string ids/names via the IdMaps and Feed.
package journey

import (
	"sort"

	"github.com/gmatosferreira/gtfsrouter/compile"
	"github.com/gmatosferreira/gtfsrouter/csa"
	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/gtfstime"
)

// Leg is one stop along a Journey. A ride leg carries route/trip
// identity; a transfer leg has TripName "(transfer)" and nil
// route/trip fields.
type Leg struct {
	RouteID   *string
	RouteName *string
	TripID    *string
	TripName  string
	StopID    *string
	StopName  string

	// ArrivalTime is the arrival at the leg's stop: the alighting
	// stop of a ride leg, the destination of a transfer leg.
	ArrivalTime *int

	// DepartureTime is nil for transfer legs (GTFS transfers have no
	// scheduled departure); every ride leg, the final one included,
	// carries its boarding departure.
	DepartureTime *int
}

const transferName = "(transfer)"

// Reconstruct builds the ordered Leg list for steps, a path produced
// by csa.Search (optionally refined by csa.Refine), resolving names
// via f and idmaps. When includeIDs is false, RouteID/TripID/StopID
// are left nil.
func Reconstruct(
	f *feed.Feed,
	idmaps *compile.IdMaps,
	steps []csa.Step,
	includeIDs bool,
) ([]Leg, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	legs := []Leg{}

	i := 0
	for i < len(steps) {
		step := steps[i]

		if step.Kind == csa.StepTransfer {
			arr := step.ArrivalTime
			leg := Leg{
				TripName:    transferName,
				StopName:    stopName(f, idmaps, step.ToStop),
				ArrivalTime: &arr,
			}
			if includeIDs {
				id := idmaps.StopID[step.ToStop]
				leg.StopID = &id
			}
			legs = append(legs, leg)
			i++
			continue
		}

		// Group the adjacent run of Connections riding the same trip.
		j := i
		for j+1 < len(steps) && steps[j+1].Kind == csa.StepConnection && steps[j+1].Conn.TripIndex == step.Conn.TripIndex {
			j++
		}

		boardTime := steps[i].Conn.DepartureTime
		alightStop := steps[j].Conn.ArrivalStop
		alightTime := steps[j].Conn.ArrivalTime
		tripIdx := step.Conn.TripIndex

		tripID := idmaps.TripID[tripIdx]
		trip, ok := f.Trip(tripID)
		if !ok {
			return nil, errTripNotFound(tripID)
		}
		route, ok := f.Route(trip.RouteID)
		if !ok {
			return nil, errRouteNotFound(trip.RouteID)
		}

		dep := boardTime
		arr := alightTime
		tripName := trip.Headsign
		routeName := route.ShortName

		leg := Leg{
			RouteName:     &routeName,
			TripName:      tripName,
			StopName:      stopName(f, idmaps, alightStop),
			DepartureTime: &dep,
			ArrivalTime:   &arr,
		}
		if includeIDs {
			rid := trip.RouteID
			tid := tripID
			sid := idmaps.StopID[alightStop]
			leg.RouteID = &rid
			leg.TripID = &tid
			leg.StopID = &sid
		}

		legs = append(legs, leg)
		i = j + 1
	}

	sortLegs(legs)

	return legs, nil
}

// sortLegs orders legs by departure_time ascending; a leg
// with no departure_time (a transfer) sorts by its arrival_time
// instead, since it occurs at that instant.
func sortLegs(legs []Leg) {
	key := func(l Leg) int {
		if l.DepartureTime != nil {
			return *l.DepartureTime
		}
		if l.ArrivalTime != nil {
			return *l.ArrivalTime
		}
		return 0
	}
	sort.SliceStable(legs, func(i, j int) bool {
		return key(legs[i]) < key(legs[j])
	})
}

func stopName(f *feed.Feed, idmaps *compile.IdMaps, stopIdx int) string {
	id := idmaps.StopID[stopIdx]
	if s, ok := f.Stop(id); ok {
		return s.Name
	}
	return id
}

// SpliceTerminalTransfers appends/prepends a transfer leg when the
// reconstructed chain's first or last stop isn't a member of the
// originally requested start/end set but a compiled transfer connects
// it to one. This only matters after reverse-scan refinement, which
// may re-route the chain's literal endpoints away from the requested
// stop set.
func SpliceTerminalTransfers(
	f *feed.Feed,
	idmaps *compile.IdMaps,
	transfers *compile.TransferIndex,
	legs []Leg,
	steps []csa.Step,
	starts []int,
	ends []int,
) []Leg {
	if len(steps) == 0 || len(legs) == 0 {
		return legs
	}

	startSet := map[int]bool{}
	for _, s := range starts {
		startSet[s] = true
	}
	endSet := map[int]bool{}
	for _, s := range ends {
		endSet[s] = true
	}

	firstStop := steps[0].FromStop
	if !startSet[firstStop] && legs[0].DepartureTime != nil {
	prependSearch:
		for candidate := range startSet {
			for _, x := range transfers.For(candidate) {
				if x.ToStop == firstStop {
					dep := *legs[0].DepartureTime - x.MinTransferTime
					prepend := Leg{
						TripName:      transferName,
						StopName:      stopName(f, idmaps, firstStop),
						DepartureTime: nil,
						ArrivalTime:   &dep,
					}
					legs = append([]Leg{prepend}, legs...)
					break prependSearch
				}
			}
		}
	}

	lastStep := steps[len(steps)-1]
	lastStop := lastStep.ToStop
	if !endSet[lastStop] {
	appendSearch:
		for candidate := range endSet {
			for _, x := range transfers.For(lastStop) {
				if x.ToStop == candidate {
					baseTime := legs[len(legs)-1].ArrivalTime
					if baseTime == nil {
						continue
					}
					arr := *baseTime + x.MinTransferTime
					legs = append(legs, Leg{
						TripName:    transferName,
						StopName:    stopName(f, idmaps, candidate),
						ArrivalTime: &arr,
					})
					break appendSearch
				}
			}
		}
	}

	return legs
}

// FormatLeg renders a Leg's times as HH:MM:SS (empty string for nil
// times).
func FormatLeg(l Leg) (arrival, departure string) {
	if l.ArrivalTime != nil {
		arrival = gtfstime.Format(*l.ArrivalTime)
	}
	if l.DepartureTime != nil {
		departure = gtfstime.Format(*l.DepartureTime)
	}
	return
}

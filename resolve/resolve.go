// Package resolve implements the name resolver external collaborator
// described in the planner's interface: it turns a free-text station
// name, a GTFS stop_id, or a (lon, lat) pair into the matching feed
// Stops, which the planner then maps to the compact stop ids the CSA
// engine searches from.
package resolve

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/model"
	"github.com/gmatosferreira/gtfsrouter/storage"
)

// ErrStationNotFound is returned when no Stop matches a Query.
var ErrStationNotFound = errors.New("station not found")

// spreadWarningKm is the span beyond which a multi-stop name match
// triggers a warning: it likely spans more than one physical station.
const spreadWarningKm = 5.0

// Query describes a single from/to argument as it might arrive from a
// CLI or API caller: as free text, a stop_id, or a coordinate pair.
type Query struct {
	// Text is either a free-text station name (matched against
	// stop_name) or, when ByID is set, a literal stop_id.
	Text string

	// Lon/Lat, if both set, resolve via nearest-stop lookup instead
	// of Text.
	Lon *float64
	Lat *float64

	// ByID treats Text as a GTFS stop_id rather than a name.
	ByID bool

	// Fixed, when true, matches Text against stop_name literally
	// (substring, case-insensitive) instead of as a regular
	// expression.
	Fixed bool
}

// Result is the outcome of resolving a single Query.
type Result struct {
	Stops   []model.Stop
	Warning string
}

// Resolve resolves q against f, returning every matching Stop.
func Resolve(f *feed.Feed, q Query) (*Result, error) {
	if q.Lon != nil && q.Lat != nil {
		return resolveByLocation(f, *q.Lat, *q.Lon)
	}
	if q.ByID {
		return resolveByID(f, q.Text)
	}
	return resolveByName(f, q.Text, q.Fixed)
}

func resolveByID(f *feed.Feed, id string) (*Result, error) {
	s, ok := f.Stop(id)
	if !ok {
		return nil, errors.Wrapf(ErrStationNotFound, "stop_id '%s'", id)
	}
	return &Result{Stops: []model.Stop{*s}}, nil
}

func resolveByName(f *feed.Feed, text string, fixed bool) (*Result, error) {
	var matches func(name string) bool

	if fixed {
		needle := strings.ToLower(text)
		matches = func(name string) bool {
			return strings.Contains(strings.ToLower(name), needle)
		}
	} else {
		re, err := regexp.Compile(text)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling name pattern %q", text)
		}
		matches = re.MatchString
	}

	found := []model.Stop{}
	for _, s := range f.Stops {
		if matches(s.Name) {
			found = append(found, s)
		}
	}

	if len(found) == 0 {
		return nil, errors.Wrapf(ErrStationNotFound, "name %q", text)
	}

	return &Result{Stops: found, Warning: spreadWarning(found)}, nil
}

func resolveByLocation(f *feed.Feed, lat, lon float64) (*Result, error) {
	var nearest *model.Stop
	var nearestDist float64

	for i := range f.Stops {
		s := &f.Stops[i]
		if s.Lat == 0 && s.Lon == 0 {
			continue
		}
		d := storage.HaversineDistance(lat, lon, s.Lat, s.Lon)
		if nearest == nil || d < nearestDist {
			nearest = s
			nearestDist = d
		}
	}

	if nearest == nil {
		return nil, errors.Wrap(ErrStationNotFound, "no stop has coordinates")
	}

	sameName := []model.Stop{}
	for _, s := range f.Stops {
		if s.Name == nearest.Name {
			sameName = append(sameName, s)
		}
	}

	return &Result{Stops: sameName, Warning: spreadWarning(sameName)}, nil
}

// spreadWarning returns a non-empty warning when the matched stops
// span more than spreadWarningKm, computed as the maximum pairwise
// Haversine distance among stops that carry coordinates.
func spreadWarning(stops []model.Stop) string {
	maxDist := 0.0
	for i := 0; i < len(stops); i++ {
		for j := i + 1; j < len(stops); j++ {
			if stops[i].Lat == 0 && stops[i].Lon == 0 {
				continue
			}
			if stops[j].Lat == 0 && stops[j].Lon == 0 {
				continue
			}
			d := storage.HaversineDistance(stops[i].Lat, stops[i].Lon, stops[j].Lat, stops[j].Lon)
			if d > maxDist {
				maxDist = d
			}
		}
	}

	if maxDist > spreadWarningKm {
		return "matched stops span more than 5 km; results may be ambiguous"
	}
	return ""
}

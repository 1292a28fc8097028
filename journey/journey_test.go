package journey_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmatosferreira/gtfsrouter/compile"
	"github.com/gmatosferreira/gtfsrouter/csa"
	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/journey"
	"github.com/gmatosferreira/gtfsrouter/testutil"
)

func fixture() map[string][]string {
	return map[string][]string{
		"routes.txt": {
			"route_id,route_short_name,route_type",
			"r1,R1,3",
			"r2,R2,3",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"daily,1,1,1,1,1,1,1,20190101,20200101",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign",
			"r1,daily,t1,Towards C",
			"r2,daily,t2,Towards D",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"a,A,1,1",
			"b,B,2,2",
			"c,C,3,3",
			"d,D,4,4",
			"e,E,5,5",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t1,08:00:00,08:00:00,a,1",
			"t1,08:10:00,08:10:00,b,2",
			"t1,08:20:00,08:20:00,c,3",
			"t2,08:12:00,08:12:00,e,1",
			"t2,08:20:00,08:20:00,d,2",
		},
		"transfers.txt": {
			"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
			"b,e,2,60",
		},
	}
}

func setup(t *testing.T) (*feed.Feed, *compile.Timetable, *compile.TransferIndex, *compile.IdMaps) {
	f := testutil.BuildFeed(t, "memory", fixture())
	tt, idx, maps, err := compile.Compile(f, compile.Options{Day: 4})
	require.NoError(t, err)
	return f, tt, idx, maps
}

func TestReconstructDirectRide(t *testing.T) {
	f, tt, idx, maps := setup(t)

	a, _ := maps.StopIndex("a")
	c, _ := maps.StopIndex("c")

	result, err := csa.Search(context.Background(), tt, idx, maps, []int{a}, []int{c}, 7*3600, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	legs, err := journey.Reconstruct(f, maps, result.Steps, false)
	require.NoError(t, err)
	require.Len(t, legs, 1)

	leg := legs[0]
	assert.Equal(t, "R1", *leg.RouteName)
	assert.Equal(t, "Towards C", leg.TripName)
	assert.Equal(t, "C", leg.StopName)
	require.NotNil(t, leg.ArrivalTime)
	assert.Equal(t, 8*3600+20*60, *leg.ArrivalTime)
	require.NotNil(t, leg.DepartureTime)
	assert.Equal(t, 8*3600, *leg.DepartureTime)
	assert.Nil(t, leg.RouteID)
	assert.Nil(t, leg.TripID)
	assert.Nil(t, leg.StopID)
}

func TestReconstructWithTransfer(t *testing.T) {
	f, tt, idx, maps := setup(t)

	a, _ := maps.StopIndex("a")
	d, _ := maps.StopIndex("d")

	result, err := csa.Search(context.Background(), tt, idx, maps, []int{a}, []int{d}, 7*3600, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	legs, err := journey.Reconstruct(f, maps, result.Steps, true)
	require.NoError(t, err)
	require.Len(t, legs, 3)

	assert.Equal(t, "B", legs[0].StopName)
	assert.Equal(t, "R1", *legs[0].RouteName)

	assert.Equal(t, "(transfer)", legs[1].TripName)
	assert.Equal(t, "E", legs[1].StopName)
	assert.Nil(t, legs[1].DepartureTime)

	assert.Equal(t, "R2", *legs[2].RouteName)
	assert.Equal(t, "D", legs[2].StopName)

	for i := 1; i < len(legs); i++ {
		prevArr := legs[i-1].ArrivalTime
		dep := legs[i].DepartureTime
		if prevArr != nil && dep != nil {
			assert.GreaterOrEqual(t, *dep, *prevArr)
		}
	}
}

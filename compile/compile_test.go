package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmatosferreira/gtfsrouter/compile"
	"github.com/gmatosferreira/gtfsrouter/testutil"
)

func fixture() map[string][]string {
	return map[string][]string{
		"routes.txt": {
			"route_id,route_short_name,route_type",
			"u1,U1,1",
			"s1,S1,2",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"weekdays,1,1,1,1,1,0,0,20190101,20200101",
		},
		"trips.txt": {
			"route_id,service_id,trip_id",
			"u1,weekdays,t1",
			"s1,weekdays,t2",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"a,A,1,1",
			"b,B,2,2",
			"c,C,3,3",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t1,08:00:00,08:00:00,a,1",
			"t1,08:10:00,08:10:00,b,2",
			"t2,08:20:00,08:20:00,b,1",
			"t2,08:30:00,08:30:00,c,2",
		},
		"transfers.txt": {
			"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
			"b,b,2,60",
		},
	}
}

func TestCompileBasic(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	tt, idx, maps, err := compile.Compile(f, compile.Options{Day: 4}) // Wednesday
	require.NoError(t, err)

	require.Len(t, tt.Connections, 2)
	assert.True(t, tt.Connections[0].DepartureTime <= tt.Connections[1].DepartureTime)

	require.Len(t, maps.TripID, 2)
	require.Len(t, maps.StopID, 3)

	aIdx, ok := maps.StopIndex("a")
	require.True(t, ok)
	bIdx, ok := maps.StopIndex("b")
	require.True(t, ok)

	transfers := idx.For(bIdx)
	require.Len(t, transfers, 1)
	assert.Equal(t, bIdx, transfers[0].ToStop)
	assert.Equal(t, 60, transfers[0].MinTransferTime)

	_ = aIdx
}

func TestTransferIndexOrdering(t *testing.T) {
	files := fixture()
	files["stops.txt"] = append(files["stops.txt"], "d,D,4,4") // in the feed but served by no trip
	files["transfers.txt"] = []string{
		"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
		"b,c,2,120",
		"b,a,2,60",
		"b,b,2,60",
		"a,b,0,30", // type 0: ignored
		"a,d,2,30", // uncompiled stop: dropped
	}
	f := testutil.BuildFeed(t, "memory", files)

	_, idx, maps, err := compile.Compile(f, compile.Options{Day: 4})
	require.NoError(t, err)

	aIdx, _ := maps.StopIndex("a")
	bIdx, _ := maps.StopIndex("b")

	assert.Empty(t, idx.For(aIdx))

	ts := idx.For(bIdx)
	require.Len(t, ts, 3)
	// Sorted by min_transfer_time ascending, ties broken by to_stop.
	assert.Equal(t, 60, ts[0].MinTransferTime)
	assert.Equal(t, 60, ts[1].MinTransferTime)
	assert.True(t, ts[0].ToStop < ts[1].ToStop)
	assert.Equal(t, 120, ts[2].MinTransferTime)

	assert.Empty(t, idx.For(-1))
	assert.Empty(t, idx.For(999))
}

func TestCompileIdempotent(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	tt1, _, maps1, err := compile.Compile(f, compile.Options{Day: 4})
	require.NoError(t, err)

	tt2, _, maps2, err := compile.Compile(f, compile.Options{Day: 4})
	require.NoError(t, err)

	assert.Equal(t, tt1.Connections, tt2.Connections)
	assert.Equal(t, maps1.StopID, maps2.StopID)
	assert.Equal(t, maps1.TripID, maps2.TripID)
}

func TestCompileNoServicesOnDay(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	_, _, _, err := compile.Compile(f, compile.Options{Day: 7}) // Saturday: no service
	assert.ErrorIs(t, err, compile.ErrNoServicesOnDay)
}

func TestCompileRoutePattern(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	tt, _, maps, err := compile.Compile(f, compile.Options{Day: 4, RoutePattern: "^U"})
	require.NoError(t, err)
	require.Len(t, maps.TripID, 1)
	require.Len(t, tt.Connections, 1)

	tt, _, maps, err = compile.Compile(f, compile.Options{Day: 4, RoutePattern: "!^U"})
	require.NoError(t, err)
	require.Len(t, maps.TripID, 1)
	assert.Equal(t, "t2", maps.TripID[0])
	_ = tt
}

func TestCompileSillyPattern(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	_, _, _, err := compile.Compile(f, compile.Options{Day: 4, RoutePattern: "!"})
	assert.ErrorIs(t, err, compile.ErrSillyPattern)
}

func TestCompileNoRoutesMatch(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	_, _, _, err := compile.Compile(f, compile.Options{Day: 4, RoutePattern: "^X"})
	assert.ErrorIs(t, err, compile.ErrNoRoutesMatch)
}

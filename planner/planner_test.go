package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmatosferreira/gtfsrouter/compile"
	"github.com/gmatosferreira/gtfsrouter/planner"
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
			"a,Alpha,1,1",
			"b,Bravo,2,2",
			"c,Charlie,3,3",
			"d,Delta,4,4",
			"e,Echo,5,5",
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

func TestPlanDirectRide(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"

	result, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Legs, 1)
	assert.Equal(t, "Charlie", result.Legs[0].StopName)
}

func TestPlanWithTransfer(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"
	q.IncludeIDs = true

	result, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Delta")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Legs, 3)
	assert.Equal(t, "(transfer)", result.Legs[1].TripName)
}

func TestPlanNoRoute(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	// t1 has already left Alpha at 08:05, but later connections remain,
	// so the search runs and finds no journey.
	q.StartTime = "08:05:00"

	result, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPlanLengthMismatch(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = 0
	q.From = []string{"Alpha", "Bravo"}
	q.To = []string{"Charlie"}

	_, err := planner.Plan(context.Background(), f, q)
	assert.ErrorIs(t, err, planner.ErrLengthMismatch)
}

func TestPlanNoServicesAfterStart(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "23:59:59"

	_, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	assert.ErrorIs(t, err, planner.ErrNoServicesAfterStart)
}

func TestPlanUnknownStation(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"

	_, err := planner.PlanOne(context.Background(), f, q, "Nowhere", "Charlie")
	assert.ErrorIs(t, err, planner.ErrStationNotFound)
}

func TestPlanSharesCompilationAcrossPairs(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"
	q.From = []string{"Alpha", "Alpha"}
	q.To = []string{"Charlie", "Delta"}

	results, err := planner.Plan(context.Background(), f, q)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.NotNil(t, results[1])
}

func TestPlanRoutePatternExcludesRoute(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"
	q.RoutePattern = "^R1$"

	// Delta is only served by r2/t2, which the pattern excludes, so as
	// far as the compiled timetable is concerned it does not exist.
	_, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Delta")
	assert.ErrorIs(t, err, planner.ErrStationNotFound)
}

func TestPlanMaxTransfersAtOrAboveMinimumIsEquivalent(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"

	unbounded, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Delta")
	require.NoError(t, err)
	require.NotNil(t, unbounded)

	one := 1
	q.MaxTransfers = &one
	bounded, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Delta")
	require.NoError(t, err)
	require.NotNil(t, bounded)

	assert.Equal(t, unbounded.Legs, bounded.Legs)
}

func TestPlanNoRefineDepartsNoLaterThanRefined(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"

	refined, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	require.NoError(t, err)
	require.NotNil(t, refined)

	q.EarliestArrival = false
	raw, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	require.NoError(t, err)
	require.NotNil(t, raw)

	require.NotNil(t, raw.Legs[0].DepartureTime)
	require.NotNil(t, refined.Legs[0].DepartureTime)
	assert.LessOrEqual(t, *raw.Legs[0].DepartureTime, *refined.Legs[0].DepartureTime)
}

func TestPlanSillyPattern(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	q := planner.NewQuery()
	q.Day = 4
	q.StartTime = "07:00:00"
	q.RoutePattern = "!"

	_, err := planner.PlanOne(context.Background(), f, q, "Alpha", "Charlie")
	assert.ErrorIs(t, err, compile.ErrSillyPattern)
}

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmatosferreira/gtfsrouter/resolve"
	"github.com/gmatosferreira/gtfsrouter/testutil"
)

func fixture() map[string][]string {
	return map[string][]string{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"p1,Alexanderplatz,52.521918,13.411435",
			"p2,Alexanderplatz,52.521500,13.410900",
			"p3,Innsbrucker Platz,52.473600,13.333000",
			"p4,Far Away Platz,60.000000,30.000000",
		},
	}
}

func TestResolveByID(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	r, err := resolve.Resolve(f, resolve.Query{Text: "p3", ByID: true})
	require.NoError(t, err)
	require.Len(t, r.Stops, 1)
	assert.Equal(t, "Innsbrucker Platz", r.Stops[0].Name)
}

func TestResolveByIDNotFound(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	_, err := resolve.Resolve(f, resolve.Query{Text: "nope", ByID: true})
	assert.ErrorIs(t, err, resolve.ErrStationNotFound)
}

func TestResolveByNameFixed(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	r, err := resolve.Resolve(f, resolve.Query{Text: "alexanderplatz", Fixed: true})
	require.NoError(t, err)
	assert.Len(t, r.Stops, 2)
	assert.Empty(t, r.Warning)
}

func TestResolveByNameRegex(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	r, err := resolve.Resolve(f, resolve.Query{Text: "^Innsbrucker"})
	require.NoError(t, err)
	require.Len(t, r.Stops, 1)
}

func TestResolveByNameNotFound(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	_, err := resolve.Resolve(f, resolve.Query{Text: "Schonlein"})
	assert.ErrorIs(t, err, resolve.ErrStationNotFound)
}

func TestResolveByLocation(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", fixture())

	lat, lon := 52.521900, 13.411400
	r, err := resolve.Resolve(f, resolve.Query{Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	assert.Len(t, r.Stops, 2) // both Alexanderplatz platforms
	assert.Empty(t, r.Warning)
}

func TestResolveWarnsOnSpread(t *testing.T) {
	f := testutil.BuildFeed(t, "memory", map[string][]string{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"p1,Shared Name,52.521918,13.411435",
			"p2,Shared Name,60.000000,30.000000",
		},
	})

	r, err := resolve.Resolve(f, resolve.Query{Text: "Shared Name", Fixed: true})
	require.NoError(t, err)
	assert.Len(t, r.Stops, 2)
	assert.NotEmpty(t, r.Warning)
}

// Package testutil provides helpers for building in-memory GTFS feeds
// in tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/parse"
	"github.com/gmatosferreira/gtfsrouter/storage"
)

// BuildStorage constructs a Storage backend by name ("memory" or
// "sqlite"); "memory" is the default used by most tests.
func BuildStorage(t testing.TB, backend string) storage.Storage {
	switch backend {
	case "", "memory":
		return storage.NewMemoryStorage()
	case "sqlite":
		s, err := storage.NewSQLiteStorage()
		require.NoError(t, err)
		return s
	default:
		t.Fatalf("unknown backend %q", backend)
		return nil
	}
}

// LoadFeed parses buf (a zipped GTFS static feed) into backend and
// joins its tables into a feed.Feed.
func LoadFeed(t testing.TB, backend string, buf []byte) *feed.Feed {
	s := BuildStorage(t, backend)

	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	_, err = parse.ParseStatic(writer, buf)
	require.NoError(t, err)

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	f, err := feed.Load(reader)
	require.NoError(t, err)

	return f
}

// LoadFeedFile reads filename from disk and parses it as LoadFeed
// does.
func LoadFeedFile(t testing.TB, backend string, filename string) *feed.Feed {
	buf, err := os.ReadFile(filename)
	require.NoError(t, err)

	return LoadFeed(t, backend, buf)
}

// BuildFeed fills in missing required files with minimal dummy data,
// zips files, and parses+loads the result.
func BuildFeed(t testing.TB, backend string, files map[string][]string) *feed.Feed {
	if files["calendar.txt"] == nil {
		files["calendar.txt"] = []string{"service_id"}
	}
	if files["routes.txt"] == nil {
		files["routes.txt"] = []string{"route_id"}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"trip_id"}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{"trip_id"}
	}

	return LoadFeed(t, backend, BuildZip(t, files))
}

// BuildZip zips files (each value being the lines of a CSV file) into
// an in-memory GTFS static archive.
func BuildZip(t testing.TB, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}
